package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kozaktomas/smart-attendance/internal/metrics"
	"github.com/rs/zerolog"
)

// loadBlob reads key and decodes it as a JSON array. A missing key or a blob that fails to
// parse yields an empty slice; only backend failures are returned.
func loadBlob[T any](ctx context.Context, b Backend, key string, log zerolog.Logger) ([]T, error) {
	data, err := b.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to parse stored blob, starting empty")
		metrics.StorageParseErrors.WithLabelValues(key).Inc()
		return []T{}, nil
	}
	if items == nil {
		// "null" is a valid document but not a list.
		items = []T{}
	}
	return items, nil
}

func saveBlob[T any](ctx context.Context, b Backend, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := b.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
