package storage

import (
	"context"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/rs/zerolog"
)

// RecordStore persists the attendance log, most-recent-first.
type RecordStore struct {
	backend Backend
	log     zerolog.Logger
}

func NewRecordStore(b Backend, log zerolog.Logger) *RecordStore {
	return &RecordStore{backend: b, log: log}
}

var _ attendance.RecordRepository = (*RecordStore)(nil)

func (s *RecordStore) Load(ctx context.Context) ([]attendance.Record, error) {
	return loadBlob[attendance.Record](ctx, s.backend, constants.RecordsKey, s.log)
}

func (s *RecordStore) Save(ctx context.Context, records []attendance.Record) error {
	return saveBlob(ctx, s.backend, constants.RecordsKey, records)
}
