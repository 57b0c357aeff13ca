// Package ai wraps the generative models used as the face comparison oracle.
package ai

import (
	"context"
	"errors"
	"sync"
)

// FaceComparer decides whether two photos show the same person.
type FaceComparer interface {
	Name() string
	// CompareFaces reports whether reference and candidate depict the same person.
	// Both are JPEG (or any decodable image) bytes.
	CompareFaces(ctx context.Context, reference, candidate []byte) (bool, error)

	// Usage tracking.
	GetUsage() Usage
	ResetUsage()
}

var (
	// ErrNotConfigured is returned before any network call when the provider has no credential.
	ErrNotConfigured = errors.New("face comparison API key is not configured")
	// ErrAPI wraps every failure of the remote model call.
	ErrAPI = errors.New("face comparison API error")
)

// Message returns the text shown to the user for an oracle failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "API_KEY is not configured. Cannot perform face comparison."
	case errors.Is(err, ErrBreakerOpen):
		return "Face comparison is temporarily unavailable. Please try again shortly."
	default:
		return "Failed to verify identity due to an API error."
	}
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"` // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

// usageTracker accumulates usage for one provider. Comparisons may run from
// several HTTP handlers, so access is serialized.
type usageTracker struct {
	mu      sync.Mutex
	usage   Usage
	pricing RequestPricing
}

func (t *usageTracker) track(inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.Requests++
	t.usage.InputTokens += int(inputTokens)
	t.usage.OutputTokens += int(outputTokens)
	t.usage.TotalCost += float64(inputTokens) / 1_000_000 * t.pricing.Input
	t.usage.TotalCost += float64(outputTokens) / 1_000_000 * t.pricing.Output
}

// GetUsage returns a copy of the accumulated usage.
func (t *usageTracker) GetUsage() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}

// ResetUsage zeroes out the accumulated usage counters.
func (t *usageTracker) ResetUsage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage = Usage{}
}
