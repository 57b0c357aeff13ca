// Package camera provides the frame sources the capture sequencer reads from.
//
// A Camera is exclusive: only one Stream may be open at a time, mirroring the
// one-active-stream contract of real capture devices.
package camera

import (
	"context"
	"errors"
	"image"
	"sync"
)

var (
	// ErrPermissionDenied is returned when the device refuses access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrUnavailable is returned when the device cannot be reached or is already in use.
	ErrUnavailable = errors.New("camera unavailable")
	// ErrNoFrame is returned when a frame grab produced nothing.
	ErrNoFrame = errors.New("no frame available")
)

// Camera opens streams on a capture device.
type Camera interface {
	Name() string
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open, exclusive handle on a camera. Close is idempotent.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// exclusive tracks whether a stream is currently open on a device.
type exclusive struct {
	mu    sync.Mutex
	inUse bool
}

func (e *exclusive) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inUse {
		return errors.Join(ErrUnavailable, errors.New("camera already in use"))
	}
	e.inUse = true
	return nil
}

func (e *exclusive) release() {
	e.mu.Lock()
	e.inUse = false
	e.mu.Unlock()
}

// stream is the shared Stream implementation: a frame function plus release-once bookkeeping.
type stream struct {
	mu     sync.Mutex
	closed bool
	grab   func(ctx context.Context) (image.Image, error)
	owner  *exclusive
}

func newStream(owner *exclusive, grab func(ctx context.Context) (image.Image, error)) *stream {
	return &stream{owner: owner, grab: grab}
}

func (s *stream) Frame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrNoFrame
	}

	img, err := s.grab(ctx)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoFrame
	}
	return img, nil
}

func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.owner.release()
	return nil
}

// None is the camera used when no source is configured. Every Open fails with ErrUnavailable.
type None struct{}

func (None) Name() string { return "none" }

func (None) Open(ctx context.Context) (Stream, error) {
	return nil, errors.Join(ErrUnavailable, errors.New("no camera configured"))
}
