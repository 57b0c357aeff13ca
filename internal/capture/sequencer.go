// Package capture turns a camera-on request into a single still photo through a fixed
// priming and countdown sequence.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/kozaktomas/smart-attendance/internal/metrics"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/rs/zerolog"
)

// State is a step of the capture sequence.
type State string

// Sequencer states.
const (
	StateIdle            State = "idle"
	StateAcquiringCamera State = "acquiring_camera"
	StatePriming         State = "priming"
	StateCountdown       State = "countdown"
	StateCapturing       State = "capturing"
	StateCaptured        State = "captured"
	StateFailed          State = "failed"
)

// User facing messages published while capturing.
const (
	MsgInitializing  = "Initializing camera..."
	MsgGetReady      = "Get ready for your photo..."
	MsgCountdown     = "Capturing in %d..."
	MsgSmile         = "Capturing... Smile!"
	MsgCameraAccess  = "Could not access camera. Please grant permission."
	MsgCaptureFailed = "Failed to capture photo. Please try again."
)

var (
	// ErrCameraAccess means the camera could not be opened (permission denied or unavailable).
	ErrCameraAccess = errors.New("camera access failed")
	// ErrCapture means the camera opened but the frame grab returned nothing usable.
	ErrCapture = errors.New("frame capture failed")
)

// Frame is a captured photo.
type Frame struct {
	JPEG       []byte
	Width      int
	Height     int
	CapturedAt time.Time
}

// DataURL returns the photo in the form it is stored in the roster.
func (f *Frame) DataURL() string {
	return imaging.ToDataURL(f.JPEG)
}

// Sequencer runs the capture sequence. It is safe for sequential reuse; callers
// serialize pipelines, so concurrent Capture calls are not coordinated.
type Sequencer struct {
	reporter status.Reporter
	sleep    func(time.Duration)
	now      func() time.Time
	log      zerolog.Logger
	onState  func(State)

	mu    sync.RWMutex
	state State
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithSleep replaces time.Sleep, mainly for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Sequencer) { s.sleep = sleep }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sequencer) { s.log = l }
}

// WithStateHook registers a callback invoked on every state change.
func WithStateHook(fn func(State)) Option {
	return func(s *Sequencer) { s.onState = fn }
}

// New creates a sequencer publishing to reporter.
func New(reporter status.Reporter, opts ...Option) *Sequencer {
	if reporter == nil {
		reporter = status.Discard
	}
	s := &Sequencer{
		reporter: reporter,
		sleep:    time.Sleep,
		now:      time.Now,
		log:      zerolog.Nop(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Capture acquires cam, runs the priming delay and the 3-2-1 countdown, grabs one frame
// and releases the camera. The camera is released on every path before Capture returns.
// The delays are plain timers; ctx only bounds the camera calls.
func (s *Sequencer) Capture(ctx context.Context, cam camera.Camera) (*Frame, error) {
	s.transition(StateAcquiringCamera)
	s.reporter.SetStatus(status.Loading(MsgInitializing))

	stream, err := cam.Open(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("camera", cam.Name()).Msg("Error accessing camera")
		metrics.Captures.WithLabelValues("camera_error").Inc()
		return nil, s.fail(MsgCameraAccess, fmt.Errorf("%w: %w", ErrCameraAccess, err))
	}
	defer func() {
		if err := stream.Close(); err != nil {
			s.log.Warn().Err(err).Str("camera", cam.Name()).Msg("Failed to release camera")
		}
	}()

	s.transition(StatePriming)
	s.reporter.SetStatus(status.Loading(MsgGetReady))
	s.sleep(constants.PrimeDelay)

	s.transition(StateCountdown)
	for i := constants.CountdownFrom; i > 0; i-- {
		s.reporter.SetStatus(status.Loading(fmt.Sprintf(MsgCountdown, i)))
		s.reporter.SetCountdown(i)
		s.sleep(constants.CountdownStep)
	}

	s.reporter.SetCountdown(0)
	s.transition(StateCapturing)
	s.reporter.SetStatus(status.Loading(MsgSmile))
	s.sleep(constants.SnapDelay)

	img, err := stream.Frame(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("camera", cam.Name()).Msg("Frame grab failed")
		metrics.Captures.WithLabelValues("capture_error").Inc()
		return nil, s.fail(MsgCaptureFailed, fmt.Errorf("%w: %w", ErrCapture, err))
	}

	data, err := imaging.EncodeJPEG(img, constants.JPEGQuality)
	if err != nil {
		metrics.Captures.WithLabelValues("capture_error").Inc()
		return nil, s.fail(MsgCaptureFailed, fmt.Errorf("%w: %w", ErrCapture, err))
	}

	bounds := img.Bounds()
	frame := &Frame{
		JPEG:       data,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		CapturedAt: s.now(),
	}
	s.transition(StateCaptured)
	metrics.Captures.WithLabelValues("captured").Inc()
	s.log.Debug().Int("width", frame.Width).Int("height", frame.Height).Msg("Frame captured")
	return frame, nil
}

func (s *Sequencer) fail(msg string, err error) error {
	s.transition(StateFailed)
	s.reporter.SetStatus(status.Error(msg))
	return err
}

func (s *Sequencer) transition(to State) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
	if s.onState != nil {
		s.onState(to)
	}
}
