package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type update struct {
	status    *status.Status
	countdown *int
}

type recorder struct {
	updates []update
}

func (r *recorder) SetStatus(s status.Status) { r.updates = append(r.updates, update{status: &s}) }
func (r *recorder) SetCountdown(n int)        { r.updates = append(r.updates, update{countdown: &n}) }

func (r *recorder) messages() []string {
	var out []string
	for _, u := range r.updates {
		if u.status != nil {
			out = append(out, u.status.Message)
		}
	}
	return out
}

func (r *recorder) countdowns() []int {
	var out []int
	for _, u := range r.updates {
		if u.countdown != nil {
			out = append(out, *u.countdown)
		}
	}
	return out
}

func (r *recorder) last() status.Status {
	for i := len(r.updates) - 1; i >= 0; i-- {
		if r.updates[i].status != nil {
			return *r.updates[i].status
		}
	}
	return status.Status{}
}

type fakeCamera struct {
	openErr  error
	frame    image.Image
	frameErr error
	opened   int
	closed   int
}

func (c *fakeCamera) Name() string { return "fake" }

func (c *fakeCamera) Open(context.Context) (camera.Stream, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	c.opened++
	return &fakeStream{cam: c}, nil
}

type fakeStream struct {
	cam *fakeCamera
}

func (s *fakeStream) Frame(context.Context) (image.Image, error) {
	if s.cam.frameErr != nil {
		return nil, s.cam.frameErr
	}
	return s.cam.frame, nil
}

func (s *fakeStream) Close() error {
	s.cam.closed++
	return nil
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 100, B: 150, A: 255})
		}
	}
	return img
}

func newTestSequencer(r status.Reporter, sleeps *[]time.Duration, states *[]State) *Sequencer {
	return New(r,
		WithSleep(func(d time.Duration) { *sleeps = append(*sleeps, d) }),
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }),
		WithStateHook(func(s State) { *states = append(*states, s) }),
	)
}

func TestCapture_Success(t *testing.T) {
	rec := &recorder{}
	var sleeps []time.Duration
	var states []State
	cam := &fakeCamera{frame: testImage(640, 480)}
	seq := newTestSequencer(rec, &sleeps, &states)

	frame, err := seq.Capture(context.Background(), cam)
	require.NoError(t, err)

	assert.Equal(t, []string{
		MsgInitializing,
		MsgGetReady,
		"Capturing in 3...",
		"Capturing in 2...",
		"Capturing in 1...",
		MsgSmile,
	}, rec.messages())
	assert.Equal(t, []int{3, 2, 1, 0}, rec.countdowns())
	assert.Equal(t, []time.Duration{
		constants.PrimeDelay,
		constants.CountdownStep,
		constants.CountdownStep,
		constants.CountdownStep,
		constants.SnapDelay,
	}, sleeps)
	assert.Equal(t, []State{
		StateAcquiringCamera, StatePriming, StateCountdown, StateCapturing, StateCaptured,
	}, states)
	assert.Equal(t, StateCaptured, seq.State())

	assert.Equal(t, 640, frame.Width)
	assert.Equal(t, 480, frame.Height)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), frame.CapturedAt)
	assert.Equal(t, 1, cam.opened)
	assert.Equal(t, 1, cam.closed, "camera must be released after capture")

	decoded, err := imaging.Decode(frame.JPEG)
	require.NoError(t, err)
	assert.Equal(t, 640, decoded.Bounds().Dx())
	assert.Contains(t, frame.DataURL(), "data:image/jpeg;base64,")
}

func TestCapture_CountdownSetAfterStatus(t *testing.T) {
	rec := &recorder{}
	seq := New(rec, WithSleep(func(time.Duration) {}))

	_, err := seq.Capture(context.Background(), &fakeCamera{frame: testImage(8, 8)})
	require.NoError(t, err)

	// Each countdown value follows its "Capturing in N..." message.
	for i, u := range rec.updates {
		if u.countdown == nil || *u.countdown == 0 {
			continue
		}
		require.Positive(t, i)
		prev := rec.updates[i-1].status
		require.NotNil(t, prev)
		assert.Contains(t, prev.Message, "Capturing in")
	}
}

func TestCapture_CameraAccessDenied(t *testing.T) {
	rec := &recorder{}
	var sleeps []time.Duration
	var states []State
	cam := &fakeCamera{openErr: camera.ErrPermissionDenied}
	seq := newTestSequencer(rec, &sleeps, &states)

	frame, err := seq.Capture(context.Background(), cam)
	require.Error(t, err)
	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, ErrCameraAccess))
	assert.True(t, errors.Is(err, camera.ErrPermissionDenied))

	assert.Equal(t, status.Error(MsgCameraAccess), rec.last())
	assert.Empty(t, rec.countdowns())
	assert.Empty(t, sleeps, "no delays run when the camera never opened")
	assert.Equal(t, []State{StateAcquiringCamera, StateFailed}, states)
	assert.Equal(t, 0, cam.closed)
}

func TestCapture_NoFrame(t *testing.T) {
	tests := []struct {
		name string
		cam  *fakeCamera
	}{
		{name: "frame error", cam: &fakeCamera{frameErr: camera.ErrNoFrame}},
		{name: "zero size frame", cam: &fakeCamera{frame: image.NewRGBA(image.Rect(0, 0, 0, 0))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			seq := New(rec, WithSleep(func(time.Duration) {}))

			frame, err := seq.Capture(context.Background(), tt.cam)
			require.Error(t, err)
			assert.Nil(t, frame)
			assert.True(t, errors.Is(err, ErrCapture))
			assert.Equal(t, status.Error(MsgCaptureFailed), rec.last())
			assert.Equal(t, StateFailed, seq.State())
			assert.Equal(t, 1, tt.cam.closed, "camera must be released on failure")
		})
	}
}

func TestCapture_Reusable(t *testing.T) {
	rec := &recorder{}
	cam := &fakeCamera{frame: testImage(16, 16)}
	seq := New(rec, WithSleep(func(time.Duration) {}))

	for range 2 {
		_, err := seq.Capture(context.Background(), cam)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cam.opened)
	assert.Equal(t, 2, cam.closed)
}

func TestCapture_StillCamera(t *testing.T) {
	cam := camera.NewStillImage(testImage(32, 24))
	seq := New(status.Discard, WithSleep(func(time.Duration) {}))

	frame, err := seq.Capture(context.Background(), cam)
	require.NoError(t, err)
	assert.Equal(t, 32, frame.Width)
	assert.Equal(t, 24, frame.Height)
}

func TestNew_Defaults(t *testing.T) {
	seq := New(nil)
	assert.Equal(t, StateIdle, seq.State())
	assert.NotNil(t, seq.reporter)
}
