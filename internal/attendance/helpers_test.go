package attendance

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/ai"
	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/kozaktomas/smart-attendance/internal/status"
)

var (
	red    = color.RGBA{R: 220, G: 20, B: 20, A: 255}
	green  = color.RGBA{R: 20, G: 200, B: 40, A: 255}
	blue   = color.RGBA{R: 20, G: 40, B: 220, A: 255}
	yellow = color.RGBA{R: 230, G: 230, B: 20, A: 255}
)

// face returns a solid image standing in for a photo of one person.
func face(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := range 48 {
		for x := range 64 {
			img.Set(x, y, c)
		}
	}
	return img
}

func faceJPEG(c color.Color) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, face(c), &jpeg.Options{Quality: 95}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func photoOf(c color.Color) string {
	return imaging.ToDataURL(faceJPEG(c))
}

// colorOracle treats two photos as the same person when their centre pixels are close.
type colorOracle struct {
	mu     sync.Mutex
	calls  int
	failOn int // 1-based call that fails; 0 never
	err    error
}

func (o *colorOracle) Name() string { return "color" }

func (o *colorOracle) CompareFaces(_ context.Context, reference, candidate []byte) (bool, error) {
	o.mu.Lock()
	o.calls++
	call := o.calls
	o.mu.Unlock()

	if o.failOn != 0 && call == o.failOn {
		if o.err != nil {
			return false, o.err
		}
		return false, ai.ErrAPI
	}
	a, err := imaging.Decode(reference)
	if err != nil {
		return false, err
	}
	b, err := imaging.Decode(candidate)
	if err != nil {
		return false, err
	}
	return closeColors(center(a), center(b)), nil
}

func (o *colorOracle) GetUsage() ai.Usage { return ai.Usage{} }
func (o *colorOracle) ResetUsage()        {}

func (o *colorOracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func center(img image.Image) color.Color {
	b := img.Bounds()
	return img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)
}

func closeColors(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	diff := func(x, y uint32) uint32 {
		if x > y {
			return x - y
		}
		return y - x
	}
	const tolerance = 0x2000
	return diff(ar, br) < tolerance && diff(ag, bg) < tolerance && diff(ab, bb) < tolerance
}

type memRoster struct {
	mu      sync.Mutex
	users   []User
	loadErr error
	saveErr error
	saves   int
	appends int
}

func (m *memRoster) Load(context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]User(nil), m.users...), nil
}

func (m *memRoster) Save(_ context.Context, users []User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.users = append([]User(nil), users...)
	return nil
}

func (m *memRoster) Append(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.appends++
	m.users = append(m.users, u)
	return nil
}

type memRecords struct {
	mu      sync.Mutex
	records []Record
	loadErr error
	saves   int
}

func (m *memRecords) Load(context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]Record(nil), m.records...), nil
}

func (m *memRecords) Save(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.records = append([]Record(nil), records...)
	return nil
}

// boardRecorder keeps every status update.
type boardRecorder struct {
	mu       sync.Mutex
	statuses []status.Status
}

func (b *boardRecorder) SetStatus(s status.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, s)
}

func (b *boardRecorder) SetCountdown(int) {}

func (b *boardRecorder) Last() status.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.statuses) == 0 {
		return status.Status{}
	}
	return b.statuses[len(b.statuses)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

// stepClock returns a clock that advances one minute per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(time.Minute)
		return now
	}
}

// deniedCamera refuses to open.
type deniedCamera struct{}

func (deniedCamera) Name() string { return "denied" }

func (deniedCamera) Open(context.Context) (camera.Stream, error) {
	return nil, errors.Join(camera.ErrPermissionDenied, errors.New("user said no"))
}
