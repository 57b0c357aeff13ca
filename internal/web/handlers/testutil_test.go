package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/smart-attendance/internal/ai"
	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/capture"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/kozaktomas/smart-attendance/internal/storage"
	"github.com/rs/zerolog"
)

// equalOracle matches photos whose JPEG bytes are identical.
type equalOracle struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (o *equalOracle) Name() string { return "equal" }

func (o *equalOracle) CompareFaces(_ context.Context, reference, candidate []byte) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.err != nil {
		return false, o.err
	}
	return bytes.Equal(reference, candidate), nil
}

func (o *equalOracle) GetUsage() ai.Usage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return ai.Usage{Requests: o.calls}
}

func (o *equalOracle) ResetUsage() {}

// testEnv wires a real service to in-memory storage and an instant capture sequence.
type testEnv struct {
	service *attendance.Service
	board   *status.Board
	guard   *Guard
	oracle  *equalOracle
	backend *storage.MemoryBackend
}

func newTestEnv(t *testing.T, cam camera.Camera) *testEnv {
	t.Helper()
	backend := storage.NewMemoryBackend()
	board := status.NewBoard()
	oracle := &equalOracle{}
	log := zerolog.Nop()

	svc := attendance.NewService(attendance.Deps{
		Roster:   storage.NewRosterStore(backend, log),
		Records:  storage.NewRecordStore(backend, log),
		Capturer: capture.New(board, capture.WithSleep(func(time.Duration) {})),
		Camera:   cam,
		Resolver: attendance.NewResolver(oracle, log),
		Reporter: board,
		Logger:   log,
	})

	return &testEnv{
		service: svc,
		board:   board,
		guard:   &Guard{},
		oracle:  oracle,
		backend: backend,
	}
}

func (e *testEnv) attendanceHandler() *AttendanceHandler {
	return NewAttendanceHandler(e.service, e.board, e.guard, zerolog.Nop())
}

// testPhoto returns a solid-color JPEG as a data URL.
func testPhoto(t *testing.T, c color.Color) string {
	t.Helper()
	return imaging.ToDataURL(testJPEG(t, c))
}

func testJPEG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

var (
	red   = color.RGBA{R: 220, A: 255}
	green = color.RGBA{G: 200, A: 255}
)

// jsonRequest creates a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// rawRequest creates a request with a raw string body.
func rawRequest(method, path, body string) *http.Request {
	return httptest.NewRequest(method, path, strings.NewReader(body))
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
