package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/events"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/rs/zerolog"
)

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{constants.BackendMemory, "memory", false},
		{constants.BackendFile, "file", false},
		{constants.BackendSQLite, "sqlite", false},
		{constants.BackendPostgres, "", true}, // no DATABASE_URL
		{constants.BackendMariaDB, "", true},  // no MARIADB_DSN
		{constants.BackendRedis, "", true},    // no REDIS_ADDR
		{"cassandra", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			cfg := &config.Config{Storage: config.StorageConfig{
				Backend:    tc.backend,
				Dir:        dir,
				SQLitePath: dir + "/attendance.db",
			}}
			b, err := openBackend(context.Background(), cfg, nil, zerolog.Nop())
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for backend %q", tc.backend)
				}
				return
			}
			if err != nil {
				t.Fatalf("openBackend() error = %v", err)
			}
			defer b.Close()
			if b.Name() != tc.want {
				t.Errorf("backend name = %q, want %q", b.Name(), tc.want)
			}
		})
	}
}

func TestNewOracle(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{constants.ProviderGemini, "gemini-2.5-flash", false},
		{constants.ProviderOpenAI, "gpt-4.1-mini", false},
		{constants.ProviderOllama, "llama3.2-vision:11b", false},
		{constants.ProviderLlamaCpp, "llava", false},
		{"anthropic", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			cfg := &config.Config{Oracle: config.OracleConfig{Provider: tc.provider, MatchMode: constants.MatchModeStrict}}
			oracle, err := newOracle(cfg, zerolog.Nop())
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for provider %q", tc.provider)
				}
				return
			}
			if err != nil {
				t.Fatalf("newOracle() error = %v", err)
			}
			if oracle.Name() != tc.wantName {
				t.Errorf("oracle name = %q, want %q", oracle.Name(), tc.wantName)
			}
			if b, ok := oracle.(interface{ State() string }); !ok || b.State() != "closed" {
				t.Error("oracle must be wrapped in a closed circuit breaker")
			}
		})
	}
}

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.CameraConfig
		want string
	}{
		{"none", config.CameraConfig{}, "none"},
		{"http wins", config.CameraConfig{URL: "http://cam.local/snap.jpg", Path: "/tmp"}, "http"},
		{"file", config.CameraConfig{Path: "/tmp/frame.jpg"}, "file"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := newCamera(&tc.cfg).Name(); !strings.HasPrefix(got, tc.want) {
				t.Errorf("camera = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewLocker_DefaultsToKeyedMutex(t *testing.T) {
	if _, ok := newLocker(&config.Config{}, nil, zerolog.Nop()).(*attendance.KeyedMutex); !ok {
		t.Error("expected in-process keyed mutex without Redis")
	}
}

func TestNewPublisher_NopWithoutBroker(t *testing.T) {
	p, err := newPublisher(&config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("newPublisher() error = %v", err)
	}
	if _, ok := p.(events.Nop); !ok {
		t.Errorf("publisher = %T, want events.Nop", p)
	}
}

func TestFormatCheckOut(t *testing.T) {
	if got := formatCheckOut(nil); got != "N/A" {
		t.Errorf("formatCheckOut(nil) = %q, want N/A", got)
	}
	zero := time.Time{}
	if got := formatCheckOut(&zero); got != "Invalid Date" {
		t.Errorf("formatCheckOut(zero) = %q, want Invalid Date", got)
	}
	ts := time.Date(2024, 5, 1, 17, 30, 0, 0, time.Local)
	if got := formatCheckOut(&ts); got != "2024-05-01 17:30:00" {
		t.Errorf("formatCheckOut() = %q", got)
	}
}

func TestCLIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := newCLIReporter(&buf)

	r.SetStatus(status.Loading("Get ready for your photo..."))
	for n := constants.CountdownFrom; n >= 1; n-- {
		r.SetStatus(status.Loading("Capturing in 3..."))
		r.SetCountdown(n)
	}
	r.SetCountdown(0)
	r.SetStatus(status.Error("User not recognized."))

	out := buf.String()
	if !strings.Contains(out, "Get ready for your photo...") {
		t.Errorf("missing loading message:\n%s", out)
	}
	if !strings.Contains(out, "Error: User not recognized.") {
		t.Errorf("missing error message:\n%s", out)
	}
	if got := r.Final(); got.Type != status.TypeError {
		t.Errorf("final status = %+v", got)
	}
}
