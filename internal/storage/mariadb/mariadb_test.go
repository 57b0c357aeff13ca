//go:build integration

package mariadb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/storage"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Backend, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mariadb:11",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MARIADB_ROOT_PASSWORD": "test",
			"MARIADB_DATABASE":      "testdb",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("root:test@tcp(%s:%s)/testdb?parseTime=true", host, port.Port())

	// The port opens before the server accepts logins.
	var backend *Backend
	for range 30 {
		backend, err = Open(dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to open backend: %v", err)
	}

	return backend, func() {
		backend.Close()
		container.Terminate(ctx)
	}
}

func TestIntegration_RosterRoundTrip(t *testing.T) {
	b, cleanup := setupTestContainer(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := b.Get(ctx, "missing"); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	roster := storage.NewRosterStore(b, zerolog.Nop())
	for _, u := range []attendance.User{{ID: "A1", Name: "Alice"}, {ID: "B2", Name: "Bob"}} {
		if err := roster.Append(ctx, u); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	users, err := roster.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(users) != 2 || users[0].ID != "A1" || users[1].ID != "B2" {
		t.Errorf("unexpected roster: %+v", users)
	}
}
