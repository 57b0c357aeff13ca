package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_GetPut(t *testing.T) {
	b, err := Open(filepath.Join(t.TempDir(), "db", "attendance.db"))
	require.NoError(t, err)
	defer b.Close()
	ctx := context.Background()

	_, err = b.Get(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, b.Put(ctx, "k", []byte(`[1]`)))
	require.NoError(t, b.Put(ctx, "k", []byte(`[1,2]`)))

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))
}

func TestBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.db")
	ctx := context.Background()

	b, err := Open(path)
	require.NoError(t, err)
	roster := storage.NewRosterStore(b, zerolog.Nop())
	require.NoError(t, roster.Append(ctx, attendance.User{ID: "A1", Name: "Alice"}))
	require.NoError(t, b.Close())

	b, err = Open(path)
	require.NoError(t, err)
	defer b.Close()
	users, err := storage.NewRosterStore(b, zerolog.Nop()).Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)
}

func TestOpen_InMemory(t *testing.T) {
	b, err := Open(":memory:")
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, "sqlite", b.Name())
	require.NoError(t, b.Put(context.Background(), "k", []byte("v")))
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
