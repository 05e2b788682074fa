package timerstore

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studybuddy/pomodoro"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "timer-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveLoadOverwrite(t *testing.T) {
	store := setupStore(t)
	ctx := t.Context()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	timer, err := pomodoro.New(pomodoro.DefaultSettings(), now)
	require.NoError(t, err)
	timer.Start(now)
	require.NoError(t, store.Save(ctx, "u1", timer.State()))

	timer.Advance(now.Add(30 * time.Second))
	require.NoError(t, store.Save(ctx, "u1", timer.State()))

	got, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, timer.State().TimeLeft, got.TimeLeft)
	require.Equal(t, pomodoro.StatusRunning, got.Status)
	require.Equal(t, pomodoro.Focus, got.TimerType)
	require.True(t, timer.State().UpdatedAt.Equal(got.UpdatedAt))
	require.Equal(t, pomodoro.DefaultSettings(), got.Settings)
}

func TestLoadMissingAndDelete(t *testing.T) {
	store := setupStore(t)
	ctx := t.Context()

	_, err := store.Load(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)

	timer, err := pomodoro.New(pomodoro.DefaultSettings(), time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "u2", timer.State()))
	require.NoError(t, store.Delete(ctx, "u2"))

	_, err = store.Load(ctx, "u2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMigrateRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, MigrateUp(db))
	require.NoError(t, MigrateDown(db))
	require.NoError(t, MigrateUp(db))
	require.NoError(t, MigrateUp(db))

	store, err := New(db)
	require.NoError(t, err)
	timer, err := pomodoro.New(pomodoro.DefaultSettings(), time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Save(t.Context(), "u3", timer.State()))
}
