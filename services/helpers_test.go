package services

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"studybuddy/repository"
)

var base = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

// fakeClock is a settable Now.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newDeps(t *testing.T) (Deps, *repository.MemoryRepository, *fakeClock) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	clock := &fakeClock{now: base}
	return Deps{
		Repo:     repo,
		Location: time.UTC,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      clock.Now,
	}, repo, clock
}

func ptr[T any](v T) *T { return &v }
