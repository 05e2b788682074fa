package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/pomodoro"
	"studybuddy/timerstore"
)

type snapshotMap struct {
	mu     sync.Mutex
	states map[string]pomodoro.State
}

func newSnapshotMap() *snapshotMap {
	return &snapshotMap{states: make(map[string]pomodoro.State)}
}

func (m *snapshotMap) Save(_ context.Context, uid string, st pomodoro.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[uid] = st
	return nil
}

func (m *snapshotMap) Load(_ context.Context, uid string) (pomodoro.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[uid]
	if !ok {
		return pomodoro.State{}, timerstore.ErrNotFound
	}
	return st, nil
}

func (m *snapshotMap) Delete(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, uid)
	return nil
}

func (m *snapshotMap) get(uid string) (pomodoro.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[uid]
	return st, ok
}

// The ticker period is long so the tests drive time through the fake clock.
func newTimerService(t *testing.T) (*TimerService, *snapshotMap, *fakeClock, Deps) {
	t.Helper()
	deps, _, clock := newDeps(t)
	store := newSnapshotMap()
	svc := NewTimerService(deps, store, time.Hour)
	t.Cleanup(svc.Close)
	return svc, store, clock, deps
}

func TestTimerStartPauseResume(t *testing.T) {
	svc, store, clock, _ := newTimerService(t)
	ctx := context.Background()

	st, err := svc.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pomodoro.StatusIdle, st.Status)
	assert.Equal(t, 25*60, st.TimeLeft)

	_, err = svc.Start(ctx, "u1")
	require.NoError(t, err)
	clock.Add(90 * time.Second)
	st, err = svc.Pause(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pomodoro.StatusPaused, st.Status)
	assert.Equal(t, 25*60-90, st.TimeLeft)

	clock.Add(10 * time.Minute)
	st, err = svc.Start(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 25*60-90, st.TimeLeft)

	saved, ok := store.get("u1")
	require.True(t, ok)
	assert.Equal(t, pomodoro.StatusRunning, saved.Status)
}

func TestTimerCompletionUpdatesStats(t *testing.T) {
	svc, _, clock, deps := newTimerService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "u1")
	require.NoError(t, err)
	clock.Add(26 * time.Minute)

	st, err := svc.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pomodoro.ShortBreak, st.TimerType)
	assert.Equal(t, pomodoro.StatusIdle, st.Status)
	assert.Equal(t, 1, st.CompletedSessions)

	u, err := deps.Repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.FocusSessions)
	assert.Equal(t, 1, u.CompletedSessions)
	assert.Equal(t, 25, u.TotalFocusTime)

	sessions, err := deps.Repo.ListSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 25, sessions[0].DurationMinutes)
	assert.Equal(t, base.Add(25*time.Minute), sessions[0].CompletedAt)

	// A finished break is not a focus session.
	_, err = svc.Start(ctx, "u1")
	require.NoError(t, err)
	clock.Add(6 * time.Minute)
	st, err = svc.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pomodoro.Focus, st.TimerType)
	u, err = deps.Repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.FocusSessions)
}

func TestTimerSettingsAndReset(t *testing.T) {
	svc, _, _, _ := newTimerService(t)
	ctx := context.Background()

	s := pomodoro.Settings{FocusMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 30, SessionsUntilLong: 2}
	st, err := svc.UpdateSettings(ctx, "u1", s)
	require.NoError(t, err)
	assert.Equal(t, 50*60, st.TimeLeft)

	s.FocusMinutes = 0
	_, err = svc.UpdateSettings(ctx, "u1", s)
	require.ErrorIs(t, err, pomodoro.ErrInvalidSettings)

	_, err = svc.Start(ctx, "u1")
	require.NoError(t, err)
	st, err = svc.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pomodoro.StatusIdle, st.Status)
	assert.Equal(t, 50*60, st.TimeLeft)
}

func TestTimerRestoresRecentSnapshot(t *testing.T) {
	svc, store, clock, _ := newTimerService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "u1")
	require.NoError(t, err)
	svc.Close()

	clock.Add(10 * time.Minute)
	deps2, _, _ := newDeps(t)
	deps2.Now = clock.Now
	restarted := NewTimerService(deps2, store, time.Hour)
	defer restarted.Close()

	st, err := restarted.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pomodoro.StatusRunning, st.Status)
	assert.Equal(t, 15*60, st.TimeLeft)
}

func TestTimerDiscardsStaleSnapshotKeepingSettings(t *testing.T) {
	svc, store, clock, _ := newTimerService(t)
	ctx := context.Background()

	s := pomodoro.Settings{FocusMinutes: 40, ShortBreakMinutes: 5, LongBreakMinutes: 15, SessionsUntilLong: 4}
	_, err := svc.UpdateSettings(ctx, "u1", s)
	require.NoError(t, err)
	_, err = svc.Start(ctx, "u1")
	require.NoError(t, err)
	svc.Close()

	clock.Add(2 * time.Hour)
	deps2, _, _ := newDeps(t)
	deps2.Now = clock.Now
	restarted := NewTimerService(deps2, store, time.Hour)
	defer restarted.Close()

	st, err := restarted.State(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pomodoro.StatusIdle, st.Status)
	assert.Equal(t, 40*60, st.TimeLeft)
	assert.Zero(t, st.CompletedSessions)
}

func TestTimerForget(t *testing.T) {
	svc, store, _, _ := newTimerService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, svc.Forget(ctx, "u1"))
	_, ok := store.get("u1")
	assert.False(t, ok)
}

// slowSnapshots blocks loading one user's snapshot until released.
type slowSnapshots struct {
	*snapshotMap
	slowUID string
	entered chan struct{}
	release chan struct{}
}

func (s *slowSnapshots) Load(ctx context.Context, uid string) (pomodoro.State, error) {
	if uid == s.slowUID {
		close(s.entered)
		<-s.release
	}
	return s.snapshotMap.Load(ctx, uid)
}

func TestTimerSlowRestoreDoesNotBlockOthers(t *testing.T) {
	deps, _, _ := newDeps(t)
	store := &slowSnapshots{
		snapshotMap: newSnapshotMap(),
		slowUID:     "slow",
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc := NewTimerService(deps, store, time.Hour)
	defer svc.Close()
	ctx := context.Background()

	slowDone := make(chan error, 1)
	go func() {
		_, err := svc.State(ctx, "slow")
		slowDone <- err
	}()
	<-store.entered

	st, err := svc.Start(ctx, "fast")
	require.NoError(t, err)
	assert.Equal(t, pomodoro.StatusRunning, st.Status)

	close(store.release)
	require.NoError(t, <-slowDone)
}

func TestTimerTickerAdvances(t *testing.T) {
	deps, _, _ := newDeps(t)
	deps.Now = nil
	store := newSnapshotMap()
	svc := NewTimerService(deps, store, 10*time.Millisecond)
	defer svc.Close()

	start, err := svc.Start(context.Background(), "u1")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		st, ok := store.get("u1")
		return ok && st.TimeLeft < start.TimeLeft
	}, 3*time.Second, 20*time.Millisecond)
}
