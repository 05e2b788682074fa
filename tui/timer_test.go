package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/pomodoro"
	"studybuddy/timerstore"
)

type memStore map[string]pomodoro.State

func (s memStore) Save(_ context.Context, uid string, st pomodoro.State) error {
	s[uid] = st
	return nil
}

func (s memStore) Load(_ context.Context, uid string) (pomodoro.State, error) {
	st, ok := s[uid]
	if !ok {
		return pomodoro.State{}, timerstore.ErrNotFound
	}
	return st, nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, store memStore, c *clock) Model {
	t.Helper()
	m, err := NewModel(store, "local", pomodoro.DefaultSettings(), c.Now)
	require.NoError(t, err)
	return m
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestSpaceTogglesAndPersists(t *testing.T) {
	store := memStore{}
	c := &clock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	m := newModel(t, store, c)
	assert.Nil(t, m.Init())

	m, cmd := send(m, key(" "))
	require.NotNil(t, cmd)
	assert.Equal(t, pomodoro.StatusRunning, store["local"].Status)

	c.now = c.now.Add(3 * time.Second)
	m, cmd = send(m, tickMsg{gen: m.gen})
	require.NotNil(t, cmd)
	assert.Equal(t, 25*60-3, m.State().TimeLeft)

	m, _ = send(m, key(" "))
	assert.Equal(t, pomodoro.StatusPaused, store["local"].Status)

	// A tick scheduled before the pause is ignored.
	c.now = c.now.Add(5 * time.Second)
	m, cmd = send(m, tickMsg{gen: m.gen - 1})
	assert.Nil(t, cmd)
	assert.Equal(t, 25*60-3, m.State().TimeLeft)
}

func TestTickCompletesPhase(t *testing.T) {
	store := memStore{}
	c := &clock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	m := newModel(t, store, c)

	m, _ = send(m, key(" "))
	c.now = c.now.Add(25 * time.Minute)
	m, cmd := send(m, tickMsg{gen: m.gen})
	assert.Nil(t, cmd)
	assert.Equal(t, pomodoro.ShortBreak, m.State().TimerType)
	assert.Equal(t, 1, store["local"].CompletedSessions)
	assert.Contains(t, m.View(), "Short Break")
	assert.Contains(t, m.View(), "focus session 1 complete")
}

func TestResetAndQuit(t *testing.T) {
	store := memStore{}
	c := &clock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	m := newModel(t, store, c)

	m, _ = send(m, key(" "))
	c.now = c.now.Add(time.Minute)
	m, _ = send(m, key("r"))
	assert.Equal(t, pomodoro.StatusIdle, m.State().Status)
	assert.Equal(t, 25*60, m.State().TimeLeft)

	m, cmd := send(m, key("q"))
	assert.True(t, m.Quitting)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestResumeFromSnapshot(t *testing.T) {
	store := memStore{}
	c := &clock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	m := newModel(t, store, c)
	_, _ = send(m, key(" "))

	c.now = c.now.Add(2 * time.Minute)
	resumed := newModel(t, store, c)
	assert.NotNil(t, resumed.Init())
	assert.Equal(t, 23*60, resumed.State().TimeLeft)

	c.now = c.now.Add(2 * time.Hour)
	fresh := newModel(t, store, c)
	assert.Equal(t, pomodoro.StatusIdle, fresh.State().Status)
	assert.True(t, strings.Contains(fresh.View(), "25:00"))
}
