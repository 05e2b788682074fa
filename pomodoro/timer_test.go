package pomodoro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTimer(t *testing.T, s Settings) *Timer {
	t.Helper()
	timer, err := New(s, t0)
	require.NoError(t, err)
	return timer
}

// runPhase starts the timer and advances exactly to the end of the current phase.
func runPhase(t *testing.T, timer *Timer, now time.Time) (Completion, time.Time) {
	t.Helper()
	require.True(t, timer.Start(now))
	end := now.Add(time.Duration(timer.State().TimeLeft) * time.Second)
	c, done := timer.Advance(end)
	require.True(t, done)
	return c, end
}

func TestSettingsValidateBounds(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	bad := []Settings{
		{FocusMinutes: 0, ShortBreakMinutes: 5, LongBreakMinutes: 15, SessionsUntilLong: 4},
		{FocusMinutes: 61, ShortBreakMinutes: 5, LongBreakMinutes: 15, SessionsUntilLong: 4},
		{FocusMinutes: 25, ShortBreakMinutes: 31, LongBreakMinutes: 15, SessionsUntilLong: 4},
		{FocusMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 0, SessionsUntilLong: 4},
		{FocusMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15, SessionsUntilLong: 11},
	}
	for _, s := range bad {
		assert.ErrorIs(t, s.Validate(), ErrInvalidSettings, "%+v", s)
	}
}

func TestResetAlwaysYieldsFullFocus(t *testing.T) {
	for focus := 1; focus <= 60; focus += 7 {
		for short := 1; short <= 30; short += 6 {
			for long := 1; long <= 60; long += 11 {
				for n := 1; n <= 10; n += 3 {
					s := Settings{FocusMinutes: focus, ShortBreakMinutes: short, LongBreakMinutes: long, SessionsUntilLong: n}
					timer := newTimer(t, s)
					_, end := runPhase(t, timer, t0)
					timer.Start(end)
					timer.Reset(end.Add(time.Second))

					st := timer.State()
					require.Equal(t, Focus, st.TimerType)
					require.Equal(t, StatusIdle, st.Status)
					require.Equal(t, focus*60, st.TimeLeft)
				}
			}
		}
	}
}

func TestLongBreakAfterSessionsUntilLong(t *testing.T) {
	s := Settings{FocusMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 20, SessionsUntilLong: 4}
	timer := newTimer(t, s)
	now := t0

	for i := 1; i <= 8; i++ {
		c, end := runPhase(t, timer, now)
		require.Equal(t, Focus, c.From)
		require.Equal(t, i, c.CompletedSessions)
		if i%4 == 0 {
			require.Equal(t, LongBreak, c.To, "session %d", i)
			require.Equal(t, 20*60, timer.State().TimeLeft)
		} else {
			require.Equal(t, ShortBreak, c.To, "session %d", i)
			require.Equal(t, 5*60, timer.State().TimeLeft)
		}

		brk, breakEnd := runPhase(t, timer, end)
		require.Equal(t, Focus, brk.To)
		now = breakEnd
	}

	st := timer.State()
	assert.Equal(t, 8, st.CompletedSessions)
	assert.Equal(t, 8*25, st.TotalFocusTime)
}

func TestPauseResumeKeepsTimeLeft(t *testing.T) {
	timer := newTimer(t, DefaultSettings())
	timer.Start(t0)
	timer.Advance(t0.Add(90 * time.Second))
	require.Equal(t, 25*60-90, timer.State().TimeLeft)

	require.True(t, timer.Pause(t0.Add(90*time.Second)))
	before := timer.State().TimeLeft

	// Time spent paused is not counted.
	_, done := timer.Advance(t0.Add(10 * time.Minute))
	require.False(t, done)
	require.True(t, timer.Start(t0.Add(10*time.Minute)))
	assert.Equal(t, before, timer.State().TimeLeft)
	assert.Equal(t, StatusRunning, timer.State().Status)
}

func TestStartAndPauseAreIdempotent(t *testing.T) {
	timer := newTimer(t, DefaultSettings())
	assert.False(t, timer.Pause(t0))
	assert.True(t, timer.Start(t0))
	assert.False(t, timer.Start(t0.Add(time.Second)))
}

func TestAdvanceCarriesSubSecondRemainder(t *testing.T) {
	timer := newTimer(t, DefaultSettings())
	timer.Start(t0)
	timer.Advance(t0.Add(1500 * time.Millisecond))
	timer.Advance(t0.Add(2500 * time.Millisecond))
	assert.Equal(t, 25*60-2, timer.State().TimeLeft)
}

func TestAdvanceCatchesUpAfterLongGap(t *testing.T) {
	timer := newTimer(t, DefaultSettings())
	timer.Start(t0)

	c, done := timer.Advance(t0.Add(40 * time.Minute))
	require.True(t, done)
	assert.Equal(t, t0.Add(25*time.Minute), c.At)
	assert.Equal(t, ShortBreak, timer.State().TimerType)
	assert.Equal(t, StatusIdle, timer.State().Status)
	assert.Equal(t, 1, timer.State().CompletedSessions)
}

func TestUpdateSettingsOnlyRewritesIdleFocus(t *testing.T) {
	timer := newTimer(t, DefaultSettings())
	s := DefaultSettings()
	s.FocusMinutes = 50

	require.NoError(t, timer.UpdateSettings(s, t0))
	assert.Equal(t, 50*60, timer.State().TimeLeft)

	timer.Start(t0)
	timer.Advance(t0.Add(time.Minute))
	s.FocusMinutes = 10
	require.NoError(t, timer.UpdateSettings(s, t0.Add(time.Minute)))
	assert.Equal(t, 49*60, timer.State().TimeLeft)
	assert.Equal(t, 10, timer.State().Settings.FocusMinutes)

	s.SessionsUntilLong = 0
	assert.ErrorIs(t, timer.UpdateSettings(s, t0), ErrInvalidSettings)
}

func TestRestoreRejectsStaleState(t *testing.T) {
	timer := newTimer(t, DefaultSettings())
	timer.Start(t0)
	saved := timer.State()

	_, err := Restore(saved, t0.Add(time.Hour+time.Second))
	assert.ErrorIs(t, err, ErrStateExpired)

	restored, err := Restore(saved, t0.Add(59*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, restored.State().Status)
}

func TestRestoreRejectsCorruptState(t *testing.T) {
	saved := State{Settings: DefaultSettings(), TimerType: "nap", Status: StatusIdle, TimeLeft: 10, TotalTime: 10, UpdatedAt: t0}
	_, err := Restore(saved, t0)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFourthFocusGoesLong(t *testing.T) {
	s := Settings{FocusMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15, SessionsUntilLong: 4}
	timer := newTimer(t, s)
	now := t0
	var last Completion
	for i := 0; i < 4; i++ {
		var end time.Time
		last, end = runPhase(t, timer, now)
		if i < 3 {
			_, now = runPhase(t, timer, end)
		}
	}
	assert.Equal(t, LongBreak, last.To)
	assert.Equal(t, 15*60, timer.State().TimeLeft)
}

func TestStateClockAndProgress(t *testing.T) {
	st := State{TimeLeft: 754, TotalTime: 1508}
	assert.Equal(t, "12:34", st.Clock())
	assert.InDelta(t, 0.5, st.Progress(), 1e-9)
	assert.Zero(t, State{}.Progress())
}
