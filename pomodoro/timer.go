// Package pomodoro implements the focus/break countdown used by the timer
// endpoints and the terminal client.
package pomodoro

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidSettings = errors.New("pomodoro: invalid settings")
	ErrInvalidState    = errors.New("pomodoro: invalid state")
	ErrStateExpired    = errors.New("pomodoro: saved state expired")
)

// MaxStateAge is how long a saved state stays restorable.
const MaxStateAge = time.Hour

type TimerType string

const (
	Focus      TimerType = "focus"
	ShortBreak TimerType = "shortBreak"
	LongBreak  TimerType = "longBreak"
)

func (t TimerType) IsValid() bool {
	switch t {
	case Focus, ShortBreak, LongBreak:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusIdle, StatusRunning, StatusPaused:
		return true
	default:
		return false
	}
}

// Settings are expressed in minutes, except SessionsUntilLong.
type Settings struct {
	FocusMinutes      int `json:"focusDuration" yaml:"focus_duration"`
	ShortBreakMinutes int `json:"shortBreak" yaml:"short_break"`
	LongBreakMinutes  int `json:"longBreak" yaml:"long_break"`
	SessionsUntilLong int `json:"sessionsUntilLong" yaml:"sessions_until_long"`
}

func DefaultSettings() Settings {
	return Settings{
		FocusMinutes:      25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		SessionsUntilLong: 4,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.FocusMinutes < 1 || s.FocusMinutes > 60:
		return fmt.Errorf("%w: focus duration must be 1-60 minutes", ErrInvalidSettings)
	case s.ShortBreakMinutes < 1 || s.ShortBreakMinutes > 30:
		return fmt.Errorf("%w: short break must be 1-30 minutes", ErrInvalidSettings)
	case s.LongBreakMinutes < 1 || s.LongBreakMinutes > 60:
		return fmt.Errorf("%w: long break must be 1-60 minutes", ErrInvalidSettings)
	case s.SessionsUntilLong < 1 || s.SessionsUntilLong > 10:
		return fmt.Errorf("%w: sessions until long break must be 1-10", ErrInvalidSettings)
	}
	return nil
}

// Seconds returns the full length of a phase.
func (s Settings) Seconds(t TimerType) int {
	switch t {
	case ShortBreak:
		return s.ShortBreakMinutes * 60
	case LongBreak:
		return s.LongBreakMinutes * 60
	default:
		return s.FocusMinutes * 60
	}
}

// State is the full observable timer state. It doubles as the persisted form.
type State struct {
	Settings          Settings  `json:"settings"`
	TimerType         TimerType `json:"timerType"`
	Status            Status    `json:"status"`
	TimeLeft          int       `json:"timeLeft"`
	TotalTime         int       `json:"totalTime"`
	CompletedSessions int       `json:"completedSessions"`
	TotalFocusTime    int       `json:"totalFocusTime"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Clock renders the time left as MM:SS.
func (s State) Clock() string {
	return fmt.Sprintf("%02d:%02d", s.TimeLeft/60, s.TimeLeft%60)
}

// Progress is the remaining fraction of the current phase.
func (s State) Progress() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return float64(s.TimeLeft) / float64(s.TotalTime)
}

func (s State) validate() error {
	if err := s.Settings.Validate(); err != nil {
		return err
	}
	if !s.TimerType.IsValid() || !s.Status.IsValid() {
		return ErrInvalidState
	}
	if s.TimeLeft < 0 || s.TotalTime <= 0 || s.TimeLeft > s.TotalTime {
		return ErrInvalidState
	}
	return nil
}

// Completion describes a phase that ran down to zero.
type Completion struct {
	From              TimerType
	To                TimerType
	FocusMinutes      int
	CompletedSessions int
	At                time.Time
}

// Timer is not safe for concurrent use.
type Timer struct {
	state State
}

func New(settings Settings, now time.Time) (*Timer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	t := &Timer{state: State{Settings: settings}}
	t.Reset(now)
	return t, nil
}

// Restore rebuilds a timer from a saved state. States whose last update is an
// hour or more before now are rejected with ErrStateExpired. The restored timer
// is not advanced; call Advance to account for the time that passed.
func Restore(saved State, now time.Time) (*Timer, error) {
	if err := saved.validate(); err != nil {
		return nil, err
	}
	if now.Sub(saved.UpdatedAt) >= MaxStateAge {
		return nil, ErrStateExpired
	}
	return &Timer{state: saved}, nil
}

func (t *Timer) State() State {
	return t.state
}

func (t *Timer) Running() bool {
	return t.state.Status == StatusRunning
}

// Start runs the countdown from idle or paused. It reports whether anything changed.
func (t *Timer) Start(now time.Time) bool {
	if t.state.Status == StatusRunning {
		return false
	}
	if t.state.TimeLeft <= 0 {
		t.setPhase(t.state.TimerType)
	}
	t.state.Status = StatusRunning
	t.state.UpdatedAt = now
	return true
}

// Pause stops the countdown and keeps the time left. Callers advance the timer
// first so the elapsed seconds are accounted for.
func (t *Timer) Pause(now time.Time) bool {
	if t.state.Status != StatusRunning {
		return false
	}
	t.state.Status = StatusPaused
	t.state.UpdatedAt = now
	return true
}

// Reset returns to an idle focus phase with the full focus duration.
func (t *Timer) Reset(now time.Time) {
	t.state.Status = StatusIdle
	t.setPhase(Focus)
	t.state.UpdatedAt = now
}

// UpdateSettings stores new durations. The current countdown is only rewritten
// when the timer is idle in a focus phase; otherwise the new values apply from
// the next transition.
func (t *Timer) UpdateSettings(settings Settings, now time.Time) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	t.state.Settings = settings
	if t.state.Status == StatusIdle && t.state.TimerType == Focus {
		t.setPhase(Focus)
	}
	t.state.UpdatedAt = now
	return nil
}

// Advance consumes the whole seconds elapsed since the last update of a running
// timer. It serves both as the per-second tick and as the catch-up after the
// process lost track of time. When the countdown reaches zero the phase
// completes and the next phase is left idle.
func (t *Timer) Advance(now time.Time) (Completion, bool) {
	if t.state.Status != StatusRunning {
		return Completion{}, false
	}
	elapsed := int(now.Sub(t.state.UpdatedAt) / time.Second)
	if elapsed <= 0 {
		return Completion{}, false
	}
	if elapsed < t.state.TimeLeft {
		t.state.TimeLeft -= elapsed
		t.state.UpdatedAt = t.state.UpdatedAt.Add(time.Duration(elapsed) * time.Second)
		return Completion{}, false
	}
	at := t.state.UpdatedAt.Add(time.Duration(t.state.TimeLeft) * time.Second)
	c := t.complete(at)
	t.state.UpdatedAt = now
	return c, true
}

func (t *Timer) complete(at time.Time) Completion {
	c := Completion{From: t.state.TimerType, At: at}
	if t.state.TimerType == Focus {
		t.state.CompletedSessions++
		t.state.TotalFocusTime += t.state.Settings.FocusMinutes
		c.FocusMinutes = t.state.Settings.FocusMinutes
		if t.state.CompletedSessions%t.state.Settings.SessionsUntilLong == 0 {
			t.setPhase(LongBreak)
		} else {
			t.setPhase(ShortBreak)
		}
	} else {
		t.setPhase(Focus)
	}
	t.state.Status = StatusIdle
	c.To = t.state.TimerType
	c.CompletedSessions = t.state.CompletedSessions
	return c
}

func (t *Timer) setPhase(tt TimerType) {
	t.state.TimerType = tt
	t.state.TimeLeft = t.state.Settings.Seconds(tt)
	t.state.TotalTime = t.state.TimeLeft
}
