// Package tui is the terminal Pomodoro client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studybuddy/pomodoro"
	"studybuddy/timerstore"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	clockStyle  = lipgloss.NewStyle().Bold(true).Padding(1, 0)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

var phaseLabels = map[pomodoro.TimerType]string{
	pomodoro.Focus:      "Focus",
	pomodoro.ShortBreak: "Short Break",
	pomodoro.LongBreak:  "Long Break",
}

// Store is the snapshot persistence the client shares with the server.
type Store interface {
	Save(ctx context.Context, uid string, st pomodoro.State) error
	Load(ctx context.Context, uid string) (pomodoro.State, error)
}

// tickMsg carries the ticker generation so ticks from a stopped ticker are dropped.
type tickMsg struct {
	gen int
}

type Model struct {
	timer   *pomodoro.Timer
	store   Store
	profile string
	now     func() time.Time
	tick    time.Duration

	bar     progress.Model
	gen     int
	status  string
	isError bool

	Quitting bool
}

// NewModel resumes the saved timer for profile when it is recent enough,
// otherwise starts idle with settings.
func NewModel(store Store, profile string, settings pomodoro.Settings, now func() time.Time) (Model, error) {
	if now == nil {
		now = time.Now
	}
	m := Model{
		store:   store,
		profile: profile,
		now:     now,
		tick:    time.Second,
		bar:     progress.New(progress.WithDefaultGradient()),
	}

	saved, err := store.Load(context.Background(), profile)
	switch {
	case err == nil:
		timer, rerr := pomodoro.Restore(saved, now())
		if rerr == nil {
			m.timer = timer
			m.status = "timer restored"
			if c, done := m.timer.Advance(now()); done {
				m.status = completionText(c)
			}
			return m, nil
		}
		if saved.Settings.Validate() == nil {
			settings = saved.Settings
		}
	case !errors.Is(err, timerstore.ErrNotFound):
		return m, fmt.Errorf("load timer: %w", err)
	}

	m.timer, err = pomodoro.New(settings, now())
	if err != nil {
		return m, err
	}
	return m, nil
}

func (m Model) State() pomodoro.State {
	return m.timer.State()
}

func (m Model) Init() tea.Cmd {
	if m.timer.Running() {
		return m.tickCmd()
	}
	return nil
}

func (m Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.tick, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		return m.onTick(msg)
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(msg.Width-8, 60))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	switch msg.String() {
	case " ":
		if m.timer.Running() {
			if c, done := m.timer.Advance(now); done {
				m.status = completionText(c)
				m.persist()
				return m, nil
			}
			m.timer.Pause(now)
			m.gen++
			m.status = "paused"
			m.persist()
			return m, nil
		}
		m.timer.Start(now)
		m.gen++
		m.status = "running"
		m.persist()
		return m, m.tickCmd()
	case "r":
		m.timer.Reset(now)
		m.gen++
		m.status = "reset"
		m.persist()
		return m, nil
	case "q", "ctrl+c":
		m.timer.Advance(now)
		m.persist()
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) onTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || !m.timer.Running() {
		return m, nil
	}
	c, done := m.timer.Advance(m.now())
	m.persist()
	if done {
		m.status = completionText(c)
		return m, nil
	}
	return m, m.tickCmd()
}

func (m *Model) persist() {
	if err := m.store.Save(context.Background(), m.profile, m.timer.State()); err != nil {
		m.status = "save failed: " + err.Error()
		m.isError = true
		return
	}
	m.isError = false
}

func completionText(c pomodoro.Completion) string {
	if c.From == pomodoro.Focus {
		return fmt.Sprintf("focus session %d complete, time for a %s", c.CompletedSessions, strings.ToLower(phaseLabels[c.To]))
	}
	return "break over, ready to focus"
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	st := m.timer.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render("StudyBuddy " + phaseLabels[st.TimerType]))
	b.WriteString("\n")
	b.WriteString(clockStyle.Render(st.Clock()))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(st.Progress()))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "sessions: %d   focus time: %d min\n", st.CompletedSessions, st.TotalFocusTime)
	if m.status != "" {
		style := statusStyle
		if m.isError {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("space start/pause • r reset • q quit"))
	return panelStyle.Render(b.String())
}
