package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"studybuddy/pomodoro"
	"studybuddy/timerstore"
	"studybuddy/tui"
)

var (
	timerProfile  string
	timerSettings = pomodoro.DefaultSettings()
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Run the Pomodoro timer in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := timerSettings.Validate(); err != nil {
			return err
		}
		store, err := timerstore.Open(cfg.Timer.DBPath)
		if err != nil {
			return fmt.Errorf("open timer store: %w", err)
		}
		defer store.Close()

		model, err := tui.NewModel(store, timerProfile, timerSettings, nil)
		if err != nil {
			return err
		}
		_, err = tea.NewProgram(model).Run()
		return err
	},
}

func init() {
	f := timerCmd.Flags()
	f.StringVar(&timerProfile, "profile", "local", "snapshot key; use a user id to share the server's timer")
	f.IntVar(&timerSettings.FocusMinutes, "focus", timerSettings.FocusMinutes, "focus minutes (1-60)")
	f.IntVar(&timerSettings.ShortBreakMinutes, "short-break", timerSettings.ShortBreakMinutes, "short break minutes (1-30)")
	f.IntVar(&timerSettings.LongBreakMinutes, "long-break", timerSettings.LongBreakMinutes, "long break minutes (1-60)")
	f.IntVar(&timerSettings.SessionsUntilLong, "sessions", timerSettings.SessionsUntilLong, "focus sessions before a long break (1-10)")
	rootCmd.AddCommand(timerCmd)
}
