// Package cmd is the studybuddy command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"studybuddy/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "studybuddy",
	Short: "Study planner backend with flashcards, notes and a Pomodoro timer",
	Long: `StudyBuddy serves the dashboard, planner, flashcards, notes, profile and
Pomodoro timer APIs, and ships a terminal Pomodoro client.`,
	SilenceUsage: true,
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
}
