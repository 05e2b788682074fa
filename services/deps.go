// Package services holds the study features on top of the repository: the
// dashboard, planner, flashcards, notes, profile and the Pomodoro timer.
package services

import (
	"log/slog"
	"time"

	"studybuddy/repository"
)

// Deps is what every service needs.
type Deps struct {
	Repo     repository.Repository
	Location *time.Location
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return now().In(d.location())
}

func (d Deps) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
