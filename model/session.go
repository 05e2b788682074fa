package model

import "time"

// PomodoroSession records one finished focus phase.
type PomodoroSession struct {
	ID              string    `firestore:"-" json:"id"`
	DurationMinutes int       `firestore:"durationMinutes" json:"durationMinutes"`
	SessionNumber   int       `firestore:"sessionNumber" json:"sessionNumber"`
	CompletedAt     time.Time `firestore:"completedAt" json:"completedAt"`
}
