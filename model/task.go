package model

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

const ColorCompleted = "#6c757d"

// Color is the calendar color for the priority.
func (p Priority) Color() string {
	switch p {
	case PriorityHigh:
		return "#dc3545"
	case PriorityMedium:
		return "#ffc107"
	case PriorityLow:
		return "#28a745"
	default:
		return ColorCompleted
	}
}

type Task struct {
	ID          string    `firestore:"-" json:"id"`
	Title       string    `firestore:"title" json:"title"`
	Description string    `firestore:"description" json:"description"`
	DueDate     time.Time `firestore:"dueDate" json:"dueDate"`
	Time        string    `firestore:"time" json:"time"` // HH:MM, empty for all-day
	Priority    Priority  `firestore:"priority" json:"priority"`
	Subject     string    `firestore:"subject" json:"subject"`
	Completed   bool      `firestore:"completed" json:"completed"`
	CreatedAt   time.Time `firestore:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt,omitempty" json:"updatedAt"`
}
