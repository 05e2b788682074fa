// Package repository stores the per-user documents: the profile plus its
// tasks, notes, flashcard decks, cards and Pomodoro sessions.
package repository

import (
	"context"
	"errors"
	"time"

	"studybuddy/model"
)

var ErrNotFound = errors.New("repository: not found")

type Users interface {
	GetUser(ctx context.Context, uid string) (model.User, error)
	CreateUser(ctx context.Context, in model.User) error
	UpdateUser(ctx context.Context, uid string, patch UserPatch) error
	// AddUserStats increments counters, creating the document when it is missing.
	AddUserStats(ctx context.Context, uid string, delta StatsDelta) error
	DeleteUser(ctx context.Context, uid string) error
}

type Tasks interface {
	CreateTask(ctx context.Context, uid string, in model.Task) (model.Task, error)
	GetTask(ctx context.Context, uid, id string) (model.Task, error)
	UpdateTask(ctx context.Context, uid, id string, patch TaskPatch) error
	DeleteTask(ctx context.Context, uid, id string) error
	ListTasks(ctx context.Context, uid string, filter TaskFilter) ([]model.Task, error)
}

type Decks interface {
	CreateDeck(ctx context.Context, uid string, in model.Deck) (model.Deck, error)
	GetDeck(ctx context.Context, uid, id string) (model.Deck, error)
	UpdateDeck(ctx context.Context, uid, id string, patch DeckPatch) error
	// DeleteDeck removes every card of the deck and then the deck.
	DeleteDeck(ctx context.Context, uid, id string) error
	ListDecks(ctx context.Context, uid string) ([]model.Deck, error)

	CreateCard(ctx context.Context, uid, deckID string, in model.Card) (model.Card, error)
	GetCard(ctx context.Context, uid, deckID, id string) (model.Card, error)
	UpdateCard(ctx context.Context, uid, deckID, id string, patch CardPatch) error
	RecordReview(ctx context.Context, uid, deckID, id string, review CardReview) error
	DeleteCard(ctx context.Context, uid, deckID, id string) error
	ListCards(ctx context.Context, uid, deckID string) ([]model.Card, error)
}

type Notes interface {
	CreateNote(ctx context.Context, uid string, in model.Note) (model.Note, error)
	GetNote(ctx context.Context, uid, id string) (model.Note, error)
	UpdateNote(ctx context.Context, uid, id string, patch NotePatch) error
	DeleteNote(ctx context.Context, uid, id string) error
	ListNotes(ctx context.Context, uid string) ([]model.Note, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, uid string, in model.PomodoroSession) (model.PomodoroSession, error)
	ListSessions(ctx context.Context, uid string) ([]model.PomodoroSession, error)
}

type Repository interface {
	Users
	Tasks
	Decks
	Notes
	Sessions
	// DeleteCollection removes every document of one of the user's flat
	// subcollections (tasks, notes, pomodoro_sessions).
	DeleteCollection(ctx context.Context, uid, collection string) error
	Close() error
}

// Nil pointer fields are left unchanged.
type UserPatch struct {
	Email           *string
	DisplayName     *string
	StudyGoal       *int
	Theme           *model.Theme
	NotifyEmail     *bool
	NotifyReminders *bool
	Streak          *int
	LastActive      *time.Time
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

type StatsDelta struct {
	TasksCompleted    int
	FocusSessions     int
	CompletedSessions int
	TotalFocusTime    int
}

type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Time        *string
	Priority    *model.Priority
	Subject     *string
	Completed   *bool
	UpdatedAt   time.Time
}

type TaskFilter struct {
	// IncompleteOnly skips completed tasks and leaves ordering to the caller.
	IncompleteOnly bool
}

type DeckPatch struct {
	Name      *string
	UpdatedAt time.Time
}

type CardPatch struct {
	Front     *string
	Back      *string
	Tags      []string // nil leaves tags unchanged
	UpdatedAt time.Time
}

// CardReview increments the review count and records the mark.
type CardReview struct {
	Difficulty model.Difficulty
	ReviewedAt time.Time
	NextReview time.Time
}

type NotePatch struct {
	Title     *string
	Content   *string
	Color     *string
	Folder    *string
	UpdatedAt time.Time
}
