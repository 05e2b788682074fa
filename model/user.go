package model

import "time"

const (
	CollectionUsers            = "users"
	CollectionTasks            = "tasks"
	CollectionNotes            = "notes"
	CollectionDecks            = "flashcard_decks"
	CollectionCards            = "cards"
	CollectionPomodoroSessions = "pomodoro_sessions"
)

// UserCollections are the per-user subcollections removed with an account.
var UserCollections = []string{CollectionTasks, CollectionNotes, CollectionDecks, CollectionPomodoroSessions}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

type NotificationPrefs struct {
	Email     bool `firestore:"email" json:"email"`
	Reminders bool `firestore:"reminders" json:"reminders"`
}

type User struct {
	UserID            string            `firestore:"-" json:"userId"`
	Email             string            `firestore:"email,omitempty" json:"email"`
	DisplayName       string            `firestore:"displayName,omitempty" json:"displayName"`
	Theme             Theme             `firestore:"theme,omitempty" json:"theme"`
	Notifications     NotificationPrefs `firestore:"notifications" json:"notifications"`
	StudyGoal         int               `firestore:"studyGoal" json:"studyGoal"`
	TasksCompleted    int               `firestore:"tasksCompleted" json:"tasksCompleted"`
	FocusSessions     int               `firestore:"focusSessions" json:"focusSessions"`
	Streak            int               `firestore:"streak" json:"streak"`
	CompletedSessions int               `firestore:"completedSessions" json:"completedSessions"`
	TotalFocusTime    int               `firestore:"totalFocusTime" json:"totalFocusTime"` // minutes
	CreatedAt         time.Time         `firestore:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt         time.Time         `firestore:"updatedAt,omitempty" json:"updatedAt"`
	LastActive        time.Time         `firestore:"lastActive,omitempty" json:"lastActive"`
}
