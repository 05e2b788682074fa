package model

import "time"

const (
	DefaultNoteTitle  = "Untitled Note"
	DefaultNoteFolder = "study notes"
	DefaultNoteColor  = "#ffffff"
)

type Note struct {
	ID        string    `firestore:"-" json:"id"`
	Title     string    `firestore:"title" json:"title"`
	Content   string    `firestore:"content" json:"content"` // HTML
	Color     string    `firestore:"color" json:"color"`
	Folder    string    `firestore:"folder" json:"folder"`
	CreatedAt time.Time `firestore:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty" json:"updatedAt"`
}
