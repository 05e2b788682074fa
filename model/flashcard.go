package model

import "time"

type Difficulty string

const (
	DifficultyMedium Difficulty = "medium" // never reviewed
	DifficultyHard   Difficulty = "hard"
	DifficultyGood   Difficulty = "good"
	DifficultyEasy   Difficulty = "easy"
)

// ReviewInterval is the delay before a card marked with d is due again.
// Only hard, good and easy are valid review marks.
func (d Difficulty) ReviewInterval() (time.Duration, bool) {
	const day = 24 * time.Hour
	switch d {
	case DifficultyHard:
		return 1 * day, true
	case DifficultyGood:
		return 3 * day, true
	case DifficultyEasy:
		return 7 * day, true
	default:
		return 0, false
	}
}

type Deck struct {
	ID        string    `firestore:"-" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	CreatedAt time.Time `firestore:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty" json:"updatedAt"`
}

type Card struct {
	ID           string     `firestore:"-" json:"id"`
	Front        string     `firestore:"front" json:"front"`
	Back         string     `firestore:"back" json:"back"`
	Tags         []string   `firestore:"tags" json:"tags"`
	Difficulty   Difficulty `firestore:"difficulty" json:"difficulty"`
	NextReview   time.Time  `firestore:"nextReview" json:"nextReview"`
	ReviewCount  int        `firestore:"reviewCount" json:"reviewCount"`
	LastReviewed *time.Time `firestore:"lastReviewed,omitempty" json:"lastReviewed,omitempty"`
	CreatedAt    time.Time  `firestore:"createdAt,omitempty" json:"createdAt"`
	UpdatedAt    time.Time  `firestore:"updatedAt,omitempty" json:"updatedAt"`
}

// Due reports whether the card should be reviewed at now.
func (c Card) Due(now time.Time) bool {
	return !c.NextReview.After(now)
}
