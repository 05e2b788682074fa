// Package review runs an in-memory pass over a shuffled copy of a deck.
package review

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"studybuddy/model"
)

var (
	ErrNoCards     = errors.New("review: no cards to review")
	ErrNotFlipped  = errors.New("review: flip the card before marking it")
	ErrFinished    = errors.New("review: session is finished")
	ErrInvalidMark = errors.New("review: mark must be hard, good or easy")
	ErrNoSession   = errors.New("review: no active session")
)

// Shuffler permutes n elements through swap, like rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

type Progress struct {
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Done    bool    `json:"done"`
}

type Session struct {
	DeckID    string
	StartedAt time.Time

	cards   []model.Card
	index   int
	flipped bool
}

func New(deckID string, cards []model.Card, shuffle Shuffler, now time.Time) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrNoCards
	}
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	deck := slices.Clone(cards)
	shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return &Session{DeckID: deckID, StartedAt: now, cards: deck}, nil
}

func (s *Session) Done() bool {
	return s.index >= len(s.cards)
}

func (s *Session) Flipped() bool {
	return s.flipped
}

// Current returns the card on screen, or false when the pass is over.
func (s *Session) Current() (model.Card, bool) {
	if s.Done() {
		return model.Card{}, false
	}
	return s.cards[s.index], true
}

// Flip turns the current card over and back.
func (s *Session) Flip() error {
	if s.Done() {
		return ErrFinished
	}
	s.flipped = !s.flipped
	return nil
}

// Mark grades the current card and moves to the next one, front side up.
// It returns the graded card.
func (s *Session) Mark(d model.Difficulty) (model.Card, error) {
	if s.Done() {
		return model.Card{}, ErrFinished
	}
	if _, ok := d.ReviewInterval(); !ok {
		return model.Card{}, ErrInvalidMark
	}
	if !s.flipped {
		return model.Card{}, ErrNotFlipped
	}
	card := s.cards[s.index]
	s.index++
	s.flipped = false
	return card, nil
}

func (s *Session) Progress() Progress {
	total := len(s.cards)
	current := min(s.index+1, total)
	return Progress{
		Current: current,
		Total:   total,
		Percent: float64(s.index) / float64(total) * 100,
		Done:    s.Done(),
	}
}

// Registry holds at most one active session per user.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Put(uid string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[uid] = s
}

// Do runs fn on the user's session under the registry lock. Finished sessions
// are dropped after fn returns.
func (r *Registry) Do(uid string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[uid]
	if !ok {
		return ErrNoSession
	}
	err := fn(s)
	if s.Done() {
		delete(r.sessions, uid)
	}
	return err
}

func (r *Registry) Drop(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, uid)
}

// DropWhere ends the user's session when match reports true for it.
func (r *Registry) DropWhere(uid string, match func(*Session) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[uid]; ok && match(s) {
		delete(r.sessions, uid)
	}
}
