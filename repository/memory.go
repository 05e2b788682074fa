package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"studybuddy/model"
)

type deckData struct {
	deck  model.Deck
	cards map[string]model.Card
}

type userData struct {
	user     *model.User
	tasks    map[string]model.Task
	notes    map[string]model.Note
	decks    map[string]*deckData
	sessions map[string]model.PomodoroSession
}

// MemoryRepository keeps documents in process memory. It follows the document
// store semantics of the Firestore repository: updates need an existing
// document, deletes of missing documents succeed.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*userData
	newID func() string
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]*userData),
		newID: func() string { return uuid.New().String() },
	}
}

func (r *MemoryRepository) Close() error {
	return nil
}

// data returns the user's bucket, creating it for writes.
func (r *MemoryRepository) data(uid string, create bool) *userData {
	d, ok := r.users[uid]
	if !ok && create {
		d = &userData{
			tasks:    make(map[string]model.Task),
			notes:    make(map[string]model.Note),
			decks:    make(map[string]*deckData),
			sessions: make(map[string]model.PomodoroSession),
		}
		r.users[uid] = d
	}
	return d
}

// Users

func (r *MemoryRepository) GetUser(_ context.Context, uid string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d := r.data(uid, false)
	if d == nil || d.user == nil {
		return model.User{}, ErrNotFound
	}
	out := *d.user
	out.UserID = uid
	return out, nil
}

func (r *MemoryRepository) CreateUser(_ context.Context, in model.User) error {
	if in.UserID == "" {
		return fmt.Errorf("repository: user id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u := in
	r.data(in.UserID, true).user = &u
	return nil
}

func (r *MemoryRepository) UpdateUser(_ context.Context, uid string, patch UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.data(uid, false)
	if d == nil || d.user == nil {
		return ErrNotFound
	}
	u := d.user
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.StudyGoal != nil {
		u.StudyGoal = *patch.StudyGoal
	}
	if patch.Theme != nil {
		u.Theme = *patch.Theme
	}
	if patch.NotifyEmail != nil {
		u.Notifications.Email = *patch.NotifyEmail
	}
	if patch.NotifyReminders != nil {
		u.Notifications.Reminders = *patch.NotifyReminders
	}
	if patch.Streak != nil {
		u.Streak = *patch.Streak
	}
	if patch.LastActive != nil {
		u.LastActive = *patch.LastActive
	}
	if patch.CreatedAt != nil {
		u.CreatedAt = *patch.CreatedAt
	}
	if patch.UpdatedAt != nil {
		u.UpdatedAt = *patch.UpdatedAt
	}
	return nil
}

func (r *MemoryRepository) AddUserStats(_ context.Context, uid string, delta StatsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.data(uid, true)
	if d.user == nil {
		d.user = &model.User{}
	}
	d.user.TasksCompleted += delta.TasksCompleted
	d.user.FocusSessions += delta.FocusSessions
	d.user.CompletedSessions += delta.CompletedSessions
	d.user.TotalFocusTime += delta.TotalFocusTime
	return nil
}

func (r *MemoryRepository) DeleteUser(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := r.data(uid, false); d != nil {
		d.user = nil
	}
	return nil
}

func (r *MemoryRepository) DeleteCollection(_ context.Context, uid, collection string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.data(uid, false)
	if d == nil {
		return nil
	}
	switch collection {
	case model.CollectionTasks:
		clear(d.tasks)
	case model.CollectionNotes:
		clear(d.notes)
	case model.CollectionPomodoroSessions:
		clear(d.sessions)
	default:
		return fmt.Errorf("repository: collection %q cannot be deleted flat", collection)
	}
	return nil
}

// Tasks

func (r *MemoryRepository) CreateTask(_ context.Context, uid string, in model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = r.newID()
	r.data(uid, true).tasks[in.ID] = in
	return in, nil
}

func (r *MemoryRepository) GetTask(_ context.Context, uid, id string) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d := r.data(uid, false)
	if d == nil {
		return model.Task{}, ErrNotFound
	}
	t, ok := d.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepository) UpdateTask(_ context.Context, uid, id string, patch TaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.data(uid, false)
	if d == nil {
		return ErrNotFound
	}
	t, ok := d.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.Time != nil {
		t.Time = *patch.Time
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Subject != nil {
		t.Subject = *patch.Subject
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = patch.UpdatedAt
	d.tasks[id] = t
	return nil
}

func (r *MemoryRepository) DeleteTask(_ context.Context, uid, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := r.data(uid, false); d != nil {
		delete(d.tasks, id)
	}
	return nil
}

func (r *MemoryRepository) ListTasks(_ context.Context, uid string, filter TaskFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Task, 0)
	d := r.data(uid, false)
	if d == nil {
		return out, nil
	}
	for _, t := range d.tasks {
		if filter.IncompleteOnly && t.Completed {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Decks and cards

func (r *MemoryRepository) CreateDeck(_ context.Context, uid string, in model.Deck) (model.Deck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = r.newID()
	r.data(uid, true).decks[in.ID] = &deckData{deck: in, cards: make(map[string]model.Card)}
	return in, nil
}

func (r *MemoryRepository) deck(uid, id string) (*deckData, error) {
	d := r.data(uid, false)
	if d == nil {
		return nil, ErrNotFound
	}
	dd, ok := d.decks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return dd, nil
}

func (r *MemoryRepository) GetDeck(_ context.Context, uid, id string) (model.Deck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dd, err := r.deck(uid, id)
	if err != nil {
		return model.Deck{}, err
	}
	return dd.deck, nil
}

func (r *MemoryRepository) UpdateDeck(_ context.Context, uid, id string, patch DeckPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dd, err := r.deck(uid, id)
	if err != nil {
		return err
	}
	if patch.Name != nil {
		dd.deck.Name = *patch.Name
	}
	dd.deck.UpdatedAt = patch.UpdatedAt
	return nil
}

func (r *MemoryRepository) DeleteDeck(_ context.Context, uid, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := r.data(uid, false); d != nil {
		delete(d.decks, id)
	}
	return nil
}

func (r *MemoryRepository) ListDecks(_ context.Context, uid string) ([]model.Deck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Deck, 0)
	if d := r.data(uid, false); d != nil {
		for _, dd := range d.decks {
			out = append(out, dd.deck)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) CreateCard(_ context.Context, uid, deckID string, in model.Card) (model.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dd, err := r.deck(uid, deckID)
	if err != nil {
		return model.Card{}, err
	}
	in.ID = r.newID()
	in.Tags = slices.Clone(in.Tags)
	dd.cards[in.ID] = in
	return cloneCard(in), nil
}

func (r *MemoryRepository) GetCard(_ context.Context, uid, deckID, id string) (model.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dd, err := r.deck(uid, deckID)
	if err != nil {
		return model.Card{}, err
	}
	c, ok := dd.cards[id]
	if !ok {
		return model.Card{}, ErrNotFound
	}
	return cloneCard(c), nil
}

func (r *MemoryRepository) UpdateCard(_ context.Context, uid, deckID, id string, patch CardPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dd, err := r.deck(uid, deckID)
	if err != nil {
		return err
	}
	c, ok := dd.cards[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Front != nil {
		c.Front = *patch.Front
	}
	if patch.Back != nil {
		c.Back = *patch.Back
	}
	if patch.Tags != nil {
		c.Tags = slices.Clone(patch.Tags)
	}
	c.UpdatedAt = patch.UpdatedAt
	dd.cards[id] = c
	return nil
}

func (r *MemoryRepository) RecordReview(_ context.Context, uid, deckID, id string, review CardReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dd, err := r.deck(uid, deckID)
	if err != nil {
		return err
	}
	c, ok := dd.cards[id]
	if !ok {
		return ErrNotFound
	}
	reviewed := review.ReviewedAt
	c.ReviewCount++
	c.LastReviewed = &reviewed
	c.NextReview = review.NextReview
	c.Difficulty = review.Difficulty
	dd.cards[id] = c
	return nil
}

func (r *MemoryRepository) DeleteCard(_ context.Context, uid, deckID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dd, err := r.deck(uid, deckID); err == nil {
		delete(dd.cards, id)
	}
	return nil
}

func (r *MemoryRepository) ListCards(_ context.Context, uid, deckID string) ([]model.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Card, 0)
	dd, err := r.deck(uid, deckID)
	if err != nil {
		return out, nil
	}
	for _, c := range dd.cards {
		out = append(out, cloneCard(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneCard(c model.Card) model.Card {
	c.Tags = slices.Clone(c.Tags)
	if c.LastReviewed != nil {
		t := *c.LastReviewed
		c.LastReviewed = &t
	}
	return c
}

// Notes

func (r *MemoryRepository) CreateNote(_ context.Context, uid string, in model.Note) (model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = r.newID()
	r.data(uid, true).notes[in.ID] = in
	return in, nil
}

func (r *MemoryRepository) GetNote(_ context.Context, uid, id string) (model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d := r.data(uid, false)
	if d == nil {
		return model.Note{}, ErrNotFound
	}
	n, ok := d.notes[id]
	if !ok {
		return model.Note{}, ErrNotFound
	}
	return n, nil
}

func (r *MemoryRepository) UpdateNote(_ context.Context, uid, id string, patch NotePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.data(uid, false)
	if d == nil {
		return ErrNotFound
	}
	n, ok := d.notes[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.Color != nil {
		n.Color = *patch.Color
	}
	if patch.Folder != nil {
		n.Folder = *patch.Folder
	}
	n.UpdatedAt = patch.UpdatedAt
	d.notes[id] = n
	return nil
}

func (r *MemoryRepository) DeleteNote(_ context.Context, uid, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := r.data(uid, false); d != nil {
		delete(d.notes, id)
	}
	return nil
}

func (r *MemoryRepository) ListNotes(_ context.Context, uid string) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Note, 0)
	if d := r.data(uid, false); d != nil {
		for _, n := range d.notes {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Sessions

func (r *MemoryRepository) CreateSession(_ context.Context, uid string, in model.PomodoroSession) (model.PomodoroSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = r.newID()
	r.data(uid, true).sessions[in.ID] = in
	return in, nil
}

func (r *MemoryRepository) ListSessions(_ context.Context, uid string) ([]model.PomodoroSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PomodoroSession, 0)
	if d := r.data(uid, false); d != nil {
		for _, s := range d.sessions {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}
