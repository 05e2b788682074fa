package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studybuddy/model"
	"studybuddy/repository"
	"studybuddy/review"
)

// CardInput carries card text. Tags may come as one comma separated string,
// a list, or both.
type CardInput struct {
	Front   string
	Back    string
	TagText string
	Tags    []string
}

// ReviewView is what the review screen shows.
type ReviewView struct {
	DeckID   string          `json:"deckId"`
	Card     *ReviewCard     `json:"card,omitempty"`
	Flipped  bool            `json:"flipped"`
	Progress review.Progress `json:"progress"`
}

type ReviewCard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	// Back is only sent once the card is flipped.
	Back string `json:"back,omitempty"`
}

type FlashcardService struct {
	Deps
	reviews *review.Registry
	shuffle review.Shuffler
}

func NewFlashcardService(deps Deps, shuffle review.Shuffler) *FlashcardService {
	return &FlashcardService{Deps: deps, reviews: review.NewRegistry(), shuffle: shuffle}
}

// ParseTags splits comma separated tags, trimming blanks away.
func ParseTags(text string, extra ...string) []string {
	tags := make([]string, 0)
	for _, tag := range append(strings.Split(text, ","), extra...) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Decks

func (s *FlashcardService) ListDecks(ctx context.Context, uid, query string) ([]model.Deck, error) {
	decks, err := s.Repo.ListDecks(ctx, uid)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return decks, nil
	}
	out := make([]model.Deck, 0, len(decks))
	for _, d := range decks {
		if strings.Contains(strings.ToLower(d.Name), query) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *FlashcardService) CreateDeck(ctx context.Context, uid, name string) (model.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Deck{}, invalid("Deck name is required")
	}
	now := s.now()
	deck, err := s.Repo.CreateDeck(ctx, uid, model.Deck{Name: name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return model.Deck{}, fmt.Errorf("create deck: %w", err)
	}
	return deck, nil
}

func (s *FlashcardService) GetDeck(ctx context.Context, uid, id string) (model.Deck, error) {
	return s.Repo.GetDeck(ctx, uid, id)
}

func (s *FlashcardService) RenameDeck(ctx context.Context, uid, id, name string) (model.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Deck{}, invalid("Deck name is required")
	}
	if err := s.Repo.UpdateDeck(ctx, uid, id, repository.DeckPatch{Name: &name, UpdatedAt: s.now()}); err != nil {
		return model.Deck{}, fmt.Errorf("rename deck: %w", err)
	}
	return s.Repo.GetDeck(ctx, uid, id)
}

// DeleteDeck removes the deck with its cards and ends any review of it.
func (s *FlashcardService) DeleteDeck(ctx context.Context, uid, id string) error {
	if err := s.Repo.DeleteDeck(ctx, uid, id); err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	s.reviews.DropWhere(uid, func(sess *review.Session) bool { return sess.DeckID == id })
	return nil
}

// Cards

func (s *FlashcardService) ListCards(ctx context.Context, uid, deckID string) ([]model.Card, error) {
	if _, err := s.Repo.GetDeck(ctx, uid, deckID); err != nil {
		return nil, err
	}
	return s.Repo.ListCards(ctx, uid, deckID)
}

// DueCards lists the cards whose next review is not in the future.
func (s *FlashcardService) DueCards(ctx context.Context, uid, deckID string) ([]model.Card, error) {
	cards, err := s.ListCards(ctx, uid, deckID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.Card, 0, len(cards))
	for _, c := range cards {
		if c.Due(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *FlashcardService) CreateCard(ctx context.Context, uid, deckID string, in CardInput) (model.Card, error) {
	front, back := strings.TrimSpace(in.Front), strings.TrimSpace(in.Back)
	if front == "" || back == "" {
		return model.Card{}, invalid("Please fill in both front and back of the card")
	}
	now := s.now()
	card, err := s.Repo.CreateCard(ctx, uid, deckID, model.Card{
		Front:       front,
		Back:        back,
		Tags:        ParseTags(in.TagText, in.Tags...),
		Difficulty:  model.DifficultyMedium,
		NextReview:  now,
		ReviewCount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Card{}, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

// UpdateCard edits front and back; tags change only when given.
func (s *FlashcardService) UpdateCard(ctx context.Context, uid, deckID, id string, in CardInput) (model.Card, error) {
	front, back := strings.TrimSpace(in.Front), strings.TrimSpace(in.Back)
	if front == "" || back == "" {
		return model.Card{}, invalid("Both front and back must have content")
	}
	patch := repository.CardPatch{Front: &front, Back: &back, UpdatedAt: s.now()}
	if in.TagText != "" || in.Tags != nil {
		patch.Tags = ParseTags(in.TagText, in.Tags...)
	}
	if err := s.Repo.UpdateCard(ctx, uid, deckID, id, patch); err != nil {
		return model.Card{}, fmt.Errorf("update card: %w", err)
	}
	return s.Repo.GetCard(ctx, uid, deckID, id)
}

func (s *FlashcardService) DeleteCard(ctx context.Context, uid, deckID, id string) error {
	return s.Repo.DeleteCard(ctx, uid, deckID, id)
}

// Review loop

// StartReview begins a pass over a shuffled copy of the deck, replacing any
// review the user had open.
func (s *FlashcardService) StartReview(ctx context.Context, uid, deckID string) (ReviewView, error) {
	cards, err := s.ListCards(ctx, uid, deckID)
	if err != nil {
		return ReviewView{}, err
	}
	sess, err := review.New(deckID, cards, s.shuffle, s.now())
	if errors.Is(err, review.ErrNoCards) {
		return ReviewView{}, invalid("No cards to review")
	}
	if err != nil {
		return ReviewView{}, err
	}
	s.reviews.Put(uid, sess)
	return reviewView(sess), nil
}

func (s *FlashcardService) CurrentReview(uid string) (ReviewView, error) {
	var view ReviewView
	err := s.reviews.Do(uid, func(sess *review.Session) error {
		view = reviewView(sess)
		return nil
	})
	return view, err
}

func (s *FlashcardService) FlipReview(uid string) (ReviewView, error) {
	var view ReviewView
	err := s.reviews.Do(uid, func(sess *review.Session) error {
		if err := sess.Flip(); err != nil {
			return err
		}
		view = reviewView(sess)
		return nil
	})
	return view, err
}

// MarkReview grades the current card and schedules its next review. A failed
// write is logged and the review moves on regardless.
func (s *FlashcardService) MarkReview(ctx context.Context, uid string, d model.Difficulty) (ReviewView, error) {
	var (
		view   ReviewView
		marked model.Card
		deckID string
	)
	err := s.reviews.Do(uid, func(sess *review.Session) error {
		card, err := sess.Mark(d)
		if err != nil {
			return err
		}
		marked, deckID = card, sess.DeckID
		view = reviewView(sess)
		return nil
	})
	if err != nil {
		return ReviewView{}, err
	}

	now := s.now()
	interval, _ := d.ReviewInterval()
	err = s.Repo.RecordReview(ctx, uid, deckID, marked.ID, repository.CardReview{
		Difficulty: d,
		ReviewedAt: now,
		NextReview: now.Add(interval),
	})
	if err != nil {
		s.logger().Error("Error updating card review stats", "uid", uid, "deck", deckID, "card", marked.ID, "err", err)
	}
	return view, nil
}

func (s *FlashcardService) EndReview(uid string) {
	s.reviews.Drop(uid)
}

func reviewView(sess *review.Session) ReviewView {
	view := ReviewView{DeckID: sess.DeckID, Flipped: sess.Flipped(), Progress: sess.Progress()}
	if card, ok := sess.Current(); ok {
		view.Card = &ReviewCard{ID: card.ID, Front: card.Front}
		if sess.Flipped() {
			view.Card.Back = card.Back
		}
	}
	return view
}

// Forget ends the user's review, if any.
func (s *FlashcardService) Forget(_ context.Context, uid string) error {
	s.reviews.Drop(uid)
	return nil
}
