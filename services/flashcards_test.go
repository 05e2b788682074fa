package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/model"
	"studybuddy/repository"
	"studybuddy/review"
)

func keepOrder(int, func(i, j int)) {}

func newFlashcards(t *testing.T) (*FlashcardService, *fakeClock) {
	t.Helper()
	deps, _, clock := newDeps(t)
	return NewFlashcardService(deps, keepOrder), clock
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"bio", "cells"}, ParseTags(" bio, ,cells ,"))
	assert.Equal(t, []string{"a", "b"}, ParseTags("a", " b ", ""))
	assert.Empty(t, ParseTags(""))
}

func TestDeckSearchAndRename(t *testing.T) {
	svc, clock := newFlashcards(t)
	ctx := context.Background()

	bio, err := svc.CreateDeck(ctx, "u1", " Biology ")
	require.NoError(t, err)
	assert.Equal(t, "Biology", bio.Name)
	clock.Add(time.Minute)
	_, err = svc.CreateDeck(ctx, "u1", "Chemistry")
	require.NoError(t, err)
	_, err = svc.CreateDeck(ctx, "u1", "   ")
	require.ErrorIs(t, err, ErrValidation)

	decks, err := svc.ListDecks(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "Chemistry", decks[0].Name)

	found, err := svc.ListDecks(ctx, "u1", "BIO")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bio.ID, found[0].ID)

	renamed, err := svc.RenameDeck(ctx, "u1", bio.ID, "Cell Biology")
	require.NoError(t, err)
	assert.Equal(t, "Cell Biology", renamed.Name)
	_, err = svc.RenameDeck(ctx, "u1", "missing", "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateCardDefaults(t *testing.T) {
	svc, _ := newFlashcards(t)
	ctx := context.Background()
	deck, err := svc.CreateDeck(ctx, "u1", "Biology")
	require.NoError(t, err)

	card, err := svc.CreateCard(ctx, "u1", deck.ID, CardInput{Front: " cell ", Back: "unit of life", TagText: "bio, basics"})
	require.NoError(t, err)
	assert.Equal(t, "cell", card.Front)
	assert.Equal(t, []string{"bio", "basics"}, card.Tags)
	assert.Equal(t, model.DifficultyMedium, card.Difficulty)
	assert.Zero(t, card.ReviewCount)
	assert.Equal(t, base, card.NextReview)

	_, err = svc.CreateCard(ctx, "u1", deck.ID, CardInput{Front: "x"})
	require.ErrorIs(t, err, ErrValidation)

	due, err := svc.DueCards(ctx, "u1", deck.ID)
	require.NoError(t, err)
	assert.Len(t, due, 1)

	updated, err := svc.UpdateCard(ctx, "u1", deck.ID, card.ID, CardInput{Front: "cell", Back: "smallest unit"})
	require.NoError(t, err)
	assert.Equal(t, "smallest unit", updated.Back)
	assert.Equal(t, []string{"bio", "basics"}, updated.Tags)
}

func TestReviewLoopSchedulesCards(t *testing.T) {
	svc, clock := newFlashcards(t)
	ctx := context.Background()
	deck, err := svc.CreateDeck(ctx, "u1", "Biology")
	require.NoError(t, err)

	_, err = svc.StartReview(ctx, "u1", deck.ID)
	require.ErrorIs(t, err, ErrValidation)

	var ids []string
	for _, front := range []string{"a", "b", "c"} {
		c, err := svc.CreateCard(ctx, "u1", deck.ID, CardInput{Front: front, Back: front + "!"})
		require.NoError(t, err)
		ids = append(ids, c.ID)
		clock.Add(time.Second)
	}

	view, err := svc.StartReview(ctx, "u1", deck.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Card)
	assert.Empty(t, view.Card.Back)
	assert.Equal(t, review.Progress{Current: 1, Total: 3}, view.Progress)

	_, err = svc.MarkReview(ctx, "u1", model.DifficultyEasy)
	require.ErrorIs(t, err, review.ErrNotFlipped)

	marks := []model.Difficulty{model.DifficultyHard, model.DifficultyGood, model.DifficultyEasy}
	var reviewed []string
	for _, mark := range marks {
		view, err = svc.FlipReview("u1")
		require.NoError(t, err)
		require.NotEmpty(t, view.Card.Back)
		reviewed = append(reviewed, view.Card.ID)
		view, err = svc.MarkReview(ctx, "u1", mark)
		require.NoError(t, err)
	}
	assert.True(t, view.Progress.Done)
	assert.Nil(t, view.Card)

	_, err = svc.CurrentReview("u1")
	require.ErrorIs(t, err, review.ErrNoSession)

	wantDays := map[model.Difficulty]int{model.DifficultyHard: 1, model.DifficultyGood: 3, model.DifficultyEasy: 7}
	for i, id := range reviewed {
		card, err := svc.Repo.GetCard(ctx, "u1", deck.ID, id)
		require.NoError(t, err)
		assert.Equal(t, marks[i], card.Difficulty)
		assert.Equal(t, 1, card.ReviewCount)
		assert.Equal(t, clock.Now().AddDate(0, 0, wantDays[marks[i]]), card.NextReview)
	}
	assert.ElementsMatch(t, ids, reviewed)
}

func TestDeleteDeckEndsItsReview(t *testing.T) {
	svc, _ := newFlashcards(t)
	ctx := context.Background()
	deck, err := svc.CreateDeck(ctx, "u1", "Biology")
	require.NoError(t, err)
	_, err = svc.CreateCard(ctx, "u1", deck.ID, CardInput{Front: "a", Back: "b"})
	require.NoError(t, err)
	_, err = svc.StartReview(ctx, "u1", deck.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDeck(ctx, "u1", deck.ID))
	_, err = svc.CurrentReview("u1")
	require.ErrorIs(t, err, review.ErrNoSession)
	_, err = svc.ListCards(ctx, "u1", deck.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
