package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"studybuddy/model"
)

// FirestoreRepository keeps every document under users/{uid}.
type FirestoreRepository struct {
	client *firestore.Client
}

var _ Repository = (*FirestoreRepository)(nil)

func NewFirestoreRepository(client *firestore.Client) (*FirestoreRepository, error) {
	if client == nil {
		return nil, errors.New("repository: nil firestore client")
	}
	return &FirestoreRepository{client: client}, nil
}

func (r *FirestoreRepository) Close() error {
	return r.client.Close()
}

func (r *FirestoreRepository) userDoc(uid string) *firestore.DocumentRef {
	return r.client.Collection(model.CollectionUsers).Doc(uid)
}

func (r *FirestoreRepository) sub(uid, collection string) *firestore.CollectionRef {
	return r.userDoc(uid).Collection(collection)
}

func (r *FirestoreRepository) cards(uid, deckID string) *firestore.CollectionRef {
	return r.sub(uid, model.CollectionDecks).Doc(deckID).Collection(model.CollectionCards)
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func getDoc[T any](ctx context.Context, ref *firestore.DocumentRef, setID func(*T, string)) (T, error) {
	var out T
	snap, err := ref.Get(ctx)
	if err != nil {
		return out, mapErr(err)
	}
	if !snap.Exists() {
		return out, ErrNotFound
	}
	if err := snap.DataTo(&out); err != nil {
		return out, fmt.Errorf("decode %s: %w", ref.Path, err)
	}
	setID(&out, snap.Ref.ID)
	return out, nil
}

func listDocs[T any](ctx context.Context, q firestore.Query, setID func(*T, string)) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := make([]T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.Path, err)
		}
		setID(&item, doc.Ref.ID)
		out = append(out, item)
	}
	return out, nil
}

// deleteCollection removes every document of coll, then the extra refs, with a
// bulk writer. Deletes are not atomic; the first failure is returned.
func (r *FirestoreRepository) deleteCollection(ctx context.Context, coll *firestore.CollectionRef, extra ...*firestore.DocumentRef) error {
	refs := make([]*firestore.DocumentRef, 0)
	iter := coll.DocumentRefs(ctx)
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	refs = append(refs, extra...)
	if len(refs) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return fmt.Errorf("queue delete %s: %w", ref.Path, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func setUserID(u *model.User, id string) { u.UserID = id }
func setTaskID(t *model.Task, id string) { t.ID = id }
func setDeckID(d *model.Deck, id string) { d.ID = id }
func setCardID(c *model.Card, id string) { c.ID = id }
func setNoteID(n *model.Note, id string) { n.ID = id }
func setSessionID(s *model.PomodoroSession, id string) { s.ID = id }

// Users

func (r *FirestoreRepository) GetUser(ctx context.Context, uid string) (model.User, error) {
	return getDoc(ctx, r.userDoc(uid), setUserID)
}

func (r *FirestoreRepository) CreateUser(ctx context.Context, in model.User) error {
	if in.UserID == "" {
		return errors.New("repository: user id is required")
	}
	_, err := r.userDoc(in.UserID).Set(ctx, in)
	return err
}

func (r *FirestoreRepository) UpdateUser(ctx context.Context, uid string, patch UserPatch) error {
	var updates []firestore.Update
	if patch.Email != nil {
		updates = append(updates, firestore.Update{Path: "email", Value: *patch.Email})
	}
	if patch.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "displayName", Value: *patch.DisplayName})
	}
	if patch.StudyGoal != nil {
		updates = append(updates, firestore.Update{Path: "studyGoal", Value: *patch.StudyGoal})
	}
	if patch.Theme != nil {
		updates = append(updates, firestore.Update{Path: "theme", Value: string(*patch.Theme)})
	}
	if patch.NotifyEmail != nil {
		updates = append(updates, firestore.Update{Path: "notifications.email", Value: *patch.NotifyEmail})
	}
	if patch.NotifyReminders != nil {
		updates = append(updates, firestore.Update{Path: "notifications.reminders", Value: *patch.NotifyReminders})
	}
	if patch.Streak != nil {
		updates = append(updates, firestore.Update{Path: "streak", Value: *patch.Streak})
	}
	if patch.LastActive != nil {
		updates = append(updates, firestore.Update{Path: "lastActive", Value: *patch.LastActive})
	}
	if patch.CreatedAt != nil {
		updates = append(updates, firestore.Update{Path: "createdAt", Value: *patch.CreatedAt})
	}
	if patch.UpdatedAt != nil {
		updates = append(updates, firestore.Update{Path: "updatedAt", Value: *patch.UpdatedAt})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := r.userDoc(uid).Update(ctx, updates)
	return mapErr(err)
}

func (r *FirestoreRepository) AddUserStats(ctx context.Context, uid string, delta StatsDelta) error {
	data := map[string]interface{}{}
	if delta.TasksCompleted != 0 {
		data["tasksCompleted"] = firestore.Increment(delta.TasksCompleted)
	}
	if delta.FocusSessions != 0 {
		data["focusSessions"] = firestore.Increment(delta.FocusSessions)
	}
	if delta.CompletedSessions != 0 {
		data["completedSessions"] = firestore.Increment(delta.CompletedSessions)
	}
	if delta.TotalFocusTime != 0 {
		data["totalFocusTime"] = firestore.Increment(delta.TotalFocusTime)
	}
	if len(data) == 0 {
		return nil
	}
	_, err := r.userDoc(uid).Set(ctx, data, firestore.MergeAll)
	return err
}

func (r *FirestoreRepository) DeleteUser(ctx context.Context, uid string) error {
	_, err := r.userDoc(uid).Delete(ctx)
	return mapErr(err)
}

func (r *FirestoreRepository) DeleteCollection(ctx context.Context, uid, collection string) error {
	switch collection {
	case model.CollectionTasks, model.CollectionNotes, model.CollectionPomodoroSessions:
		return r.deleteCollection(ctx, r.sub(uid, collection))
	default:
		return fmt.Errorf("repository: collection %q cannot be deleted flat", collection)
	}
}

// Tasks

func (r *FirestoreRepository) CreateTask(ctx context.Context, uid string, in model.Task) (model.Task, error) {
	ref := r.sub(uid, model.CollectionTasks).NewDoc()
	if _, err := ref.Set(ctx, in); err != nil {
		return model.Task{}, err
	}
	in.ID = ref.ID
	return in, nil
}

func (r *FirestoreRepository) GetTask(ctx context.Context, uid, id string) (model.Task, error) {
	return getDoc(ctx, r.sub(uid, model.CollectionTasks).Doc(id), setTaskID)
}

func (r *FirestoreRepository) UpdateTask(ctx context.Context, uid, id string, patch TaskPatch) error {
	updates := []firestore.Update{{Path: "updatedAt", Value: patch.UpdatedAt}}
	if patch.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *patch.Description})
	}
	if patch.DueDate != nil {
		updates = append(updates, firestore.Update{Path: "dueDate", Value: *patch.DueDate})
	}
	if patch.Time != nil {
		updates = append(updates, firestore.Update{Path: "time", Value: *patch.Time})
	}
	if patch.Priority != nil {
		updates = append(updates, firestore.Update{Path: "priority", Value: string(*patch.Priority)})
	}
	if patch.Subject != nil {
		updates = append(updates, firestore.Update{Path: "subject", Value: *patch.Subject})
	}
	if patch.Completed != nil {
		updates = append(updates, firestore.Update{Path: "completed", Value: *patch.Completed})
	}
	_, err := r.sub(uid, model.CollectionTasks).Doc(id).Update(ctx, updates)
	return mapErr(err)
}

func (r *FirestoreRepository) DeleteTask(ctx context.Context, uid, id string) error {
	_, err := r.sub(uid, model.CollectionTasks).Doc(id).Delete(ctx)
	return mapErr(err)
}

func (r *FirestoreRepository) ListTasks(ctx context.Context, uid string, filter TaskFilter) ([]model.Task, error) {
	coll := r.sub(uid, model.CollectionTasks)
	q := coll.OrderBy("dueDate", firestore.Asc)
	if filter.IncompleteOnly {
		// Equality only: combining it with the ordering would need a composite index.
		q = coll.Where("completed", "==", false)
	}
	return listDocs(ctx, q, setTaskID)
}

// Decks and cards

func (r *FirestoreRepository) CreateDeck(ctx context.Context, uid string, in model.Deck) (model.Deck, error) {
	ref := r.sub(uid, model.CollectionDecks).NewDoc()
	if _, err := ref.Set(ctx, in); err != nil {
		return model.Deck{}, err
	}
	in.ID = ref.ID
	return in, nil
}

func (r *FirestoreRepository) GetDeck(ctx context.Context, uid, id string) (model.Deck, error) {
	return getDoc(ctx, r.sub(uid, model.CollectionDecks).Doc(id), setDeckID)
}

func (r *FirestoreRepository) UpdateDeck(ctx context.Context, uid, id string, patch DeckPatch) error {
	updates := []firestore.Update{{Path: "updatedAt", Value: patch.UpdatedAt}}
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	_, err := r.sub(uid, model.CollectionDecks).Doc(id).Update(ctx, updates)
	return mapErr(err)
}

func (r *FirestoreRepository) DeleteDeck(ctx context.Context, uid, id string) error {
	return r.deleteCollection(ctx, r.cards(uid, id), r.sub(uid, model.CollectionDecks).Doc(id))
}

func (r *FirestoreRepository) ListDecks(ctx context.Context, uid string) ([]model.Deck, error) {
	q := r.sub(uid, model.CollectionDecks).OrderBy("createdAt", firestore.Desc)
	return listDocs(ctx, q, setDeckID)
}

func (r *FirestoreRepository) CreateCard(ctx context.Context, uid, deckID string, in model.Card) (model.Card, error) {
	if _, err := r.GetDeck(ctx, uid, deckID); err != nil {
		return model.Card{}, err
	}
	ref := r.cards(uid, deckID).NewDoc()
	if _, err := ref.Set(ctx, in); err != nil {
		return model.Card{}, err
	}
	in.ID = ref.ID
	return in, nil
}

func (r *FirestoreRepository) GetCard(ctx context.Context, uid, deckID, id string) (model.Card, error) {
	return getDoc(ctx, r.cards(uid, deckID).Doc(id), setCardID)
}

func (r *FirestoreRepository) UpdateCard(ctx context.Context, uid, deckID, id string, patch CardPatch) error {
	updates := []firestore.Update{{Path: "updatedAt", Value: patch.UpdatedAt}}
	if patch.Front != nil {
		updates = append(updates, firestore.Update{Path: "front", Value: *patch.Front})
	}
	if patch.Back != nil {
		updates = append(updates, firestore.Update{Path: "back", Value: *patch.Back})
	}
	if patch.Tags != nil {
		updates = append(updates, firestore.Update{Path: "tags", Value: patch.Tags})
	}
	_, err := r.cards(uid, deckID).Doc(id).Update(ctx, updates)
	return mapErr(err)
}

func (r *FirestoreRepository) RecordReview(ctx context.Context, uid, deckID, id string, review CardReview) error {
	_, err := r.cards(uid, deckID).Doc(id).Update(ctx, []firestore.Update{
		{Path: "reviewCount", Value: firestore.Increment(1)},
		{Path: "lastReviewed", Value: review.ReviewedAt},
		{Path: "nextReview", Value: review.NextReview},
		{Path: "difficulty", Value: string(review.Difficulty)},
	})
	return mapErr(err)
}

func (r *FirestoreRepository) DeleteCard(ctx context.Context, uid, deckID, id string) error {
	_, err := r.cards(uid, deckID).Doc(id).Delete(ctx)
	return mapErr(err)
}

func (r *FirestoreRepository) ListCards(ctx context.Context, uid, deckID string) ([]model.Card, error) {
	q := r.cards(uid, deckID).OrderBy("createdAt", firestore.Desc)
	return listDocs(ctx, q, setCardID)
}

// Notes

func (r *FirestoreRepository) CreateNote(ctx context.Context, uid string, in model.Note) (model.Note, error) {
	ref := r.sub(uid, model.CollectionNotes).NewDoc()
	if _, err := ref.Set(ctx, in); err != nil {
		return model.Note{}, err
	}
	in.ID = ref.ID
	return in, nil
}

func (r *FirestoreRepository) GetNote(ctx context.Context, uid, id string) (model.Note, error) {
	return getDoc(ctx, r.sub(uid, model.CollectionNotes).Doc(id), setNoteID)
}

func (r *FirestoreRepository) UpdateNote(ctx context.Context, uid, id string, patch NotePatch) error {
	updates := []firestore.Update{{Path: "updatedAt", Value: patch.UpdatedAt}}
	if patch.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *patch.Title})
	}
	if patch.Content != nil {
		updates = append(updates, firestore.Update{Path: "content", Value: *patch.Content})
	}
	if patch.Color != nil {
		updates = append(updates, firestore.Update{Path: "color", Value: *patch.Color})
	}
	if patch.Folder != nil {
		updates = append(updates, firestore.Update{Path: "folder", Value: *patch.Folder})
	}
	_, err := r.sub(uid, model.CollectionNotes).Doc(id).Update(ctx, updates)
	return mapErr(err)
}

func (r *FirestoreRepository) DeleteNote(ctx context.Context, uid, id string) error {
	_, err := r.sub(uid, model.CollectionNotes).Doc(id).Delete(ctx)
	return mapErr(err)
}

func (r *FirestoreRepository) ListNotes(ctx context.Context, uid string) ([]model.Note, error) {
	q := r.sub(uid, model.CollectionNotes).OrderBy("updatedAt", firestore.Desc)
	return listDocs(ctx, q, setNoteID)
}

// Sessions

func (r *FirestoreRepository) CreateSession(ctx context.Context, uid string, in model.PomodoroSession) (model.PomodoroSession, error) {
	ref := r.sub(uid, model.CollectionPomodoroSessions).NewDoc()
	if _, err := ref.Set(ctx, in); err != nil {
		return model.PomodoroSession{}, err
	}
	in.ID = ref.ID
	return in, nil
}

func (r *FirestoreRepository) ListSessions(ctx context.Context, uid string) ([]model.PomodoroSession, error) {
	q := r.sub(uid, model.CollectionPomodoroSessions).OrderBy("completedAt", firestore.Desc)
	return listDocs(ctx, q, setSessionID)
}
