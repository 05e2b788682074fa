package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"studybuddy/model"
	"studybuddy/repository"
)

const (
	DefaultAutosaveDelay = time.Second
	allFolder            = "all"
	allNotesFolder       = "all notes"
	autosaveTimeout      = 10 * time.Second
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NoteInput fields left nil keep their current value on update.
type NoteInput struct {
	Title   *string
	Content *string
	Color   *string
	Folder  *string
}

type NoteItem struct {
	model.Note
	Preview string `json:"preview"`
}

type NoteService struct {
	Deps
	autosave *Debouncer
}

func NewNoteService(deps Deps, autosaveDelay time.Duration) *NoteService {
	if autosaveDelay <= 0 {
		autosaveDelay = DefaultAutosaveDelay
	}
	return &NoteService{Deps: deps, autosave: NewDebouncer(autosaveDelay)}
}

func noteFolder(folder string) string {
	folder = strings.TrimSpace(folder)
	if folder == "" || strings.EqualFold(folder, allFolder) || strings.EqualFold(folder, allNotesFolder) {
		return model.DefaultNoteFolder
	}
	return strings.ToLower(folder)
}

func noteTitle(title string) string {
	if title = strings.TrimSpace(title); title == "" {
		return model.DefaultNoteTitle
	}
	return title
}

func checkColor(color string) error {
	if !hexColor.MatchString(color) {
		return invalid("color must look like #rrggbb")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *NoteService) Create(ctx context.Context, uid string, in NoteInput) (model.Note, error) {
	color := model.DefaultNoteColor
	if in.Color != nil && *in.Color != "" {
		color = *in.Color
	}
	if err := checkColor(color); err != nil {
		return model.Note{}, err
	}
	now := s.now()
	note, err := s.Repo.CreateNote(ctx, uid, model.Note{
		Title:     noteTitle(deref(in.Title)),
		Content:   deref(in.Content),
		Color:     color,
		Folder:    noteFolder(deref(in.Folder)),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

func (s *NoteService) patch(in NoteInput) (repository.NotePatch, error) {
	p := repository.NotePatch{Content: in.Content, UpdatedAt: s.now()}
	if in.Title != nil {
		title := noteTitle(*in.Title)
		p.Title = &title
	}
	if in.Color != nil {
		if err := checkColor(*in.Color); err != nil {
			return p, err
		}
		p.Color = in.Color
	}
	if in.Folder != nil {
		folder := noteFolder(*in.Folder)
		p.Folder = &folder
	}
	return p, nil
}

func (s *NoteService) Update(ctx context.Context, uid, id string, in NoteInput) (model.Note, error) {
	p, err := s.patch(in)
	if err != nil {
		return model.Note{}, err
	}
	if err := s.Repo.UpdateNote(ctx, uid, id, p); err != nil {
		return model.Note{}, fmt.Errorf("update note: %w", err)
	}
	return s.Repo.GetNote(ctx, uid, id)
}

// Autosave queues an update. Input arriving for the same note before the
// delay runs out replaces the queued one.
func (s *NoteService) Autosave(ctx context.Context, uid, id string, in NoteInput) error {
	if _, err := s.Repo.GetNote(ctx, uid, id); err != nil {
		return err
	}
	if _, err := s.patch(in); err != nil {
		return err
	}
	queued := s.autosave.Trigger(uid+"/"+id, func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
		defer cancel()
		p, _ := s.patch(in)
		if err := s.Repo.UpdateNote(saveCtx, uid, id, p); err != nil {
			s.logger().Error("Error auto-saving note", "uid", uid, "note", id, "err", err)
		}
	})
	if !queued {
		return errors.New("autosave is shut down")
	}
	return nil
}

// Close writes out the queued auto-saves.
func (s *NoteService) Close() {
	s.autosave.Stop()
}

func (s *NoteService) Get(ctx context.Context, uid, id string) (model.Note, error) {
	return s.Repo.GetNote(ctx, uid, id)
}

func (s *NoteService) Delete(ctx context.Context, uid, id string) error {
	return s.Repo.DeleteNote(ctx, uid, id)
}

// List returns the notes newest first. A search query takes precedence over
// the folder filter.
func (s *NoteService) List(ctx context.Context, uid, query, folder string) ([]NoteItem, error) {
	notes, err := s.Repo.ListNotes(ctx, uid)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	folder = strings.ToLower(strings.TrimSpace(folder))

	out := make([]NoteItem, 0, len(notes))
	for _, n := range notes {
		if query != "" {
			if !matchesNote(n, query) {
				continue
			}
		} else if folder != "" && folder != allNotesFolder && folder != allFolder {
			if !strings.EqualFold(n.Folder, folder) {
				continue
			}
		}
		out = append(out, NoteItem{Note: n, Preview: Preview(n.Content)})
	}
	return out, nil
}

func matchesNote(n model.Note, query string) bool {
	if strings.Contains(strings.ToLower(n.Title), query) {
		return true
	}
	return strings.Contains(strings.ToLower(PlainText(n.Content)), query)
}
