package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"studybuddy/model"
	"studybuddy/repository"
)

const DefaultStudyGoal = 2

type ProfileInput struct {
	DisplayName string
	// StudyGoal is in hours per day; nil or zero means the default.
	StudyGoal *int
}

// AccountCleaner drops per-user state kept outside the document store.
type AccountCleaner interface {
	Forget(ctx context.Context, uid string) error
}

type ProfileService struct {
	Deps
	identities IdentityProvider
	cleaners   []AccountCleaner
}

func NewProfileService(deps Deps, identities IdentityProvider, cleaners ...AccountCleaner) *ProfileService {
	return &ProfileService{Deps: deps, identities: identities, cleaners: cleaners}
}

func (s *ProfileService) Get(ctx context.Context, uid string) (model.User, error) {
	return s.Repo.GetUser(ctx, uid)
}

func (s *ProfileService) Update(ctx context.Context, uid string, in ProfileInput) (model.User, error) {
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return model.User{}, invalid("Display name is required")
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return model.User{}, invalid("Name must be between 2 and 100 characters")
	}
	goal := DefaultStudyGoal
	if in.StudyGoal != nil && *in.StudyGoal != 0 {
		goal = *in.StudyGoal
	}
	if goal < 1 || goal > 24 {
		return model.User{}, invalid("Study goal must be between 1 and 24 hours")
	}
	now := s.now()
	err := s.Repo.UpdateUser(ctx, uid, repository.UserPatch{DisplayName: &name, StudyGoal: &goal, UpdatedAt: &now})
	if err != nil {
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}
	return s.Repo.GetUser(ctx, uid)
}

func (s *ProfileService) SetTheme(ctx context.Context, uid string, theme model.Theme) error {
	if !theme.IsValid() {
		return invalid("theme must be light or dark")
	}
	now := s.now()
	return s.Repo.UpdateUser(ctx, uid, repository.UserPatch{Theme: &theme, UpdatedAt: &now})
}

func (s *ProfileService) SetNotifications(ctx context.Context, uid string, email, reminders bool) error {
	now := s.now()
	return s.Repo.UpdateUser(ctx, uid, repository.UserPatch{
		NotifyEmail:     &email,
		NotifyReminders: &reminders,
		UpdatedAt:       &now,
	})
}

// DeleteAccount drops local timer and review state, removes every collection
// of the user concurrently, then the profile and finally the sign-in account.
// The deletes are not atomic; the first failure is returned and nothing is
// rolled back.
func (s *ProfileService) DeleteAccount(ctx context.Context, uid string) error {
	// Cleaners stop background writers before the documents go.
	for _, c := range s.cleaners {
		if err := c.Forget(ctx, uid); err != nil {
			return err
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, collection := range model.UserCollections {
		g.Go(func() error {
			if collection == model.CollectionDecks {
				return s.deleteDecks(gctx, uid)
			}
			if err := s.Repo.DeleteCollection(gctx, uid, collection); err != nil {
				return fmt.Errorf("delete %s: %w", collection, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := s.Repo.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.identities.DeleteIdentity(ctx, uid); err != nil {
		return err
	}
	s.logger().Info("Account deleted", "uid", uid)
	return nil
}

func (s *ProfileService) deleteDecks(ctx context.Context, uid string) error {
	decks, err := s.Repo.ListDecks(ctx, uid)
	if err != nil {
		return fmt.Errorf("list decks: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range decks {
		g.Go(func() error {
			if err := s.Repo.DeleteDeck(gctx, uid, d.ID); err != nil {
				return fmt.Errorf("delete deck %s: %w", d.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
