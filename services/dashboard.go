package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"studybuddy/model"
	"studybuddy/repository"
)

const DefaultUpcomingLimit = 5

type DashboardStats struct {
	TasksCompleted    int `json:"tasksCompleted"`
	FocusSessions     int `json:"focusSessions"`
	Streak            int `json:"streak"`
	CompletedSessions int `json:"completedSessions"`
	TotalFocusTime    int `json:"totalFocusTime"`
}

type Dashboard struct {
	Greeting string         `json:"greeting"`
	Today    string         `json:"today"`
	Stats    DashboardStats `json:"stats"`
	Upcoming []model.Task   `json:"upcomingTasks"`
}

type DashboardService struct {
	Deps
	UpcomingLimit int
}

func NewDashboardService(deps Deps, upcomingLimit int) *DashboardService {
	if upcomingLimit <= 0 {
		upcomingLimit = DefaultUpcomingLimit
	}
	return &DashboardService{Deps: deps, UpcomingLimit: upcomingLimit}
}

func (s *DashboardService) Load(ctx context.Context, id model.Identity) (Dashboard, error) {
	user, err := s.touchUser(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	upcoming, err := s.upcoming(ctx, id.UID)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Greeting: greetingName(user.DisplayName),
		Today:    s.now().Format(time.DateOnly),
		Stats: DashboardStats{
			TasksCompleted:    user.TasksCompleted,
			FocusSessions:     user.FocusSessions,
			Streak:            user.Streak,
			CompletedSessions: user.CompletedSessions,
			TotalFocusTime:    user.TotalFocusTime,
		},
		Upcoming: upcoming,
	}, nil
}

// touchUser creates the profile on first visit, otherwise records the visit.
func (s *DashboardService) touchUser(ctx context.Context, id model.Identity) (model.User, error) {
	now := s.now()
	user, err := s.Repo.GetUser(ctx, id.UID)
	if errors.Is(err, repository.ErrNotFound) {
		user = model.User{
			UserID:      id.UID,
			Email:       id.Email,
			DisplayName: defaultDisplayName(id),
			CreatedAt:   now,
			LastActive:  now,
		}
		if err := s.Repo.CreateUser(ctx, user); err != nil {
			return model.User{}, fmt.Errorf("create user: %w", err)
		}
		return user, nil
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	streak := nextStreak(user.Streak, user.LastActive, now)
	patch := backfill(&user, id, now)
	patch.LastActive = &now
	patch.Streak = &streak
	if err := s.Repo.UpdateUser(ctx, id.UID, patch); err != nil {
		return model.User{}, fmt.Errorf("update last active: %w", err)
	}
	user.LastActive = now
	user.Streak = streak
	return user, nil
}

// backfill fills the identity fields of a profile that was first written by a
// stats increment, and returns the matching patch.
func backfill(user *model.User, id model.Identity, now time.Time) repository.UserPatch {
	var patch repository.UserPatch
	if user.Email == "" && id.Email != "" {
		user.Email = id.Email
		patch.Email = &user.Email
	}
	if user.DisplayName == "" {
		if name := defaultDisplayName(id); name != "" {
			user.DisplayName = name
			patch.DisplayName = &user.DisplayName
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
		patch.CreatedAt = &user.CreatedAt
	}
	return patch
}

func (s *DashboardService) upcoming(ctx context.Context, uid string) ([]model.Task, error) {
	tasks, err := s.Repo.ListTasks(ctx, uid, repository.TaskFilter{IncompleteOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].DueDate.Before(tasks[j].DueDate) })
	if len(tasks) > s.UpcomingLimit {
		tasks = tasks[:s.UpcomingLimit]
	}
	return tasks, nil
}

// nextStreak counts consecutive days with a visit.
func nextStreak(streak int, last, now time.Time) int {
	if last.IsZero() || streak <= 0 {
		return 1
	}
	last = last.In(now.Location())
	switch {
	case sameDay(last, now):
		return streak
	case sameDay(last, now.AddDate(0, 0, -1)):
		return streak + 1
	default:
		return 1
	}
}

func defaultDisplayName(id model.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	local, _, _ := strings.Cut(id.Email, "@")
	return local
}

func greetingName(displayName string) string {
	if fields := strings.Fields(displayName); len(fields) > 0 {
		return fields[0]
	}
	return "Student"
}
