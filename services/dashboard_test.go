package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/model"
	"studybuddy/repository"
)

func TestDashboardCreatesProfileOnFirstVisit(t *testing.T) {
	deps, repo, _ := newDeps(t)
	svc := NewDashboardService(deps, 0)

	view, err := svc.Load(context.Background(), model.Identity{UID: "u1", Email: "ada.lovelace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ada.lovelace", view.Greeting)
	assert.Equal(t, "2026-03-02", view.Today)
	assert.Empty(t, view.Upcoming)

	u, err := repo.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada.lovelace", u.DisplayName)
	assert.Zero(t, u.Streak)
	assert.Equal(t, base, u.LastActive)
}

func TestDashboardFillsProfileCreatedByStats(t *testing.T) {
	deps, repo, _ := newDeps(t)
	svc := NewDashboardService(deps, 0)
	ctx := context.Background()

	require.NoError(t, repo.AddUserStats(ctx, "u1", repository.StatsDelta{FocusSessions: 1}))

	view, err := svc.Load(ctx, model.Identity{UID: "u1", Email: "ann@example.com", Name: "Ann Lee"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", view.Greeting)
	assert.Equal(t, 1, view.Stats.FocusSessions)

	u, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, "Ann Lee", u.DisplayName)
	assert.Equal(t, base, u.CreatedAt)
	assert.Equal(t, 1, u.FocusSessions)

	// A name chosen later is not overwritten.
	require.NoError(t, repo.UpdateUser(ctx, "u1", repository.UserPatch{DisplayName: ptr("Annie")}))
	view, err = svc.Load(ctx, model.Identity{UID: "u1", Email: "ann@example.com", Name: "Ann Lee"})
	require.NoError(t, err)
	assert.Equal(t, "Annie", view.Greeting)
}

func TestDashboardStreak(t *testing.T) {
	deps, repo, clock := newDeps(t)
	svc := NewDashboardService(deps, 5)
	ctx := context.Background()
	id := model.Identity{UID: "u1", Email: "a@example.com", Name: "Ada Lovelace"}

	view, err := svc.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", view.Greeting)

	view, err = svc.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.Streak)

	clock.Add(24 * time.Hour)
	view, err = svc.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.Streak)

	clock.Add(3 * 24 * time.Hour)
	view, err = svc.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.Streak)

	u, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), u.LastActive)
}

func TestNextStreak(t *testing.T) {
	now := base
	assert.Equal(t, 1, nextStreak(0, time.Time{}, now))
	assert.Equal(t, 4, nextStreak(4, now.Add(-time.Hour), now))
	assert.Equal(t, 5, nextStreak(4, now.AddDate(0, 0, -1), now))
	assert.Equal(t, 1, nextStreak(4, now.AddDate(0, 0, -2), now))
}

func TestDashboardUpcomingIsIncompleteAscendingCapped(t *testing.T) {
	deps, repo, _ := newDeps(t)
	svc := NewDashboardService(deps, 5)
	ctx := context.Background()

	for i := 7; i >= 1; i-- {
		_, err := repo.CreateTask(ctx, "u1", model.Task{
			Title:   fmt.Sprintf("t%d", i),
			DueDate: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}
	_, err := repo.CreateTask(ctx, "u1", model.Task{Title: "done", DueDate: base, Completed: true})
	require.NoError(t, err)
	_, err = repo.CreateTask(ctx, "u1", model.Task{Title: "undated"})
	require.NoError(t, err)

	view, err := svc.Load(ctx, model.Identity{UID: "u1", Email: "a@example.com"})
	require.NoError(t, err)
	require.Len(t, view.Upcoming, 5)
	titles := make([]string, 0, 5)
	for _, task := range view.Upcoming {
		assert.False(t, task.Completed)
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"undated", "t1", "t2", "t3", "t4"}, titles)
}
