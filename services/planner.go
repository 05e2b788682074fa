package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studybuddy/model"
	"studybuddy/repository"
)

const defaultTaskTime = "09:00"

// TaskInput is the planner form. Date is YYYY-MM-DD, Time is HH:MM or empty.
type TaskInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	Priority    model.Priority
	Subject     string
}

type CalendarEvent struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Start       string         `json:"start"`
	AllDay      bool           `json:"allDay"`
	Color       string         `json:"color"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	Subject     string         `json:"subject"`
	Completed   bool           `json:"completed"`
}

type PlannerService struct {
	Deps
}

func NewPlannerService(deps Deps) *PlannerService {
	return &PlannerService{Deps: deps}
}

func (s *PlannerService) normalize(in TaskInput) (TaskInput, time.Time, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Time = strings.TrimSpace(in.Time)
	if in.Title == "" || strings.TrimSpace(in.Date) == "" {
		return in, time.Time{}, invalid("Please fill in all required fields")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.IsValid() {
		return in, time.Time{}, invalid("priority must be low, medium or high")
	}
	due, err := s.dueAt(in.Date, in.Time)
	if err != nil {
		return in, time.Time{}, err
	}
	if in.Time != "" {
		in.Time = due.Format("15:04")
	}
	return in, due, nil
}

// dueAt is the local instant of date at clock, 09:00 when clock is empty.
func (s *PlannerService) dueAt(date, clock string) (time.Time, error) {
	if clock == "" {
		clock = defaultTaskTime
	}
	due, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+clock, s.location())
	if err != nil {
		return time.Time{}, invalid("date must be YYYY-MM-DD and time HH:MM")
	}
	return due, nil
}

func (s *PlannerService) Create(ctx context.Context, uid string, in TaskInput) (model.Task, error) {
	in, due, err := s.normalize(in)
	if err != nil {
		return model.Task{}, err
	}
	now := s.now()
	task, err := s.Repo.CreateTask(ctx, uid, model.Task{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     due,
		Time:        in.Time,
		Priority:    in.Priority,
		Subject:     strings.TrimSpace(in.Subject),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Update replaces the editable fields; completion is kept.
func (s *PlannerService) Update(ctx context.Context, uid, id string, in TaskInput) (model.Task, error) {
	in, due, err := s.normalize(in)
	if err != nil {
		return model.Task{}, err
	}
	desc := strings.TrimSpace(in.Description)
	subject := strings.TrimSpace(in.Subject)
	err = s.Repo.UpdateTask(ctx, uid, id, repository.TaskPatch{
		Title:       &in.Title,
		Description: &desc,
		DueDate:     &due,
		Time:        &in.Time,
		Priority:    &in.Priority,
		Subject:     &subject,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return s.Repo.GetTask(ctx, uid, id)
}

// ToggleComplete flips completion. Completing a task counts towards the
// user's tasksCompleted; reopening it does not subtract. A failed counter
// update is logged and does not undo the toggle.
func (s *PlannerService) ToggleComplete(ctx context.Context, uid, id string) (model.Task, error) {
	task, err := s.Repo.GetTask(ctx, uid, id)
	if err != nil {
		return model.Task{}, err
	}
	task.Completed = !task.Completed
	task.UpdatedAt = s.now()
	err = s.Repo.UpdateTask(ctx, uid, id, repository.TaskPatch{Completed: &task.Completed, UpdatedAt: task.UpdatedAt})
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	if task.Completed {
		if err := s.Repo.AddUserStats(ctx, uid, repository.StatsDelta{TasksCompleted: 1}); err != nil {
			s.logger().Error("Error counting completed task", "uid", uid, "task", id, "err", err)
		}
	}
	return task, nil
}

func (s *PlannerService) Get(ctx context.Context, uid, id string) (model.Task, error) {
	return s.Repo.GetTask(ctx, uid, id)
}

func (s *PlannerService) Delete(ctx context.Context, uid, id string) error {
	return s.Repo.DeleteTask(ctx, uid, id)
}

func (s *PlannerService) List(ctx context.Context, uid string) ([]model.Task, error) {
	return s.Repo.ListTasks(ctx, uid, repository.TaskFilter{})
}

// Today lists the tasks due on the current local date.
func (s *PlannerService) Today(ctx context.Context, uid string) ([]model.Task, error) {
	tasks, err := s.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.DueDate.IsZero() && sameDay(t.DueDate.In(now.Location()), now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *PlannerService) Calendar(ctx context.Context, uid string) ([]CalendarEvent, error) {
	tasks, err := s.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	events := make([]CalendarEvent, 0, len(tasks))
	for _, t := range tasks {
		events = append(events, s.calendarEvent(t))
	}
	return events, nil
}

func (s *PlannerService) calendarEvent(t model.Task) CalendarEvent {
	start := t.DueDate.In(s.location()).Format(time.DateOnly)
	if t.Time != "" {
		start += "T" + t.Time
	}
	color := t.Priority.Color()
	if t.Completed {
		color = model.ColorCompleted
	}
	return CalendarEvent{
		ID:          t.ID,
		Title:       t.Title,
		Start:       start,
		AllDay:      t.Time == "",
		Color:       color,
		Description: t.Description,
		Priority:    t.Priority,
		Subject:     t.Subject,
		Completed:   t.Completed,
	}
}
