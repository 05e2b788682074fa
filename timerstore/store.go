// Package timerstore keeps the last known Pomodoro state per user in SQLite so
// a timer survives restarts of the server or the terminal client.
package timerstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"studybuddy/pomodoro"
)

var ErrNotFound = errors.New("timerstore: not found")

const timeLayout = time.RFC3339Nano

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("timerstore: nil db")
	}
	return &Store{db: db}, nil
}

// Open opens the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Ticks from several timers write concurrently; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	store, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, userID string, st pomodoro.State) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timer_snapshots (user_id, timer_type, status, time_left, total_time, completed_sessions, total_focus_time,
			focus_minutes, short_break_minutes, long_break_minutes, sessions_until_long, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			timer_type = excluded.timer_type,
			status = excluded.status,
			time_left = excluded.time_left,
			total_time = excluded.total_time,
			completed_sessions = excluded.completed_sessions,
			total_focus_time = excluded.total_focus_time,
			focus_minutes = excluded.focus_minutes,
			short_break_minutes = excluded.short_break_minutes,
			long_break_minutes = excluded.long_break_minutes,
			sessions_until_long = excluded.sessions_until_long,
			updated_at = excluded.updated_at`,
		userID, string(st.TimerType), string(st.Status), st.TimeLeft, st.TotalTime, st.CompletedSessions, st.TotalFocusTime,
		st.Settings.FocusMinutes, st.Settings.ShortBreakMinutes, st.Settings.LongBreakMinutes, st.Settings.SessionsUntilLong,
		st.UpdatedAt.UTC().Format(timeLayout),
	)
	return err
}

func (s *Store) Load(ctx context.Context, userID string) (pomodoro.State, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT timer_type, status, time_left, total_time, completed_sessions, total_focus_time,
			focus_minutes, short_break_minutes, long_break_minutes, sessions_until_long, updated_at
		FROM timer_snapshots WHERE user_id = ?`, userID)

	var (
		st        pomodoro.State
		timerType string
		status    string
		updatedAt string
	)
	err := row.Scan(&timerType, &status, &st.TimeLeft, &st.TotalTime, &st.CompletedSessions, &st.TotalFocusTime,
		&st.Settings.FocusMinutes, &st.Settings.ShortBreakMinutes, &st.Settings.LongBreakMinutes, &st.Settings.SessionsUntilLong,
		&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pomodoro.State{}, ErrNotFound
		}
		return pomodoro.State{}, err
	}
	st.TimerType = pomodoro.TimerType(timerType)
	st.Status = pomodoro.Status(status)
	st.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
	if err != nil {
		return pomodoro.State{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return st, nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM timer_snapshots WHERE user_id = ?`, userID)
	return err
}
