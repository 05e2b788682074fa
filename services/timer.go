package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"studybuddy/model"
	"studybuddy/pomodoro"
	"studybuddy/repository"
	"studybuddy/timerstore"
)

const (
	DefaultTimerTick = time.Second
	recordTimeout    = 10 * time.Second
)

// TimerSnapshots persists the last state of each user's timer.
type TimerSnapshots interface {
	Save(ctx context.Context, uid string, st pomodoro.State) error
	Load(ctx context.Context, uid string) (pomodoro.State, error)
	Delete(ctx context.Context, uid string) error
}

type userTimer struct {
	mu    sync.Mutex
	timer *pomodoro.Timer
	stop  chan struct{} // non-nil while the ticker runs
	gone  bool          // dropped by Forget

	// recording counts completions being written to the repository.
	recording sync.WaitGroup
}

// TimerService runs one Pomodoro timer per user. A running timer has exactly
// one ticker goroutine.
type TimerService struct {
	Deps
	store TimerSnapshots
	tick  time.Duration

	mu     sync.Mutex
	timers map[string]*userTimer
	wg     sync.WaitGroup
	closed bool
}

func NewTimerService(deps Deps, store TimerSnapshots, tick time.Duration) *TimerService {
	if tick <= 0 {
		tick = DefaultTimerTick
	}
	return &TimerService{Deps: deps, store: store, tick: tick, timers: make(map[string]*userTimer)}
}

var errTimerClosed = errors.New("timer service is closed")

// cached returns the user's loaded timer, if any.
func (s *TimerService) cached(uid string) (*userTimer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errTimerClosed
	}
	return s.timers[uid], nil
}

// load returns the user's timer, restoring a recent snapshot on first use.
// The snapshot is read without holding s.mu.
func (s *TimerService) load(ctx context.Context, uid string) (*userTimer, error) {
	if ut, err := s.cached(uid); ut != nil || err != nil {
		return ut, err
	}

	now := s.now()
	timer, err := s.restore(ctx, uid, now)
	if err != nil {
		return nil, err
	}
	running := timer.Running()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errTimerClosed
	}
	if ut, ok := s.timers[uid]; ok {
		s.mu.Unlock()
		return ut, nil
	}
	ut := &userTimer{timer: timer}
	s.timers[uid] = ut
	ut.mu.Lock()
	var (
		c    pomodoro.Completion
		done bool
	)
	if running {
		c, done = timer.Advance(now)
		if done {
			ut.recording.Add(1)
		} else {
			s.startTicker(uid, ut)
		}
	}
	ut.mu.Unlock()
	s.mu.Unlock()

	if running {
		ut.mu.Lock()
		if !ut.gone {
			s.save(ctx, uid, ut.timer.State())
		}
		ut.mu.Unlock()
	}
	if done {
		s.recordCompletion(uid, ut, c)
	}
	return ut, nil
}

func (s *TimerService) restore(ctx context.Context, uid string, now time.Time) (*pomodoro.Timer, error) {
	saved, err := s.store.Load(ctx, uid)
	if errors.Is(err, timerstore.ErrNotFound) {
		return pomodoro.New(pomodoro.DefaultSettings(), now)
	}
	if err != nil {
		return nil, fmt.Errorf("load timer: %w", err)
	}
	timer, err := pomodoro.Restore(saved, now)
	if err == nil {
		return timer, nil
	}
	s.logger().Info("Discarding saved timer", "uid", uid, "err", err)
	settings := saved.Settings
	if settings.Validate() != nil {
		settings = pomodoro.DefaultSettings()
	}
	return pomodoro.New(settings, now)
}

func (s *TimerService) save(ctx context.Context, uid string, st pomodoro.State) {
	if err := s.store.Save(ctx, uid, st); err != nil {
		s.logger().Error("Error saving timer state", "uid", uid, "err", err)
	}
}

// startTicker must be called with ut.mu held.
func (s *TimerService) startTicker(uid string, ut *userTimer) {
	if ut.stop != nil {
		return
	}
	stop := make(chan struct{})
	ut.stop = stop
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.onTick(uid, ut, stop) {
					return
				}
			}
		}
	}()
}

// stopTicker must be called with ut.mu held.
func (s *TimerService) stopTicker(ut *userTimer) {
	if ut.stop != nil {
		close(ut.stop)
		ut.stop = nil
	}
}

// onTick advances the timer and reports whether the ticker keeps running.
func (s *TimerService) onTick(uid string, ut *userTimer, stop chan struct{}) bool {
	ut.mu.Lock()
	if ut.stop != stop {
		ut.mu.Unlock()
		return false
	}
	c, done := ut.timer.Advance(s.now())
	if done {
		ut.stop = nil
		ut.recording.Add(1)
	}
	s.save(context.Background(), uid, ut.timer.State())
	ut.mu.Unlock()

	if done {
		s.recordCompletion(uid, ut, c)
	}
	return !done
}

// recordCompletion adds a finished focus phase to the user's statistics.
// The caller has done ut.recording.Add(1).
func (s *TimerService) recordCompletion(uid string, ut *userTimer, c pomodoro.Completion) {
	defer ut.recording.Done()
	if c.From != pomodoro.Focus {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	err := s.Repo.AddUserStats(ctx, uid, repository.StatsDelta{
		FocusSessions:     1,
		CompletedSessions: 1,
		TotalFocusTime:    c.FocusMinutes,
	})
	if err != nil {
		s.logger().Error("Error updating focus stats", "uid", uid, "err", err)
	}
	_, err = s.Repo.CreateSession(ctx, uid, model.PomodoroSession{
		DurationMinutes: c.FocusMinutes,
		SessionNumber:   c.CompletedSessions,
		CompletedAt:     c.At,
	})
	if err != nil {
		s.logger().Error("Error recording focus session", "uid", uid, "err", err)
	}
}

// apply runs op on an up to date timer and persists the result.
func (s *TimerService) apply(ctx context.Context, uid string, op func(ut *userTimer, now time.Time) error) (pomodoro.State, error) {
	ut, err := s.load(ctx, uid)
	if err != nil {
		return pomodoro.State{}, err
	}
	ut.mu.Lock()
	if ut.gone {
		ut.mu.Unlock()
		return s.apply(ctx, uid, op)
	}
	now := s.now()
	c, done := ut.timer.Advance(now)
	if done {
		s.stopTicker(ut)
		ut.recording.Add(1)
	}
	err = op(ut, now)
	st := ut.timer.State()
	if err == nil {
		s.save(ctx, uid, st)
	}
	ut.mu.Unlock()

	if done {
		s.recordCompletion(uid, ut, c)
	}
	return st, err
}

func (s *TimerService) State(ctx context.Context, uid string) (pomodoro.State, error) {
	return s.apply(ctx, uid, func(*userTimer, time.Time) error { return nil })
}

func (s *TimerService) Start(ctx context.Context, uid string) (pomodoro.State, error) {
	return s.apply(ctx, uid, func(ut *userTimer, now time.Time) error {
		ut.timer.Start(now)
		s.startTicker(uid, ut)
		return nil
	})
}

func (s *TimerService) Pause(ctx context.Context, uid string) (pomodoro.State, error) {
	return s.apply(ctx, uid, func(ut *userTimer, now time.Time) error {
		s.stopTicker(ut)
		ut.timer.Pause(now)
		return nil
	})
}

func (s *TimerService) Reset(ctx context.Context, uid string) (pomodoro.State, error) {
	return s.apply(ctx, uid, func(ut *userTimer, now time.Time) error {
		s.stopTicker(ut)
		ut.timer.Reset(now)
		return nil
	})
}

func (s *TimerService) UpdateSettings(ctx context.Context, uid string, settings pomodoro.Settings) (pomodoro.State, error) {
	return s.apply(ctx, uid, func(ut *userTimer, now time.Time) error {
		return ut.timer.UpdateSettings(settings, now)
	})
}

// Forget stops and drops the user's timer along with its snapshot. It returns
// once no completion of that timer is still being recorded.
func (s *TimerService) Forget(ctx context.Context, uid string) error {
	s.mu.Lock()
	ut, ok := s.timers[uid]
	if ok {
		ut.mu.Lock()
		s.stopTicker(ut)
		ut.gone = true
		ut.mu.Unlock()
		delete(s.timers, uid)
	}
	s.mu.Unlock()
	if ok {
		ut.recording.Wait()
	}
	if err := s.store.Delete(ctx, uid); err != nil {
		return fmt.Errorf("delete timer snapshot: %w", err)
	}
	return nil
}

// Close stops every ticker. Snapshots stay so timers resume after a restart.
func (s *TimerService) Close() {
	s.mu.Lock()
	s.closed = true
	for _, ut := range s.timers {
		ut.mu.Lock()
		s.stopTicker(ut)
		ut.mu.Unlock()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
