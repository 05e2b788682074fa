// Package connection wires the configured backends into the HTTP server.
package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"studybuddy/config"
	"studybuddy/controller/dashboard"
	"studybuddy/controller/flashcard"
	"studybuddy/controller/note"
	"studybuddy/controller/task"
	"studybuddy/controller/timer"
	"studybuddy/controller/user"
	"studybuddy/middleware"
	"studybuddy/repository"
	"studybuddy/services"
	"studybuddy/timerstore"
)

const shutdownTimeout = 10 * time.Second

// Services are the route handlers' backends.
type Services struct {
	Dashboard  *services.DashboardService
	Planner    *services.PlannerService
	Flashcards *services.FlashcardService
	Notes      *services.NoteService
	Profile    *services.ProfileService
	Timer      *services.TimerService
}

// NewServices builds every service on top of repo.
func NewServices(cfg config.Config, deps services.Deps, identities services.IdentityProvider, snapshots services.TimerSnapshots) *Services {
	s := &Services{
		Dashboard:  services.NewDashboardService(deps, cfg.Dashboard.UpcomingLimit),
		Planner:    services.NewPlannerService(deps),
		Flashcards: services.NewFlashcardService(deps, nil),
		Notes:      services.NewNoteService(deps, cfg.Notes.AutosaveDelay),
		Timer:      services.NewTimerService(deps, snapshots, cfg.Timer.Tick),
	}
	s.Profile = services.NewProfileService(deps, identities, s.Timer, s.Flashcards)
	return s
}

// Close stops background work, writing out pending note saves.
func (s *Services) Close() {
	s.Notes.Close()
	s.Timer.Close()
}

func NewRouter(cfg config.Config, logger *slog.Logger, identities services.IdentityProvider, svc *Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
		corsConfig.AddAllowHeaders("Authorization")
		router.Use(cors.New(corsConfig))
	} else {
		router.Use(cors.Default())
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	gate := middleware.AuthGate(identities, cfg.Server.LoginPath)
	dashboard.DashboardController(router, gate, svc.Dashboard)
	task.TaskController(router, gate, svc.Planner)
	flashcard.FlashcardController(router, gate, svc.Flashcards)
	note.NoteController(router, gate, svc.Notes)
	user.UserController(router, gate, svc.Profile)
	timer.TimerController(router, gate, svc.Timer)
	return router
}

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var (
		repo       repository.Repository
		identities services.IdentityProvider
	)
	if cfg.NeedsFirebase() {
		fb, err := FBConnection(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if fb.Firestore != nil {
			if repo, err = repository.NewFirestoreRepository(fb.Firestore); err != nil {
				return err
			}
		}
		if fb.Auth != nil {
			identities = services.NewFirebaseVerifier(fb.Auth)
		}
	}
	if repo == nil {
		logger.Warn("Using in-memory storage; data is lost on exit")
		repo = repository.NewMemoryRepository()
	}
	defer repo.Close()
	if identities == nil {
		identities = services.NewJWTVerifier(cfg.Auth.JWTSecret)
	}

	snapshots, err := timerstore.Open(cfg.Timer.DBPath)
	if err != nil {
		return fmt.Errorf("open timer store: %w", err)
	}
	defer snapshots.Close()

	svc := NewServices(cfg, services.Deps{Repo: repo, Location: loc, Logger: logger}, identities, snapshots)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           NewRouter(cfg, logger, identities, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver, "auth", cfg.Auth.Mode)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		svc.Close()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	svc.Close()
	return err
}
