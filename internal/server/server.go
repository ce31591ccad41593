package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/completion"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	tracker  *workout.Tracker
	pipeline *completion.Pipeline
	stats    *analytics.Aggregator
	validate *validator.Validate
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, tracker *workout.Tracker, pipeline *completion.Pipeline, stats *analytics.Aggregator, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		tracker:  tracker,
		pipeline: pipeline,
		stats:    stats,
		validate: validator.New(),
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read-only endpoints, no auth. Network access control is tsnet's job.
	s.router.Get("/api/v1/templates", s.handleListTemplates)
	s.router.Get("/api/v1/templates/{id}", s.handleGetTemplate)
	s.router.Get("/api/v1/favorites", s.handleListFavorites)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/session", s.handleGetSession)
	s.router.Get("/api/v1/stats", s.handleWorkoutStats)
	s.router.Get("/api/v1/records", s.handlePersonalRecords)
	s.router.Get("/api/v1/progress", s.handleExerciseProgress)

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Post("/api/v1/templates", s.handleCreateTemplate)
		r.Delete("/api/v1/templates/{id}", s.handleDeleteTemplate)
		r.Put("/api/v1/templates/{id}/favorite", s.handleAddFavorite)
		r.Delete("/api/v1/templates/{id}/favorite", s.handleRemoveFavorite)
		r.Post("/api/v1/exercises", s.handleCreateExercise)

		r.Post("/api/v1/session/start", s.handleStartSession)
		r.Post("/api/v1/session/pause", s.handlePauseSession)
		r.Post("/api/v1/session/resume", s.handleResumeSession)
		r.Post("/api/v1/session/discard", s.handleDiscardSession)
		r.Post("/api/v1/session/complete", s.handleCompleteSession)
		r.Patch("/api/v1/session/title", s.handleUpdateTitle)
		r.Post("/api/v1/session/exercises", s.handleAddExercise)
		r.Post("/api/v1/session/exercises/{idx}/sets", s.handleAddSet)
		r.Patch("/api/v1/session/exercises/{idx}/sets/{setIdx}", s.handleUpdateSet)
		r.Post("/api/v1/session/rest", s.handleStartRest)
	})
}
