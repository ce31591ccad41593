package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type createTemplateRequest struct {
	Title     string                    `json:"title" validate:"required"`
	Type      models.WorkoutType        `json:"type" validate:"required,oneof=strength circuit emom amrap"`
	Category  string                    `json:"category"`
	Exercises []templateExerciseRequest `json:"exercises" validate:"dive"`
	Rounds    int                       `json:"rounds"`
	Tags      []string                  `json:"tags"`
	Public    bool                      `json:"public"`
}

type templateExerciseRequest struct {
	ExerciseID string `json:"exercise_id" validate:"required"`
	TargetSets int    `json:"target_sets" validate:"required,min=1"`
	TargetReps int    `json:"target_reps" validate:"min=0"`
	Notes      string `json:"notes"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	tpl := &models.Template{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Type:      req.Type,
		Category:  req.Category,
		Rounds:    req.Rounds,
		Tags:      req.Tags,
		Public:    req.Public,
		Source:    "local",
		CreatedAt: time.Now(),
	}
	for _, ex := range req.Exercises {
		cat, err := s.db.GetExercise(r.Context(), ex.ExerciseID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise " + ex.ExerciseID})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		tpl.Exercises = append(tpl.Exercises, models.TemplateExercise{
			ExerciseID: cat.ID,
			Title:      cat.Title,
			Category:   cat.Category,
			Equipment:  cat.Equipment,
			TargetSets: ex.TargetSets,
			TargetReps: ex.TargetReps,
			Notes:      ex.Notes,
		})
	}

	if err := s.db.SaveTemplate(r.Context(), tpl); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.db.ListTemplates(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.db.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.db.GetTemplate(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.db.AddFavorite(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.db.RemoveFavorite(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := s.db.ListFavorites(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

type createExerciseRequest struct {
	Title     string `json:"title" validate:"required"`
	Category  string `json:"category"`
	Equipment string `json:"equipment"`
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var req createExerciseRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ex := &models.Exercise{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Category:  req.Category,
		Equipment: req.Equipment,
		CreatedAt: time.Now(),
	}
	if err := s.db.UpsertExercise(r.Context(), ex); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}
