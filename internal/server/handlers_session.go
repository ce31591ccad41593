package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
	"github.com/go-chi/chi/v5"
)

type startSessionRequest struct {
	TemplateID string `json:"template_id,omitempty"`
	Title      string `json:"title,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var session *models.Session
	if req.TemplateID != "" {
		tpl, err := s.db.GetTemplate(r.Context(), req.TemplateID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		session, err = workout.Materialize(tpl, time.Now())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	} else {
		session = workout.Blank(req.Title, time.Now())
	}

	if err := s.tracker.Start(session); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session := s.tracker.Current()
	if session == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no session in progress"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Pause(); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(s.tracker.Status())})
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Resume(); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(s.tracker.Status())})
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Discard(r.Context()); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "idle"})
}

type updateTitleRequest struct {
	Title string `json:"title" validate:"required"`
}

func (s *Server) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req updateTitleRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.tracker.UpdateTitle(req.Title); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Current())
}

type addExerciseRequest struct {
	ExerciseID string `json:"exercise_id" validate:"required"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ex, err := s.db.GetExercise(r.Context(), req.ExerciseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := s.tracker.AddExercise(*ex); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Current())
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise index"})
		return
	}
	if err := s.tracker.AddSet(idx); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Current())
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise index"})
		return
	}
	setIdx, err := strconv.Atoi(chi.URLParam(r, "setIdx"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}

	var patch workout.SetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.tracker.UpdateSet(idx, setIdx, patch); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Current())
}

type startRestRequest struct {
	ExerciseIdx int `json:"exercise_idx"`
	SetIdx      int `json:"set_idx"`
	Seconds     int `json:"seconds" validate:"required,min=1"`
}

func (s *Server) handleStartRest(w http.ResponseWriter, r *http.Request) {
	var req startRestRequest
	if err := s.decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.tracker.StartRest(req.ExerciseIdx, req.SetIdx, req.Seconds); err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Current())
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	opts := models.CompletionOptions{StorageType: models.StorageLocalOnly}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}
	if err := s.validate.Struct(opts); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	frozen, err := s.tracker.BeginCompletion()
	if err != nil {
		s.sessionError(w, err)
		return
	}

	result, err := s.pipeline.Complete(r.Context(), frozen, opts)
	if err != nil {
		// The local write failed; put the session back so the user can retry.
		if abortErr := s.tracker.AbortCompletion(); abortErr != nil {
			s.log.Error("completion abort failed", "error", abortErr)
		}
		s.log.Error("completion failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := s.tracker.FinishCompletion(r.Context()); err != nil {
		s.log.Warn("clearing completed session failed", "error", err)
	}
	s.stats.InvalidateCache()

	writeJSON(w, http.StatusOK, result)
}

// sessionError maps tracker state-machine errors onto HTTP statuses.
func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workout.ErrNoSession):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrSessionInProgress),
		errors.Is(err, workout.ErrNotActive),
		errors.Is(err, workout.ErrNotPaused),
		errors.Is(err, workout.ErrNotCompleting):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrIndexOutOfRange):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
