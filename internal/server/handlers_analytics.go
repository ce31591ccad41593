package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/analytics"
)

func (s *Server) handleWorkoutStats(w http.ResponseWriter, r *http.Request) {
	period := analytics.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = analytics.PeriodAll
	}

	stats, err := s.stats.WorkoutStats(r.Context(), period)
	if err != nil {
		if !period.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	var exerciseIDs []string
	if v := r.URL.Query().Get("exercises"); v != "" {
		exerciseIDs = strings.Split(v, ",")
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	records, err := s.stats.PersonalRecords(r.Context(), exerciseIDs, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.URL.Query().Get("exercise")
	if exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}

	metric := analytics.ProgressMetric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = analytics.MetricWeight
	}
	period := analytics.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = analytics.PeriodAll
	}

	points, err := s.stats.ExerciseProgress(r.Context(), exerciseID, metric, period)
	if err != nil {
		if !period.Valid() || (metric != analytics.MetricWeight && metric != analytics.MetricReps && metric != analytics.MetricVolume) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, points)
}
