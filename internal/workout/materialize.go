package workout

import (
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Materialize instantiates a fresh mutable session from a template. Each
// exercise config expands to exactly TargetSets uncompleted sets seeded with
// weight 0 and the config's target reps. The result starts active at now;
// installing it as the tracked session is the caller's job.
func Materialize(tpl *models.Template, now time.Time) (*models.Session, error) {
	if tpl == nil {
		return nil, fmt.Errorf("materialize: nil template")
	}
	if tpl.ID == "" || tpl.Title == "" {
		return nil, fmt.Errorf("materialize: template missing id or title")
	}

	s := &models.Session{
		ID:         uuid.New(),
		Title:      tpl.Title,
		Type:       tpl.Type,
		TemplateID: tpl.ID,
		Status:     models.StatusActive,
		StartTime:  now,
		Exercises:  make([]models.WorkoutExercise, 0, len(tpl.Exercises)),
	}

	for _, cfg := range tpl.Exercises {
		if cfg.ExerciseID == "" {
			return nil, fmt.Errorf("materialize: exercise config missing exercise id")
		}
		ex := models.WorkoutExercise{
			ID:         uuid.New(),
			ExerciseID: cfg.ExerciseID,
			Title:      cfg.Title,
			Category:   cfg.Category,
			Equipment:  cfg.Equipment,
			Notes:      cfg.Notes,
			Sets:       make([]models.WorkoutSet, 0, cfg.TargetSets),
		}
		for i := 0; i < cfg.TargetSets; i++ {
			ex.Sets = append(ex.Sets, models.WorkoutSet{
				ID:   uuid.New(),
				Reps: cfg.TargetReps,
				Type: models.SetNormal,
			})
		}
		s.Exercises = append(s.Exercises, ex)
	}

	return s, nil
}

// Blank starts an empty session with no originating template.
func Blank(title string, now time.Time) *models.Session {
	if title == "" {
		title = "Workout"
	}
	return &models.Session{
		ID:        uuid.New(),
		Title:     title,
		Type:      models.TypeStrength,
		Status:    models.StatusActive,
		StartTime: now,
		Exercises: []models.WorkoutExercise{},
	}
}
