package workout

import (
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

func benchTemplate() *models.Template {
	return &models.Template{
		ID:    "tpl-1",
		Title: "Push Day",
		Type:  models.TypeStrength,
		Exercises: []models.TemplateExercise{
			{ExerciseID: "bench", Title: "Bench Press", TargetSets: 3, TargetReps: 8},
			{ExerciseID: "ohp", Title: "Overhead Press", TargetSets: 4, TargetReps: 5},
		},
	}
}

// TestMaterializeSetCounts verifies every exercise config expands to exactly
// its target set count, with reps seeded and nothing completed.
func TestMaterializeSetCounts(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s, err := Materialize(benchTemplate(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(s.Exercises))
	}

	total := 0
	for _, ex := range s.Exercises {
		total += len(ex.Sets)
	}
	if total != 7 {
		t.Errorf("total sets = %d, want 7", total)
	}

	for i, wantReps := range []int{8, 5} {
		for j, set := range s.Exercises[i].Sets {
			if set.Completed {
				t.Errorf("exercise %d set %d completed = true, want false", i, j)
			}
			if set.Reps != wantReps {
				t.Errorf("exercise %d set %d reps = %d, want %d", i, j, set.Reps, wantReps)
			}
			if set.Weight != 0 {
				t.Errorf("exercise %d set %d weight = %v, want 0", i, j, set.Weight)
			}
		}
	}
}

// TestMaterializeSessionFields verifies the session starts active at the
// given time with no end time and a template back-reference.
func TestMaterializeSessionFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s, err := Materialize(benchTemplate(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Status != models.StatusActive {
		t.Errorf("status = %q, want %q", s.Status, models.StatusActive)
	}
	if !s.StartTime.Equal(now) {
		t.Errorf("start time = %v, want %v", s.StartTime, now)
	}
	if s.EndTime != nil {
		t.Errorf("end time = %v, want nil", s.EndTime)
	}
	if s.Completed {
		t.Error("completed = true, want false")
	}
	if s.TemplateID != "tpl-1" {
		t.Errorf("template id = %q, want %q", s.TemplateID, "tpl-1")
	}
}

// TestMaterializeEmptyTemplate verifies templates with no exercises produce
// an empty session rather than an error.
func TestMaterializeEmptyTemplate(t *testing.T) {
	tpl := &models.Template{ID: "tpl-2", Title: "Empty", Type: models.TypeStrength}
	s, err := Materialize(tpl, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Exercises) != 0 {
		t.Errorf("exercises = %d, want 0", len(s.Exercises))
	}
}

// TestMaterializeInvalid verifies malformed templates are rejected.
func TestMaterializeInvalid(t *testing.T) {
	if _, err := Materialize(nil, time.Now()); err == nil {
		t.Error("nil template: want error, got nil")
	}
	if _, err := Materialize(&models.Template{Title: "no id"}, time.Now()); err == nil {
		t.Error("missing id: want error, got nil")
	}
	tpl := &models.Template{
		ID: "tpl-3", Title: "Bad",
		Exercises: []models.TemplateExercise{{TargetSets: 3}},
	}
	if _, err := Materialize(tpl, time.Now()); err == nil {
		t.Error("missing exercise id: want error, got nil")
	}
}
