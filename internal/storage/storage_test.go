package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := RunMigrations(path, "../../migrations"); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	db, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTemplateRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tpl := &models.Template{
		ID:    "tpl-1",
		Title: "Push Day",
		Type:  models.TypeStrength,
		Exercises: []models.TemplateExercise{
			{ExerciseID: "bench", Title: "Bench Press", TargetSets: 3, TargetReps: 8},
			{ExerciseID: "ohp", Title: "Overhead Press", TargetSets: 3, TargetReps: 10},
		},
		Tags:      []string{"push", "chest"},
		CreatedAt: time.Now().UTC(),
	}
	if err := db.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.GetTemplate(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Push Day" {
		t.Errorf("title = %q, want Push Day", got.Title)
	}
	if len(got.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(got.Exercises))
	}
	if got.Exercises[0].ExerciseID != "bench" || got.Exercises[1].ExerciseID != "ohp" {
		t.Errorf("exercise order = %s, %s, want bench, ohp",
			got.Exercises[0].ExerciseID, got.Exercises[1].ExerciseID)
	}
	if len(got.Tags) != 2 {
		t.Errorf("tags = %v, want 2 entries", got.Tags)
	}
}

func TestUpdateTemplateExercises(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tpl := &models.Template{
		ID: "tpl-1", Title: "Push", Type: models.TypeStrength,
		Exercises: []models.TemplateExercise{
			{ExerciseID: "bench", Title: "Bench Press", TargetSets: 3, TargetReps: 8},
		},
	}
	if err := db.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("save: %v", err)
	}

	next := []models.TemplateExercise{
		{ExerciseID: "bench", Title: "Bench Press", TargetSets: 4, TargetReps: 6},
	}
	if err := db.UpdateTemplateExercises(ctx, "tpl-1", next); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := db.GetTemplate(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Exercises[0].TargetSets != 4 || got.Exercises[0].TargetReps != 6 {
		t.Errorf("config = %d x %d, want 4 x 6",
			got.Exercises[0].TargetSets, got.Exercises[0].TargetReps)
	}
}

func TestGetTemplateNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetTemplate(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTemplate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	tpl := &models.Template{ID: "tpl-1", Title: "T", Type: models.TypeStrength}
	if err := db.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.DeleteTemplate(ctx, "tpl-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := db.DeleteTemplate(ctx, "tpl-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestWorkoutRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	w := &models.Workout{
		ID:          uuid.New(),
		Title:       "Push Day",
		Type:        models.TypeStrength,
		StartTime:   start,
		EndTime:     &end,
		DurationSec: 2700,
		TotalVolume: 1600,
		AvgRPE:      7.5,
		Source:      "local",
		Exercises: []models.WorkoutExercise{
			{
				ID: uuid.New(), ExerciseID: "bench", Title: "Bench Press",
				Sets: []models.WorkoutSet{
					{ID: uuid.New(), Weight: 100, Reps: 8, RPE: 7, Type: models.SetNormal, Completed: true},
					{ID: uuid.New(), Weight: 100, Reps: 8, RPE: 8, Type: models.SetNormal, Completed: true},
				},
			},
		},
	}
	if err := db.SaveWorkout(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.GetWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Push Day" {
		t.Errorf("title = %q, want Push Day", got.Title)
	}
	if got.StartTime.Unix() != start.Unix() {
		t.Errorf("start = %v, want %v", got.StartTime, start)
	}
	if got.EndTime == nil || got.EndTime.Unix() != end.Unix() {
		t.Errorf("end = %v, want %v", got.EndTime, end)
	}
	if len(got.Exercises) != 1 || len(got.Exercises[0].Sets) != 2 {
		t.Fatalf("shape = %d exercises, want 1 with 2 sets", len(got.Exercises))
	}
	if got.Exercises[0].Sets[1].RPE != 8 {
		t.Errorf("set rpe = %v, want 8", got.Exercises[0].Sets[1].RPE)
	}
}

func TestListWorkoutsWindow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	for _, offset := range []int{-10, -5, -1} {
		w := &models.Workout{
			ID:        uuid.New(),
			Title:     "W",
			Type:      models.TypeStrength,
			StartTime: base.AddDate(0, 0, offset),
			Source:    "local",
		}
		if err := db.SaveWorkout(ctx, w); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	// [base-5d, base) picks up the -5 and -1 workouts; the lower bound is
	// inclusive, the upper exclusive.
	got, err := db.ListWorkouts(ctx, base.AddDate(0, 0, -5), base)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("workouts = %d, want 2", len(got))
	}
	if !got[0].StartTime.Before(got[1].StartTime) {
		t.Error("workouts not in ascending start order")
	}
}

func TestSetWorkoutEventID(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	w := &models.Workout{
		ID: uuid.New(), Title: "W", Type: models.TypeStrength,
		StartTime: time.Now().UTC(), Source: "local",
	}
	if err := db.SaveWorkout(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SetWorkoutEventID(ctx, w.ID, "event123"); err != nil {
		t.Fatalf("set event id: %v", err)
	}

	got, err := db.GetWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.NostrEventID != "event123" {
		t.Errorf("event id = %q, want event123", got.NostrEventID)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Empty store yields (nil, nil).
	s, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if s != nil {
		t.Fatalf("snapshot = %+v, want nil", s)
	}

	session := &models.Session{
		ID:        uuid.New(),
		Title:     "In Progress",
		Type:      models.TypeStrength,
		Status:    models.StatusActive,
		StartTime: time.Now().UTC(),
		ElapsedMs: 90000,
	}
	if err := db.SaveSnapshot(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Second save overwrites the single row.
	session.ElapsedMs = 120000
	if err := db.SaveSnapshot(ctx, session); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || got.ElapsedMs != 120000 {
		t.Fatalf("snapshot = %+v, want elapsed 120000", got)
	}
	if got.ID != session.ID {
		t.Errorf("id = %v, want %v", got.ID, session.ID)
	}

	if err := db.ClearSnapshot(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got, _ := db.LoadSnapshot(ctx); got != nil {
		t.Errorf("snapshot after clear = %+v, want nil", got)
	}
}

func TestFavorites(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.AddFavorite(ctx, "tpl-1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Adding twice is a no-op.
	if err := db.AddFavorite(ctx, "tpl-1"); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	ids, err := db.ListFavorites(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "tpl-1" {
		t.Errorf("favorites = %v, want [tpl-1]", ids)
	}

	if err := db.RemoveFavorite(ctx, "tpl-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ids, _ := db.ListFavorites(ctx); len(ids) != 0 {
		t.Errorf("favorites after remove = %v, want empty", ids)
	}
}

func TestExerciseUpsert(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	e := &models.Exercise{ID: "bench", Title: "Bench Press", Category: "chest", Equipment: "barbell"}
	if err := db.UpsertExercise(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}

	e.Title = "Barbell Bench Press"
	if err := db.UpsertExercise(ctx, e); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := db.GetExercise(ctx, "bench")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Barbell Bench Press" {
		t.Errorf("title = %q, want Barbell Bench Press", got.Title)
	}
}
