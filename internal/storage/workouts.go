package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// SaveWorkout inserts a frozen workout with its exercises and sets in one
// transaction. This is the must-succeed step of the completion pipeline.
func (db *DB) SaveWorkout(ctx context.Context, w *models.Workout) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workouts (id, title, type, template_id, start_time, end_time,
		 duration_sec, total_volume, avg_rpe, source, nostr_event_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		w.ID.String(), w.Title, string(w.Type), w.TemplateID, w.StartTime, w.EndTime,
		w.DurationSec, w.TotalVolume, w.AvgRPE, w.Source, w.NostrEventID)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}

	for pos, ex := range w.Exercises {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO workout_exercises (id, workout_id, position, exercise_id, title, category, equipment, notes)
			 VALUES (?,?,?,?,?,?,?,?)`,
			ex.ID.String(), w.ID.String(), pos, ex.ExerciseID, ex.Title, ex.Category, ex.Equipment, ex.Notes)
		if err != nil {
			return fmt.Errorf("inserting workout exercise: %w", err)
		}
		for spos, set := range ex.Sets {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO workout_sets (id, workout_exercise_id, position, weight, reps, rpe, set_type, completed)
				 VALUES (?,?,?,?,?,?,?,?)`,
				set.ID.String(), ex.ID.String(), spos, set.Weight, set.Reps, set.RPE, string(set.Type), set.Completed)
			if err != nil {
				return fmt.Errorf("inserting workout set: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workout: %w", err)
	}
	return nil
}

// SetWorkoutEventID records the Nostr event id after a successful publish.
func (db *DB) SetWorkoutEventID(ctx context.Context, workoutID uuid.UUID, eventID string) error {
	_, err := db.sql.ExecContext(ctx,
		`UPDATE workouts SET nostr_event_id = ? WHERE id = ?`, eventID, workoutID.String())
	if err != nil {
		return fmt.Errorf("updating workout event id: %w", err)
	}
	return nil
}

// ListWorkouts retrieves workouts whose start time falls in [since, until),
// oldest first, with exercises and sets loaded.
func (db *DB) ListWorkouts(ctx context.Context, since, until time.Time) ([]models.Workout, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, title, type, template_id, start_time, end_time,
		 duration_sec, total_volume, avg_rpe, source, nostr_event_id
		 FROM workouts
		 WHERE start_time >= ? AND start_time < ?
		 ORDER BY start_time ASC`,
		since, until)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		exs, err := db.loadExercises(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Exercises = exs
	}
	return result, nil
}

// GetWorkout retrieves a single workout by id with exercises and sets.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	row := db.sql.QueryRowContext(ctx,
		`SELECT id, title, type, template_id, start_time, end_time,
		 duration_sec, total_volume, avg_rpe, source, nostr_event_id
		 FROM workouts WHERE id = ?`, id.String())

	w, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	exs, err := db.loadExercises(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Exercises = exs
	return w, nil
}

func (db *DB) loadExercises(ctx context.Context, workoutID uuid.UUID) ([]models.WorkoutExercise, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, exercise_id, title, category, equipment, notes
		 FROM workout_exercises WHERE workout_id = ? ORDER BY position ASC`,
		workoutID.String())
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer rows.Close()

	var exs []models.WorkoutExercise
	for rows.Next() {
		var ex models.WorkoutExercise
		var id string
		if err := rows.Scan(&id, &ex.ExerciseID, &ex.Title, &ex.Category, &ex.Equipment, &ex.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		ex.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing exercise id: %w", err)
		}
		exs = append(exs, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range exs {
		sets, err := db.loadSets(ctx, exs[i].ID)
		if err != nil {
			return nil, err
		}
		exs[i].Sets = sets
	}
	return exs, nil
}

func (db *DB) loadSets(ctx context.Context, exerciseID uuid.UUID) ([]models.WorkoutSet, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, weight, reps, rpe, set_type, completed
		 FROM workout_sets WHERE workout_exercise_id = ? ORDER BY position ASC`,
		exerciseID.String())
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var sets []models.WorkoutSet
	for rows.Next() {
		var s models.WorkoutSet
		var id, setType string
		if err := rows.Scan(&id, &s.Weight, &s.Reps, &s.RPE, &setType, &s.Completed); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		s.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing set id: %w", err)
		}
		s.Type = models.SetType(setType)
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

func scanWorkout(row interface{ Scan(dest ...any) error }) (*models.Workout, error) {
	var w models.Workout
	var id, typ string
	var end sql.NullTime
	err := row.Scan(&id, &w.Title, &typ, &w.TemplateID, &w.StartTime, &end,
		&w.DurationSec, &w.TotalVolume, &w.AvgRPE, &w.Source, &w.NostrEventID)
	if err != nil {
		return nil, fmt.Errorf("scanning workout: %w", err)
	}
	w.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing workout id: %w", err)
	}
	w.Type = models.WorkoutType(typ)
	if end.Valid {
		t := end.Time
		w.EndTime = &t
	}
	return &w, nil
}
