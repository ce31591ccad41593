package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SaveTemplate inserts a template with its exercise configs in one transaction.
func (db *DB) SaveTemplate(ctx context.Context, t *models.Template) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO templates (id, title, type, category, rounds, duration_sec,
		 interval_sec, rest_sec, tags, public, source, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Title, string(t.Type), t.Category, t.Rounds, t.DurationSec,
		t.IntervalSec, t.RestSec, strings.Join(t.Tags, ","), t.Public, t.Source, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}

	if err := insertTemplateExercises(ctx, tx, t.ID, t.Exercises); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing template: %w", err)
	}
	return nil
}

// UpdateTemplateExercises replaces a template's exercise configuration.
// Used by the completion pipeline's update_existing action.
func (db *DB) UpdateTemplateExercises(ctx context.Context, templateID string, exs []models.TemplateExercise) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM template_exercises WHERE template_id = ?`, templateID); err != nil {
		return fmt.Errorf("clearing template exercises: %w", err)
	}
	if err := insertTemplateExercises(ctx, tx, templateID, exs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing template update: %w", err)
	}
	return nil
}

func insertTemplateExercises(ctx context.Context, tx *sql.Tx, templateID string, exs []models.TemplateExercise) error {
	for pos, ex := range exs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO template_exercises (template_id, position, exercise_id, title,
			 category, equipment, target_sets, target_reps, notes)
			 VALUES (?,?,?,?,?,?,?,?,?)`,
			templateID, pos, ex.ExerciseID, ex.Title, ex.Category, ex.Equipment,
			ex.TargetSets, ex.TargetReps, ex.Notes)
		if err != nil {
			return fmt.Errorf("inserting template exercise: %w", err)
		}
	}
	return nil
}

// GetTemplate retrieves a template by id with its exercise configs.
func (db *DB) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	row := db.sql.QueryRowContext(ctx,
		`SELECT id, title, type, category, rounds, duration_sec, interval_sec,
		 rest_sec, tags, public, source, created_at
		 FROM templates WHERE id = ?`, id)

	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	exs, err := db.loadTemplateExercises(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Exercises = exs
	return t, nil
}

// ListTemplates retrieves all templates with exercise configs, newest first.
func (db *DB) ListTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, title, type, category, rounds, duration_sec, interval_sec,
		 rest_sec, tags, public, source, created_at
		 FROM templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		exs, err := db.loadTemplateExercises(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Exercises = exs
	}
	return result, nil
}

// DeleteTemplate removes a template and its exercise configs.
func (db *DB) DeleteTemplate(ctx context.Context, id string) error {
	res, err := db.sql.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) loadTemplateExercises(ctx context.Context, templateID string) ([]models.TemplateExercise, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT exercise_id, title, category, equipment, target_sets, target_reps, notes
		 FROM template_exercises WHERE template_id = ? ORDER BY position ASC`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	var exs []models.TemplateExercise
	for rows.Next() {
		var ex models.TemplateExercise
		if err := rows.Scan(&ex.ExerciseID, &ex.Title, &ex.Category, &ex.Equipment,
			&ex.TargetSets, &ex.TargetReps, &ex.Notes); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		exs = append(exs, ex)
	}
	return exs, rows.Err()
}

func scanTemplate(row interface{ Scan(dest ...any) error }) (*models.Template, error) {
	var t models.Template
	var typ, tags string
	err := row.Scan(&t.ID, &t.Title, &typ, &t.Category, &t.Rounds, &t.DurationSec,
		&t.IntervalSec, &t.RestSec, &tags, &t.Public, &t.Source, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}
	t.Type = models.WorkoutType(typ)
	if tags != "" {
		t.Tags = strings.Split(tags, ",")
	}
	return &t, nil
}
