package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// UpsertExercise inserts or replaces a catalog exercise.
func (db *DB) UpsertExercise(ctx context.Context, e *models.Exercise) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO exercises (id, title, category, equipment, created_at)
		 VALUES (?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title,
		 category = excluded.category, equipment = excluded.equipment`,
		e.ID, e.Title, e.Category, e.Equipment, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting exercise: %w", err)
	}
	return nil
}

// GetExercise retrieves a catalog exercise by id.
func (db *DB) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	var e models.Exercise
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, title, category, equipment, created_at FROM exercises WHERE id = ?`, id,
	).Scan(&e.ID, &e.Title, &e.Category, &e.Equipment, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// ListExercises retrieves the catalog ordered by title.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, title, category, equipment, created_at FROM exercises ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.Equipment, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
