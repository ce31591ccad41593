package storage

import (
	"context"
	"fmt"
)

// AddFavorite marks a template as a favorite. Idempotent.
func (db *DB) AddFavorite(ctx context.Context, templateID string) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO favorites (template_id) VALUES (?) ON CONFLICT DO NOTHING`, templateID)
	if err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a template. Removing a non-favorite is not an error.
func (db *DB) RemoveFavorite(ctx context.Context, templateID string) error {
	_, err := db.sql.ExecContext(ctx,
		`DELETE FROM favorites WHERE template_id = ?`, templateID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

// ListFavorites returns favorited template ids, newest first.
func (db *DB) ListFavorites(ctx context.Context) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT template_id FROM favorites ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
