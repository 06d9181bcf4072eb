package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoRepository handles photo database operations.
type PhotoRepository struct {
	pool *pgxpool.Pool
}

// Insert stores a new photo.
func (r *PhotoRepository) Insert(ctx context.Context, photo *Photo) error {
	query := `
		INSERT INTO photos (id, visitor_id, file_name, mood, top_label, confidence, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING uploaded_at
	`
	err := r.pool.QueryRow(ctx, query,
		photo.ID,
		photo.VisitorID,
		photo.FileName,
		photo.Mood,
		photo.TopLabel,
		photo.Confidence,
	).Scan(&photo.UploadedAt)
	if err != nil {
		return fmt.Errorf("inserting photo: %w", err)
	}
	return nil
}

// Get retrieves a photo by ID.
func (r *PhotoRepository) Get(ctx context.Context, id uuid.UUID) (*Photo, error) {
	query := `
		SELECT id, visitor_id, file_name, mood, top_label, confidence, uploaded_at
		FROM photos
		WHERE id = $1
	`
	var photo Photo
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&photo.ID,
		&photo.VisitorID,
		&photo.FileName,
		&photo.Mood,
		&photo.TopLabel,
		&photo.Confidence,
		&photo.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying photo: %w", err)
	}
	return &photo, nil
}

// ListByVisitor retrieves a visitor's photos, newest first.
func (r *PhotoRepository) ListByVisitor(ctx context.Context, visitorID string) ([]Photo, error) {
	query := `
		SELECT id, visitor_id, file_name, mood, top_label, confidence, uploaded_at
		FROM photos
		WHERE visitor_id = $1
		ORDER BY uploaded_at DESC
	`
	rows, err := r.pool.Query(ctx, query, visitorID)
	if err != nil {
		return nil, fmt.Errorf("querying photos: %w", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var photo Photo
		if err := rows.Scan(
			&photo.ID,
			&photo.VisitorID,
			&photo.FileName,
			&photo.Mood,
			&photo.TopLabel,
			&photo.Confidence,
			&photo.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating photos: %w", err)
	}
	return photos, nil
}

// UpdateMood overwrites a photo's mood after a manual re-match.
func (r *PhotoRepository) UpdateMood(ctx context.Context, id uuid.UUID, mood string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE photos SET mood = $2 WHERE id = $1`, id, mood)
	if err != nil {
		return fmt.Errorf("updating photo mood: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a photo and, via cascade, its tracks.
func (r *PhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
