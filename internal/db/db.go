// Package db provides PostgreSQL persistence for the photo gallery.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Photos returns a PhotoRepository.
func (db *DB) Photos() *PhotoRepository {
	return &PhotoRepository{pool: db.pool}
}

// PhotoTracks returns a PhotoTrackRepository.
func (db *DB) PhotoTracks() *PhotoTrackRepository {
	return &PhotoTrackRepository{pool: db.pool}
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS photos (
			id          UUID PRIMARY KEY,
			visitor_id  TEXT NOT NULL,
			file_name   TEXT NOT NULL,
			mood        TEXT NOT NULL,
			top_label   TEXT NOT NULL,
			confidence  DOUBLE PRECISION NOT NULL,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS photos_visitor_idx ON photos (visitor_id, uploaded_at DESC);

		CREATE TABLE IF NOT EXISTS photo_tracks (
			photo_id     UUID NOT NULL REFERENCES photos (id) ON DELETE CASCADE,
			position     INT NOT NULL,
			track_id     TEXT NOT NULL,
			title        TEXT NOT NULL,
			artist       TEXT NOT NULL,
			duration_ms  INT NOT NULL,
			preview_url  TEXT,
			external_url TEXT,
			artwork_url  TEXT,
			match_score  DOUBLE PRECISION NOT NULL,
			valence      DOUBLE PRECISION,
			energy       DOUBLE PRECISION,
			danceability DOUBLE PRECISION,
			acousticness DOUBLE PRECISION,
			PRIMARY KEY (photo_id, position)
		);
	`
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
