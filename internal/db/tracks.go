package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhotoTrackRepository handles the tracks persisted alongside photos.
type PhotoTrackRepository struct {
	pool *pgxpool.Pool
}

// ReplaceForPhoto deletes the photo's existing tracks and inserts the new
// ranked list in one batch.
func (r *PhotoTrackRepository) ReplaceForPhoto(ctx context.Context, photoID uuid.UUID, tracks []PhotoTrack) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM photo_tracks WHERE photo_id = $1`, photoID); err != nil {
		return fmt.Errorf("clearing photo tracks: %w", err)
	}

	if len(tracks) > 0 {
		query := `
			INSERT INTO photo_tracks (
				photo_id, position, track_id, title, artist, duration_ms,
				preview_url, external_url, artwork_url, match_score,
				valence, energy, danceability, acousticness
			)
			SELECT $1, * FROM unnest(
				$2::int[], $3::text[], $4::text[], $5::text[], $6::int[],
				$7::text[], $8::text[], $9::text[], $10::float8[],
				$11::float8[], $12::float8[], $13::float8[], $14::float8[]
			)
		`

		positions := make([]int, len(tracks))
		ids := make([]string, len(tracks))
		titles := make([]string, len(tracks))
		artists := make([]string, len(tracks))
		durations := make([]int, len(tracks))
		previews := make([]*string, len(tracks))
		externals := make([]*string, len(tracks))
		artworks := make([]*string, len(tracks))
		scores := make([]float64, len(tracks))
		valences := make([]*float64, len(tracks))
		energies := make([]*float64, len(tracks))
		dances := make([]*float64, len(tracks))
		acoustics := make([]*float64, len(tracks))

		for i, t := range tracks {
			positions[i] = t.Position
			ids[i] = t.TrackID
			titles[i] = t.Title
			artists[i] = t.Artist
			durations[i] = t.DurationMs
			previews[i] = t.PreviewURL
			externals[i] = t.ExternalURL
			artworks[i] = t.ArtworkURL
			scores[i] = t.MatchScore
			valences[i] = t.Valence
			energies[i] = t.Energy
			dances[i] = t.Danceability
			acoustics[i] = t.Acousticness
		}

		if _, err := tx.Exec(ctx, query, photoID,
			positions, ids, titles, artists, durations,
			previews, externals, artworks, scores,
			valences, energies, dances, acoustics,
		); err != nil {
			return fmt.Errorf("batch inserting photo tracks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing photo tracks: %w", err)
	}
	return nil
}

// ListForPhoto retrieves a photo's tracks in rank order.
func (r *PhotoTrackRepository) ListForPhoto(ctx context.Context, photoID uuid.UUID) ([]PhotoTrack, error) {
	query := `
		SELECT photo_id, position, track_id, title, artist, duration_ms,
		       preview_url, external_url, artwork_url, match_score,
		       valence, energy, danceability, acousticness
		FROM photo_tracks
		WHERE photo_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, photoID)
	if err != nil {
		return nil, fmt.Errorf("querying photo tracks: %w", err)
	}
	defer rows.Close()

	return scanPhotoTracks(rows)
}

// ListTopForVisitor retrieves the best-ranked track of every photo the
// visitor owns, used for vibe grouping.
func (r *PhotoTrackRepository) ListTopForVisitor(ctx context.Context, visitorID string) ([]PhotoTrack, error) {
	query := `
		SELECT pt.photo_id, pt.position, pt.track_id, pt.title, pt.artist, pt.duration_ms,
		       pt.preview_url, pt.external_url, pt.artwork_url, pt.match_score,
		       pt.valence, pt.energy, pt.danceability, pt.acousticness
		FROM photo_tracks pt
		JOIN photos p ON p.id = pt.photo_id
		WHERE p.visitor_id = $1 AND pt.position = 0
	`
	rows, err := r.pool.Query(ctx, query, visitorID)
	if err != nil {
		return nil, fmt.Errorf("querying top photo tracks: %w", err)
	}
	defer rows.Close()

	return scanPhotoTracks(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPhotoTracks(rows pgxRows) ([]PhotoTrack, error) {
	var tracks []PhotoTrack
	for rows.Next() {
		var t PhotoTrack
		if err := rows.Scan(
			&t.PhotoID,
			&t.Position,
			&t.TrackID,
			&t.Title,
			&t.Artist,
			&t.DurationMs,
			&t.PreviewURL,
			&t.ExternalURL,
			&t.ArtworkURL,
			&t.MatchScore,
			&t.Valence,
			&t.Energy,
			&t.Danceability,
			&t.Acousticness,
		); err != nil {
			return nil, fmt.Errorf("scanning photo track: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating photo tracks: %w", err)
	}
	return tracks, nil
}
