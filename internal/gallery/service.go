package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/snapvibe/snapvibe/internal/db"
	"github.com/snapvibe/snapvibe/internal/mood"
	"github.com/snapvibe/snapvibe/internal/pipeline"
	"github.com/snapvibe/snapvibe/internal/spotify"
)

// Runner is the pipeline dependency.
type Runner interface {
	Run(ctx context.Context, image []byte, limit int) (*pipeline.Result, error)
}

// TrackFinder is the direct matching dependency for manual mood selection.
type TrackFinder interface {
	FindTracks(ctx context.Context, m mood.Mood, limit int) ([]spotify.Track, error)
}

// Service owns the gallery workflow: run the pipeline on an upload, keep the
// original on disk, persist the outcome, and serve it back.
type Service struct {
	store    PhotoStore
	pipeline Runner
	matcher  TrackFinder
	dataDir  string
	limit    int
}

// NewService creates a gallery service. limit is the number of tracks
// requested per photo.
func NewService(store PhotoStore, runner Runner, matcher TrackFinder, dataDir string, limit int) *Service {
	if limit <= 0 {
		limit = spotify.DefaultLimit
	}
	return &Service{
		store:    store,
		pipeline: runner,
		matcher:  matcher,
		dataDir:  dataDir,
		limit:    limit,
	}
}

// AddPhoto runs the pipeline on the upload, writes the original to disk and
// persists the photo with its ranked tracks. The pipeline error passes
// through untouched so callers can inspect its stage.
func (s *Service) AddPhoto(ctx context.Context, visitorID, uploadName string, image []byte) (*db.Photo, []db.PhotoTrack, error) {
	result, err := s.pipeline.Run(ctx, image, s.limit)
	if err != nil {
		return nil, nil, err
	}

	id := uuid.New()
	fileName := id.String() + safeExt(uploadName)
	if err := s.writeOriginal(fileName, image); err != nil {
		return nil, nil, err
	}

	photo := &db.Photo{
		ID:         id,
		VisitorID:  visitorID,
		FileName:   fileName,
		Mood:       string(result.Classification.Mood),
		TopLabel:   result.Classification.TopLabel,
		Confidence: result.Classification.Confidence,
	}
	tracks := toPhotoTracks(id, result.Tracks)

	if err := s.store.SavePhoto(ctx, photo, tracks); err != nil {
		return nil, nil, fmt.Errorf("saving photo: %w", err)
	}
	return photo, tracks, nil
}

// Rematch replaces a photo's soundtrack with tracks for a manually chosen
// mood, skipping classification entirely.
func (s *Service) Rematch(ctx context.Context, photoID uuid.UUID, m mood.Mood) ([]db.PhotoTrack, error) {
	found, err := s.matcher.FindTracks(ctx, m, s.limit)
	if err != nil {
		return nil, fmt.Errorf("matching tracks: %w", err)
	}

	tracks := toPhotoTracks(photoID, found)
	if err := s.store.Rematch(ctx, photoID, string(m), tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Photo loads one photo with its tracks.
func (s *Service) Photo(ctx context.Context, id uuid.UUID) (*db.Photo, []db.PhotoTrack, error) {
	return s.store.Photo(ctx, id)
}

// Photos lists a visitor's photos.
func (s *Service) Photos(ctx context.Context, visitorID string) ([]db.Photo, error) {
	return s.store.Photos(ctx, visitorID)
}

// VibeGroups clusters the visitor's gallery by the audio character of each
// photo's best track.
func (s *Service) VibeGroups(ctx context.Context, visitorID string) ([]VibeGroup, []uuid.UUID, error) {
	top, err := s.store.TopTracks(ctx, visitorID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading top tracks: %w", err)
	}
	groups, outliers := GroupByVibe(top, DefaultVibeConfig())
	return groups, outliers, nil
}

func (s *Service) writeOriginal(fileName string, image []byte) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	path := filepath.Join(s.dataDir, fileName)
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return fmt.Errorf("writing original: %w", err)
	}
	return nil
}

// safeExt keeps only a plain image extension from the upload name.
func safeExt(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ".jpg"
	}
}

// toPhotoTracks converts matched tracks into rows, preserving rank order.
func toPhotoTracks(photoID uuid.UUID, tracks []spotify.Track) []db.PhotoTrack {
	rows := make([]db.PhotoTrack, len(tracks))
	for i, t := range tracks {
		row := db.PhotoTrack{
			PhotoID:    photoID,
			Position:   i,
			TrackID:    t.ID,
			Title:      t.Title,
			Artist:     strings.Join(t.Artists, ", "),
			DurationMs: int(t.Duration.Milliseconds()),
			MatchScore: t.MatchScore,
		}
		if t.PreviewURL != "" {
			row.PreviewURL = &t.PreviewURL
		}
		if t.ExternalURL != "" {
			row.ExternalURL = &t.ExternalURL
		}
		if t.ArtworkURL != "" {
			row.ArtworkURL = &t.ArtworkURL
		}
		if t.Features != nil {
			row.Valence = featureValue(t.Features, "valence")
			row.Energy = featureValue(t.Features, "energy")
			row.Danceability = featureValue(t.Features, "danceability")
			row.Acousticness = featureValue(t.Features, "acousticness")
		}
		rows[i] = row
	}
	return rows
}

func featureValue(features spotify.FeatureVector, attr string) *float64 {
	if v, ok := features[attr]; ok {
		value := v
		return &value
	}
	return nil
}
