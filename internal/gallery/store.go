// Package gallery stores photos with their classification outcome and
// matched tracks, and groups a visitor's gallery into vibe groups.
package gallery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snapvibe/snapvibe/internal/db"
)

// PhotoStore is the persistence boundary for the gallery. Backed by
// PostgreSQL in production and by memory when no DATABASE_URL is set.
type PhotoStore interface {
	SavePhoto(ctx context.Context, photo *db.Photo, tracks []db.PhotoTrack) error
	Photo(ctx context.Context, id uuid.UUID) (*db.Photo, []db.PhotoTrack, error)
	Photos(ctx context.Context, visitorID string) ([]db.Photo, error)
	Rematch(ctx context.Context, id uuid.UUID, mood string, tracks []db.PhotoTrack) error
	TopTracks(ctx context.Context, visitorID string) ([]db.PhotoTrack, error)
}

// ============================================================================
// PostgreSQL-backed store
// ============================================================================

// DBStore persists photos in PostgreSQL.
type DBStore struct {
	database *db.DB
}

// NewDBStore creates a PostgreSQL-backed photo store.
func NewDBStore(database *db.DB) *DBStore {
	return &DBStore{database: database}
}

// SavePhoto stores a photo and its ranked tracks.
func (s *DBStore) SavePhoto(ctx context.Context, photo *db.Photo, tracks []db.PhotoTrack) error {
	if err := s.database.Photos().Insert(ctx, photo); err != nil {
		return err
	}
	return s.database.PhotoTracks().ReplaceForPhoto(ctx, photo.ID, tracks)
}

// Photo loads one photo with its tracks.
func (s *DBStore) Photo(ctx context.Context, id uuid.UUID) (*db.Photo, []db.PhotoTrack, error) {
	photo, err := s.database.Photos().Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tracks, err := s.database.PhotoTracks().ListForPhoto(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return photo, tracks, nil
}

// Photos lists a visitor's photos, newest first.
func (s *DBStore) Photos(ctx context.Context, visitorID string) ([]db.Photo, error) {
	return s.database.Photos().ListByVisitor(ctx, visitorID)
}

// Rematch overwrites a photo's mood and track list.
func (s *DBStore) Rematch(ctx context.Context, id uuid.UUID, mood string, tracks []db.PhotoTrack) error {
	if err := s.database.Photos().UpdateMood(ctx, id, mood); err != nil {
		return err
	}
	return s.database.PhotoTracks().ReplaceForPhoto(ctx, id, tracks)
}

// TopTracks returns the best-ranked track of each of the visitor's photos.
func (s *DBStore) TopTracks(ctx context.Context, visitorID string) ([]db.PhotoTrack, error) {
	return s.database.PhotoTracks().ListTopForVisitor(ctx, visitorID)
}

// ============================================================================
// In-memory store
// ============================================================================

// MemoryStore keeps the gallery in process memory. Used when no database is
// configured, and by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	photos map[uuid.UUID]*db.Photo
	tracks map[uuid.UUID][]db.PhotoTrack
}

// NewMemoryStore creates an empty in-memory photo store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		photos: make(map[uuid.UUID]*db.Photo),
		tracks: make(map[uuid.UUID][]db.PhotoTrack),
	}
}

// SavePhoto stores a photo and its ranked tracks. The upload timestamp is
// assigned here, as the database default would.
func (s *MemoryStore) SavePhoto(_ context.Context, photo *db.Photo, tracks []db.PhotoTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now()
	}
	copied := *photo
	s.photos[photo.ID] = &copied
	s.tracks[photo.ID] = append([]db.PhotoTrack(nil), tracks...)
	return nil
}

// Photo loads one photo with its tracks.
func (s *MemoryStore) Photo(_ context.Context, id uuid.UUID) (*db.Photo, []db.PhotoTrack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	photo, ok := s.photos[id]
	if !ok {
		return nil, nil, db.ErrNotFound
	}
	copied := *photo
	return &copied, append([]db.PhotoTrack(nil), s.tracks[id]...), nil
}

// Photos lists a visitor's photos, newest first.
func (s *MemoryStore) Photos(_ context.Context, visitorID string) ([]db.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var photos []db.Photo
	for _, p := range s.photos {
		if p.VisitorID == visitorID {
			photos = append(photos, *p)
		}
	}
	sort.Slice(photos, func(i, j int) bool {
		return photos[i].UploadedAt.After(photos[j].UploadedAt)
	})
	return photos, nil
}

// Rematch overwrites a photo's mood and track list.
func (s *MemoryStore) Rematch(_ context.Context, id uuid.UUID, mood string, tracks []db.PhotoTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo, ok := s.photos[id]
	if !ok {
		return db.ErrNotFound
	}
	photo.Mood = mood
	s.tracks[id] = append([]db.PhotoTrack(nil), tracks...)
	return nil
}

// TopTracks returns the best-ranked track of each of the visitor's photos.
func (s *MemoryStore) TopTracks(_ context.Context, visitorID string) ([]db.PhotoTrack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var top []db.PhotoTrack
	for id, p := range s.photos {
		if p.VisitorID != visitorID {
			continue
		}
		for _, t := range s.tracks[id] {
			if t.Position == 0 {
				top = append(top, t)
				break
			}
		}
	}
	return top, nil
}

// Ensure both stores implement PhotoStore.
var (
	_ PhotoStore = (*DBStore)(nil)
	_ PhotoStore = (*MemoryStore)(nil)
)
