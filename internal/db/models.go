package db

import (
	"time"

	"github.com/google/uuid"
)

// Photo is one stored gallery entry with its classification outcome.
type Photo struct {
	ID         uuid.UUID
	VisitorID  string
	FileName   string // name of the stored original under the data dir
	Mood       string
	TopLabel   string
	Confidence float64
	UploadedAt time.Time
}

// PhotoTrack is one matched track persisted with a photo, in rank order.
// Feature columns are nullable: re-ranking may have been unavailable.
type PhotoTrack struct {
	PhotoID      uuid.UUID
	Position     int
	TrackID      string
	Title        string
	Artist       string // artist names joined by ", "
	DurationMs   int
	PreviewURL   *string
	ExternalURL  *string
	ArtworkURL   *string
	MatchScore   float64
	Valence      *float64
	Energy       *float64
	Danceability *float64
	Acousticness *float64
}
