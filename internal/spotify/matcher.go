package spotify

import (
	"context"
	"fmt"
	"log"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/snapvibe/snapvibe/internal/mood"
)

// DefaultLimit is the number of tracks returned when the caller passes a
// non-positive limit.
const DefaultLimit = 10

// Matcher finds tracks matching a mood.
type Matcher struct {
	api *spotifyapi.Client
}

// NewMatcher creates a Matcher on top of an authenticated API client.
func NewMatcher(api *spotifyapi.Client) *Matcher {
	return &Matcher{api: api}
}

// FindTracks returns up to limit tracks for the mood, best first. The lookup
// is total over the mood vocabulary: unknown moods use the neutral template.
//
// Two-step strategy: the recommendations endpoint seeded with the mood's
// genres and target attributes is tried first; if it errors or comes back
// empty, a free-text search with the mood's query template takes over.
// Feature-based re-ranking is best-effort: if the audio-features fetch fails,
// the tracks are returned in vendor order instead of failing the call.
func (m *Matcher) FindTracks(ctx context.Context, md mood.Mood, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	tracks, err := m.recommendTracks(ctx, md, limit)
	if err != nil || len(tracks) == 0 {
		if err != nil {
			log.Printf("WARN spotify: recommendations for mood %q failed, falling back to search: %v", md, err)
		}
		tracks, err = m.searchTracks(ctx, md, limit)
		if err != nil {
			return nil, fmt.Errorf("searching tracks for mood %q: %w", md, err)
		}
	}

	if len(tracks) == 0 {
		return []Track{}, nil
	}

	if err := m.attachFeatures(ctx, tracks); err != nil {
		log.Printf("WARN spotify: audio features unavailable, returning unranked tracks: %v", err)
		return tracks, nil
	}

	Rerank(tracks, mood.Targets(md))
	return tracks, nil
}

// recommendTracks queries the recommendations endpoint seeded with the
// mood's genres and target feature attributes.
func (m *Matcher) recommendTracks(ctx context.Context, md mood.Mood, limit int) ([]Track, error) {
	seeds := spotifyapi.Seeds{Genres: mood.Query(md).Genres}

	attrs := spotifyapi.NewTrackAttributes()
	for attr, target := range mood.Targets(md) {
		switch attr {
		case "valence":
			attrs = attrs.TargetValence(target)
		case "energy":
			attrs = attrs.TargetEnergy(target)
		case "danceability":
			attrs = attrs.TargetDanceability(target)
		case "acousticness":
			attrs = attrs.TargetAcousticness(target)
		case "instrumentalness":
			attrs = attrs.TargetInstrumentalness(target)
		}
	}

	rec, err := m.api.GetRecommendations(ctx, seeds, attrs, spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("fetching recommendations: %w", err)
	}

	tracks := make([]Track, 0, len(rec.Tracks))
	for _, st := range rec.Tracks {
		tracks = append(tracks, fromSimpleTrack(st, "", md))
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// searchTracks runs a free-text track search with the mood's query template.
func (m *Matcher) searchTracks(ctx context.Context, md mood.Mood, limit int) ([]Track, error) {
	result, err := m.api.Search(ctx, mood.Query(md).Terms, spotifyapi.SearchTypeTrack, spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	if result.Tracks == nil {
		return []Track{}, nil
	}

	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, fromFullTrack(ft, md))
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}
