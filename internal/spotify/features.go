package spotify

import (
	"context"
	"fmt"

	spotifyapi "github.com/zmb3/spotify/v2"
)

// maxTracksPerRequest is the Spotify audio-features batch limit.
const maxTracksPerRequest = 100

// attachFeatures fetches audio features for all tracks in one batched call
// per 100 tracks and attaches them in place. Tracks the vendor has no
// features for keep a nil vector.
func (m *Matcher) attachFeatures(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotifyapi.ID, len(tracks))
	indexByID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		ids[i] = spotifyapi.ID(t.ID)
		indexByID[t.ID] = i
	}

	for start := 0; start < len(ids); start += maxTracksPerRequest {
		end := min(start+maxTracksPerRequest, len(ids))

		features, err := m.api.GetAudioFeatures(ctx, ids[start:end]...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", start+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue // track has no audio features
			}
			idx, ok := indexByID[f.ID.String()]
			if !ok {
				continue
			}
			tracks[idx].Features = featureVector(f)
		}
	}

	return nil
}
