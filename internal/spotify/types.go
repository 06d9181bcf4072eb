package spotify

import (
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/snapvibe/snapvibe/internal/mood"
)

// Track is one matched track. Created per search, never persisted by this
// package; the gallery layer decides what to keep.
type Track struct {
	ID          string
	Title       string
	Artists     []string
	Duration    time.Duration
	PreviewURL  string // may be empty
	ExternalURL string
	ArtworkURL  string // may be empty (recommendations carry no album art)
	Mood        mood.Mood
	MatchScore  float64
	Features    FeatureVector // nil when the features fetch was unavailable
}

// FeatureVector holds the vendor's numeric audio descriptors for a track.
// Used only for re-ranking.
type FeatureVector map[string]float64

func fromSimpleTrack(st spotifyapi.SimpleTrack, artworkURL string, m mood.Mood) Track {
	artists := make([]string, len(st.Artists))
	for i, a := range st.Artists {
		artists[i] = a.Name
	}

	return Track{
		ID:          st.ID.String(),
		Title:       st.Name,
		Artists:     artists,
		Duration:    time.Duration(st.Duration) * time.Millisecond,
		PreviewURL:  st.PreviewURL,
		ExternalURL: st.ExternalURLs["spotify"],
		ArtworkURL:  artworkURL,
		Mood:        m,
	}
}

func fromFullTrack(ft spotifyapi.FullTrack, m mood.Mood) Track {
	artwork := ""
	if len(ft.Album.Images) > 0 {
		artwork = ft.Album.Images[0].URL
	}
	return fromSimpleTrack(ft.SimpleTrack, artwork, m)
}

func featureVector(f *spotifyapi.AudioFeatures) FeatureVector {
	return FeatureVector{
		"valence":          float64(f.Valence),
		"energy":           float64(f.Energy),
		"danceability":     float64(f.Danceability),
		"acousticness":     float64(f.Acousticness),
		"instrumentalness": float64(f.Instrumentalness),
		"tempo":            float64(f.Tempo),
	}
}
