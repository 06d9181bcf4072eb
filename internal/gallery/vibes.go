package gallery

import (
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/snapvibe/snapvibe/internal/db"
)

// VibeConfig holds vibe-grouping parameters.
type VibeConfig struct {
	NumGroups    int // number of clusters to create (default: 3)
	MinGroupSize int // smaller clusters become outliers
}

// DefaultVibeConfig returns the recommended default configuration.
func DefaultVibeConfig() VibeConfig {
	return VibeConfig{
		NumGroups:    3,
		MinGroupSize: 2,
	}
}

// VibeGroup is a cluster of photos whose soundtracks share an audio
// character.
type VibeGroup struct {
	Name     string             // descriptive name: "Upbeat Party"
	PhotoIDs []uuid.UUID        // photos in this group
	Centroid map[string]float64 // average feature values for the group
}

// featureNames defines the audio features used for grouping.
var featureNames = []string{"energy", "valence", "danceability", "acousticness"}

// trackObservation wraps a PhotoTrack to implement clusters.Observation.
type trackObservation struct {
	track  *db.PhotoTrack
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// GroupByVibe clusters photos by their top track's audio features using
// k-means. Photos whose track has no stored features are outliers, as are
// members of clusters below the minimum size.
func GroupByVibe(tracks []db.PhotoTrack, cfg VibeConfig) ([]VibeGroup, []uuid.UUID) {
	if len(tracks) == 0 {
		return nil, nil
	}

	if cfg.NumGroups <= 0 {
		cfg.NumGroups = DefaultVibeConfig().NumGroups
	}

	var valid []*db.PhotoTrack
	var outliers []uuid.UUID

	for i := range tracks {
		t := &tracks[i]
		if hasFeatures(t) {
			valid = append(valid, t)
		} else {
			outliers = append(outliers, t.PhotoID)
		}
	}

	// If fewer featured tracks than clusters, everything is an outlier.
	if len(valid) < cfg.NumGroups {
		for _, t := range valid {
			outliers = append(outliers, t.PhotoID)
		}
		return nil, outliers
	}

	var obs clusters.Observations
	for _, t := range valid {
		obs = append(obs, trackObservation{
			track:  t,
			coords: extractFeatures(t),
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumGroups)
	if err != nil {
		log.Printf("WARN gallery: k-means grouping failed: %v", err)
		for _, t := range valid {
			outliers = append(outliers, t.PhotoID)
		}
		return nil, outliers
	}

	var groups []VibeGroup
	for _, cluster := range result {
		var members []*db.PhotoTrack
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				members = append(members, to.track)
			}
		}

		if len(members) < cfg.MinGroupSize {
			for _, t := range members {
				outliers = append(outliers, t.PhotoID)
			}
			continue
		}

		centroid := make(map[string]float64, len(featureNames))
		for i, name := range featureNames {
			centroid[name] = cluster.Center[i]
		}

		ids := make([]uuid.UUID, len(members))
		for i, t := range members {
			ids[i] = t.PhotoID
		}

		groups = append(groups, VibeGroup{
			Name:     vibeName(centroid),
			PhotoIDs: ids,
			Centroid: centroid,
		})
	}

	// Largest groups first.
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].PhotoIDs) > len(groups[j].PhotoIDs)
	})

	return groups, outliers
}

// hasFeatures reports whether the track carries every feature needed for
// grouping.
func hasFeatures(t *db.PhotoTrack) bool {
	return t.Energy != nil &&
		t.Valence != nil &&
		t.Danceability != nil &&
		t.Acousticness != nil
}

// extractFeatures builds the coordinate vector, ordered like featureNames.
func extractFeatures(t *db.PhotoTrack) clusters.Coordinates {
	return clusters.Coordinates{
		*t.Energy,
		*t.Valence,
		*t.Danceability,
		*t.Acousticness,
	}
}

// vibeName names a group from its centroid using a 2x2 energy/valence
// quadrant, with an acoustic modifier when acousticness dominates.
func vibeName(centroid map[string]float64) string {
	energy := centroid["energy"]
	valence := centroid["valence"]
	acousticness := centroid["acousticness"]

	var base string
	highEnergy := energy > 0.6
	highValence := valence > 0.5

	switch {
	case highEnergy && highValence:
		base = "Upbeat Party"
	case highEnergy && !highValence:
		base = "Intense & Dark"
	case !highEnergy && highValence:
		base = "Chill & Happy"
	default: // low energy, low valence
		base = "Reflective & Melancholy"
	}

	if acousticness > 0.6 {
		return base + " (Acoustic)"
	}
	return base
}
