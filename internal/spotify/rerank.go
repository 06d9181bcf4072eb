package spotify

import "sort"

// Score rates how close a track's features sit to a mood's target vector:
// the mean over the target's attributes of 1-|actual-target|. Attributes the
// track's vector lacks are skipped; a track with no comparable attributes
// scores 0.
func Score(features FeatureVector, targets map[string]float64) float64 {
	var sum float64
	n := 0
	for attr, target := range targets {
		actual, ok := features[attr]
		if !ok {
			continue
		}
		diff := actual - target
		if diff < 0 {
			diff = -diff
		}
		sum += 1 - diff
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Rerank scores every track against the target vector and sorts descending.
// The sort is stable: ties keep vendor order, and featureless tracks (score
// 0) end up last without being shuffled among themselves.
func Rerank(tracks []Track, targets map[string]float64) {
	for i := range tracks {
		tracks[i].MatchScore = Score(tracks[i].Features, targets)
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].MatchScore > tracks[j].MatchScore
	})
}
