package vision

import (
	"encoding/json"
	"fmt"

	"github.com/snapvibe/snapvibe/internal/mood"
)

// LabelScore is one (label, confidence) pair returned by the classifier.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Result is a normalized classification: labels sorted descending by score,
// with the top label resolved to a mood.
type Result struct {
	Labels     []LabelScore // non-empty, sorted descending by score
	Mood       mood.Mood
	TopLabel   string
	Confidence float64 // score of the top label
}

// classifyRequest is the JSON body sent to the classification endpoint.
type classifyRequest struct {
	Image string `json:"image"` // base64 of the raw upload bytes
}

// decodeLabels accepts the two response shapes the vendor is known to emit:
// an array of {label, score} objects or a single bare object. Both normalize
// to a plain slice here, at the boundary.
func decodeLabels(body []byte) ([]LabelScore, error) {
	var many []LabelScore
	if err := json.Unmarshal(body, &many); err == nil {
		return many, nil
	}

	var one LabelScore
	if err := json.Unmarshal(body, &one); err != nil {
		return nil, fmt.Errorf("unrecognized response shape: %w", err)
	}
	if one.Label == "" {
		return nil, nil
	}
	return []LabelScore{one}, nil
}
