// Package mood defines the closed mood vocabulary and the static tables
// that map classifier labels to moods and moods to music search parameters.
package mood

import (
	"fmt"
	"strings"
)

// Mood is one member of the closed mood vocabulary.
type Mood string

// The full vocabulary. Neutral is the fallback for anything unrecognized.
const (
	Happy      Mood = "happy"
	Calm       Mood = "calm"
	Energetic  Mood = "energetic"
	Melancholy Mood = "melancholy"
	Romantic   Mood = "romantic"
	Mysterious Mood = "mysterious"
	Party      Mood = "party"
	Cozy       Mood = "cozy"
	Neutral    Mood = "neutral"
)

// Default is the mood assigned when a label matches nothing.
const Default = Neutral

// All returns every member of the vocabulary.
func All() []Mood {
	return []Mood{Happy, Calm, Energetic, Melancholy, Romantic, Mysterious, Party, Cozy, Neutral}
}

// Valid reports whether m is a member of the vocabulary.
func (m Mood) Valid() bool {
	switch m {
	case Happy, Calm, Energetic, Melancholy, Romantic, Mysterious, Party, Cozy, Neutral:
		return true
	}
	return false
}

// Parse resolves a user-supplied mood name, falling back to Default.
func Parse(s string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m
	}
	return Default
}

// Table maps raw classifier labels to moods. Lookups are case-insensitive
// and total: unmatched labels resolve to Default.
type Table struct {
	name    string
	entries map[string]Mood
}

// Name returns the table's name, used in logs and error messages.
func (t *Table) Name() string {
	return t.name
}

// Resolve maps a raw label to a mood. Never fails.
func (t *Table) Resolve(rawLabel string) Mood {
	if m, ok := t.entries[strings.ToLower(strings.TrimSpace(rawLabel))]; ok {
		return m
	}
	return Default
}

// Labels returns every raw label the table knows about.
func (t *Table) Labels() []string {
	labels := make([]string, 0, len(t.entries))
	for l := range t.entries {
		labels = append(labels, l)
	}
	return labels
}

func newTable(name string, entries map[string]Mood) *Table {
	normalized := make(map[string]Mood, len(entries))
	for label, m := range entries {
		normalized[strings.ToLower(label)] = m
	}
	return &Table{name: name, entries: normalized}
}

// QueryTemplate holds the static search parameters for one mood.
type QueryTemplate struct {
	Terms  string   // free-text search terms
	Genres []string // seed genres for the recommendations endpoint
}

// Query returns the search template for a mood. Unknown moods fall back
// to the neutral template, so the function is total.
func Query(m Mood) QueryTemplate {
	if q, ok := queryTemplates[m]; ok {
		return q
	}
	return queryTemplates[Neutral]
}

// Targets returns the target audio-feature vector for a mood. All values
// are in [0,1]. Unknown moods fall back to the neutral targets.
func Targets(m Mood) map[string]float64 {
	if t, ok := targetVectors[m]; ok {
		return t
	}
	return targetVectors[Neutral]
}

// CheckTables verifies that every mood has a query template and a target
// vector. A missing entry is a configuration bug; main calls this at startup.
func CheckTables() error {
	for _, m := range All() {
		if _, ok := queryTemplates[m]; !ok {
			return fmt.Errorf("mood %q has no query template", m)
		}
		t, ok := targetVectors[m]
		if !ok {
			return fmt.Errorf("mood %q has no target vector", m)
		}
		for attr, v := range t {
			if v < 0 || v > 1 {
				return fmt.Errorf("mood %q target %s=%v out of range", m, attr, v)
			}
		}
	}
	return nil
}
