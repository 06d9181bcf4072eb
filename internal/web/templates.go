package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/snapvibe/snapvibe/internal/db"
	"github.com/snapvibe/snapvibe/internal/gallery"
	"github.com/snapvibe/snapvibe/internal/mood"
	"github.com/snapvibe/snapvibe/internal/spotify"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// load parses all templates from the filesystem. Every page is combined
// with the layouts and partials.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	commonFiles := append(layouts, partials...)

	for _, page := range pages {
		name := filepath.Base(page)
		name = name[:len(name)-len(".html")]

		files := append([]string{page}, commonFiles...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}

		t.templates[name] = tmpl
	}

	return nil
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// moodColor returns an HSL color string based on energy and valence.
		// Energy maps to hue (cool indigo -> warm orange); valence affects
		// saturation and lightness.
		"moodColor": func(energy, valence float64) string {
			hue := 264 - (energy * 229)
			if hue < 0 {
				hue += 360
			}
			saturation := 60 + (valence * 40)
			lightness := 40 + (valence * 20)
			return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", hue, saturation, lightness)
		},

		// formatDate formats a time as "Jan 2, 2006"
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},

		// formatDuration formats a millisecond count as "m:ss"
		"formatDuration": func(ms int) string {
			total := ms / 1000
			return fmt.Sprintf("%d:%02d", total/60, total%60)
		},

		// percent formats a 0..1 score as a percentage
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},

		// add adds two integers (for 1-based indexing in loops)
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	Flash       *FlashMessage
	CurrentPath string
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	Moods []mood.Mood
}

// GalleryPageData contains data for the gallery page template.
type GalleryPageData struct {
	PageData
	Photos []PhotoData
}

// PhotoPageData contains data for the photo page template.
type PhotoPageData struct {
	PageData
	Photo  PhotoData
	Tracks []TrackData
	Moods  []mood.Mood
}

// MoodPageData contains data for the manual mood page template.
type MoodPageData struct {
	PageData
	Mood   mood.Mood
	Tracks []TrackData
}

// VibesPageData contains data for the vibe-groups page template.
type VibesPageData struct {
	PageData
	Groups   []VibeGroupData
	Outliers []PhotoData
}

// PhotoData contains data for a single photo in templates.
type PhotoData struct {
	ID         string
	ImageURL   string
	Mood       string
	TopLabel   string
	Confidence float64
	UploadedAt time.Time
}

// TrackData contains data for a single track in templates.
type TrackData struct {
	Title       string
	Artist      string
	DurationMs  int
	PreviewURL  string
	ExternalURL string
	ArtworkURL  string
	MatchScore  float64
}

// VibeGroupData contains data for one vibe group in templates.
type VibeGroupData struct {
	Name    string
	Energy  float64
	Valence float64
	Photos  []PhotoData
}

func toPhotoData(p db.Photo) PhotoData {
	return PhotoData{
		ID:         p.ID.String(),
		ImageURL:   "/uploads/" + p.FileName,
		Mood:       p.Mood,
		TopLabel:   p.TopLabel,
		Confidence: p.Confidence,
		UploadedAt: p.UploadedAt,
	}
}

func toTrackData(tracks []db.PhotoTrack) []TrackData {
	out := make([]TrackData, len(tracks))
	for i, t := range tracks {
		out[i] = TrackData{
			Title:      t.Title,
			Artist:     t.Artist,
			DurationMs: t.DurationMs,
			MatchScore: t.MatchScore,
		}
		if t.PreviewURL != nil {
			out[i].PreviewURL = *t.PreviewURL
		}
		if t.ExternalURL != nil {
			out[i].ExternalURL = *t.ExternalURL
		}
		if t.ArtworkURL != nil {
			out[i].ArtworkURL = *t.ArtworkURL
		}
	}
	return out
}

func matchedTrackData(tracks []spotify.Track) []TrackData {
	out := make([]TrackData, len(tracks))
	for i, t := range tracks {
		out[i] = TrackData{
			Title:       t.Title,
			Artist:      joinArtists(t.Artists),
			DurationMs:  int(t.Duration.Milliseconds()),
			PreviewURL:  t.PreviewURL,
			ExternalURL: t.ExternalURL,
			ArtworkURL:  t.ArtworkURL,
			MatchScore:  t.MatchScore,
		}
	}
	return out
}

func toVibeGroupData(groups []gallery.VibeGroup, photosByID map[string]db.Photo) []VibeGroupData {
	out := make([]VibeGroupData, len(groups))
	for i, g := range groups {
		data := VibeGroupData{
			Name:    g.Name,
			Energy:  g.Centroid["energy"],
			Valence: g.Centroid["valence"],
		}
		for _, id := range g.PhotoIDs {
			if p, ok := photosByID[id.String()]; ok {
				data.Photos = append(data.Photos, toPhotoData(p))
			}
		}
		out[i] = data
	}
	return out
}

func joinArtists(artists []string) string {
	switch len(artists) {
	case 0:
		return ""
	case 1:
		return artists[0]
	}
	joined := artists[0]
	for _, a := range artists[1:] {
		joined += ", " + a
	}
	return joined
}
