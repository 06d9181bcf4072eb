package web

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snapvibe/snapvibe/internal/db"
	"github.com/snapvibe/snapvibe/internal/gallery"
	"github.com/snapvibe/snapvibe/internal/mood"
	"github.com/snapvibe/snapvibe/internal/pipeline"
)

// maxUploadBytes caps the multipart body; anything past this is rejected
// before the pipeline runs.
const maxUploadBytes = 10 << 20 // 10 MiB

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	gallery   *gallery.Service
	matcher   gallery.TrackFinder
	templates *Templates
}

// NewHandlers creates the handler set.
func NewHandlers(svc *gallery.Service, matcher gallery.TrackFinder, templates *Templates) *Handlers {
	return &Handlers{
		gallery:   svc,
		matcher:   matcher,
		templates: templates,
	}
}

// Home renders the upload form.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	data := HomePageData{
		PageData: PageData{Title: "SnapVibe", CurrentPath: r.URL.Path},
		Moods:    mood.All(),
	}
	h.render(w, "home", data)
}

// UploadPhoto accepts a multipart photo upload, runs it through the
// pipeline and redirects to the photo page.
func (h *Handlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "That upload is too large or malformed.")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Choose a photo to upload.")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the uploaded photo.")
		return
	}

	visitor := visitorID(w, r)
	photo, _, err := h.gallery.AddPhoto(r.Context(), visitor, header.Filename, image)
	if err != nil {
		var perr *pipeline.Error
		if errors.As(err, &perr) {
			log.Printf("ERROR web: pipeline failed at %s stage after %s: %v", perr.Stage, perr.Elapsed, perr.Err)
			h.renderError(w, r, http.StatusBadGateway, pipelineMessage(perr))
			return
		}
		log.Printf("ERROR web: storing photo: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong saving your photo.")
		return
	}

	http.Redirect(w, r, "/photos/"+photo.ID.String(), http.StatusSeeOther)
}

// Photo renders one photo with its matched soundtrack.
func (h *Handlers) Photo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, http.StatusNotFound, "No such photo.")
		return
	}

	photo, tracks, err := h.gallery.Photo(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "No such photo.")
			return
		}
		log.Printf("ERROR web: loading photo %s: %v", id, err)
		h.renderError(w, r, http.StatusInternalServerError, "Could not load that photo.")
		return
	}

	data := PhotoPageData{
		PageData: PageData{Title: "Photo", CurrentPath: r.URL.Path},
		Photo:    toPhotoData(*photo),
		Tracks:   toTrackData(tracks),
		Moods:    mood.All(),
	}
	h.render(w, "photo", data)
}

// Gallery renders the visitor's photos, newest first.
func (h *Handlers) Gallery(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(w, r)
	photos, err := h.gallery.Photos(r.Context(), visitor)
	if err != nil {
		log.Printf("ERROR web: listing photos: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Could not load your gallery.")
		return
	}

	data := GalleryPageData{
		PageData: PageData{Title: "Your Gallery", CurrentPath: r.URL.Path},
	}
	for _, p := range photos {
		data.Photos = append(data.Photos, toPhotoData(p))
	}
	h.render(w, "gallery", data)
}

// SetMood re-matches a photo's soundtrack for a manually chosen mood.
func (h *Handlers) SetMood(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, http.StatusNotFound, "No such photo.")
		return
	}

	m := mood.Mood(strings.ToLower(strings.TrimSpace(r.FormValue("mood"))))
	if !m.Valid() {
		h.renderError(w, r, http.StatusBadRequest, "Pick a mood from the list.")
		return
	}

	if _, err := h.gallery.Rematch(r.Context(), id, m); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "No such photo.")
			return
		}
		log.Printf("ERROR web: rematching photo %s to %s: %v", id, m, err)
		h.renderError(w, r, http.StatusBadGateway, "Could not find tracks for that mood right now.")
		return
	}

	http.Redirect(w, r, "/photos/"+id.String(), http.StatusSeeOther)
}

// Mood renders tracks matched for a mood without any photo involved.
func (h *Handlers) Mood(w http.ResponseWriter, r *http.Request) {
	m := mood.Mood(strings.ToLower(strings.TrimSpace(chi.URLParam(r, "mood"))))
	if !m.Valid() {
		h.renderError(w, r, http.StatusNotFound, "Unknown mood.")
		return
	}

	tracks, err := h.matcher.FindTracks(r.Context(), m, 0)
	if err != nil {
		log.Printf("ERROR web: matching tracks for %s: %v", m, err)
		h.renderError(w, r, http.StatusBadGateway, "Could not find tracks for that mood right now.")
		return
	}

	data := MoodPageData{
		PageData: PageData{Title: "Mood: " + string(m), CurrentPath: r.URL.Path},
		Mood:     m,
		Tracks:   matchedTrackData(tracks),
	}
	h.render(w, "mood", data)
}

// Vibes renders the visitor's gallery grouped by audio character.
func (h *Handlers) Vibes(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(w, r)

	groups, outlierIDs, err := h.gallery.VibeGroups(r.Context(), visitor)
	if err != nil {
		log.Printf("ERROR web: grouping vibes: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Could not group your gallery.")
		return
	}

	photos, err := h.gallery.Photos(r.Context(), visitor)
	if err != nil {
		log.Printf("ERROR web: listing photos: %v", err)
		h.renderError(w, r, http.StatusInternalServerError, "Could not load your gallery.")
		return
	}
	byID := make(map[string]db.Photo, len(photos))
	for _, p := range photos {
		byID[p.ID.String()] = p
	}

	data := VibesPageData{
		PageData: PageData{Title: "Vibes", CurrentPath: r.URL.Path},
		Groups:   toVibeGroupData(groups, byID),
	}
	for _, id := range outlierIDs {
		if p, ok := byID[id.String()]; ok {
			data.Outliers = append(data.Outliers, toPhotoData(p))
		}
	}
	h.render(w, "vibes", data)
}

// Health responds to liveness probes.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		log.Printf("ERROR web: rendering %s: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := struct {
		PageData
		Status  int
		Message string
	}{
		PageData: PageData{Title: "Error", CurrentPath: r.URL.Path},
		Status:   status,
		Message:  message,
	}
	if err := h.templates.Render(w, "error", data); err != nil {
		log.Printf("ERROR web: rendering error page: %v", err)
		http.Error(w, message, status)
	}
}

// pipelineMessage translates a pipeline failure into copy the visitor can act
// on.
func pipelineMessage(perr *pipeline.Error) string {
	switch perr.Stage {
	case pipeline.StageClassification:
		return "We could not figure out the mood of that photo. Try another one."
	case pipeline.StageMatching:
		return "We read the photo but could not find matching tracks. Try again in a moment."
	default:
		return "Something went wrong processing that photo."
	}
}
