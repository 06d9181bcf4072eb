package web

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/snapvibe/snapvibe/internal/gallery"
	"github.com/snapvibe/snapvibe/internal/mood"
	"github.com/snapvibe/snapvibe/internal/pipeline"
	"github.com/snapvibe/snapvibe/internal/spotify"
	"github.com/snapvibe/snapvibe/internal/vision"
	webassets "github.com/snapvibe/snapvibe/web"
)

type fakeRunner struct {
	result *pipeline.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, _ []byte, _ int) (*pipeline.Result, error) {
	return f.result, f.err
}

type fakeFinder struct {
	tracks []spotify.Track
	err    error
}

func (f *fakeFinder) FindTracks(_ context.Context, _ mood.Mood, _ int) ([]spotify.Track, error) {
	return f.tracks, f.err
}

func calmResult() *pipeline.Result {
	return &pipeline.Result{
		Classification: &vision.Result{
			Labels:     []vision.LabelScore{{Label: "beach", Score: 0.92}},
			Mood:       mood.Calm,
			TopLabel:   "beach",
			Confidence: 0.92,
		},
		Tracks: []spotify.Track{
			{
				ID:          "t1",
				Title:       "Quiet One",
				Artists:     []string{"Artist A"},
				Duration:    200 * time.Second,
				ExternalURL: "http://open/1",
				MatchScore:  0.9,
			},
		},
	}
}

// newTestServer builds the full router over a memory store, the embedded
// templates and the given fakes.
func newTestServer(t *testing.T, runner gallery.Runner, finder gallery.TrackFinder) *httptest.Server {
	t.Helper()

	templatesFS, err := fs.Sub(webassets.TemplatesFS, "templates")
	if err != nil {
		t.Fatalf("sub templates: %v", err)
	}
	templates, err := NewTemplates(templatesFS)
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}
	staticFS, err := fs.Sub(webassets.StaticFS, "static")
	if err != nil {
		t.Fatalf("sub static: %v", err)
	}

	dataDir := t.TempDir()
	svc := gallery.NewService(gallery.NewMemoryStore(), runner, finder, dataDir, 5)
	handlers := NewHandlers(svc, finder, templates)
	server := NewServer("127.0.0.1:0", handlers, staticFS, dataDir)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// noRedirectClient returns redirects instead of following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// uploadPhoto posts a multipart photo and returns the response.
func uploadPhoto(t *testing.T, ts *httptest.Server, fileName string, image []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", fileName)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(image); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/photos", &body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := noRedirectClient().Do(req)
	if err != nil {
		t.Fatalf("posting photo: %v", err)
	}
	return resp
}

// visitorCookie extracts the visitor id cookie set by a response.
func visitorCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == visitorCookieName {
			return c
		}
	}
	t.Fatal("response set no visitor cookie")
	return nil
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(data)
}

func TestHomePage(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, &fakeFinder{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := readBody(t, resp)
	if !strings.Contains(body, "Find your photo") {
		t.Errorf("home page missing upload copy")
	}
	// Every mood is browsable from the home page.
	for _, m := range mood.All() {
		if !strings.Contains(body, "/moods/"+string(m)) {
			t.Errorf("home page missing link for mood %q", m)
		}
	}
}

func TestUploadPhotoRedirectsToPhotoPage(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, &fakeFinder{})

	resp := uploadPhoto(t, ts, "holiday.jpg", []byte("image-bytes"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/photos/") {
		t.Fatalf("Location = %q, want /photos/{id}", location)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(location, "/photos/")); err != nil {
		t.Errorf("redirect target is not a photo id: %v", err)
	}

	// Follow the redirect; the page shows the classification outcome.
	cookie := visitorCookie(t, resp)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+location, nil)
	req.AddCookie(cookie)
	page, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", location, err)
	}
	if page.StatusCode != http.StatusOK {
		t.Fatalf("photo page status = %d, want 200", page.StatusCode)
	}
	body := readBody(t, page)
	if !strings.Contains(body, "calm") || !strings.Contains(body, "Quiet One") {
		t.Errorf("photo page missing mood or track")
	}
}

func TestUploadWithoutFileIsBadRequest(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, &fakeFinder{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("unrelated", "value")
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("posting: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUploadClassificationFailureIsBadGateway(t *testing.T) {
	perr := &pipeline.Error{Stage: pipeline.StageClassification, Err: vision.ErrNoLabels}
	ts := newTestServer(t, &fakeRunner{err: perr}, &fakeFinder{})

	resp := uploadPhoto(t, ts, "a.png", []byte("img"))

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "mood of that photo") {
		t.Errorf("error page missing classification copy")
	}
}

func TestPhotoNotFound(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, &fakeFinder{})

	for _, path := range []string{
		"/photos/" + uuid.NewString(),
		"/photos/not-a-uuid",
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestGalleryIsScopedToVisitor(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, &fakeFinder{})

	upload := uploadPhoto(t, ts, "a.jpg", []byte("img"))
	upload.Body.Close()
	cookie := visitorCookie(t, upload)

	// The uploader sees their photo.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/gallery", nil)
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /gallery: %v", err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "/photos/") {
		t.Errorf("uploader's gallery is empty")
	}

	// A fresh visitor sees nothing.
	other, err := http.Get(ts.URL + "/gallery")
	if err != nil {
		t.Fatalf("GET /gallery: %v", err)
	}
	if body := readBody(t, other); strings.Contains(body, "/photos/") {
		t.Errorf("stranger can see another visitor's photos")
	}
}

func TestSetMoodRematches(t *testing.T) {
	finder := &fakeFinder{tracks: []spotify.Track{{ID: "p1", Title: "Banger"}}}
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, finder)

	upload := uploadPhoto(t, ts, "a.jpg", []byte("img"))
	upload.Body.Close()
	cookie := visitorCookie(t, upload)
	location := upload.Header.Get("Location")

	form := url.Values{"mood": {"party"}}
	req, _ := http.NewRequest(http.MethodPost, ts.URL+location+"/mood", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)

	resp, err := noRedirectClient().Do(req)
	if err != nil {
		t.Fatalf("POST mood: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}

	pageReq, _ := http.NewRequest(http.MethodGet, ts.URL+location, nil)
	pageReq.AddCookie(cookie)
	page, err := http.DefaultClient.Do(pageReq)
	if err != nil {
		t.Fatalf("GET photo: %v", err)
	}
	body := readBody(t, page)
	if !strings.Contains(body, "party") || !strings.Contains(body, "Banger") {
		t.Errorf("photo page not updated after rematch")
	}
}

func TestSetMoodRejectsUnknownMood(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, &fakeFinder{})

	upload := uploadPhoto(t, ts, "a.jpg", []byte("img"))
	upload.Body.Close()
	location := upload.Header.Get("Location")

	form := url.Values{"mood": {"grumpy"}}
	req, _ := http.NewRequest(http.MethodPost, ts.URL+location+"/mood", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST mood: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMoodPage(t *testing.T) {
	finder := &fakeFinder{tracks: []spotify.Track{{ID: "c1", Title: "Slow Tide", Artists: []string{"Drift"}}}}
	ts := newTestServer(t, &fakeRunner{}, finder)

	resp, err := http.Get(ts.URL + "/moods/calm")
	if err != nil {
		t.Fatalf("GET /moods/calm: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Slow Tide") {
		t.Errorf("mood page missing matched track")
	}

	bogus, err := http.Get(ts.URL + "/moods/grumpy")
	if err != nil {
		t.Fatalf("GET /moods/grumpy: %v", err)
	}
	bogus.Body.Close()
	if bogus.StatusCode != http.StatusNotFound {
		t.Errorf("unknown mood status = %d, want 404", bogus.StatusCode)
	}
}

func TestVibesPageEmptyGallery(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, &fakeFinder{})

	resp, err := http.Get(ts.URL + "/vibes")
	if err != nil {
		t.Fatalf("GET /vibes: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Not enough photos") {
		t.Errorf("empty vibes page missing placeholder copy")
	}
}

func TestUploadedOriginalIsServed(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{result: calmResult()}, &fakeFinder{})

	upload := uploadPhoto(t, ts, "a.jpg", []byte("image-bytes"))
	upload.Body.Close()
	cookie := visitorCookie(t, upload)
	location := upload.Header.Get("Location")

	// The photo page references the stored original under /uploads/.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+location, nil)
	req.AddCookie(cookie)
	page, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET photo: %v", err)
	}
	body := readBody(t, page)

	idx := strings.Index(body, "/uploads/")
	if idx < 0 {
		t.Fatal("photo page does not reference the upload")
	}
	end := idx
	for end < len(body) && body[end] != '"' {
		end++
	}
	imageURL := body[idx:end]

	resp, err := http.Get(ts.URL + imageURL)
	if err != nil {
		t.Fatalf("GET %s: %v", imageURL, err)
	}
	if got := readBody(t, resp); got != "image-bytes" {
		t.Errorf("served original differs from upload")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, &fakeFinder{})

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "ok") {
		t.Errorf("health body = %q", body)
	}
}
