// Package web serves the photo gallery over HTTP: uploads, the gallery,
// manual mood selection and vibe groups.
package web

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP front for the gallery.
type Server struct {
	addr     string
	handlers *Handlers
	staticFS fs.FS
	dataDir  string
	srv      *http.Server
}

// NewServer wires the router. staticFS holds the embedded assets under
// static/; dataDir is where uploaded originals live on disk.
func NewServer(addr string, handlers *Handlers, staticFS fs.FS, dataDir string) *Server {
	s := &Server{
		addr:     addr,
		handlers: handlers,
		staticFS: staticFS,
		dataDir:  dataDir,
	}

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", s.handlers.Home)
	r.Get("/health", s.handlers.Health)

	r.Post("/photos", s.handlers.UploadPhoto)
	r.Get("/photos/{id}", s.handlers.Photo)
	r.Post("/photos/{id}/mood", s.handlers.SetMood)

	r.Get("/gallery", s.handlers.Gallery)
	r.Get("/vibes", s.handlers.Vibes)
	r.Get("/moods/{mood}", s.handlers.Mood)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(s.staticFS)))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.dataDir))))

	return r
}

// Run starts the server and blocks until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Run() error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("INFO web: listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("INFO web: received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
