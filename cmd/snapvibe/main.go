// Command snapvibe runs the SnapVibe photo gallery web application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/snapvibe/snapvibe/internal/auth"
	"github.com/snapvibe/snapvibe/internal/config"
	"github.com/snapvibe/snapvibe/internal/db"
	"github.com/snapvibe/snapvibe/internal/gallery"
	"github.com/snapvibe/snapvibe/internal/mood"
	"github.com/snapvibe/snapvibe/internal/pipeline"
	"github.com/snapvibe/snapvibe/internal/spotify"
	"github.com/snapvibe/snapvibe/internal/vision"
	"github.com/snapvibe/snapvibe/internal/web"
	webfs "github.com/snapvibe/snapvibe/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		var missing *config.MissingError
		if errors.As(err, &missing) {
			return fmt.Errorf("please set %v", missing.Vars)
		}
		return err
	}

	// The mood tables are static; a hole in them is a bug worth failing on.
	if err := mood.CheckTables(); err != nil {
		return err
	}

	ctx := context.Background()

	tokens, err := auth.New(cfg.SpotifyID, cfg.SpotifySecret, cfg.TokenURL)
	if err != nil {
		return fmt.Errorf("creating token cache: %w", err)
	}

	classifier := vision.NewClient(
		cfg.VisionEndpoint,
		cfg.VisionToken,
		mood.SceneLabels,
		vision.WithTimeout(cfg.RequestTimeout),
	)
	matcher := spotify.NewMatcher(spotify.NewClient(ctx, tokens))
	orchestrator := pipeline.New(classifier, matcher)

	// PostgreSQL when configured, process memory otherwise.
	var store gallery.PhotoStore
	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		store = gallery.NewDBStore(database)
	} else {
		log.Println("INFO main: DATABASE_URL not set, using in-memory gallery")
		store = gallery.NewMemoryStore()
	}

	service := gallery.NewService(store, orchestrator, matcher, cfg.DataDir, cfg.TrackLimit)

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}
	pages, err := web.NewTemplates(templates)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}
	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	handlers := web.NewHandlers(service, matcher, pages)
	server := web.NewServer(cfg.Addr, handlers, static, cfg.DataDir)
	return server.Run()
}
