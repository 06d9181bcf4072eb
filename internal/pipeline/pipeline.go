// Package pipeline composes image classification and music matching into a
// single request/response cycle.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/snapvibe/snapvibe/internal/mood"
	"github.com/snapvibe/snapvibe/internal/spotify"
	"github.com/snapvibe/snapvibe/internal/vision"
)

// Stage identifies where in the pipeline a failure originated.
type Stage string

// Pipeline stages.
const (
	StageClassification Stage = "classification"
	StageMatching       Stage = "matching"
	StageGeneric        Stage = "generic"
)

// Error wraps a stage failure with the elapsed time up to the failure point.
type Error struct {
	Stage   Stage
	Elapsed time.Duration
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline %s stage failed after %s: %v", e.Stage, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the outcome of one pipeline run.
type Result struct {
	Classification *vision.Result
	Tracks         []spotify.Track // possibly empty
	Elapsed        time.Duration
}

// Classifier is the classification stage.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (*vision.Result, error)
}

// Matcher is the matching stage.
type Matcher interface {
	FindTracks(ctx context.Context, m mood.Mood, limit int) ([]spotify.Track, error)
}

// Orchestrator runs classification then matching, strictly in that order:
// matching needs the mood the classifier resolves.
type Orchestrator struct {
	classifier Classifier
	matcher    Matcher
	now        func() time.Time
}

// New creates an Orchestrator.
func New(classifier Classifier, matcher Matcher) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		matcher:    matcher,
		now:        time.Now,
	}
}

// Run classifies the image, finds tracks for the resolved mood, and returns
// both with the wall-clock elapsed time. On failure it returns a nil result
// and an *Error tagged with the failing stage, never a partial result. A
// classifier failure short-circuits; the matcher is not invoked. The
// orchestrator does not retry.
func (o *Orchestrator) Run(ctx context.Context, image []byte, limit int) (*Result, error) {
	start := o.now()

	if len(image) == 0 {
		return nil, &Error{Stage: StageGeneric, Elapsed: o.now().Sub(start), Err: fmt.Errorf("empty image")}
	}

	classification, err := o.classifier.Classify(ctx, image)
	if err != nil {
		return nil, &Error{Stage: StageClassification, Elapsed: o.now().Sub(start), Err: err}
	}

	tracks, err := o.matcher.FindTracks(ctx, classification.Mood, limit)
	if err != nil {
		return nil, &Error{Stage: StageMatching, Elapsed: o.now().Sub(start), Err: err}
	}

	return &Result{
		Classification: classification,
		Tracks:         tracks,
		Elapsed:        o.now().Sub(start),
	}, nil
}
