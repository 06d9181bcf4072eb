// Package vision provides a client for the external image-classification
// endpoint and normalizes its responses into mood-resolved results.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/snapvibe/snapvibe/internal/mood"
)

const (
	userAgent      = "snapvibe/1.0"
	defaultTimeout = 15 * time.Second
)

// Sentinel errors.
var (
	// ErrNoLabels is returned when the endpoint responds successfully but
	// contains no usable label.
	ErrNoLabels = errors.New("classification returned no labels")

	// ErrUnauthorized is returned when the endpoint rejects the bearer token.
	ErrUnauthorized = errors.New("classification endpoint rejected credentials")
)

// Client calls the image-classification endpoint.
type Client struct {
	endpoint   string
	token      string
	table      *mood.Table
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout (default 15s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a classification client. The table selects which label
// vocabulary resolves the vendor's labels (scene categories or free tags).
func NewClient(endpoint, token string, table *mood.Table, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		token:    token,
		table:    table,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify sends the raw image bytes to the classification endpoint and
// returns the normalized result. The bytes are transmitted base64-encoded
// as-is; no re-encoding of the image itself.
func (c *Client) Classify(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}

	reqBody, err := json.Marshal(classifyRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("classification endpoint status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	labels, err := decodeLabels(body)
	if err != nil {
		return nil, fmt.Errorf("parsing classification response: %w", err)
	}
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}

	sort.SliceStable(labels, func(i, j int) bool {
		return labels[i].Score > labels[j].Score
	})

	top := labels[0]
	return &Result{
		Labels:     labels,
		Mood:       c.table.Resolve(top.Label),
		TopLabel:   top.Label,
		Confidence: top.Score,
	}, nil
}
