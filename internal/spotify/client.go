// Package spotify matches moods to tracks via the Spotify Web API.
package spotify

import (
	"context"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/snapvibe/snapvibe/internal/auth"
)

// NewClient builds an authenticated Spotify API client backed by the token
// cache. The cache owns token refresh; every request reads the cached token.
func NewClient(ctx context.Context, cache *auth.TokenCache) *spotifyapi.Client {
	return spotifyapi.New(cache.Client(ctx), spotifyapi.WithRetry(true))
}
