package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// tokenServer returns an httptest server acting as the token endpoint and a
// counter of exchanges performed against it.
func tokenServer(t *testing.T, expiresIn int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var exchanges atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint method = %s", r.Method)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			// clientcredentials may also send credentials in the form body;
			// either way the grant type must be present.
			if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
				t.Errorf("expected client_credentials grant")
			}
		}

		exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token-` + time.Now().Format("150405.000000000") + `","token_type":"Bearer","expires_in":` + strconv.Itoa(expiresIn) + `}`))
	}))

	return server, &exchanges
}

func testContext(server *httptest.Server) context.Context {
	return context.WithValue(context.Background(), oauth2.HTTPClient, server.Client())
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", "secret", "http://unused"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("New with empty id: err = %v", err)
	}
	if _, err := New("id", "", "http://unused"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("New with empty secret: err = %v", err)
	}
}

func TestTokenCachedWithinValidity(t *testing.T) {
	server, exchanges := tokenServer(t, 3600)
	defer server.Close()

	cache, err := New("id", "secret", server.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := testContext(server)

	first, err := cache.Token(ctx)
	if err != nil {
		t.Fatalf("first Token() error = %v", err)
	}
	second, err := cache.Token(ctx)
	if err != nil {
		t.Fatalf("second Token() error = %v", err)
	}

	if first.AccessToken != second.AccessToken {
		t.Errorf("cached token changed between calls")
	}
	if got := exchanges.Load(); got != 1 {
		t.Errorf("expected 1 token exchange, got %d", got)
	}
}

func TestTokenRefreshedBeforeExpiry(t *testing.T) {
	server, exchanges := tokenServer(t, 3600)
	defer server.Close()

	now := time.Now()
	clock := now
	cache, err := New("id", "secret", server.URL, WithClock(func() time.Time { return clock }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := testContext(server)

	if _, err := cache.Token(ctx); err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	// Still comfortably inside the validity window.
	clock = now.Add(30 * time.Minute)
	if _, err := cache.Token(ctx); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got := exchanges.Load(); got != 1 {
		t.Fatalf("expected 1 exchange inside validity window, got %d", got)
	}

	// Inside the 60s leeway before expiry: must refresh.
	clock = now.Add(3600*time.Second - 30*time.Second)
	if _, err := cache.Token(ctx); err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got := exchanges.Load(); got != 2 {
		t.Errorf("expected refresh within leeway window, got %d exchanges", got)
	}
}

func TestConcurrentRefreshSingleFlight(t *testing.T) {
	server, exchanges := tokenServer(t, 3600)
	defer server.Close()

	cache, err := New("id", "secret", server.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := testContext(server)

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Token(ctx); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Token() error = %v", err)
	}
	if got := exchanges.Load(); got != 1 {
		t.Errorf("expected 1 exchange for %d concurrent callers, got %d", callers, got)
	}
}

func TestSourceAttachesBearer(t *testing.T) {
	server, _ := tokenServer(t, 3600)
	defer server.Close()

	cache, err := New("id", "secret", server.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	token, err := cache.Source(testContext(server)).Token()
	if err != nil {
		t.Fatalf("Source().Token() error = %v", err)
	}
	if token.AccessToken == "" || token.TokenType != "Bearer" {
		t.Errorf("unexpected token %+v", token)
	}
}
