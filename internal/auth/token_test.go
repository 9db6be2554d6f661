package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petarceklic/FlightCapacity/internal/cache"
)

type tokenServer struct {
	*httptest.Server
	exchanges atomic.Int32
}

func newTokenServer(t *testing.T, expiresIn int) *tokenServer {
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ts.exchanges.Add(1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":%d,"token_type":"Bearer"}`, n, expiresIn)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestSource(url string, now *time.Time) *TokenSource {
	s := NewTokenSource(Config{TokenURL: url, ClientID: "id", ClientSecret: "secret"}, nil, cache.NewMemoryStore(), nil)
	s.now = func() time.Time { return *now }
	return s
}

func TestTokenReusedWithinLifetime(t *testing.T) {
	srv := newTokenServer(t, 1799)
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	s := newTestSource(srv.URL, &now)

	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "token-1", tok)
	require.EqualValues(t, 1, srv.exchanges.Load())

	now = now.Add(20 * time.Minute)
	tok, err = s.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "token-1", tok)
	require.EqualValues(t, 1, srv.exchanges.Load())
}

func TestTokenRefreshedInsideSafetyMargin(t *testing.T) {
	srv := newTokenServer(t, 1799)
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	s := newTestSource(srv.URL, &now)

	_, err := s.Token(context.Background())
	require.NoError(t, err)

	// 1799s lifetime minus the 300s margin leaves 1499s.
	now = now.Add(1499 * time.Second)
	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "token-2", tok)
	require.EqualValues(t, 2, srv.exchanges.Load())
}

func TestConcurrentCallersShareOneExchange(t *testing.T) {
	srv := newTokenServer(t, 1799)
	now := time.Now()
	s := newTestSource(srv.URL, &now)

	var wg sync.WaitGroup
	tokens := make([]string, 20)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := s.Token(context.Background())
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	for _, tok := range tokens {
		require.Equal(t, tokens[0], tok)
	}
	require.EqualValues(t, 1, srv.exchanges.Load())
}

func TestTokenExchangeFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid_client"}`, http.StatusUnauthorized},
		{"server error", http.StatusInternalServerError, "boom", http.StatusInternalServerError},
		{"malformed body", http.StatusOK, "not json", http.StatusOK},
		{"missing token", http.StatusOK, `{"expires_in":1799}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			now := time.Now()
			s := newTestSource(srv.URL, &now)

			_, err := s.Token(context.Background())
			require.Error(t, err)

			var authErr *AuthError
			require.True(t, errors.As(err, &authErr))
			require.Equal(t, tt.wantStatus, authErr.StatusCode)
			require.Equal(t, tt.body, authErr.Body)
		})
	}
}

func TestTokenExchangeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	now := time.Now()
	s := newTestSource(url, &now)

	_, err := s.Token(context.Background())
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Zero(t, authErr.StatusCode)
}
