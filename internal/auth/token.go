// Package auth obtains and caches the provider's client-credentials token.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/petarceklic/FlightCapacity/internal/cache"
)

// DefaultSafetyMargin is subtracted from the provider-declared lifetime so a
// token is never used in its last minutes.
const DefaultSafetyMargin = 300 * time.Second

type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	SafetyMargin time.Duration
}

// AuthError reports a failed credential exchange. StatusCode is zero when
// the provider was never reached.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange failed (status %d): %s", e.StatusCode, e.Body)
	}
	return "token exchange failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenSource hands out the cached bearer token, exchanging client
// credentials whenever the cached one is missing or inside its margin.
// Concurrent refreshes are collapsed into a single exchange.
type TokenSource struct {
	cfg    Config
	client *http.Client
	store  cache.CredentialStore
	logger *zap.Logger
	group  singleflight.Group
	now    func() time.Time
}

func NewTokenSource(cfg Config, client *http.Client, store cache.CredentialStore, logger *zap.Logger) *TokenSource {
	if cfg.SafetyMargin <= 0 {
		cfg.SafetyMargin = DefaultSafetyMargin
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if store == nil {
		store = cache.NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenSource{
		cfg:    cfg,
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if cred, ok := s.store.Get(ctx); ok && cred.ValidAt(s.now()) {
		return cred.Token, nil
	}

	v, err, _ := s.group.Do("token", func() (any, error) {
		// Another caller may have finished a refresh while we waited.
		if cred, ok := s.store.Get(ctx); ok && cred.ValidAt(s.now()) {
			return cred.Token, nil
		}

		cred, err := s.exchange(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		if err := s.store.Set(ctx, cred); err != nil {
			s.logger.Warn("failed to store provider token", zap.Error(err))
		}
		return cred.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *TokenSource) exchange(ctx context.Context) (cache.Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return cache.Credential{}, &AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return cache.Credential{}, &AuthError{Err: fmt.Errorf("token request failed: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Error("failed to close token response body", zap.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cache.Credential{}, &AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return cache.Credential{}, &AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return cache.Credential{}, &AuthError{StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("failed to parse token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return cache.Credential{}, &AuthError{StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("token response has no access_token")}
	}

	lifetime := time.Duration(tr.ExpiresIn)*time.Second - s.cfg.SafetyMargin
	s.logger.Debug("obtained provider token", zap.Int("expires_in", tr.ExpiresIn))

	return cache.Credential{
		Token:     tr.AccessToken,
		ExpiresAt: s.now().Add(lifetime),
	}, nil
}
