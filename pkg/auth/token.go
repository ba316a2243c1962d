// Package auth resolves the platform access token the import pipeline
// authenticates with. A run refuses to start without a resolvable token:
// missing or expired tokens get exactly one refresh attempt, then the
// provider fails closed.
package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/skolio/kabinet/pkg/config"
	"github.com/skolio/kabinet/pkg/errcodes"
)

// expiryLeeway treats tokens about to expire as already expired so a long
// import run doesn't start on a token that dies mid-run.
const expiryLeeway = 2 * time.Minute

type TokenProvider struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string

	baseURL string
	http    *http.Client
	now     func() time.Time
}

func NewTokenProvider(cfg *config.Config, accessToken, refreshToken string) *TokenProvider {
	return &TokenProvider{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		baseURL:      cfg.AuthBaseURL,
		http:         &http.Client{Timeout: cfg.HTTPTimeout},
		now:          time.Now,
	}
}

// Token returns a usable access token, refreshing at most once when the
// current one is missing or expired.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && !p.expired(p.accessToken) {
		return p.accessToken, nil
	}

	if err := p.refresh(ctx); err != nil {
		return "", err
	}

	return p.accessToken, nil
}

func (p *TokenProvider) expired(token string) bool {
	// The signature is the platform's concern; we only need the expiry claim.
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return p.now().Add(expiryLeeway).After(exp.Time)
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (p *TokenProvider) refresh(ctx context.Context) error {
	if p.refreshToken == "" {
		return errcodes.Unauthorized("No session available; sign in before importing.")
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": p.refreshToken})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/refresh", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create token refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return errcodes.Unauthorized("Session refresh failed; sign in again before importing.")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errcodes.Unauthorized("Session expired; sign in again before importing.")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read token refresh response")
	}

	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.Wrap(err, "failed to parse token refresh response")
	}
	if parsed.AccessToken == "" {
		return errcodes.Unauthorized("Session refresh returned no token.")
	}

	p.accessToken = parsed.AccessToken
	return nil
}
