package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/skolio/kabinet/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "importer",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestProvider(accessToken, refreshToken, baseURL string) *TokenProvider {
	return &TokenProvider{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		baseURL:      baseURL,
		http:         &http.Client{Timeout: 5 * time.Second},
		now:          func() time.Time { return testNow },
	}
}

func TestTokenStillValid(t *testing.T) {
	access := signedToken(t, testNow.Add(time.Hour))
	provider := newTestProvider(access, "refresh", "http://auth.invalid")

	token, err := provider.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, access, token)
}

func TestTokenRefreshesWhenExpired(t *testing.T) {
	fresh := signedToken(t, testNow.Add(time.Hour))
	refreshes := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes++
		assert.Equal(t, "/refresh", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "refresh", payload["refreshToken"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": fresh})
	}))
	defer server.Close()

	expired := signedToken(t, testNow.Add(-time.Hour))
	provider := newTestProvider(expired, "refresh", server.URL)

	token, err := provider.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fresh, token)
	assert.Equal(t, 1, refreshes)

	// The refreshed token is reused without another refresh.
	token, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, token)
	assert.Equal(t, 1, refreshes)
}

func TestTokenExpiryLeeway(t *testing.T) {
	// A token that technically has a minute left is already treated as
	// expired so a long run doesn't start on it.
	almostExpired := signedToken(t, testNow.Add(time.Minute))
	fresh := signedToken(t, testNow.Add(time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": fresh})
	}))
	defer server.Close()

	provider := newTestProvider(almostExpired, "refresh", server.URL)

	token, err := provider.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fresh, token)
}

func TestTokenMalformedAccessTokenTriggersRefresh(t *testing.T) {
	fresh := signedToken(t, testNow.Add(time.Hour))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": fresh})
	}))
	defer server.Close()

	provider := newTestProvider("not-a-jwt", "refresh", server.URL)

	token, err := provider.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fresh, token)
}

func TestTokenFailsClosedWithoutRefreshToken(t *testing.T) {
	provider := newTestProvider("", "", "http://auth.invalid")

	_, err := provider.Token(context.Background())

	require.Error(t, err)
	codedErr := &errcodes.Error{}
	require.True(t, errors.As(err, &codedErr))
	assert.Equal(t, http.StatusUnauthorized, codedErr.HTTPCode)
}

func TestTokenFailsClosedOnRejectedRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	expired := signedToken(t, testNow.Add(-time.Hour))
	provider := newTestProvider(expired, "stale-refresh", server.URL)

	_, err := provider.Token(context.Background())

	require.Error(t, err)
	codedErr := &errcodes.Error{}
	require.True(t, errors.As(err, &codedErr))
	assert.Equal(t, http.StatusUnauthorized, codedErr.HTTPCode)
}

func TestTokenFailsClosedOnEmptyRefreshResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	provider := newTestProvider("", "refresh", server.URL)

	_, err := provider.Token(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.Unauthorized("Session refresh returned no token.")))
}
