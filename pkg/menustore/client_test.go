package menustore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/skolio/kabinet/pkg/config"
	"github.com/skolio/kabinet/pkg/errcodes"
	"github.com/skolio/kabinet/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(&config.Config{
		ContentAPIBaseURL: server.URL,
		HTTPTimeout:       5 * time.Second,
	})
}

func TestFetchMenu(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/menu", r.URL.Path)
		assert.Equal(t, "fyzika", r.URL.Query().Get("category"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(menuEnvelope{
			Category: "fyzika",
			Menu: []*models.MenuItem{
				{ID: "root-1", Label: "Fyzika", Type: models.MenuTypeFolder},
			},
		})
	})

	menu, err := client.FetchMenu(context.Background(), "tok", "fyzika")

	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Fyzika", menu[0].Label)
}

func TestReplaceMenu(t *testing.T) {
	t.Run("puts the whole tree", func(t *testing.T) {
		var received menuEnvelope
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/menu", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		})

		err := client.ReplaceMenu(context.Background(), "tok", "fyzika", []*models.MenuItem{
			{ID: "root-1", Label: "Fyzika", Type: models.MenuTypeFolder},
		})

		require.NoError(t, err)
		assert.Equal(t, "fyzika", received.Category)
		require.Len(t, received.Menu, 1)
		assert.Equal(t, "root-1", received.Menu[0].ID)
	})

	t.Run("unauthorized surfaces as a coded error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		err := client.ReplaceMenu(context.Background(), "tok", "fyzika", nil)

		require.Error(t, err)
		codedErr := &errcodes.Error{}
		require.True(t, errors.As(err, &codedErr))
		assert.Equal(t, http.StatusUnauthorized, codedErr.HTTPCode)
	})

	t.Run("server failure is an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		err := client.ReplaceMenu(context.Background(), "tok", "fyzika", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 502")
	})
}
