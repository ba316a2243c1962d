package pagestore

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

type recordedRequest struct {
	method string
	path   string
	auth   string
	page   models.Page
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(&config.Config{
		ContentAPIBaseURL: server.URL,
		HTTPTimeout:       5 * time.Second,
	})
	return client, server
}

func recordRequests(t *testing.T, record *[]recordedRequest, status func(r recordedRequest) int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		req := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req.page)
		}
		*record = append(*record, req)
		w.WriteHeader(status(req))
	}
}

func TestCreatePage(t *testing.T) {
	var requests []recordedRequest
	client, _ := newTestClient(t, recordRequests(t, &requests, func(recordedRequest) int {
		return http.StatusCreated
	}))

	err := client.CreatePage(context.Background(), "tok", &models.Page{Slug: "teplota", Title: "Teplota"})

	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].method)
	assert.Equal(t, "/pages", requests[0].path)
	assert.Equal(t, "Bearer tok", requests[0].auth)
	assert.Equal(t, "teplota", requests[0].page.Slug)
}

func TestCreatePageConflict(t *testing.T) {
	var requests []recordedRequest
	client, _ := newTestClient(t, recordRequests(t, &requests, func(recordedRequest) int {
		return http.StatusConflict
	}))

	err := client.CreatePage(context.Background(), "tok", &models.Page{Slug: "teplota"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.Conflict("Page")))
}

func TestUpsertPage(t *testing.T) {
	t.Run("create succeeds without a follow-up", func(t *testing.T) {
		var requests []recordedRequest
		client, _ := newTestClient(t, recordRequests(t, &requests, func(recordedRequest) int {
			return http.StatusCreated
		}))

		err := client.UpsertPage(context.Background(), "tok", &models.Page{Slug: "teplota"}, true)

		require.NoError(t, err)
		assert.Len(t, requests, 1)
	})

	t.Run("conflict with overwrite retries exactly once as an update", func(t *testing.T) {
		var requests []recordedRequest
		client, _ := newTestClient(t, recordRequests(t, &requests, func(r recordedRequest) int {
			if r.method == http.MethodPost {
				return http.StatusConflict
			}
			return http.StatusOK
		}))

		err := client.UpsertPage(context.Background(), "tok", &models.Page{Slug: "teplota"}, true)

		require.NoError(t, err)
		require.Len(t, requests, 2)
		assert.Equal(t, http.MethodPost, requests[0].method)
		assert.Equal(t, http.MethodPut, requests[1].method)
		assert.Equal(t, "/pages/teplota", requests[1].path)
	})

	t.Run("conflict without overwrite propagates with no follow-up", func(t *testing.T) {
		var requests []recordedRequest
		client, _ := newTestClient(t, recordRequests(t, &requests, func(recordedRequest) int {
			return http.StatusConflict
		}))

		err := client.UpsertPage(context.Background(), "tok", &models.Page{Slug: "teplota"}, false)

		require.Error(t, err)
		assert.True(t, errors.Is(err, errcodes.Conflict("Page")))
		assert.Len(t, requests, 1)
	})

	t.Run("hard failure is not retried even with overwrite", func(t *testing.T) {
		var requests []recordedRequest
		client, _ := newTestClient(t, recordRequests(t, &requests, func(recordedRequest) int {
			return http.StatusInternalServerError
		}))

		err := client.UpsertPage(context.Background(), "tok", &models.Page{Slug: "teplota"}, true)

		require.Error(t, err)
		assert.False(t, errors.Is(err, errcodes.Conflict("Page")))
		assert.Len(t, requests, 1)
	})

	t.Run("update failure after conflict surfaces", func(t *testing.T) {
		var requests []recordedRequest
		client, _ := newTestClient(t, recordRequests(t, &requests, func(r recordedRequest) int {
			if r.method == http.MethodPost {
				return http.StatusConflict
			}
			return http.StatusInternalServerError
		}))

		err := client.UpsertPage(context.Background(), "tok", &models.Page{Slug: "teplota"}, true)

		require.Error(t, err)
		assert.Len(t, requests, 2)
	})
}

func TestUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.CreatePage(context.Background(), "expired", &models.Page{Slug: "teplota"})

	require.Error(t, err)
	codedErr := &errcodes.Error{}
	require.True(t, errors.As(err, &codedErr))
	assert.Equal(t, http.StatusUnauthorized, codedErr.HTTPCode)
}

func TestDeletePage(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/pages/teplota", r.URL.Path)
			assert.Equal(t, "fyzika", r.URL.Query().Get("category"))
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		})

		err := client.DeletePage(context.Background(), "tok", "teplota", "fyzika")

		require.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := client.DeletePage(context.Background(), "tok", "missing", "fyzika")

		require.Error(t, err)
		assert.True(t, errors.Is(err, errcodes.NotFound("Page")))
	})
}

func TestRetrievePage(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/pages/teplota", r.URL.Path)
			assert.Equal(t, "fyzika", r.URL.Query().Get("category"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(models.Page{Slug: "teplota", Title: "Teplota"})
		})

		page, err := client.RetrievePage(context.Background(), "tok", "teplota", "fyzika")

		require.NoError(t, err)
		assert.Equal(t, "Teplota", page.Title)
	})

	t.Run("not found", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.RetrievePage(context.Background(), "tok", "missing", "fyzika")

		require.Error(t, err)
		assert.True(t, errors.Is(err, errcodes.NotFound("Page")))
	})
}
