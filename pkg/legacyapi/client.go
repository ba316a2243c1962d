// Package legacyapi reads book graphs from the pre-migration content service.
package legacyapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/skolio/kabinet/pkg/config"
	"github.com/skolio/kabinet/pkg/models"
)

type Client struct {
	baseURL  string
	userCode string
	http     *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		baseURL:  cfg.LegacyAPIBaseURL,
		userCode: cfg.LegacyUserCode,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// FetchBook retrieves one legacy book graph. The snapshot is read fresh on
// every call and never cached; it is discarded after transformation.
func (c *Client) FetchBook(ctx context.Context, id int) (*models.LegacyBook, error) {
	u := fmt.Sprintf("%s/books/%d?user-code=%s", c.baseURL, id, url.QueryEscape(c.userCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create legacy book request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch legacy book %d", id)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to fetch legacy book %d: HTTP %d", id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read legacy book response")
	}

	var book models.LegacyBook
	if err := json.Unmarshal(body, &book); err != nil {
		return nil, errors.Wrapf(err, "failed to parse legacy book %d", id)
	}

	return &book, nil
}

// Download fetches raw bytes from an arbitrary legacy-hosted URL. Used by the
// rehoming service; callers own the degradation policy on error.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to create download request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to download %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", errors.Errorf("failed to download %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read download body")
	}

	return body, resp.Header.Get("Content-Type"), nil
}
