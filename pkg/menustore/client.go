// Package menustore is the HTTP client for the platform's menu store. Menu
// trees are read and replaced wholesale; there is no partial-update protocol,
// so the last writer wins on concurrent edits.
package menustore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/skolio/kabinet/pkg/config"
	"github.com/skolio/kabinet/pkg/errcodes"
	"github.com/skolio/kabinet/pkg/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.ContentAPIBaseURL,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

type menuEnvelope struct {
	Menu     []*models.MenuItem `json:"menu"`
	Category string             `json:"category,omitempty"`
}

// FetchMenu reads the full menu tree for a category.
func (c *Client) FetchMenu(ctx context.Context, token, category string) ([]*models.MenuItem, error) {
	u := c.baseURL + "/menu?category=" + url.QueryEscape(category)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create menu request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch menu for %s", category)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to fetch menu for %s: HTTP %d", category, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read menu response")
	}

	var envelope menuEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Wrapf(err, "failed to parse menu for %s", category)
	}

	return envelope.Menu, nil
}

// ReplaceMenu writes the full tree back in one call.
func (c *Client) ReplaceMenu(ctx context.Context, token, category string, menu []*models.MenuItem) error {
	payload, err := json.Marshal(menuEnvelope{Menu: menu, Category: category})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/menu", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create menu replace request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to replace menu for %s", category)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errcodes.Unauthorized("Menu store rejected the access token.")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("failed to replace menu for %s: HTTP %d", category, resp.StatusCode)
	}

	return nil
}
