// Package pagestore is the HTTP client for the platform's page store. Pages
// are keyed by (slug, category); creates collide with 409 when the key is
// already taken.
package pagestore

import (
	"bytes"
	"context"
	"fmt"
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

// CreatePage POSTs a new page. A slug conflict surfaces as
// errcodes.Conflict so callers can distinguish it from hard failures.
func (c *Client) CreatePage(ctx context.Context, token string, page *models.Page) error {
	return c.send(ctx, token, http.MethodPost, c.baseURL+"/pages", page)
}

// UpdatePage PUTs the full page document to its existing slug.
func (c *Client) UpdatePage(ctx context.Context, token string, page *models.Page) error {
	return c.send(ctx, token, http.MethodPut, fmt.Sprintf("%s/pages/%s", c.baseURL, url.PathEscape(page.Slug)), page)
}

// UpsertPage creates the page, and on a slug conflict retries exactly once as
// an update when overwrite is authorized. Without overwrite the conflict
// propagates; the orchestrator treats it as "already migrated".
func (c *Client) UpsertPage(ctx context.Context, token string, page *models.Page, overwrite bool) error {
	err := c.CreatePage(ctx, token, page)
	if err == nil {
		return nil
	}
	if !overwrite || !errors.Is(err, errcodes.Conflict("Page")) {
		return err
	}
	return c.UpdatePage(ctx, token, page)
}

// RetrievePage reads a page by slug and category.
func (c *Client) RetrievePage(ctx context.Context, token, slug, category string) (*models.Page, error) {
	u := fmt.Sprintf("%s/pages/%s?category=%s", c.baseURL, url.PathEscape(slug), url.QueryEscape(category))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create page request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch page %s", slug)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errcodes.NotFound("Page")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to fetch page %s: HTTP %d", slug, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read page response")
	}

	page := &models.Page{}
	if err := json.Unmarshal(body, page); err != nil {
		return nil, errors.Wrapf(err, "failed to parse page %s", slug)
	}

	return page, nil
}

// DeletePage removes a page by slug and category.
func (c *Client) DeletePage(ctx context.Context, token, slug, category string) error {
	u := fmt.Sprintf("%s/pages/%s?category=%s", c.baseURL, url.PathEscape(slug), url.QueryEscape(category))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create page delete request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to delete page %s", slug)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errcodes.NotFound("Page")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("failed to delete page %s: HTTP %d", slug, resp.StatusCode)
	}

	return nil
}

func (c *Client) send(ctx context.Context, token, method, u string, page *models.Page) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create page request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to persist page %s", page.Slug)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return errcodes.Conflict("Page")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return errcodes.Unauthorized("Page store rejected the access token.")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("failed to persist page %s: HTTP %d", page.Slug, resp.StatusCode)
	}

	return nil
}
