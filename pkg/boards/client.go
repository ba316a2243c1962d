// Package boards talks to the interactive-board service. During an import,
// sub-resource links that look like importable boards are speculatively
// re-imported as standalone boards and rewritten to the internal
// board-reference scheme.
package boards

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/skolio/kabinet/pkg/config"
)

// InternalScheme prefixes internal board references in menu links.
const InternalScheme = "board://"

// importableRE matches external URLs carrying a board UUID that the board
// service can re-import.
var importableRE = regexp.MustCompile(`(?i)/(?:board|tabule)s?/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)

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

// Board is the normalized result of a board import.
type Board struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Slides []Slide `json:"slides"`
}

type Slide struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Order int    `json:"order"`
}

// ImportableBoardUUID extracts the board UUID from an external URL, reporting
// whether the URL matches a known importable pattern.
func ImportableBoardUUID(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	m := importableRE.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// InternalRef builds the internal reference URL for an imported board.
func InternalRef(id string) string {
	return InternalScheme + id
}

// ImportBoard asks the board service to re-import an external board by UUID.
// A nil board with nil error means the service could not import it; callers
// leave the original external URL untouched in that case.
func (c *Client) ImportBoard(ctx context.Context, token, uuid string) (*Board, error) {
	payload, err := json.Marshal(map[string]string{"uuid": uuid})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/boards/import", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create board import request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to import board %s", uuid)
	}
	defer resp.Body.Close()

	// Not importable is a normal outcome, not an error.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("failed to import board %s: HTTP %d", uuid, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read board import response")
	}

	board := &Board{}
	if err := json.Unmarshal(body, board); err != nil {
		return nil, errors.Wrapf(err, "failed to parse board import response for %s", uuid)
	}
	if board.ID == "" {
		return nil, nil
	}

	return board, nil
}
