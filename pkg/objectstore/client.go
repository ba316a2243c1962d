// Package objectstore uploads raw bytes into the platform's object storage
// and returns the resulting stable public URL.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/skolio/kabinet/pkg/config"
	"github.com/skolio/kabinet/pkg/errcodes"
)

type Client struct {
	baseURL string
	bucket  string
	http    *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.StorageBaseURL,
		bucket:  cfg.StorageBucket,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload stores data at the given path under the configured bucket. When
// contentType is empty it is sniffed from the payload.
func (c *Client) Upload(ctx context.Context, token, path string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "failed to create upload request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", errcodes.Unauthorized("Object storage rejected the access token.")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("failed to upload %s: HTTP %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read upload response")
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrap(err, "failed to parse upload response")
	}
	if parsed.URL == "" {
		return "", errors.Errorf("upload of %s returned no URL", path)
	}

	return parsed.URL, nil
}
