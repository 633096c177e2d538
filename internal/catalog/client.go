package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"entmatrix/pkg/platform/sentinel"
)

// Client talks JSON over HTTP to the external catalog service, which owns
// packages, catalog items, and the persisted entitlement matrix.
//
// Transport failures and unparseable responses are equivalent from the
// caller's point of view; both come back wrapping sentinel.ErrUnavailable.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a catalog client. timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchSnapshot loads the full matrix state for a product.
func (c *Client) FetchSnapshot(ctx context.Context, productID string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/products/"+productID+"/entitlements", nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch snapshot: %w: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w: %w", sentinel.ErrUnavailable, err)
	}
	return &snap, nil
}

// PersistCell stores a single cell change. The backend answers with a bare
// status; no body is expected.
func (c *Client) PersistCell(ctx context.Context, rec ChangeRecord) error {
	return c.post(ctx, "/entitlements/cell", rec)
}

// PersistBatch stores all pending changes in one submission. The backend
// returns a single success or failure for the whole batch; there is no
// per-record result to parse.
func (c *Client) PersistBatch(ctx context.Context, recs []ChangeRecord) error {
	return c.post(ctx, "/entitlements/batch", recs)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w: %w", path, sentinel.ErrUnavailable, err)
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post %s: %w: status %d", path, sentinel.ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// drain empties and closes a response body so the connection can be reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
