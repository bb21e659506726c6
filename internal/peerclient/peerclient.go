// Package peerclient is the node's outbound HTTP client: it posts
// transactions and blocks to the rest of the network and fetches
// remote chains/metrics during conflict resolution, without ever
// holding the node's lock while the network round trip is in flight.
package peerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/noobcash/noobcash-go/pkg/logging"
)

// Client issues best-effort, fire-and-forget requests to peer nodes. It
// never retries: a dropped broadcast is logged and left for the next
// conflict-resolution pass to paper over, matching spec.md's choice not
// to reproduce the teacher's background retry worker here.
type Client struct {
	http *http.Client
	log  *logging.Logger
}

// New returns a Client with a bounded per-request timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  logging.GetDefault().Component("peerclient"),
	}
}

// Post sends payload as JSON to url. Failures are logged, not returned
// as fatal: callers broadcasting to many peers keep going on error.
func (c *Client) Post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("POST failed", "url", url, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("POST failed", "url", url, "status", resp.StatusCode)
		return fmt.Errorf("POST %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}

// PostJSON sends payload as JSON to url and decodes the JSON response
// into out, unlike Post which discards the response body. Used for
// request/response exchanges such as node registration, as opposed to
// fire-and-forget broadcasts.
func (c *Client) PostJSON(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("POST failed", "url", url, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("POST failed", "url", url, "status", resp.StatusCode)
		return fmt.Errorf("POST %s: unexpected status %d", url, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

// Get issues a GET to url and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("GET failed", "url", url, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
