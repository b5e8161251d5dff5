package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// UserAgent is sent with every upstream request
const UserAgent = "transit-live/1.0"

// Client fetches raw GTFS-Realtime payloads
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client; a zero timeout leaves requests unbounded
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// Fetch retrieves the payload at url and returns the raw body.
// Anything without an http(s) scheme is read as a local file.
// Failures are returned as a transport *FeedError; there is no retry.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		b, err := os.ReadFile(url)
		if err != nil {
			return nil, &FeedError{Kind: KindTransport, URL: url, Err: err}
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FeedError{Kind: KindTransport, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/x-protobuf, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FeedError{Kind: KindTransport, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FeedError{Kind: KindTransport, URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FeedError{Kind: KindTransport, URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}
