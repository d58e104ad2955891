package schedulingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultUserAgent = "availability-watcher/1.0"

// AvailableDatesRequest is the body posted to the endpoint.
type AvailableDatesRequest struct {
	BusinessID string `json:"businessID"`
	SPID       string `json:"spID"`
}

// AvailableDatesResponse wraps the dates in the "d" field.
type AvailableDatesResponse struct {
	D []string `json:"d"`
}

// FetchError reports an unreachable endpoint or an unusable response.
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Client struct {
	client      *http.Client
	url         string
	request     AvailableDatesRequest
	userAgent   string
	maxBodySize int64
}

func NewClient(url, businessID, serviceProviderID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client:      &http.Client{Timeout: timeout},
		url:         url,
		request:     AvailableDatesRequest{BusinessID: businessID, SPID: serviceProviderID},
		userAgent:   defaultUserAgent,
		maxBodySize: 1 << 20, // 1 MiB
	}
}

// AvailableDates posts the configured request once and returns the raw date strings.
func (c *Client) AvailableDates(ctx context.Context) ([]string, error) {
	payload, err := json.Marshal(c.request)
	if err != nil {
		return nil, c.fail(0, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, c.fail(0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.fail(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, c.fail(resp.StatusCode, err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, c.fail(resp.StatusCode, fmt.Errorf("response too large"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := truncate(strings.TrimSpace(string(body)), 200)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, c.fail(resp.StatusCode, fmt.Errorf("unexpected response: %s", msg))
	}

	var out AvailableDatesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, c.fail(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if out.D == nil {
		return []string{}, nil
	}
	return out.D, nil
}

func (c *Client) fail(status int, err error) error {
	return &FetchError{URL: c.url, StatusCode: status, Err: err}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
