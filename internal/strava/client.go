package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const BaseURL = "https://www.strava.com/api/v3"

// DefaultTimeout bounds every request when the caller doesn't supply a client
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read
const maxBodySize = 16 << 20

// Client is a Strava API client. It holds no credentials: every call takes
// the access token to use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	quota      *Quota
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API root (used by tests)
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithQuota shares a Quota between clients
func WithQuota(q *Quota) Option {
	return func(c *Client) {
		c.quota = q
	}
}

// NewClient creates a new Strava API client. A nil httpClient gets a client
// with DefaultTimeout.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    BaseURL,
		quota:      NewQuota(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetActivity fetches a detailed activity including its segment efforts
func (c *Client) GetActivity(ctx context.Context, id int64, token *oauth2.Token) (*Activity, error) {
	var a Activity
	if err := c.get(ctx, fmt.Sprintf("/activities/%d", id), token, &a); err != nil {
		return nil, fmt.Errorf("fetching activity %d: %w", id, err)
	}

	if a.ID == 0 {
		return nil, fmt.Errorf("activity %d: response has no id: %w", id, ErrMalformedResponse)
	}
	for i, e := range a.SegmentEfforts {
		if e.Segment.ID == 0 {
			return nil, fmt.Errorf("activity %d: segment effort %d has no segment id: %w", id, i, ErrMalformedResponse)
		}
	}

	return &a, nil
}

// GetSegment fetches a detailed segment including its leader times
func (c *Client) GetSegment(ctx context.Context, id int64, token *oauth2.Token) (*Segment, error) {
	var s Segment
	if err := c.get(ctx, fmt.Sprintf("/segments/%d", id), token, &s); err != nil {
		return nil, fmt.Errorf("fetching segment %d: %w", id, err)
	}

	if s.ID == 0 {
		return nil, fmt.Errorf("segment %d: response has no id: %w", id, ErrMalformedResponse)
	}

	return &s, nil
}

// QuotaStatus returns the remaining requests in the short and daily windows
func (c *Client) QuotaStatus() (shortRemaining, dailyRemaining int) {
	return c.quota.Status()
}

// apiMessage is the error envelope Strava uses for every failure
type apiMessage struct {
	Message string `json:"message"`
}

func (c *Client) get(ctx context.Context, path string, token *oauth2.Token, v any) error {
	if token == nil || token.AccessToken == "" {
		return ErrUnauthorized
	}
	if c.quota.Exhausted() {
		return ErrRateLimitExceeded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !c.quota.UpdateFromHeaders(resp.Header) {
		c.quota.Record()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	// Strava reports quota exhaustion in the message field
	var msg apiMessage
	_ = json.Unmarshal(body, &msg)
	if msg.Message == RateLimitMessage || resp.StatusCode == http.StatusTooManyRequests {
		c.quota.MarkExhausted()
		return ErrRateLimitExceeded
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		text := msg.Message
		if text == "" {
			text = string(body)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: text}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w: %v", path, ErrMalformedResponse, err)
	}
	return nil
}
