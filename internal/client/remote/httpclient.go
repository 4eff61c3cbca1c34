package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/logging"
)

const (
	authBasePath = "/auth/v1"
	restBasePath = "/rest/v1"

	requestTimeout = 15 * time.Second

	// eventBuffer bounds each subscriber channel; a slow consumer drops
	// events rather than blocking remote calls.
	eventBuffer = 8
)

// HTTPClient implements Client against a hosted backend exposing a
// GoTrue-style auth API and a PostgREST-style table API under one base URL,
// authenticated with a project anonymous key plus the user's bearer token.
type HTTPClient struct {
	baseURL string
	anonKey string
	httpc   *http.Client
	log     logging.Logger

	// now is a test seam; defaults to time.Now.
	now func() time.Time

	mu      sync.Mutex
	session *models.AuthSession
	subs    []chan AuthEvent
}

// NewHTTPClient builds a client for the backend at baseURL. The anonymous
// key is sent on every request; user-scoped calls add the session bearer.
func NewHTTPClient(baseURL, anonKey string, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpc:   &http.Client{Timeout: requestTimeout},
		log:     log,
		now:     time.Now,
	}
}

// Session returns the current session, nil when signed out.
func (c *HTTPClient) Session() *models.AuthSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSession installs a previously persisted session without emitting events.
func (c *HTTPClient) SetSession(s *models.AuthSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// Subscribe registers a new auth-event listener.
func (c *HTTPClient) Subscribe() <-chan AuthEvent {
	ch := make(chan AuthEvent, eventBuffer)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, ch)
	return ch
}

// Close drops all subscriber channels.
func (c *HTTPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
	return nil
}

func (c *HTTPClient) setSessionAndEmit(s *models.AuthSession, ev AuthEvent) {
	c.mu.Lock()
	c.session = s
	subs := make([]chan AuthEvent, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// doJSON performs one HTTP round trip with JSON encoding on both sides.
// Network-level failures are wrapped in ErrTransport. The raw body is
// returned so callers can map structured error payloads.
func (c *HTTPClient) doJSON(ctx context.Context, method, url string, headers map[string]string, body, out any) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 300 && out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, data, fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
		}
	}
	return resp.StatusCode, data, nil
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
