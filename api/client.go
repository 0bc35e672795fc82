// Package api talks to the Qlink backend over the three HTTP contracts
// the client depends on: login, register, and shorten. Endpoint URLs
// come from deployment-time configuration, never from code.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"qlink-client/config"
	"qlink-client/model"
)

// Error is a server-reported failure: a response arrived but carried a
// non-success status. Message, when non-empty, is the server's own text
// and is surfaced to the user verbatim. A transport failure (no
// response at all) is never an *Error.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// TokenSource supplies the current session token. It is consulted per
// request rather than cached: the session may change between calls.
type TokenSource func() model.SessionToken

// Client issues the external calls for all form submissions. Requests
// are paced through a shared limiter so a misbehaving shell loop can't
// hammer the backend.
type Client struct {
	httpClient *http.Client
	cfg        config.APIConfig
	limiter    *rate.Limiter
	token      TokenSource
}

// New creates a client for the configured endpoints. token may be nil
// when no session-gated calls will be made.
func New(cfg config.APIConfig, token TokenSource) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5.0
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		token:      token,
	}
}

// Login exchanges credentials for the session token pair.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	var resp model.LoginResponse
	err := c.post(ctx, c.cfg.LoginURL, req, &resp, "")
	return resp, err
}

// Register creates an account. No session payload is consumed; the
// caller is expected to log in afterwards.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) error {
	return c.post(ctx, c.cfg.RegisterURL, req, nil, "")
}

// Shorten submits a URL for shortening. The bearer token is attached
// when a session exists; the feature is session-gated.
func (c *Client) Shorten(ctx context.Context, req model.ShortenRequest) (model.ShortenResponse, error) {
	bearer := ""
	if c.token != nil {
		if tok := c.token(); tok.Authenticated() {
			bearer = tok.AccessToken
		}
	}

	var resp model.ShortenResponse
	err := c.post(ctx, c.cfg.ShortenURL, req, &resp, bearer)
	return resp, err
}

// post issues exactly one JSON request. 2xx responses are decoded into
// out (when non-nil); other statuses become *Error with whatever
// message the body carried; failures to reach the server are returned
// wrapped, not as *Error.
func (c *Client) post(ctx context.Context, url string, body, out interface{}, bearer string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for request slot: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("Request transport failure")
		return fmt.Errorf("calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response from %s: %w", url, err)
		}
		return nil
	}

	var errBody model.ErrorResponse
	// A body that fails to decode simply means no server message.
	_ = json.NewDecoder(resp.Body).Decode(&errBody)

	message := errBody.Message
	if message == "" {
		message = errBody.Error
	}
	log.Debug().Int("status", resp.StatusCode).Str("url", url).Str("message", message).
		Msg("Request rejected by server")

	return &Error{Status: resp.StatusCode, Message: message}
}
