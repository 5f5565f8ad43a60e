package signon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Authorization is the sign-on service's credential grant.
type Authorization struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// Client talks to the external sign-on service that issues room
// credentials. The returned token is treated as opaque apart from its
// claims (see DecodeCredential).
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a sign-on client for the service at baseURL.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// HostQuiz requests a host credential for a fresh room.
func (c *Client) HostQuiz(ctx context.Context) (Authorization, error) {
	return c.post(ctx, c.baseURL+"/sign-on/host")
}

// JoinQuiz requests a participant credential for an existing room.
func (c *Client) JoinQuiz(ctx context.Context, roomID string) (Authorization, error) {
	return c.post(ctx, fmt.Sprintf("%s/sign-on/%s/join", c.baseURL, url.PathEscape(roomID)))
}

func (c *Client) post(ctx context.Context, addr string) (Authorization, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, nil)
	if err != nil {
		return Authorization{}, fmt.Errorf("build sign-on request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Authorization{}, fmt.Errorf("sign-on request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Authorization{}, fmt.Errorf("sign-on returned %d: %s", resp.StatusCode, body)
	}

	var auth Authorization
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return Authorization{}, fmt.Errorf("decode sign-on response: %w", err)
	}
	if auth.AccessToken == "" {
		return Authorization{}, fmt.Errorf("sign-on response missing access token")
	}
	return auth, nil
}
