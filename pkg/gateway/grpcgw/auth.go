package grpcgw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultExpiryLeeway = 60 * time.Second
	defaultHTTPTimeout  = 10 * time.Second
	fallbackTokenTTL    = 5 * time.Minute
	maxErrBodyBytes     = 4096
)

// TokenSource supplies bearer tokens for outgoing calls.
type TokenSource interface {
	// Token returns a valid access token, fetching a new one when the cached token is due.
	Token(ctx context.Context) (string, error)
	// Invalidate drops the cached token, forcing the next call to fetch one.
	Invalidate()
}

// ClientCredentials is a TokenSource using the OAuth2 client credentials grant.
type ClientCredentials struct {
	cfg        *AuthConfig
	httpClient *http.Client
	leeway     time.Duration
	now        func() time.Time

	mu        sync.Mutex
	token     string
	refreshBy time.Time
}

// NewClientCredentials creates a token source for cfg.
func NewClientCredentials(cfg *AuthConfig, httpClient *http.Client) *ClientCredentials {
	leeway := cfg.ExpiryLeeway
	if leeway == 0 {
		leeway = defaultExpiryLeeway
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &ClientCredentials{cfg: cfg, httpClient: httpClient, leeway: leeway, now: time.Now}
}

// Token implements TokenSource.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	if err := c.cfg.validate(); err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.token != "" && c.now().Before(c.refreshBy) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	tok, expiresIn, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.token = tok
	c.refreshBy = refreshDeadline(c.now(), expiresIn, c.leeway)
	c.mu.Unlock()
	return tok, nil
}

// Invalidate implements TokenSource.
func (c *ClientCredentials) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.refreshBy = time.Time{}
}

func (c *ClientCredentials) fetch(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}
	if c.cfg.Audience != "" {
		form.Set("audience", c.cfg.Audience)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyBytes))
		return "", 0, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", 0, errors.New("token response missing access_token")
	}
	return body.AccessToken, time.Duration(body.ExpiresIn) * time.Second, nil
}

// refreshDeadline returns when a token valid for expiresIn must be refreshed.
// Tokens shorter lived than the leeway are refreshed halfway through.
func refreshDeadline(now time.Time, expiresIn, leeway time.Duration) time.Time {
	if expiresIn <= 0 {
		return now.Add(fallbackTokenTTL)
	}
	if expiresIn <= leeway {
		return now.Add(expiresIn / 2)
	}
	return now.Add(expiresIn - leeway)
}
