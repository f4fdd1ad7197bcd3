// Package fetch downloads remote media with retries.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/golang-jwt/jwt"
	"github.com/hashicorp/go-hclog"
	"github.com/igolaizola/vidloop/pkg/fhttp"
)

// Doer sends HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	client     Doer
	log        hclog.Logger
	debug      bool
	token      string
	expiration time.Time
	backoff    []time.Duration
}

type Config struct {
	// Token is sent as a bearer token. If it is a JWT with an expiration
	// claim, expired tokens are rejected without sending any request.
	Token   string
	Timeout time.Duration
	Proxy   string
	Debug   bool
	Logger  hclog.Logger
	// Backoff is the wait before each retry of a failed response.
	Backoff []time.Duration
	// Client overrides the default browser-like HTTP client.
	Client Doer
}

var defaultBackoff = []time.Duration{
	5 * time.Second,
	15 * time.Second,
	30 * time.Second,
}

func New(cfg *Config) (*Client, error) {
	expiration := tokenExpiration(cfg.Token)
	if !expiration.IsZero() && expiration.Before(time.Now()) {
		return nil, fmt.Errorf("fetch: token expired")
	}
	client := cfg.Client
	if client == nil {
		c, err := fhttp.NewClient(&fhttp.Config{
			Timeout: cfg.Timeout,
			Proxy:   cfg.Proxy,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch: couldn't create http client: %w", err)
		}
		client = c
	}
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	backoff := cfg.Backoff
	if len(backoff) == 0 {
		backoff = defaultBackoff
	}
	return &Client{
		client:     client,
		log:        log,
		debug:      cfg.Debug,
		token:      cfg.Token,
		expiration: expiration,
		backoff:    backoff,
	}, nil
}

// tokenExpiration returns the expiration of a JWT token, or the zero time
// when the token is empty, opaque or has no expiration.
func tokenExpiration(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	parser := jwt.Parser{}
	t, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		// Not a JWT, send it as is
		return time.Time{}
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(exp), 0)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.debug {
		c.log.Debug(fmt.Sprintf(format, args...))
	}
}

type errStatusCode int

func (e errStatusCode) Error() string {
	return fmt.Sprintf("%d", e)
}

// Download writes the body of u to output, retrying temporary failures.
func (c *Client) Download(ctx context.Context, u, output string) error {
	if !c.expiration.IsZero() && time.Now().After(c.expiration) {
		return fmt.Errorf("fetch: token expired")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("fetch: couldn't create output directory: %w", err)
	}
	maxAttempts := 3
	attempts := 0
	var err error
	for {
		if err != nil {
			c.log.Warn("retrying download", "url", u, "error", err)
		}
		err = c.downloadAttempt(ctx, u, output)
		if err == nil {
			return nil
		}
		_ = os.Remove(output)

		// Increase attempts and check if we should stop
		attempts++
		if attempts >= maxAttempts {
			return err
		}
		// If the error is temporary retry
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			continue
		}
		var errStatus errStatusCode
		if !errors.As(err, &errStatus) {
			return err
		}
		switch int(errStatus) {
		// These errors are retriable but we should wait before retry
		case http.StatusBadGateway, http.StatusGatewayTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		default:
			return err
		}
		idx := attempts - 1
		if idx >= len(c.backoff) {
			idx = len(c.backoff) - 1
		}
		wait := c.backoff[idx]
		c.logf("fetch: server seems to be down, waiting %s before retrying", wait)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (c *Client) downloadAttempt(ctx context.Context, u, output string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("fetch: couldn't create request: %w", err)
	}
	req.Header.Set("accept", "*/*")
	req.Header.Set("accept-language", "en-US,en;q=0.9")
	req.Header.Set("user-agent", `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36`)
	if c.token != "" {
		req.Header.Set("authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	c.logf("fetch: do GET %s", u)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: couldn't GET %s: %w", u, err)
	}
	defer resp.Body.Close()
	c.logf("fetch: response GET %s %d", u, resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch: GET %s returned: %w", u, errStatusCode(resp.StatusCode))
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("fetch: couldn't create %s: %w", output, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("fetch: couldn't write %s: %w", output, err)
	}
	return f.Close()
}
