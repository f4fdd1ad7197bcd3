package fhttp

import (
	"fmt"
	"time"

	tlsclient "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

type Client interface {
	tlsclient.HttpClient
}

type client struct {
	tlsclient.HttpClient
}

type Config struct {
	Timeout time.Duration
	Proxy   string
	// NoRedirects disables following redirects.
	NoRedirects bool
}

// NewClient returns an HTTP client with a browser TLS fingerprint.
func NewClient(cfg *Config) (Client, error) {
	secs := int(cfg.Timeout.Seconds())
	if secs <= 0 {
		secs = 120
	}
	options := []tlsclient.HttpClientOption{
		tlsclient.WithTimeoutSeconds(secs),
		tlsclient.WithClientProfile(profiles.Chrome_120),
		tlsclient.WithCookieJar(tlsclient.NewCookieJar()),
	}
	if cfg.NoRedirects {
		options = append(options, tlsclient.WithNotFollowRedirects())
	}
	if cfg.Proxy != "" {
		options = append(options, tlsclient.WithProxyUrl(cfg.Proxy))
	}
	c, err := tlsclient.NewHttpClient(tlsclient.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("fhttp: couldn't create client: %w", err)
	}
	return &client{HttpClient: c}, nil
}
