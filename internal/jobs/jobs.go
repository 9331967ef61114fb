// Package jobs fetches trending job listings from a public job board.
package jobs

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultURL     = "https://remoteok.io/api"
	DefaultTimeout = 10 * time.Second
	userAgent      = "spigell/careerpath (spigelly@gmail.com)"
)

// Config describes the upstream job board.
type Config struct {
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Cache     *CacheConfig  `mapstructure:"cache"`
}

// Client relays the job board response body without reshaping it.
type Client struct {
	logger     *zap.Logger
	cache      Cache
	cacheTTL   time.Duration
	HTTPClient *http.Client
	UserAgent  string
	URL        string
}

func New(cfg *Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{Timeout: DefaultTimeout}
	}

	c := &Client{
		URL: DefaultURL,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:    logger,
		UserAgent: userAgent,
	}

	if cfg.URL != "" {
		c.URL = cfg.URL
	}
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	return c
}

// WithCache stores successful responses for ttl.
func (c *Client) WithCache(cache Cache, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

// Trending returns the raw JSON body of the job board listing.
func (c *Client) Trending(ctx context.Context) ([]byte, error) {
	if body, ok := c.fromCache(ctx); ok {
		return body, nil
	}

	body, err := c.getJSON(ctx, c.URL)
	if err != nil {
		return nil, err
	}

	c.toCache(ctx, body)
	return body, nil
}
