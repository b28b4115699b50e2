package credential

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ZaguanLabs/ernie"
)

// Cache serves access tokens from a Store, refreshing them through a Fetcher
// when the record is missing or older than MaxAge.
//
// There is no locking: two concurrent refreshes both fetch and the later
// write wins. That only costs an extra refresh later.
type Cache struct {
	store   Store
	fetcher Fetcher
	now     func() time.Time
	logger  *slog.Logger
}

// Option is a functional option for configuring the Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the structured logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache creates a token cache.
func NewCache(store Store, fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		fetcher: fetcher,
		now:     time.Now,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Token returns a valid access token, hitting the network only when the
// cached record is missing, unreadable or expired.
func (c *Cache) Token(ctx context.Context, apiKey, secretKey string) (string, error) {
	cached, loadErr := c.store.Load(ctx)
	if loadErr != nil && !errors.Is(loadErr, ErrNoToken) {
		c.logger.Warn("ignoring unreadable token cache", "error", loadErr)
	}

	now := c.now()
	res := Plan(cached, loadErr, now)
	if !res.Refresh {
		c.logger.Debug("token cache hit")
		return res.Token, nil
	}

	c.logger.Debug("fetching access token", "reason", res.Outcome.String())
	token, err := c.fetcher.Fetch(ctx, apiKey, secretKey)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", &ernie.AuthError{Message: "empty access token"}
	}

	if err := c.store.Save(ctx, Stamp(token, now)); err != nil {
		c.logger.Warn("token cache write failed", "error", err)
	}
	c.logger.Info("access token refreshed", "reason", res.Outcome.String())

	return token, nil
}

// Verify Cache implements ernie.TokenSource
var _ ernie.TokenSource = (*Cache)(nil)
