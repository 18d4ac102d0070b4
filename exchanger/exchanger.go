// Package exchanger holds what every exchange adapter shares: the fetch capability,
// its configuration bag, the error taxonomy and the REST transport.
package exchanger

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/egapool/klinedl/domain"
)

const (
	// Direct disables the proxy.
	Direct = "direct"

	DefaultTimeout = 30 * time.Second
)

// Fetcher fetches one bounded batch of candles starting at since (epoch ms).
// The result holds at most limit candles in no guaranteed order.
type Fetcher interface {
	FetchCandles(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]domain.Candle, error)
}

// Config is handed to every adapter constructor.
type Config struct {
	Timeout         time.Duration
	EnableRateLimit bool
	// Proxy is empty when requests go out directly.
	Proxy string
	// BaseURL overrides the adapter's API root.
	BaseURL string
	Logger  *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		EnableRateLimit: true,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Log returns the configured logger tagged with the exchange name.
func (c Config) Log(exchange string) *slog.Logger {
	return c.logger().With("exchange", exchange)
}

func (c Config) BaseURLOr(def string) string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return def
}

// IsDirect reports whether proxy means "no proxy".
func IsDirect(proxy string) bool {
	proxy = strings.TrimSpace(proxy)
	return proxy == "" || strings.EqualFold(proxy, Direct)
}

// ParseProxy validates a proxy address. Direct values return nil.
func ParseProxy(proxy string) (*url.URL, error) {
	if IsDirect(proxy) {
		return nil, nil
	}
	u, err := url.Parse(strings.TrimSpace(proxy))
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxy, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("invalid proxy %q: unsupported scheme %q", proxy, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q: missing host", proxy)
	}
	return u, nil
}

// ClampLimit caps limit at max and logs when it had to.
func ClampLimit(log *slog.Logger, limit, max int) int {
	if limit > max {
		log.Warn("limit exceeds the per-request maximum, clamping", "limit", limit, "max", max)
		return max
	}
	return limit
}
