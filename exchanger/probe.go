package exchanger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultProbeURL = "https://api.binance.com/api/v3/exchangeInfo"
	ProbeTimeout    = 10 * time.Second
)

// Probe sends one GET to probeURL through proxy and succeeds only on 200.
// It is advisory: callers log the outcome and carry on.
func Probe(ctx context.Context, probeURL, proxy string, timeout time.Duration) error {
	if IsDirect(proxy) {
		return nil
	}
	if probeURL == "" {
		probeURL = DefaultProbeURL
	}
	if timeout <= 0 {
		timeout = ProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := resty.New().
		SetTimeout(timeout).
		SetProxy(proxy).
		SetHeader("User-Agent", UserAgent)
	resp, err := c.R().SetContext(ctx).Get(probeURL)
	if err != nil {
		return fmt.Errorf("probe %s via %s: %w", probeURL, proxy, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("probe %s via %s: http %d", probeURL, proxy, resp.StatusCode())
	}
	return nil
}
