package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/egapool/klinedl/domain"
	"github.com/egapool/klinedl/exchanger"
	"github.com/egapool/klinedl/exchanger/registry"
	"github.com/egapool/klinedl/internal/download"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hourly returns limit hourly candles from since, newest first.
type hourly struct {
	calls int
	proxy string
}

func (h *hourly) FetchCandles(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]domain.Candle, error) {
	h.calls++
	out := make([]domain.Candle, 0, limit)
	for i := limit - 1; i >= 0; i-- {
		p := decimal.NewFromInt(42000 + int64(i))
		out = append(out, domain.Candle{
			OpenTime: since + int64(i)*3600*1000,
			Open:     p, High: p, Low: p, Close: p,
			Volume: decimal.NewFromFloat(1.5),
		})
	}
	return out, nil
}

func stubExchange(t *testing.T, f *hourly) {
	t.Helper()
	orig := lookupExchange
	lookupExchange = func(name string) (registry.Entry, bool) {
		if name != "binance" {
			return registry.Entry{}, false
		}
		return registry.Entry{
			Name:     "binance",
			ProbeURL: "http://probe.test/",
			New: func(cfg exchanger.Config) (exchanger.Fetcher, error) {
				f.proxy = cfg.Proxy
				return f, nil
			},
		}, true
	}
	t.Cleanup(func() { lookupExchange = orig })
}

func resetFlags(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	exchangeFlag, symbolFlag, timeframeFlag = "", "", ""
	startFlag, endFlag, outputFlag = "", "", ""
	limitFlag = 0
	probeExchangeFlag = "binance"
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDownloadDirect(t *testing.T) {
	resetFlags(t)
	f := &hourly{}
	stubExchange(t, f)
	out := filepath.Join(t.TempDir(), "out.csv")

	code, stdout, stderr := run(
		"--exchange", "binance",
		"--symbol", "BTC/USDT",
		"--timeframe", "1h",
		"--start", "2024-01-01 00:00:00",
		"--limit", "3",
		"--output", out,
		"--proxy", "direct",
	)
	require.Equal(t, 0, code, stderr)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "timestamp,open,high,low,close,volume,datetime", lines[0])
	for i, line := range lines[1:] {
		assert.True(t, strings.HasSuffix(line, fmt.Sprintf(",2024-01-01 0%d:00:00", i)), line)
	}

	assert.Equal(t, 1, f.calls)
	assert.Empty(t, f.proxy)
	assert.NotContains(t, stdout, "testing proxy")
	assert.Contains(t, stdout, "downloaded 3 rows")
	assert.Contains(t, stdout, "saved to: "+out)
}

func TestDownloadMalformedStart(t *testing.T) {
	resetFlags(t)
	f := &hourly{}
	stubExchange(t, f)
	out := filepath.Join(t.TempDir(), "out.csv")

	code, _, stderr := run(
		"--exchange", "binance",
		"--symbol", "BTC/USDT",
		"--timeframe", "1h",
		"--start", "2024/01/01",
		"--limit", "3",
		"--output", out,
		"--proxy", "direct",
	)

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "input error: invalid --start")
	assert.Equal(t, 0, f.calls)
	assert.NoFileExists(t, out)
}

func TestDownloadUnknownFlag(t *testing.T) {
	resetFlags(t)
	code, _, stderr := run("--exchnage", "binance")

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "usage error:")
}

func TestDownloadNoData(t *testing.T) {
	resetFlags(t)
	stubExchange(t, &hourly{})
	stubbed := lookupExchange
	lookupExchange = func(name string) (registry.Entry, bool) {
		e, ok := stubbed(name)
		e.New = func(cfg exchanger.Config) (exchanger.Fetcher, error) { return emptyFetcher{}, nil }
		return e, ok
	}
	out := filepath.Join(t.TempDir(), "out.csv")

	code, _, stderr := run(
		"--exchange", "binance",
		"--symbol", "BTC/USDT",
		"--timeframe", "1h",
		"--start", "2030-01-01 00:00:00",
		"--end", "2030-01-01 00:00:00",
		"--output", out,
		"--proxy", "direct",
	)

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "no data retrieved")
	assert.NoFileExists(t, out)
}

type emptyFetcher struct{}

func (emptyFetcher) FetchCandles(context.Context, string, string, int64, int) ([]domain.Candle, error) {
	return nil, nil
}

func TestProbeCommand(t *testing.T) {
	resetFlags(t)
	stubExchange(t, &hourly{})
	orig := probe
	t.Cleanup(func() { probe = orig })

	var gotURL, gotProxy string
	probe = func(ctx context.Context, probeURL, proxy string, timeout time.Duration) error {
		gotURL, gotProxy = probeURL, proxy
		return nil
	}
	code, stdout, stderr := run("probe", "--exchange", "binance", "--proxy", "socks5://127.0.0.1:1080")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "http://probe.test/", gotURL)
	assert.Equal(t, "socks5://127.0.0.1:1080", gotProxy)
	assert.Contains(t, stdout, "proxy ok")

	probe = func(ctx context.Context, probeURL, proxy string, timeout time.Duration) error {
		return errors.New("connection refused")
	}
	code, _, stderr = run("probe", "--exchange", "binance", "--proxy", "http://127.0.0.1:7890")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "network error:")

	code, stdout, _ = run("probe", "--exchange", "binance", "--proxy", "direct")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "nothing to probe")
}

func TestReport(t *testing.T) {
	cases := []struct {
		err    error
		prefix string
	}{
		{download.ErrNoData, "no data retrieved"},
		{&download.InputError{Flag: "limit", Reason: "must be a positive integer"}, "input error: invalid --limit"},
		{&usageError{err: errors.New("unknown flag: --x")}, "usage error: unknown flag"},
		{exchanger.NewNetworkError("okx", errors.New("i/o timeout")), "network error:"},
		{exchanger.NewExchangeError("binance", 400, "-1121", "Invalid symbol."), "exchange error: binance http 400 [-1121]: Invalid symbol."},
		{newPanicError("boom"), "unexpected error: panic: boom"},
		{fmt.Errorf("write out.csv: %w", os.ErrPermission), "unexpected error: write out.csv"},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		code := report(&buf, c.err)

		assert.Equal(t, exitFailure, code)
		assert.True(t, strings.HasPrefix(buf.String(), c.prefix), buf.String())
	}
}

func TestReportNetworkHint(t *testing.T) {
	var buf bytes.Buffer
	report(&buf, fmt.Errorf("fetch: %w", exchanger.NewNetworkError("bybit", errors.New("eof"))))
	assert.Contains(t, buf.String(), "check the network connection and proxy settings")
}

func TestExchangesCommand(t *testing.T) {
	resetFlags(t)
	code, stdout, _ := run("exchanges")
	require.Equal(t, 0, code)
	for _, name := range registry.Names() {
		assert.Contains(t, stdout, name)
	}
}

func TestDownloadRejectsPositionalArgs(t *testing.T) {
	resetFlags(t)
	f := &hourly{}
	stubExchange(t, f)

	code, _, stderr := run("foo",
		"--exchange", "binance",
		"--symbol", "BTC/USDT",
		"--timeframe", "1h",
		"--start", "2024-01-01 00:00:00",
		"--limit", "3",
		"--output", filepath.Join(t.TempDir(), "out.csv"),
		"--proxy", "direct",
	)

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "usage error:")
	assert.Equal(t, 0, f.calls)
}

func TestConfigDuration(t *testing.T) {
	cases := []struct {
		value interface{}
		want  time.Duration
	}{
		{30000, 30 * time.Second},
		{int64(1500), 1500 * time.Millisecond},
		{"10000", 10 * time.Second},
		{"45s", 45 * time.Second},
		{2 * time.Minute, 2 * time.Minute},
	}
	for _, c := range cases {
		viper.Set("test_timeout", c.value)
		got, err := configDuration("test_timeout")
		require.NoError(t, err, c.value)
		assert.Equal(t, c.want, got, c.value)
	}

	viper.Set("test_timeout", "soon")
	_, err := configDuration("test_timeout")
	var ue *usageError
	assert.ErrorAs(t, err, &ue)
}

func TestReportUnclassifiedPrintsChainOnly(t *testing.T) {
	var buf bytes.Buffer
	report(&buf, fmt.Errorf("write out.csv: %w", os.ErrPermission))

	assert.Contains(t, buf.String(), "#1 *errors.errorString: permission denied")
	assert.NotContains(t, buf.String(), "goroutine")
}
