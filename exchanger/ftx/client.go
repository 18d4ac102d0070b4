package ftx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/egapool/klinedl/domain"
	"github.com/egapool/klinedl/exchanger"
	"github.com/go-numb/go-ftx/auth"
	"github.com/go-numb/go-ftx/rest"
	"github.com/go-numb/go-ftx/rest/public/markets"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"
	"golang.org/x/time/rate"
)

const (
	Name     = "ftx"
	ProbeURL = "https://ftx.com/api/markets"

	MaxLimit  = 5000
	rateLimit = 34 * time.Millisecond
)

// 秒単位
var resolutions = map[string]int{
	"15s": 15, "1m": 60, "5m": 300, "15m": 900,
	"1h": 3600, "4h": 14400, "1d": 86400,
}

func NewRestClient(api_key, api_secret string) *rest.Client {
	return rest.New(auth.New(api_key, api_secret))
}

type Client struct {
	rest    *rest.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// New builds a public-endpoint client. go-ftx has a fixed API root, so cfg.BaseURL is ignored.
func New(cfg exchanger.Config) (*Client, error) {
	rc := NewRestClient("", "")
	if cfg.Timeout > 0 {
		rc.HTTPTimeout = cfg.Timeout
	}
	if !exchanger.IsDirect(cfg.Proxy) {
		dial, err := ProxyDialer(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		rc.HTTPC.Dial = dial
	}
	c := &Client{rest: rc, log: cfg.Log(Name)}
	if cfg.EnableRateLimit {
		c.limiter = rate.NewLimiter(rate.Every(rateLimit), 1)
	}
	return c, nil
}

// ProxyDialer routes fasthttp connections through an http or socks5 proxy.
func ProxyDialer(proxy string) (fasthttp.DialFunc, error) {
	u, err := exchanger.ParseProxy(proxy)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("no proxy given")
	}
	switch u.Scheme {
	case "socks5", "socks5h":
		return fasthttpproxy.FasthttpSocksDialer(u.String()), nil
	default:
		addr := u.Host
		if u.User != nil {
			addr = u.User.String() + "@" + addr
		}
		return fasthttpproxy.FasthttpHTTPDialer(addr), nil
	}
}

// ProductCode maps "BTC/USD:USD" to the perpetual "BTC-PERP"; other inputs pass through.
func ProductCode(symbol string) string {
	sym := exchanger.ParseSymbol(symbol)
	if sym.IsContract() {
		return sym.Base + "-PERP"
	}
	return sym.Join("/")
}

func Resolution(timeframe string) (int, bool) {
	res, ok := resolutions[timeframe]
	return res, ok
}

func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]domain.Candle, error) {
	res, ok := Resolution(timeframe)
	if !ok {
		return nil, exchanger.UnsupportedTimeframe(Name, timeframe)
	}
	limit = exchanger.ClampLimit(c.log, limit, MaxLimit)
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, exchanger.NewNetworkError(Name, err)
		}
	}
	req := candleRequest(symbol, res, since, limit)
	c.log.Debug("request candles", "market", req.ProductCode, "resolution", res, "start", req.Start, "end", req.End)

	candles, err := c.rest.Candles(req)
	if err != nil {
		return nil, classify(err)
	}
	return convert(*candles), nil
}

// candleRequest bounds the window to the limit bars starting at since.
// Without end_time FTX answers with the newest bars instead.
func candleRequest(symbol string, res int, since int64, limit int) *markets.RequestForCandles {
	start := since / 1000
	// end_time は含まれるので最後の足の開始時刻
	end := start + int64(limit-1)*int64(res)
	return &markets.RequestForCandles{
		ProductCode: ProductCode(symbol),
		Resolution:  res,
		Limit:       limit,
		Start:       start,
		End:         end,
	}
}

func convert(candles markets.ResponseForCandles) []domain.Candle {
	out := make([]domain.Candle, 0, len(candles))
	for _, c := range candles {
		out = append(out, domain.Candle{
			OpenTime: c.StartTime.UnixMilli(),
			Open:     decimal.NewFromFloat(c.Open),
			High:     decimal.NewFromFloat(c.High),
			Low:      decimal.NewFromFloat(c.Low),
			Close:    decimal.NewFromFloat(c.Close),
			Volume:   decimal.NewFromFloat(c.Volume),
		})
	}
	return out
}

func classify(err error) error {
	var apiErr *rest.APIError
	switch {
	case errors.As(err, &apiErr):
		return exchanger.NewExchangeError(Name, 0, "", err.Error())
	case errors.Is(err, fasthttp.ErrTimeout), errors.Is(err, fasthttp.ErrDialTimeout), exchanger.IsNetworkError(err):
		return exchanger.NewNetworkError(Name, err)
	default:
		return fmt.Errorf("%s: %w", Name, err)
	}
}
