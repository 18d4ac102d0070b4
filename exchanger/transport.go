package exchanger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/egapool/klinedl/domain"
	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const UserAgent = "klinedl/1.0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewRESTClient builds the resty client every REST adapter talks through.
// With EnableRateLimit requests are spaced at least every apart.
func NewRESTClient(cfg Config, baseURL string, every time.Duration) *resty.Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if IsDirect(cfg.Proxy) {
		// HTTP_PROXY and friends must not sneak in either
		c.RemoveProxy()
	} else {
		c.SetProxy(cfg.Proxy)
	}
	if cfg.EnableRateLimit && every > 0 {
		limiter := rate.NewLimiter(rate.Every(every), 1)
		c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})
	}
	return c
}

// Get sends one GET. Transport failures and 5xx answers come back as *NetworkError;
// every other response is returned for the adapter to judge.
func Get(ctx context.Context, c *resty.Client, exchange, path string, query map[string]string) (*resty.Response, error) {
	resp, err := c.R().SetContext(ctx).SetQueryParams(query).Get(path)
	if err != nil {
		return nil, NewNetworkError(exchange, err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, NewNetworkError(exchange, fmt.Errorf("http %d: %s", resp.StatusCode(), Snippet(resp.Body())))
	}
	return resp, nil
}

func Decode(exchange string, body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: decode response: %w", exchange, err)
	}
	return nil
}

// Snippet trims a response body for error messages.
func Snippet(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// KlineRow is one element of an array style kline response. Fields are kept raw
// so trailing fields of any type do not break decoding.
type KlineRow []jsoniter.RawMessage

// CandleFromRow reads the [time, open, high, low, close, volume, ...] layout
// shared by the array style kline endpoints. Fields past the sixth are ignored.
func CandleFromRow(row KlineRow) (domain.Candle, error) {
	if len(row) < 6 {
		return domain.Candle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}
	var fields [6]decimal.Decimal
	for i := range fields {
		// 数値でも文字列でもよい
		if err := fields[i].UnmarshalJSON(row[i]); err != nil {
			return domain.Candle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
	}
	return domain.Candle{
		OpenTime: fields[0].IntPart(),
		Open:     fields[1],
		High:     fields[2],
		Low:      fields[3],
		Close:    fields[4],
		Volume:   fields[5],
	}, nil
}
