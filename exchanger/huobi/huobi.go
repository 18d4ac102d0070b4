// Package huobi fetches klines from the Huobi (HTX) spot market API.
package huobi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/egapool/klinedl/domain"
	"github.com/egapool/klinedl/exchanger"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	Name       = "huobi"
	BaseURL    = "https://api.huobi.pro"
	ProbeURL   = BaseURL + "/v1/common/timestamp"
	klinesPath = "/market/history/kline"

	MaxLimit  = 2000
	rateLimit = 100 * time.Millisecond
)

var periods = map[string]string{
	"1m": "1min", "5m": "5min", "15m": "15min", "30m": "30min",
	"1h": "60min", "4h": "4hour",
	"1d": "1day", "1w": "1week", "1M": "1mon", "1y": "1year",
}

type Client struct {
	rest *resty.Client
	log  *slog.Logger
}

func New(cfg exchanger.Config) (*Client, error) {
	return &Client{
		rest: exchanger.NewRESTClient(cfg, cfg.BaseURLOr(BaseURL), rateLimit),
		log:  cfg.Log(Name),
	}, nil
}

type kline struct {
	ID     int64           `json:"id"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Amount decimal.Decimal `json:"amount"`
	Vol    decimal.Decimal `json:"vol"`
}

type response struct {
	Status  string  `json:"status"`
	ErrCode string  `json:"err-code"`
	ErrMsg  string  `json:"err-msg"`
	Data    []kline `json:"data"`
}

// MarketID turns "BTC/USDT" into "btcusdt".
func MarketID(symbol string) string {
	return strings.ToLower(exchanger.ParseSymbol(symbol).Join(""))
}

// FetchCandles returns the most recent candles, dropping those before since.
// The endpoint has no start parameter.
func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]domain.Candle, error) {
	period, ok := periods[timeframe]
	if !ok {
		return nil, exchanger.UnsupportedTimeframe(Name, timeframe)
	}
	limit = exchanger.ClampLimit(c.log, limit, MaxLimit)
	q := map[string]string{
		"symbol": MarketID(symbol),
		"period": period,
		"size":   strconv.Itoa(limit),
	}
	c.log.Debug("request klines", "params", q)

	resp, err := exchanger.Get(ctx, c.rest, Name, klinesPath, q)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, exchanger.NewExchangeError(Name, resp.StatusCode(), "", exchanger.Snippet(resp.Body()))
	}
	var r response
	if err := exchanger.Decode(Name, resp.Body(), &r); err != nil {
		return nil, err
	}
	if r.Status != "ok" {
		return nil, exchanger.NewExchangeError(Name, 0, r.ErrCode, r.ErrMsg)
	}

	candles := make([]domain.Candle, 0, len(r.Data))
	for _, k := range r.Data {
		openTime := k.ID * 1000
		if openTime < since {
			continue
		}
		candles = append(candles, domain.Candle{
			OpenTime: openTime,
			Open:     k.Open,
			High:     k.High,
			Low:      k.Low,
			Close:    k.Close,
			Volume:   k.Amount,
		})
	}
	if dropped := len(r.Data) - len(candles); dropped > 0 {
		c.log.Info("dropped candles older than start", "dropped", dropped)
	}
	return candles, nil
}
