// Package binance fetches klines from the Binance spot REST API.
package binance

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
)

const (
	Name       = "binance"
	BaseURL    = "https://api.binance.com"
	ProbeURL   = BaseURL + "/api/v3/exchangeInfo"
	klinesPath = "/api/v3/klines"

	MaxLimit  = 1000
	rateLimit = 50 * time.Millisecond
)

var intervals = map[string]string{
	"1s": "1s",
	"1m": "1m", "3m": "3m", "5m": "5m", "15m": "15m", "30m": "30m",
	"1h": "1h", "2h": "2h", "4h": "4h", "6h": "6h", "8h": "8h", "12h": "12h",
	"1d": "1d", "3d": "3d", "1w": "1w", "1M": "1M",
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

type apiError struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
}

// MarketID turns "BTC/USDT" into "BTCUSDT".
func MarketID(symbol string) string {
	return strings.ToUpper(exchanger.ParseSymbol(symbol).Join(""))
}

func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]domain.Candle, error) {
	interval, ok := intervals[timeframe]
	if !ok {
		return nil, exchanger.UnsupportedTimeframe(Name, timeframe)
	}
	limit = exchanger.ClampLimit(c.log, limit, MaxLimit)
	q := map[string]string{
		"symbol":    MarketID(symbol),
		"interval":  interval,
		"startTime": strconv.FormatInt(since, 10),
		"limit":     strconv.Itoa(limit),
	}
	c.log.Debug("request klines", "params", q)

	resp, err := exchanger.Get(ctx, c.rest, Name, klinesPath, q)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		var e apiError
		if exchanger.Decode(Name, resp.Body(), &e) != nil || e.Msg == "" {
			e.Msg = exchanger.Snippet(resp.Body())
		}
		code := ""
		if e.Code != 0 {
			code = strconv.FormatInt(e.Code, 10)
		}
		return nil, exchanger.NewExchangeError(Name, resp.StatusCode(), code, e.Msg)
	}

	var rows []exchanger.KlineRow
	if err := exchanger.Decode(Name, resp.Body(), &rows); err != nil {
		return nil, err
	}
	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := exchanger.CandleFromRow(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}
