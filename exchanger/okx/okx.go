// Package okx fetches candles from the OKX v5 market API.
package okx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/egapool/klinedl/domain"
	"github.com/egapool/klinedl/exchanger"
	"github.com/go-resty/resty/v2"
)

const (
	Name        = "okx"
	BaseURL     = "https://www.okx.com"
	ProbeURL    = BaseURL + "/api/v5/public/time"
	candlesPath = "/api/v5/market/history-candles"

	MaxLimit  = 100
	rateLimit = 100 * time.Millisecond
)

var bars = map[string]string{
	"1m": "1m", "3m": "3m", "5m": "5m", "15m": "15m", "30m": "30m",
	"1h": "1H", "2h": "2H", "4h": "4H", "6h": "6H", "12h": "12H",
	"1d": "1D", "1w": "1W", "1M": "1M", "3M": "3M",
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

type response struct {
	Code string              `json:"code"`
	Msg  string              `json:"msg"`
	Data []exchanger.KlineRow `json:"data"`
}

// InstID turns "BTC/USDT" into "BTC-USDT" and "BTC/USDT:USDT" into "BTC-USDT-SWAP".
func InstID(symbol string) string {
	sym := exchanger.ParseSymbol(symbol)
	id := sym.Join("-")
	if sym.IsContract() {
		id += "-SWAP"
	}
	return id
}

// FetchCandles asks for the window [since, since+limit*timeframe).
// OKX answers newest first.
func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]domain.Candle, error) {
	bar, ok := bars[timeframe]
	if !ok {
		return nil, exchanger.UnsupportedTimeframe(Name, timeframe)
	}
	d, err := exchanger.ParseTimeframe(timeframe)
	if err != nil {
		return nil, exchanger.UnsupportedTimeframe(Name, timeframe)
	}
	limit = exchanger.ClampLimit(c.log, limit, MaxLimit)
	// before/after は排他的
	q := map[string]string{
		"instId": InstID(symbol),
		"bar":    bar,
		"before": strconv.FormatInt(since-1, 10),
		"after":  strconv.FormatInt(since+int64(limit)*d.Milliseconds(), 10),
		"limit":  strconv.Itoa(limit),
	}
	c.log.Debug("request candles", "params", q)

	resp, err := exchanger.Get(ctx, c.rest, Name, candlesPath, q)
	if err != nil {
		return nil, err
	}
	var r response
	if derr := exchanger.Decode(Name, resp.Body(), &r); derr != nil {
		if resp.StatusCode() != http.StatusOK {
			return nil, exchanger.NewExchangeError(Name, resp.StatusCode(), "", exchanger.Snippet(resp.Body()))
		}
		return nil, derr
	}
	if resp.StatusCode() != http.StatusOK || r.Code != "0" {
		return nil, exchanger.NewExchangeError(Name, resp.StatusCode(), r.Code, r.Msg)
	}

	candles := make([]domain.Candle, 0, len(r.Data))
	for _, row := range r.Data {
		candle, err := exchanger.CandleFromRow(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}
