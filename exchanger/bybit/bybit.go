// Package bybit fetches klines from the Bybit v5 market API.
package bybit

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
	Name       = "bybit"
	BaseURL    = "https://api.bybit.com"
	ProbeURL   = BaseURL + "/v5/market/time"
	klinesPath = "/v5/market/kline"

	MaxLimit  = 1000
	rateLimit = 20 * time.Millisecond
)

var intervals = map[string]string{
	"1m": "1", "3m": "3", "5m": "5", "15m": "15", "30m": "30",
	"1h": "60", "2h": "120", "4h": "240", "6h": "360", "12h": "720",
	"1d": "D", "1w": "W", "1M": "M",
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
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Symbol   string              `json:"symbol"`
		Category string              `json:"category"`
		List     []exchanger.KlineRow `json:"list"`
	} `json:"result"`
}

// Market returns the category and symbol id for a unified symbol.
// "BTC/USDT" is spot, "BTC/USDT:USDT" linear and "BTC/USD:BTC" inverse.
func Market(symbol string) (category, id string) {
	sym := exchanger.ParseSymbol(symbol)
	id = strings.ToUpper(sym.Join(""))
	switch {
	case !sym.IsContract():
		return "spot", id
	case sym.Settle == sym.Base:
		return "inverse", id
	default:
		return "linear", id
	}
}

func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]domain.Candle, error) {
	interval, ok := intervals[timeframe]
	if !ok {
		return nil, exchanger.UnsupportedTimeframe(Name, timeframe)
	}
	d, err := exchanger.ParseTimeframe(timeframe)
	if err != nil {
		return nil, exchanger.UnsupportedTimeframe(Name, timeframe)
	}
	limit = exchanger.ClampLimit(c.log, limit, MaxLimit)
	category, id := Market(symbol)
	q := map[string]string{
		"category": category,
		"symbol":   id,
		"interval": interval,
		"start":    strconv.FormatInt(since, 10),
		"end":      strconv.FormatInt(since+int64(limit)*d.Milliseconds()-1, 10),
		"limit":    strconv.Itoa(limit),
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
	if r.RetCode != 0 {
		return nil, exchanger.NewExchangeError(Name, 0, strconv.Itoa(r.RetCode), r.RetMsg)
	}

	candles := make([]domain.Candle, 0, len(r.Result.List))
	for _, row := range r.Result.List {
		candle, err := exchanger.CandleFromRow(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}
