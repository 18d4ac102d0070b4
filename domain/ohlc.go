package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DatetimeLayout is the layout of the derived datetime column.
const DatetimeLayout = "2006-01-02 15:04:05"

// Candle is one OHLCV bar as returned by an exchange.
// OpenTime is the bar start in milliseconds since the epoch.
type Candle struct {
	OpenTime int64           `json:"timestamp"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

// Time returns the open time in UTC.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.OpenTime).UTC()
}

// Datetime formats the open time with DatetimeLayout.
func (c Candle) Datetime() string {
	return FormatDatetime(c.OpenTime)
}

func FormatDatetime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(DatetimeLayout)
}
