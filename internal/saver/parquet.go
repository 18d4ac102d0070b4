package saver

import (
	"io"

	"github.com/egapool/klinedl/domain"
	"github.com/parquet-go/parquet-go"
)

type parquetRow struct {
	Timestamp int64   `parquet:"timestamp"`
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
	Datetime  string  `parquet:"datetime"`
}

// ParquetSaver stores prices as float64.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Encode(w io.Writer, t domain.Table) error {
	rows := make([]parquetRow, 0, t.Len())
	for _, r := range t.Rows {
		rows = append(rows, parquetRow{
			Timestamp: r.OpenTime,
			Open:      r.Open.InexactFloat64(),
			High:      r.High.InexactFloat64(),
			Low:       r.Low.InexactFloat64(),
			Close:     r.Close.InexactFloat64(),
			Volume:    r.Volume.InexactFloat64(),
			Datetime:  r.Datetime,
		})
	}
	return parquet.Write(w, rows)
}
