package saver

import (
	"encoding/csv"
	"io"

	"github.com/egapool/klinedl/domain"
)

// CSVSaver writes the header row followed by one line per candle.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Encode(w io.Writer, t domain.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(domain.Columns); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := writer.Write(r.Record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
