package saver

import (
	"io"

	"github.com/egapool/klinedl/domain"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONSaver writes an array of row objects. Prices are strings to keep their precision.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Encode(w io.Writer, t domain.Table) error {
	rows := t.Rows
	if rows == nil {
		rows = []domain.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
