package domain

import (
	"sort"
	"strconv"
)

// Columns is the header of every written table.
var Columns = []string{"timestamp", "open", "high", "low", "close", "volume", "datetime"}

type Row struct {
	Candle
	Datetime string `json:"datetime"`
}

// Record returns the row in Columns order.
func (r Row) Record() []string {
	return []string{
		strconv.FormatInt(r.OpenTime, 10),
		r.Open.String(),
		r.High.String(),
		r.Low.String(),
		r.Close.String(),
		r.Volume.String(),
		r.Datetime,
	}
}

// Table is the result of one download, ascending by open time.
type Table struct {
	Rows []Row
}

// NewTable annotates candles with their datetime and stable-sorts them by open time.
// The input slice is left untouched.
func NewTable(candles []Candle) Table {
	rows := make([]Row, 0, len(candles))
	for _, c := range candles {
		rows = append(rows, Row{Candle: c, Datetime: c.Datetime()})
	}
	// 取引所によっては降順で返ってくる
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OpenTime < rows[j].OpenTime
	})
	return Table{Rows: rows}
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// First and Last panic on an empty table.
func (t Table) First() Row {
	return t.Rows[0]
}

func (t Table) Last() Row {
	return t.Rows[len(t.Rows)-1]
}
