// Package registry resolves exchange identifiers to adapters.
package registry

import (
	"sort"
	"strings"

	"github.com/egapool/klinedl/exchanger"
	"github.com/egapool/klinedl/exchanger/binance"
	"github.com/egapool/klinedl/exchanger/bybit"
	"github.com/egapool/klinedl/exchanger/ftx"
	"github.com/egapool/klinedl/exchanger/huobi"
	"github.com/egapool/klinedl/exchanger/okx"
)

// Factory builds a Fetcher from the shared configuration.
type Factory func(cfg exchanger.Config) (exchanger.Fetcher, error)

type Entry struct {
	Name string
	// ProbeURL is a lightweight metadata endpoint used to check the proxy.
	ProbeURL string
	New      Factory
}

var entries = map[string]Entry{
	binance.Name: {
		Name:     binance.Name,
		ProbeURL: binance.ProbeURL,
		New:      func(cfg exchanger.Config) (exchanger.Fetcher, error) { return binance.New(cfg) },
	},
	okx.Name: {
		Name:     okx.Name,
		ProbeURL: okx.ProbeURL,
		New:      func(cfg exchanger.Config) (exchanger.Fetcher, error) { return okx.New(cfg) },
	},
	bybit.Name: {
		Name:     bybit.Name,
		ProbeURL: bybit.ProbeURL,
		New:      func(cfg exchanger.Config) (exchanger.Fetcher, error) { return bybit.New(cfg) },
	},
	huobi.Name: {
		Name:     huobi.Name,
		ProbeURL: huobi.ProbeURL,
		New:      func(cfg exchanger.Config) (exchanger.Fetcher, error) { return huobi.New(cfg) },
	},
	ftx.Name: {
		Name:     ftx.Name,
		ProbeURL: ftx.ProbeURL,
		New:      func(cfg exchanger.Config) (exchanger.Fetcher, error) { return ftx.New(cfg) },
	},
}

var aliases = map[string]string{
	"htx":  huobi.Name,
	"okex": okx.Name,
}

// Lookup is case-insensitive and understands a few legacy names.
func Lookup(name string) (Entry, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	e, ok := entries[key]
	return e, ok
}

func Names() []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
