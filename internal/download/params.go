package download

import (
	"fmt"
	"strings"
	"time"

	"github.com/egapool/klinedl/exchanger"
	"github.com/egapool/klinedl/exchanger/registry"
)

const (
	StartLayout  = "2006-01-02 15:04:05"
	DefaultProxy = "http://127.0.0.1:7890"
)

// Lookup resolves an exchange identifier.
type Lookup func(name string) (registry.Entry, bool)

// Input is the raw invocation, as typed on the command line.
type Input struct {
	Exchange  string
	Symbol    string
	Timeframe string
	Start     string
	// End is only used to estimate Limit when Limit is not given.
	End      string
	Limit    int
	Output   string
	Proxy    string
	Location *time.Location
}

// Params is a validated Input.
type Params struct {
	Exchange  string
	Symbol    string
	Timeframe string
	Start     time.Time
	Limit     int
	Output    string
	// Proxy is empty for direct connections.
	Proxy    string
	ProbeURL string
}

// Since is the start in epoch milliseconds.
func (p Params) Since() int64 {
	return p.Start.UnixMilli()
}

func (p Params) Direct() bool {
	return exchanger.IsDirect(p.Proxy)
}

// InputError is a bad invocation parameter. It is always reported before any network call.
type InputError struct {
	Flag   string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid --%s: %s", e.Flag, e.Reason)
}

func ParseParams(in Input, lookup Lookup) (Params, error) {
	for _, f := range []struct{ flag, value string }{
		{"exchange", in.Exchange},
		{"symbol", in.Symbol},
		{"timeframe", in.Timeframe},
		{"start", in.Start},
		{"output", in.Output},
	} {
		if strings.TrimSpace(f.value) == "" {
			return Params{}, &InputError{Flag: f.flag, Reason: "required"}
		}
	}

	entry, ok := lookup(in.Exchange)
	if !ok {
		return Params{}, &InputError{Flag: "exchange", Reason: fmt.Sprintf("unsupported exchange %q", in.Exchange)}
	}

	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(StartLayout, strings.TrimSpace(in.Start), loc)
	if err != nil {
		return Params{}, &InputError{Flag: "start", Reason: fmt.Sprintf("%q does not match %q", in.Start, StartLayout)}
	}

	limit := in.Limit
	if strings.TrimSpace(in.End) != "" {
		end, err := time.ParseInLocation(StartLayout, strings.TrimSpace(in.End), loc)
		if err != nil {
			return Params{}, &InputError{Flag: "end", Reason: fmt.Sprintf("%q does not match %q", in.End, StartLayout)}
		}
		if end.Before(start) {
			return Params{}, &InputError{Flag: "end", Reason: fmt.Sprintf("%q is before --start", in.End)}
		}
		if limit <= 0 {
			limit, err = exchanger.EstimateBars(start, end, in.Timeframe)
			if err != nil {
				return Params{}, &InputError{Flag: "end", Reason: err.Error()}
			}
		}
	}
	if limit <= 0 {
		return Params{}, &InputError{Flag: "limit", Reason: "must be a positive integer"}
	}

	proxy := strings.TrimSpace(in.Proxy)
	if _, err := exchanger.ParseProxy(proxy); err != nil {
		return Params{}, &InputError{Flag: "proxy", Reason: err.Error()}
	}
	if exchanger.IsDirect(proxy) {
		proxy = ""
	}

	return Params{
		Exchange:  entry.Name,
		Symbol:    strings.TrimSpace(in.Symbol),
		Timeframe: strings.TrimSpace(in.Timeframe),
		Start:     start,
		Limit:     limit,
		Output:    in.Output,
		Proxy:     proxy,
		ProbeURL:  entry.ProbeURL,
	}, nil
}
