package exchanger

import "strings"

// Symbol is a unified BASE/QUOTE[:SETTLE] instrument.
type Symbol struct {
	Base   string
	Quote  string
	Settle string
	// Raw is set when the input was already in the exchange's own format.
	Raw string
}

// ParseSymbol splits "BTC/USDT" or "BTC/USDT:USDT". Anything without a slash is kept as Raw.
func ParseSymbol(s string) Symbol {
	s = strings.TrimSpace(s)
	slash := strings.Index(s, "/")
	if slash <= 0 || slash == len(s)-1 {
		return Symbol{Raw: s}
	}
	sym := Symbol{Base: strings.ToUpper(s[:slash])}
	quote := s[slash+1:]
	if colon := strings.Index(quote, ":"); colon >= 0 {
		sym.Settle = strings.ToUpper(quote[colon+1:])
		quote = quote[:colon]
	}
	sym.Quote = strings.ToUpper(quote)
	return sym
}

func (s Symbol) IsRaw() bool {
	return s.Raw != ""
}

// IsContract reports whether a settle currency was given.
func (s Symbol) IsContract() bool {
	return s.Settle != ""
}

// Join concatenates base and quote with sep, or returns Raw.
func (s Symbol) Join(sep string) string {
	if s.IsRaw() {
		return s.Raw
	}
	return s.Base + sep + s.Quote
}
