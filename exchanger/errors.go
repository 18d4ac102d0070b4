package exchanger

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// NetworkError is a transport level failure reaching the exchange.
type NetworkError struct {
	Exchange string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Exchange, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ExchangeError is a request the exchange understood and rejected:
// unknown symbol or timeframe, bad parameters, auth, rate limiting.
type ExchangeError struct {
	Exchange string
	Status   int
	Code     string
	Message  string
}

func (e *ExchangeError) Error() string {
	msg := e.Exchange
	if e.Status != 0 {
		msg += fmt.Sprintf(" http %d", e.Status)
	}
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	return msg + ": " + e.Message
}

func NewNetworkError(exchange string, err error) *NetworkError {
	return &NetworkError{Exchange: exchange, Err: err}
}

func NewExchangeError(exchange string, status int, code, message string) *ExchangeError {
	return &ExchangeError{Exchange: exchange, Status: status, Code: code, Message: message}
}

// UnsupportedTimeframe is returned before any request is sent.
func UnsupportedTimeframe(exchange, timeframe string) *ExchangeError {
	return NewExchangeError(exchange, 0, "", fmt.Sprintf("unsupported timeframe %q", timeframe))
}

// IsNetworkError reports whether err looks like a transport failure.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
