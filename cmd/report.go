package cmd

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/egapool/klinedl/exchanger"
	"github.com/egapool/klinedl/internal/download"
)

const exitFailure = 1

// panicError carries the stack of a recovered panic.
type panicError struct {
	value interface{}
	stack []byte
}

func newPanicError(v interface{}) *panicError {
	return &panicError{value: v, stack: debug.Stack()}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// report prints err with the prefix of its class and returns the exit status.
func report(w io.Writer, err error) int {
	var netErr *exchanger.NetworkError
	var exErr *exchanger.ExchangeError
	var inErr *download.InputError
	var pErr *panicError
	var uErr *usageError

	switch {
	case errors.Is(err, download.ErrNoData):
		fmt.Fprintln(w, download.ErrNoData.Error())
	case errors.As(err, &uErr):
		fmt.Fprintf(w, "usage error: %v\n", err)
	case errors.As(err, &inErr):
		fmt.Fprintf(w, "input error: %v\n", err)
	case errors.As(err, &netErr):
		fmt.Fprintf(w, "network error: %v\n", err)
		fmt.Fprintln(w, "check the network connection and proxy settings")
	case errors.As(err, &exErr):
		fmt.Fprintf(w, "exchange error: %v\n", err)
	case errors.As(err, &pErr):
		fmt.Fprintf(w, "unexpected error: %v\n", err)
		w.Write(pErr.stack)
	default:
		fmt.Fprintf(w, "unexpected error: %v\n", err)
		printChain(w, err)
	}
	return exitFailure
}

func printChain(w io.Writer, err error) {
	for i := 0; err != nil; i++ {
		fmt.Fprintf(w, "  #%d %T: %v\n", i, err, err)
		err = errors.Unwrap(err)
	}
}
