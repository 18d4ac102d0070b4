// Package download runs one bounded candle download:
// probe the proxy, fetch, sort, write.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/egapool/klinedl/domain"
	"github.com/egapool/klinedl/exchanger"
	"github.com/egapool/klinedl/exchanger/registry"
	"github.com/egapool/klinedl/internal/notification"
	"github.com/egapool/klinedl/internal/saver"
)

// ErrNoData means the exchange answered with zero candles.
var ErrNoData = errors.New("no data retrieved")

// Prober checks that probeURL is reachable through proxy.
type Prober func(ctx context.Context, probeURL, proxy string, timeout time.Duration) error

// Sink receives the table after the file is written.
type Sink interface {
	Store(ctx context.Context, exchange, symbol, timeframe string, t domain.Table) error
}

type Downloader struct {
	Lookup       Lookup
	Probe        Prober
	Save         func(path string, t domain.Table) error
	FetchTimeout time.Duration
	ProbeTimeout time.Duration
	Logger       *slog.Logger
	// Out receives the human readable progress and report.
	Out      io.Writer
	Sink     Sink
	Notifier notification.Notifer
}

// New returns a Downloader wired to the real registry, probe and savers.
func New(logger *slog.Logger, out io.Writer) *Downloader {
	return &Downloader{
		Lookup:       registry.Lookup,
		Probe:        exchanger.Probe,
		Save:         saver.Save,
		FetchTimeout: exchanger.DefaultTimeout,
		ProbeTimeout: exchanger.ProbeTimeout,
		Logger:       logger,
		Out:          out,
		Notifier:     notification.NewNone(),
	}
}

type Result struct {
	Rows  int
	Path  string
	First int64
	Last  int64
}

func (d *Downloader) Run(ctx context.Context, p Params) (Result, error) {
	log := d.logger().With("exchange", p.Exchange, "symbol", p.Symbol, "timeframe", p.Timeframe)
	entry, ok := d.Lookup(p.Exchange)
	if !ok {
		return Result{}, &InputError{Flag: "exchange", Reason: fmt.Sprintf("unsupported exchange %q", p.Exchange)}
	}

	// プローブの結果でフェッチを止めることはない
	if !p.Direct() {
		d.printf("testing proxy: %s\n", p.Proxy)
		if err := d.Probe(ctx, p.ProbeURL, p.Proxy, d.ProbeTimeout); err != nil {
			log.Warn("proxy may not be working, trying the download anyway", "proxy", p.Proxy, "err", err)
		} else {
			log.Debug("proxy ok", "proxy", p.Proxy)
		}
	}

	cfg := exchanger.Config{
		Timeout:         d.FetchTimeout,
		EnableRateLimit: true,
		Proxy:           p.Proxy,
		Logger:          d.logger(),
	}
	fetcher, err := entry.New(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("create %s client: %w", entry.Name, err)
	}

	d.printf("downloading: %s, %s, %s\n", p.Exchange, p.Symbol, p.Timeframe)
	d.printf("from: %s, limit: %d\n", p.Start.Format(StartLayout), p.Limit)
	candles, err := fetcher.FetchCandles(ctx, p.Symbol, p.Timeframe, p.Since(), p.Limit)
	if err != nil {
		return Result{}, err
	}
	if len(candles) == 0 {
		return Result{}, ErrNoData
	}

	table := domain.NewTable(candles)
	if err := d.Save(p.Output, table); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", p.Output, err)
	}
	res := Result{
		Rows:  table.Len(),
		Path:  p.Output,
		First: table.First().OpenTime,
		Last:  table.Last().OpenTime,
	}
	d.printf("downloaded %d rows\n", res.Rows)
	d.printf("saved to: %s\n", res.Path)
	log.Info("download finished", "rows", res.Rows, "first", table.First().Datetime, "last", table.Last().Datetime)

	if d.Sink != nil {
		if err := d.Sink.Store(ctx, p.Exchange, p.Symbol, p.Timeframe, table); err != nil {
			return res, fmt.Errorf("store rows: %w", err)
		}
		log.Info("rows stored", "rows", res.Rows)
	}
	if d.Notifier != nil {
		msg := fmt.Sprintf("klinedl: %d %s %s %s candles saved to %s", res.Rows, p.Exchange, p.Symbol, p.Timeframe, res.Path)
		if err := d.Notifier.Notify(msg); err != nil {
			log.Warn("notification failed", "err", err)
		}
	}
	return res, nil
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d *Downloader) printf(format string, a ...interface{}) {
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, a...)
}
