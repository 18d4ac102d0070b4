/*
Copyright © 2021 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/egapool/klinedl/database"
	"github.com/egapool/klinedl/exchanger"
	"github.com/egapool/klinedl/exchanger/registry"
	"github.com/egapool/klinedl/internal/download"
	"github.com/egapool/klinedl/internal/logging"
	"github.com/egapool/klinedl/internal/notification"
	"github.com/egapool/klinedl/repository"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var exchangeFlag string
var symbolFlag string
var timeframeFlag string
var startFlag string
var endFlag string
var limitFlag int
var outputFlag string

// lookupExchange is swapped in tests.
var lookupExchange download.Lookup = registry.Lookup

var rootCmd = &cobra.Command{
	Use:   "klinedl",
	Short: "Download historical OHLCV candles from a crypto exchange",
	Long: `Download one bounded batch of candles and write them to a file in ascending time order.
    ex) klinedl --exchange binance --symbol BTC/USDT --timeframe 1h --start "2024-01-01 00:00:00" --limit 3 --output data/btc.csv`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.NoArgs(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd)
	},
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		return report(stderr, err)
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.klinedl.yaml)")
	rootCmd.PersistentFlags().String("proxy", download.DefaultProxy, `Proxy URL. "direct" or "" disables the proxy`)
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file (rotated)")

	rootCmd.Flags().StringVar(&exchangeFlag, "exchange", "", "Exchange name. (binance, okx, bybit, huobi, ftx)")
	rootCmd.Flags().StringVar(&symbolFlag, "symbol", "", "Symbol. (BTC/USDT)")
	rootCmd.Flags().StringVar(&timeframeFlag, "timeframe", "", "Timeframe. (1m, 1h, 1d)")
	rootCmd.Flags().StringVar(&startFlag, "start", "", `DateTime string of Start. ("2024-01-01 00:00:00")`)
	rootCmd.Flags().StringVar(&endFlag, "end", "", "DateTime string of End. Used to estimate --limit when it is omitted")
	rootCmd.Flags().IntVar(&limitFlag, "limit", 0, "Max number of candles to request")
	rootCmd.Flags().StringVar(&outputFlag, "output", "", "Output file path (.csv, .parquet or .json)")

	viper.BindPFlag("proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))

	viper.SetDefault("timeout", exchanger.DefaultTimeout)
	viper.SetDefault("probe_timeout", exchanger.ProbeTimeout)
	viper.SetDefault("location", "Local")
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	// .env が無くてもよい
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".klinedl")
	}

	viper.SetEnvPrefix("klinedl")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(w io.Writer) (*slog.Logger, io.Closer) {
	logger, closer := logging.New(logging.Config{
		Level: viper.GetString("log.level"),
		File:  viper.GetString("log.file"),
	}, w)
	return logger.With("run", uuid.NewString()), closer
}

func runDownload(cmd *cobra.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	logger, closer := newLogger(cmd.ErrOrStderr())
	defer closer.Close()

	loc, err := location(viper.GetString("location"))
	if err != nil {
		return err
	}
	params, err := download.ParseParams(download.Input{
		Exchange:  exchangeFlag,
		Symbol:    symbolFlag,
		Timeframe: timeframeFlag,
		Start:     startFlag,
		End:       endFlag,
		Limit:     limitFlag,
		Output:    outputFlag,
		Proxy:     viper.GetString("proxy"),
		Location:  loc,
	}, lookupExchange)
	if err != nil {
		return err
	}

	d := download.New(logger, cmd.OutOrStdout())
	d.Lookup = lookupExchange
	if d.FetchTimeout, err = configDuration("timeout"); err != nil {
		return err
	}
	if d.ProbeTimeout, err = configDuration("probe_timeout"); err != nil {
		return err
	}
	d.Notifier = notification.New(viper.GetString("notify.channel"), viper.GetString("notify.slack_webhook"))

	if dsn := viper.GetString("database.dsn"); dsn != "" {
		h, err := database.NewSQLHandler(dsn)
		if err != nil {
			return err
		}
		defer h.Close()
		repo := repository.NewOhlcvRepository(h.Db)
		if err := repo.Migrate(); err != nil {
			return fmt.Errorf("migrate ohlcvs: %w", err)
		}
		d.Sink = repo
	}

	_, err = d.Run(context.Background(), params)
	return err
}

// configDuration reads key as a duration string ("30s") or, when it is a bare
// number, as milliseconds ("timeout: 30000").
func configDuration(key string) (time.Duration, error) {
	switch v := viper.Get(key).(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	case string:
		if ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0, &usageError{err: fmt.Errorf("%s: %q is not a duration", key, v)}
		}
		return d, nil
	default:
		return viper.GetDuration(key), nil
	}
}

func location(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", name, err)
	}
	return loc, nil
}
