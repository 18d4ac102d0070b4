package cmd

import (
	"context"
	"fmt"

	"github.com/egapool/klinedl/exchanger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var probeExchangeFlag string

// probe is swapped in tests.
var probe = exchanger.Probe

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the exchange is reachable through the proxy",
	Long: `Check that the exchange is reachable through the proxy
    ex) klinedl probe --exchange okx --proxy socks5://127.0.0.1:1080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProbe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().StringVar(&probeExchangeFlag, "exchange", "binance", "Exchange whose metadata endpoint is requested")
}

func runProbe(cmd *cobra.Command) error {
	entry, ok := lookupExchange(probeExchangeFlag)
	if !ok {
		return &usageError{err: fmt.Errorf("unsupported exchange %q", probeExchangeFlag)}
	}
	proxy := viper.GetString("proxy")
	if _, err := exchanger.ParseProxy(proxy); err != nil {
		return &usageError{err: err}
	}
	out := cmd.OutOrStdout()
	if exchanger.IsDirect(proxy) {
		fmt.Fprintln(out, "proxy disabled, nothing to probe")
		return nil
	}
	fmt.Fprintf(out, "testing proxy: %s -> %s\n", proxy, entry.ProbeURL)
	if err := probe(context.Background(), entry.ProbeURL, proxy, viper.GetDuration("probe_timeout")); err != nil {
		return exchanger.NewNetworkError(entry.Name, err)
	}
	fmt.Fprintln(out, "proxy ok")
	return nil
}
