package cmd

import (
	"fmt"

	"github.com/egapool/klinedl/exchanger/registry"
	"github.com/spf13/cobra"
)

var exchangesCmd = &cobra.Command{
	Use:   "exchanges",
	Short: "List supported exchanges",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range registry.Names() {
			e, _ := registry.Lookup(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Name, e.ProbeURL)
		}
	},
}

func init() {
	rootCmd.AddCommand(exchangesCmd)
}
