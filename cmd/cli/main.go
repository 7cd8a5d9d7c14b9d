// Package main implements the sitesearch CLI: an in-process probe of the
// gateway and a one-shot query command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "sitesearch",
		Short:         "Site search CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "error", "log level for in-process handlers")

	root.AddCommand(newProbeCmd(), newQueryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
