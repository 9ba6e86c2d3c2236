package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "Incremental view-tree reconciliation engine",
		Long: `Weft reconciles declarative view trees against a retained
display-node store.

Presenters are pure functions from props and tracked state reads to a
view tree. Weft retains what each presenter produced, re-runs only the
presenters whose inputs changed, and patches the display store with the
minimal set of mutations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		demoCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
