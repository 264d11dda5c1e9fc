// Command adoptctl runs administrative maintenance against the adoption store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	opts := &storeOptions{}
	rootCmd := &cobra.Command{
		Use:   "adoptctl",
		Short: "Administer pet adoption statuses",
		Long: `adoptctl repairs and inspects pet statuses directly against the adoption store.
Every command runs as an administrator.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dsn, "dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN (defaults to POSTGRES_DSN)")
	rootCmd.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite", "", "use a local SQLite file instead of PostgreSQL")

	rootCmd.AddCommand(reconcileCmd(opts))
	rootCmd.AddCommand(manualStatusCmd(opts, "hold", "Take a pet off the market", "Not Available"))
	rootCmd.AddCommand(manualStatusCmd(opts, "release", "Release a manual hold", "Available"))
	rootCmd.AddCommand(adoptionsCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
