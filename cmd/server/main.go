package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// main wires the CLI. Business logic lives in internal packages; each
// subcommand builds only the dependencies it needs.
func main() {
	rootCmd := &cobra.Command{
		Use:   "stargate",
		Short: "Stargate astronaut duty tracker",
		Long: `Stargate tracks people and their astronaut duty history and serves
the derived career projection over HTTP.

Configuration is read from the environment (STARGATE_ADDR, DB_DRIVER,
DATABASE_URL, SQLITE_PATH, REDIS_URL, KAFKA_BROKERS, OTEL_ENDPOINT, ...).`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
