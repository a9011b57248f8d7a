package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply embedded schema migrations to the database selected by DB_DRIVER.

Examples:
  DB_DRIVER=sqlite SQLITE_PATH=data/starbase.db stargate migrate
  DB_DRIVER=postgres DATABASE_URL=postgres://... stargate migrate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if a.db == nil {
				fmt.Printf("%s driver %q keeps no schema\n", color.New(color.FgYellow).Sprint("SKIP"), cfg.Database.Driver)
				return nil
			}
			applied, err := a.migrate(ctx)
			if err != nil {
				fmt.Printf("%s %v\n", color.New(color.FgRed).Sprint("FAILED"), err)
				return err
			}
			if len(applied) == 0 {
				fmt.Printf("%s schema is up to date\n", color.New(color.FgBlue).Sprint("OK"))
				return nil
			}
			for _, name := range applied {
				fmt.Printf("%s %s\n", color.New(color.FgGreen).Sprint("APPLIED"), name)
			}
			return nil
		},
	}
}
