package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"stargate/internal/astronaut/seed"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load development data into an empty store",
		Long: `Create John Doe (1LT, Commander, starting today) and Jane Doe when the
store has no people. Does nothing otherwise.`,
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
			if _, err := a.migrate(ctx); err != nil {
				return err
			}

			svc, auditWorker, err := a.buildService(ctx, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			if auditWorker != nil {
				workerCtx, stopWorker := context.WithCancel(ctx)
				done := make(chan error, 1)
				go func() { done <- auditWorker.Run(workerCtx) }()
				defer func() {
					stopWorker()
					<-done
				}()
			}
			res, err := seed.New(a.store, svc, log).Run(ctx)
			if err != nil {
				fmt.Printf("%s %v\n", color.New(color.FgRed).Sprint("FAILED"), err)
				return err
			}
			if res.Skipped {
				fmt.Printf("%s store already has people\n", color.New(color.FgYellow).Sprint("SKIP"))
				return nil
			}
			fmt.Printf("%s %d people, %d duties\n", color.New(color.FgGreen).Sprint("SEEDED"), res.PeopleCreated, res.DutiesCreated)
			return nil
		},
	}
}
