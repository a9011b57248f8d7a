package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	astronautHandler "stargate/internal/astronaut/handler"
	"stargate/internal/astronaut/seed"
	"stargate/internal/platform/health"
	"stargate/internal/platform/httpserver"
	"stargate/internal/platform/metrics"
	"stargate/internal/platform/otel"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Open the record store, apply pending migrations and serve the person
and astronaut-duty API until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	shutdownTracing, err := otel.Setup(ctx, "stargate", cfg.Observability.OTelEndpoint, cfg.Server.Environment)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	a, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.close(closeCtx); err != nil {
			log.Warn("close dependencies failed", "error", err)
		}
	}()
	if _, err := a.migrate(ctx); err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	svc, auditWorker, err := a.buildService(ctx, reg)
	if err != nil {
		return err
	}

	if cfg.Server.SeedOnStart {
		if _, err := seed.New(a.store, svc, log).Run(ctx); err != nil {
			return err
		}
	}

	checks := health.New(log).Add("database", a.ping)
	if a.redis != nil {
		checks.Add("redis", a.redis.Health)
	}
	if a.kafka != nil {
		checks.Add("kafka", a.kafka.Ping)
	}

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/healthz", checks)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(reg))
	astronautHandler.New(svc, log, metrics.New(reg),
		astronautHandler.WithInternalErrorDetail(cfg.IsDevelopment()),
	).Register(r)

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting stargate", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if auditWorker != nil {
		g.Go(func() error {
			return auditWorker.Run(gctx)
		})
	}
	return g.Wait()
}
