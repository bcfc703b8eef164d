package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/api"
	"github.com/MikeSquared-Agency/oars/internal/cache"
	"github.com/MikeSquared-Agency/oars/internal/hermes"
	"github.com/MikeSquared-Agency/oars/internal/processor"
	"github.com/MikeSquared-Agency/oars/internal/simulator"
	"github.com/MikeSquared-Agency/oars/internal/store"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serves analysis, report rendering, simulated client replies and the practice websocket. NATS, Postgres and Redis are used when configured.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "override OARS_PORT")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Port = port
	}

	slog.Info("oars starting", "port", cfg.Port, "language", cfg.Language, "strategy", cfg.Strategy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		sinks        []analysis.Sink
		reportStores []api.ReportStore
		scores       api.ScoreHistory
		archive      *store.Store
	)

	// NATS/Hermes (optional)
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			return err
		}
		defer hermesClient.Close()
		sinks = append(sinks, hermes.NewEventSink(hermesClient))
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, analysis events disabled")
	}

	// Database (optional)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store.NewSink(db))
		scores = db
		archive = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, analyses are not archived")
	}

	// Redis report cache (optional)
	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return err
		}
		defer c.Close()
		sinks = append(sinks, c)
		reportStores = append(reportStores, c)
		slog.Info("redis connected", "ttl", cfg.CacheTTL)
	} else {
		slog.Warn("REDIS_URL not set, cached reports disabled")
	}

	// Reports are looked up in the cache first, then in the archive.
	if archive != nil {
		reportStores = append(reportStores, archive)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	svc, err := newService(cfg, provider, sinks)
	if err != nil {
		return err
	}

	// Asynchronous analysis requests over NATS
	if hermesClient != nil {
		proc := processor.New(svc, hermesClient, slog.Default())
		if err := hermesClient.Subscribe(hermes.SubjectAnalysisRequested, proc.HandleAnalysisRequested); err != nil {
			return err
		}
	}

	var sim *simulator.Simulator
	if provider != nil {
		if sim, err = newSimulator(cfg, svc, provider); err != nil {
			return err
		}
		slog.Info("llm provider ready", "provider", provider.Name(), "model", cfg.Model)
	} else {
		slog.Warn("LLM_PROVIDER not set, simulator and llm strategy disabled")
	}

	srv := api.NewServer(cfg.Port, api.Deps{
		Analysis:    svc,
		Simulator:   sim,
		Reports:     api.ChainReports(reportStores...),
		Scores:      scores,
		APIToken:    cfg.APIToken,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      slog.Default(),
	})
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if hermesClient != nil {
		if err := hermesClient.Publish("swarm.agent.oars.registered", map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("oars ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		return err
	}
	slog.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	if hermesClient != nil {
		if err := hermesClient.Drain(shutdownCtx); err != nil {
			slog.Warn("NATS drain failed", "error", err)
		}
	}
	cancel()
	slog.Info("oars stopped")
	return nil
}
