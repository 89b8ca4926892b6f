package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/solvekit/uras/api"
	"github.com/solvekit/uras/app"
	"github.com/solvekit/uras/config"
	coremetrics "github.com/solvekit/uras/core/metrics"
	"github.com/solvekit/uras/infra/kpi"
	"github.com/solvekit/uras/infra/logger"
	inframetrics "github.com/solvekit/uras/infra/metrics"
	"github.com/solvekit/uras/internal/eventbus"
	"github.com/solvekit/uras/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduling service over HTTP",
	Long: `serve starts an HTTP server accepting scheduling requests on
POST /api/solve. When a sqlite metrics sink is configured the solve
history is exposed on GET /api/solves.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfgPath == "" {
		return fmt.Errorf("serve requires a configuration file, use --config")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWith("serve", cfg.Logging.Level, cfg.Logging.Pretty)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sinks: %w", err)
	}
	bus := eventbus.New()
	collectorDone := inframetrics.StartEventCollector(ctx, bus, sink)
	defer func() {
		bus.Close()
		<-collectorDone
	}()
	if cfg.Metrics.PrometheusAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr, log); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}

	eng := app.New(log, bus)
	mux := http.NewServeMux()
	mux.Handle("/api/solve", api.NewSolveHandler(eng))
	if store := findHistoryStore(sink); store != nil {
		mux.Handle("/api/solves", api.NewHistoryHandler(store, cfg.Server.Token))
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown: %v", err)
		}
	}()
	log.Infof("listening on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// findHistoryStore digs the SQLite store out of the configured sink
// chain so the history endpoint reads the same database the collector
// writes.
func findHistoryStore(sink coremetrics.MetricsSink) *kpi.SQLiteStore {
	switch s := sink.(type) {
	case *kpi.SQLiteStore:
		return s
	case *coremetrics.MultiSink:
		for _, sub := range s.Sinks {
			if store, ok := sub.(*kpi.SQLiteStore); ok {
				return store
			}
		}
	}
	return nil
}
