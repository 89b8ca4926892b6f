package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solvekit/uras/app"
	"github.com/solvekit/uras/config"
	coremetrics "github.com/solvekit/uras/core/metrics"
	"github.com/solvekit/uras/infra/logger"
	inframetrics "github.com/solvekit/uras/infra/metrics"
	"github.com/solvekit/uras/internal/eventbus"
	"github.com/solvekit/uras/metrics"
	"github.com/solvekit/uras/pkg/export"
)

var solveCmd = &cobra.Command{
	Use:   "solve [request.json]",
	Short: "Solve one scheduling request",
	Long: `solve reads a JSON request naming tasks, resources, constraints and
an algorithm, runs the solver and prints the response as JSON. With no
argument the request is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSolve,
}

var outputFormat string

func init() {
	solveCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format: json or csv")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &config.Config{}
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg.Logging.SetDefaults()
		cfg.Solver.SetDefaults()
	}
	log := logger.NewWith("solve", cfg.Logging.Level, cfg.Logging.Pretty)

	data, err := readRequest(args)
	if err != nil {
		return err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sinks: %w", err)
	}
	bus := eventbus.New()
	collectorDone := inframetrics.StartEventCollector(ctx, bus, sink)
	if cfg.Metrics.PrometheusAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr, log); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}

	eng := app.New(log, bus)
	out := eng.SolveJSON(ctx, withDefaultAlgorithm(data, cfg))

	// Let the collector flush recorded outcomes before exiting.
	bus.Close()
	<-collectorDone

	return writeResponse(cmd.OutOrStdout(), out)
}

// writeResponse prints the raw JSON response or, for csv output, the
// assignment table. Responses without a schedule fall back to JSON so
// failures stay visible.
func writeResponse(w io.Writer, out []byte) error {
	if outputFormat == "csv" {
		var resp app.Response
		if err := json.Unmarshal(out, &resp); err == nil && resp.Schedule != nil {
			return export.WriteCSV(w, resp.Schedule)
		}
	}
	_, err := fmt.Fprintln(w, string(out))
	return err
}

// withDefaultAlgorithm injects the configured default algorithm into
// requests that omit one. Malformed documents pass through untouched
// so the engine reports the decode error.
func withDefaultAlgorithm(data []byte, cfg *config.Config) []byte {
	var req app.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return data
	}
	if req.Algorithm.Type != "" {
		return data
	}
	req.Algorithm = cfg.Solver.Default
	out, err := json.Marshal(req)
	if err != nil {
		return data
	}
	return out
}

func readRequest(args []string) ([]byte, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return data, nil
}
