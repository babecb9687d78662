package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vv031/Stock-Market/internal/api"
	"github.com/vv031/Stock-Market/internal/api/handlers"
	"github.com/vv031/Stock-Market/internal/orchestrator"
	"github.com/vv031/Stock-Market/internal/scheduler"
	"github.com/vv031/Stock-Market/internal/scheduler/jobs"
	"github.com/vv031/Stock-Market/internal/selection"
	"github.com/vv031/Stock-Market/pkg/config"
	"github.com/vv031/Stock-Market/pkg/logger"
)

const (
	serviceName     = "stock-dashboard"
	shutdownTimeout = 30 * time.Second
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Start the dashboard API server.

This command:
- loads the company catalog and selects the first company
- serves the REST API and the view-state WebSocket
- warms the Redis cache after market close (when Redis is enabled)
- probes the data source every minute for /health

Endpoints:
  GET  /health                          - Health check
  GET  /ws/view                         - View-state stream
  GET  /api/companies                   - Company catalog
  POST /api/selection/{symbol}          - Select a company
  GET  /api/view                        - Current view-state
  GET  /api/predictions/{symbol}/history - Stored predictions

Example:
  go run ./cmd/dashboard serve
  go run ./cmd/dashboard serve --port 8080`,
	RunE: runServe,
}

var (
	servePort       string
	serveAutoSelect bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT)")
	serveCmd.Flags().BoolVar(&serveAutoSelect, "auto-select", true, "select the first company once the catalog loads")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stock Dashboard API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	if verbose {
		log.Debug("Verbose output enabled")
	}

	log.WithFields(map[string]interface{}{
		"port":   cfg.Port,
		"env":    cfg.Env,
		"source": cfg.Gateway.Source,
	}).Info("Initializing API server")

	// 3. Open the data source
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	// 4. Selection controller driving the fetch orchestrator
	orch := orchestrator.New(ctx, b.Gateway, orchestrator.Config{
		FetchTimeout: cfg.Gateway.FetchTimeout,
		HistoryDays:  cfg.Gateway.HistoryDays,
	}, log)
	ctrl := selection.New(b.Gateway, orch, log)

	loadInitialSelection(ctx, ctrl, log)

	// 5. Scheduler
	sched, health, err := newScheduler(cfg, b, log)
	if err != nil {
		return err
	}
	sched.Start()
	log.Infof("Scheduler started with %d jobs: %v", len(sched.GetAllJobs()), sched.GetAllJobs())

	// 6. Router and server
	router := api.NewRouter(api.Handlers{
		Health:    handlers.NewHealthHandler(serviceName, health).WithJobs(sched),
		Dashboard: handlers.NewDashboardHandler(ctrl, b.Gateway, log),
		Stream:    handlers.NewViewStream(ctrl, log),
	}, log)
	server := api.New(cfg, log, router)

	// 7. Start server with graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serverErr:
		log.WithError(runErr).Error("API server stopped unexpectedly")
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("server shutdown failed: %w", err))
	}
	sched.Stop()

	// cancel in-flight fetches and wait for their goroutines
	cancel()
	orch.Wait()

	log.Info("Server stopped")
	return runErr
}

// loadInitialSelection loads the catalog and selects its first company. A
// failure leaves the controller in Error; GET /api/companies loads again.
func loadInitialSelection(ctx context.Context, ctrl *selection.Controller, log *logger.Logger) {
	companies, err := ctrl.LoadCatalog(ctx)
	if err != nil {
		log.WithError(err).Warn("Initial catalog load failed")
		return
	}

	log.WithField("companies", len(companies)).Info("Catalog loaded")

	if !serveAutoSelect {
		return
	}
	if err := ctrl.SelectFirst(); err != nil {
		log.WithError(err).Warn("Initial selection skipped")
	}
}

// newScheduler registers the background jobs. Cache warming only runs when
// there is a cache to warm.
func newScheduler(cfg *config.Config, b *backend, log *logger.Logger) (*scheduler.Scheduler, *jobs.HealthCheckJob, error) {
	sched := scheduler.New(log)

	health := jobs.NewHealthCheckJob(b.Gateway, log)
	if err := sched.AddJob(health); err != nil {
		return nil, nil, fmt.Errorf("add health job: %w", err)
	}

	if b.Redis.Enabled() && cfg.Gateway.CacheWarmSchedule != "" {
		warm := jobs.NewCacheWarmJob(b.Gateway, cfg.Gateway.HistoryDays, cfg.Gateway.CacheWarmSchedule, log)
		if err := sched.AddJob(warm); err != nil {
			return nil, nil, fmt.Errorf("add cache warm job: %w", err)
		}
	}

	// first probe now instead of waiting a minute
	if _, err := sched.RunJob(health.Name()); err != nil {
		return nil, nil, err
	}

	return sched, health, nil
}
