package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vv031/Stock-Market/pkg/config"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the data source, database and cache",
	Long: `Probe every backend the dashboard depends on and report what is reachable.

Checks:
- Data source health (stock API /health, or a database ping)
- Postgres pool statistics (DATA_SOURCE=postgres)
- Redis (REDIS_ENABLED=true)

Example:
  go run ./cmd/dashboard status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := cliLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.FetchTimeout)
	defer cancel()

	PrintHeader("Stock Dashboard Status")
	PrintField("Env", cfg.Env)
	PrintField("Source", cfg.Gateway.Source)
	if cfg.Gateway.Source == config.DataSourceHTTP {
		PrintField("API", cfg.Gateway.BaseURL)
	}
	PrintSeparator()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		PrintFailure(err.Error())
		return err
	}
	defer b.Close()

	healthy := true

	start := time.Now()
	if err := b.Gateway.Health(ctx); err != nil {
		healthy = false
		PrintFailure("Data source: " + err.Error())
	} else {
		PrintSuccess(fmt.Sprintf("Data source healthy (%v)", time.Since(start).Round(time.Millisecond)))
	}

	if b.DB != nil {
		status, err := b.DB.HealthCheck(ctx)
		if err != nil {
			healthy = false
			PrintFailure("Database: " + err.Error())
		} else {
			PrintSuccess(fmt.Sprintf("Database healthy (%v, %d/%d conns)",
				status.ResponseTime.Round(time.Millisecond), status.Stats.TotalConns, status.Stats.MaxConns))
		}
	}

	if b.Redis.Enabled() {
		if err := b.Redis.Redis().Ping(ctx).Err(); err != nil {
			healthy = false
			PrintFailure("Redis: " + err.Error())
		} else {
			PrintSuccess(fmt.Sprintf("Redis healthy (%s:%s)", cfg.Redis.Host, cfg.Redis.Port))
		}
	} else {
		fmt.Println("➖ Redis cache disabled")
	}

	PrintDoubleSeparator()
	if !healthy {
		return fmt.Errorf("one or more backends are unhealthy")
	}
	return nil
}
