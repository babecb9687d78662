package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vv031/Stock-Market/internal/scheduler"
	"github.com/vv031/Stock-Market/internal/scheduler/jobs"
)

// warmCmd represents the warm command
var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Warm the Redis cache now",
	Long: `Run the cache warm job once, outside its schedule: reload the catalog
and every company's history window into Redis.

Example:
  go run ./cmd/dashboard warm`,
	RunE: runWarm,
}

func init() {
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := cliLogger(cfg)

	b, err := openBackend(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	if !b.Redis.Enabled() {
		PrintWarning("Redis is disabled (REDIS_ENABLED=false); nothing to warm")
		return nil
	}

	job := jobs.NewCacheWarmJob(b.Gateway, cfg.Gateway.HistoryDays, cfg.Gateway.CacheWarmSchedule, log)
	sched := scheduler.New(log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	PrintHeader("Cache warm")
	result, err := sched.RunJob(job.Name())
	if err != nil {
		return err
	}

	if !result.Success {
		PrintFailure(result.Error)
		return fmt.Errorf("cache warm failed")
	}
	PrintSuccess(fmt.Sprintf("Cache warmed in %.2fs", result.Duration.Seconds()))
	return nil
}
