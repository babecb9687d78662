package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vv031/Stock-Market/internal/marketdata"
	"github.com/vv031/Stock-Market/pkg/database"
	"github.com/vv031/Stock-Market/pkg/redis"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load companies, prices and predictions into Postgres",
	Long: `Create the market data tables if needed and load a YAML seed file.

Without --file the built-in catalog of twelve companies is loaded.
Companies are upserted by symbol; price bars that already exist for a day
are skipped. The cached catalog is dropped afterwards.

Requires DATABASE_URL.

Example:
  go run ./cmd/dashboard seed
  go run ./cmd/dashboard seed --file ./seed.yaml`,
	RunE: runSeed,
}

var seedFile string

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed YAML file (default: built-in catalog)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required to seed")
	}
	log := cliLogger(cfg)

	var seed *marketdata.Seed
	if seedFile != "" {
		seed, err = marketdata.LoadSeed(seedFile)
	} else {
		seed, err = marketdata.DefaultSeed()
	}
	if err != nil {
		PrintFailure(err.Error())
		return fmt.Errorf("load seed: %w", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	PrintHeader("Seed market data")
	result, err := marketdata.NewRepository(db.Pool, log).Seed(ctx, seed)
	if err != nil {
		PrintFailure(err.Error())
		return err
	}
	PrintField("Companies", fmt.Sprintf("%d", result.Companies))
	PrintField("Price bars", fmt.Sprintf("%d", result.Prices))
	PrintField("Predictions", fmt.Sprintf("%d", result.Predictions))

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, cached catalog not dropped")
	} else {
		defer rc.Close()
		if err := redis.NewCache(rc, cachePrefix).Delete(ctx, redis.CompaniesKey()); err != nil {
			log.WithError(err).Warn("Failed to drop cached catalog")
		}
	}

	PrintSeparator()
	PrintSuccess("Seed complete")
	return nil
}
