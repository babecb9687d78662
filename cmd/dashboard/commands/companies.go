package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// companiesCmd represents the companies command
var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the company catalog",
	Long: `List every company the data source knows about.

Example:
  go run ./cmd/dashboard companies
  go run ./cmd/dashboard companies --refresh`,
	RunE: runCompanies,
}

var companiesRefresh bool

func init() {
	rootCmd.AddCommand(companiesCmd)

	companiesCmd.Flags().BoolVar(&companiesRefresh, "refresh", false, "drop the cached catalog before listing")
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := cliLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.FetchTimeout)
	defer cancel()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	if companiesRefresh {
		if err := b.Gateway.InvalidateCatalog(ctx); err != nil {
			log.WithError(err).Warn("Failed to drop cached catalog")
		}
	}

	companies, err := b.Gateway.ListCompanies(ctx)
	if err != nil {
		PrintFailure(err.Error())
		return err
	}

	PrintHeader(fmt.Sprintf("Companies (%d)", len(companies)))
	PrintCompanies(companies)
	return nil
}
