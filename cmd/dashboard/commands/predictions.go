package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// predictionsCmd represents the predictions command
var predictionsCmd = &cobra.Command{
	Use:   "predictions <symbol>",
	Short: "Show stored predictions for a company",
	Long: `Show the prediction history recorded for one company.

Example:
  go run ./cmd/dashboard predictions AAPL`,
	Args: cobra.ExactArgs(1),
	RunE: runPredictions,
}

func init() {
	rootCmd.AddCommand(predictionsCmd)
}

func runPredictions(cmd *cobra.Command, args []string) error {
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

	symbol := strings.ToUpper(args[0])
	predictions, err := b.Gateway.GetPredictionHistory(ctx, symbol)
	if err != nil {
		PrintFailure(err.Error())
		return err
	}

	if len(predictions) == 0 {
		PrintWarning("No predictions recorded for " + symbol)
		return nil
	}

	PrintPredictions(symbol, predictions)
	return nil
}
