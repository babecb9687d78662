package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/internal/orchestrator"
	"github.com/vv031/Stock-Market/internal/selection"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select [symbol]",
	Short: "Load one company and print its dashboard",
	Long: `Select a company the way the dashboard does and print the settled view:
price history change, quote, 52-week range position and the forecast.

Without a symbol the first company of the catalog is selected.

Example:
  go run ./cmd/dashboard select
  go run ./cmd/dashboard select MSFT
  go run ./cmd/dashboard select AAPL --days 90`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

var (
	selectDays int
	selectWait time.Duration
)

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().IntVar(&selectDays, "days", 0, "history window in days (default from HISTORY_DAYS)")
	selectCmd.Flags().DurationVar(&selectWait, "wait", 30*time.Second, "how long to wait for the view to settle")
}

func runSelect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if selectDays > 0 {
		cfg.Gateway.HistoryDays = selectDays
	}
	log := cliLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	orch := orchestrator.New(ctx, b.Gateway, orchestrator.Config{
		FetchTimeout: cfg.Gateway.FetchTimeout,
		HistoryDays:  cfg.Gateway.HistoryDays,
	}, log)
	ctrl := selection.New(b.Gateway, orch, log)
	defer orch.Wait()
	defer cancel() // abort in-flight fetches before waiting on them

	if _, err := ctrl.LoadCatalog(ctx); err != nil {
		PrintFailure(err.Error())
		return err
	}

	if len(args) == 1 {
		err = ctrl.SelectCompany(strings.ToUpper(args[0]))
	} else {
		err = ctrl.SelectFirst()
	}
	if err != nil {
		PrintFailure(err.Error())
		return err
	}

	view, err := waitSettled(ctrl, selectWait)
	if err != nil {
		return err
	}

	PrintView(view)
	if view.Phase == contracts.PhaseError {
		return fmt.Errorf("load %s: %s", view.Selected.Symbol, view.ErrorMessage)
	}
	return nil
}

// waitSettled follows the controller until the current selection settles
func waitSettled(ctrl *selection.Controller, timeout time.Duration) (contracts.ViewState, error) {
	generation := ctrl.State().Generation

	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case view := <-updates:
			if view.Generation >= generation && view.Settled() {
				return view, nil
			}
		case <-deadline.C:
			return contracts.ViewState{}, fmt.Errorf("view did not settle within %v", timeout)
		}
	}
}
