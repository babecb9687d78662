package commands

import (
	"fmt"
	"strings"

	"github.com/vv031/Stock-Market/internal/contracts"
	"github.com/vv031/Stock-Market/internal/metrics"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints with the same layout
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a formatted command header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintFailure prints a failure message
func PrintFailure(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintField prints one aligned "label : value" row
func PrintField(label string, value string) {
	fmt.Printf("  %-14s: %s\n", label, value)
}

// formatMetric renders a metric or "N/A" when it was not computable
func formatMetric(defined bool, format string, args ...interface{}) string {
	if !defined {
		return "N/A"
	}
	return fmt.Sprintf(format, args...)
}

// PrintView prints a settled view-state the way the dashboard shows it
func PrintView(view contracts.ViewState) {
	if view.Selected == nil {
		PrintWarning("No company selected")
		return
	}

	PrintHeader(fmt.Sprintf("%s (%s)", view.Selected.Name, view.Selected.Symbol))
	PrintField("Sector", view.Selected.Sector)
	PrintField("Phase", string(view.Phase))

	if view.Phase == contracts.PhaseError {
		PrintSeparator()
		PrintFailure(view.ErrorMessage)
		return
	}

	if view.Quote != nil {
		printMarket(view)
	}

	PrintSeparator()
	printPrediction(view)
	PrintDoubleSeparator()
}

func printMarket(view contracts.ViewState) {
	q := view.Quote
	m := view.Market
	if m == nil {
		m = metrics.Market(view.History, q)
	}

	PrintSeparator()
	PrintField("Price", fmt.Sprintf("$%.2f (%+.2f, %+.2f%%)", q.CurrentPrice, q.Change, q.ChangePercent))
	PrintField("Period change", formatMetric(m.IsDefined(metrics.MetricPriceChange),
		"%+.2f (%+.2f%%) over %d days", m.PriceChange, m.ChangePercent, len(view.History)))
	PrintField("52W range", fmt.Sprintf("$%.2f ~ $%.2f", q.Week52Low, q.Week52High))
	PrintField("Range pos.", formatMetric(m.IsDefined(metrics.MetricRangePosition), "%.1f%%", m.RangePosition))
	PrintField("Volume", formatMetric(m.IsDefined(metrics.MetricVolume), "%s", metrics.FormatMagnitude(m.Volume)))
	PrintField("Market cap", formatMetric(m.IsDefined(metrics.MetricMarketCap), "$%s", metrics.FormatMagnitude(m.MarketCap)))
	PrintField("P/E", fmt.Sprintf("%.2f", q.PERatio))
	PrintField("Div. yield", fmt.Sprintf("%.2f%%", q.DividendYield))
}

func printPrediction(view contracts.ViewState) {
	state := view.Prediction
	switch state.Status {
	case contracts.PredictionPending:
		PrintField("Forecast", "loading...")
		return
	case contracts.PredictionUnavailable:
		PrintField("Forecast", "unavailable ("+state.Reason+")")
		return
	}

	p := state.Prediction
	f := view.Forecast
	if f == nil {
		f = metrics.Forecast(state)
	}

	PrintField("Forecast", fmt.Sprintf("$%.2f -> $%.2f %s", p.CurrentPrice, p.PredictedPrice, f.DisplayDirection))
	PrintField("Return", formatMetric(f.IsDefined(metrics.MetricPotentialReturn),
		"%+.2f%% (%s)", f.PotentialReturn, f.Outcome))
	PrintField("Confidence", fmt.Sprintf("%.0f%% (%s)", p.Confidence*100, f.Tier))
	if !p.PredictionDate.IsZero() {
		PrintField("As of", p.PredictionDate.Format("2006-01-02"))
	}
}

// PrintCompanies prints the catalog as a table
func PrintCompanies(companies []contracts.Company) {
	fmt.Printf("%-8s %-32s %-24s %14s\n", "SYMBOL", "NAME", "SECTOR", "MARKET CAP")
	PrintSeparator()
	for _, c := range companies {
		mcap := "N/A"
		if m, err := metrics.ScaleMagnitude(c.MarketCap, metrics.UnitCurrencyMillions); err == nil {
			mcap = "$" + metrics.FormatMagnitude(m)
		}
		fmt.Printf("%-8s %-32s %-24s %14s\n", c.Symbol, truncate(c.Name, 32), truncate(c.Sector, 24), mcap)
	}
}

// PrintPredictions prints stored predictions, newest first as returned
func PrintPredictions(symbol string, predictions []contracts.Prediction) {
	PrintHeader("Prediction history: " + strings.ToUpper(symbol))
	fmt.Printf("%-12s %10s %10s %6s %11s\n", "DATE", "CURRENT", "PREDICTED", "DIR", "CONFIDENCE")
	PrintSeparator()
	for _, p := range predictions {
		fmt.Printf("%-12s %10.2f %10.2f %6s %10.0f%%\n",
			p.PredictionDate.Format("2006-01-02"), p.CurrentPrice, p.PredictedPrice,
			metrics.DisplayDirection(p), p.Confidence*100)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
