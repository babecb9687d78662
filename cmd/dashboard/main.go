package main

import (
	"os"

	"github.com/vv031/Stock-Market/cmd/dashboard/commands"
)

// main is the entry point for the dashboard CLI
// ⭐ single CLI entry point: go run ./cmd/dashboard [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
