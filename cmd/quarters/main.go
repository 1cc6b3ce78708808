package main

import (
	"os"

	"github.com/wonseok/quarters/cmd/quarters/commands"
)

// main is the entry point for the quarters CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/quarters [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
