package main

import (
	"os"

	"github.com/wonny/aegis-panel/cmd/panel/commands"
)

// main is the entry point for the panel CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/panel [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
