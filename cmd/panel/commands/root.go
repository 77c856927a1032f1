package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	policyFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "panel",
	Short: "Aegis Panel - 멀티 스타일 애널리스트 패널",
	Long: `Aegis Panel Unified CLI

다섯 가지 투자 스타일(value, growth, quality, sentiment, risk)이
같은 지표를 각자 채점하고, 다수결로 합의 신호를 만듭니다.

Usage:
  go run ./cmd/panel [command]

Examples:
  go run ./cmd/panel api
  go run ./cmd/panel evaluate --code AAPL
  go run ./cmd/panel evaluate --file testdata/aapl.json
  go run ./cmd/panel policy --file config/policy/panel_v1.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy YAML (default: PANEL_POLICY_PATH or built-in)")
}
