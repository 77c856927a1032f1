package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-panel/internal/strategyconfig"
)

// policyCmd represents the policy command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "정책 파일 검증 및 해시 출력",
	Long: `정책 YAML을 읽어 검증하고, 결과에 기록될 해시와 경고를 출력합니다.
--file 이 없으면 내장 기본 정책을 출력합니다.

Example:
  go run ./cmd/panel policy --file config/policy/panel_v1.yaml`,
	RunE: runPolicy,
}

var policyPath string

func init() {
	rootCmd.AddCommand(policyCmd)

	policyCmd.Flags().StringVar(&policyPath, "file", "", "정책 YAML 경로")
}

func runPolicy(cmd *cobra.Command, args []string) error {
	cfg := strategyconfig.Default()
	source := "built-in"
	if policyPath != "" {
		loaded, _, err := strategyconfig.Load(policyPath)
		if err != nil {
			PrintError(err.Error())
			return err
		}
		cfg = loaded
		source = policyPath
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash policy: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintDoubleSeparatorTo(out)
	fmt.Fprintf(out, "  Policy    : %s (v%s)\n", cfg.Meta.PolicyID, cfg.Meta.Version)
	fmt.Fprintf(out, "  Source    : %s\n", source)
	fmt.Fprintf(out, "  Hash      : %s\n", hash)
	fmt.Fprintf(out, "  Styles    : %v\n", cfg.Styles.Enabled)
	fmt.Fprintf(out, "  Ratios    : bullish >= %.2f, bearish <= %.2f\n", cfg.Aggregator.Bullish, cfg.Aggregator.Bearish)
	fmt.Fprintf(out, "  Consensus : strong >= %.0f%%, moderate >= %.0f%%, divided spread < %.0f\n",
		cfg.Consensus.Strong, cfg.Consensus.Moderate, cfg.Consensus.DividedSpread)
	PrintSeparatorTo(out)

	warnings := strategyconfig.Warn(cfg)
	for _, w := range warnings {
		fmt.Fprintf(out, "⚠️  %s: %s\n", w.Code, w.Message)
	}
	if len(warnings) == 0 {
		fmt.Fprintln(out, "✅ Policy is valid")
	}
	return nil
}
