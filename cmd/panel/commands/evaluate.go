package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-panel/internal/brain"
	"github.com/wonny/aegis-panel/internal/contracts"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "종목 하나를 패널로 평가",
	Long: `한 종목에 대해 모든 스타일을 실행하고 합의 결과를 출력합니다.

--file 을 주면 DB 없이 JSON 원천 레코드를 평가합니다.
그렇지 않으면 DB/Redis에서 지표를 조회하고 결과를 저장합니다.

Example:
  go run ./cmd/panel evaluate --code AAPL --as-of 2024-06-30 --lookback 5
  go run ./cmd/panel evaluate --file testdata/aapl.json --json`,
	RunE: runEvaluate,
}

var (
	evalCode     string
	evalAsOf     string
	evalLookback int
	evalFile     string
	evalJSON     bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalCode, "code", "", "종목 코드")
	evaluateCmd.Flags().StringVar(&evalAsOf, "as-of", "", "기준일 YYYY-MM-DD (default: today)")
	evaluateCmd.Flags().IntVar(&evalLookback, "lookback", 0, "재무 기간 수 (default: PANEL_DEFAULT_LOOKBACK)")
	evaluateCmd.Flags().StringVar(&evalFile, "file", "", "원천 레코드 JSON 파일")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "JSON으로 출력")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if evalFile == "" && evalCode == "" {
		return fmt.Errorf("either --code or --file is required")
	}

	var progress contracts.ProgressFunc
	if verbose {
		progress = func(ev contracts.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%s] %s %s %s\n", ev.Code, ev.Stage, ev.Style, ev.Signal)
		}
	}

	var (
		eval *contracts.Evaluation
		err  error
	)
	if evalFile != "" {
		eval, err = evaluateFile(ctx, evalFile, progress)
	} else {
		eval, err = evaluateStored(ctx, progress)
	}
	if err != nil {
		return err
	}

	if evalJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(eval)
	}
	PrintEvaluation(os.Stdout, eval)
	return nil
}

// evaluateFile runs the panel on a raw record file, without DB
func evaluateFile(ctx context.Context, path string, progress contracts.ProgressFunc) (*contracts.Evaluation, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("%s holds %d records; evaluate takes exactly one", path, len(records))
	}
	raw := records[0]
	if evalCode != "" {
		raw.Code = evalCode
	}
	if evalAsOf != "" {
		if raw.AsOf, err = parseAsOf(evalAsOf); err != nil {
			return nil, err
		}
	}

	policy, err := loadPolicy("")
	if err != nil {
		return nil, err
	}

	evaluator, err := brain.NewEvaluator(nil, policy, cliLogger())
	if err != nil {
		return nil, err
	}

	lookback := evalLookback
	if lookback <= 0 {
		lookback = 5
	}
	return evaluator.EvaluateRecord(ctx, raw, lookback, progress)
}

// evaluateStored fetches metrics from the configured stores and persists the result
func evaluateStored(ctx context.Context, progress contracts.ProgressFunc) (*contracts.Evaluation, error) {
	asOf, err := parseAsOf(evalAsOf)
	if err != nil {
		return nil, err
	}

	a, err := newApp(ctx)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	lookback := evalLookback
	if lookback <= 0 {
		lookback = a.cfg.Panel.DefaultLookback
	}
	return a.evaluator.Evaluate(ctx, evalCode, asOf, lookback, progress)
}
