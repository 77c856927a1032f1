package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wonny/aegis-panel/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// PrintProgress prints a progress step with counter
// Example: [Import] AAPL: 5 periods, 250 prices [1/3]
func PrintProgress(tag string, message string, current int, total int) {
	fmt.Printf("[%s] %s [%d/%d]\n", tag, message, current, total)
}

// PrintSeparatorTo prints a visual separator
func PrintSeparatorTo(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintDoubleSeparatorTo prints a double-line separator
func PrintDoubleSeparatorTo(w io.Writer) {
	fmt.Fprintln(w, doubleLine)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "❌ %s\n", message)
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// PrintEvaluation renders an evaluation for the terminal
func PrintEvaluation(w io.Writer, eval *contracts.Evaluation) {
	c := eval.Consensus

	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s  (as of %s, lookback %d)\n", eval.Code, eval.AsOf.Format("2006-01-02"), eval.Lookback)
	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "  Signal    : %s %s\n", signalIcon(eval.Summary.Signal), strings.ToUpper(string(eval.Summary.Signal)))
	fmt.Fprintf(w, "  Strength  : %s\n", c.Strength)
	fmt.Fprintf(w, "  Confidence: %d%%\n", eval.Summary.Confidence)
	fmt.Fprintf(w, "  Split     : %.1f%% bullish / %.1f%% bearish / %.1f%% neutral\n",
		c.Percentages.Bullish, c.Percentages.Bearish, c.Percentages.Neutral)
	if len(eval.Missing) > 0 {
		fmt.Fprintf(w, "  Missing   : %s\n", strings.Join(eval.Missing, ", "))
	}
	if q := eval.Quality; q != nil {
		line := fmt.Sprintf("  Data      : %.0f%%", q.QualityScore*100)
		if len(q.Thin) > 0 {
			line += " (thin: " + strings.Join(q.Thin, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, singleLine)

	widths := []int{10, 8, 6, 9}
	PrintTableRow(w, []string{"STYLE", "SIGNAL", "CONF", "SCORE"}, widths)
	for _, b := range eval.Styles {
		score := "n/a"
		if b.HasData() {
			score = fmt.Sprintf("%.0f/%.0f", b.RawScore, b.MaxScore)
		}
		PrintTableRow(w, []string{
			string(b.Style),
			string(b.Signal),
			fmt.Sprintf("%d%%", b.Confidence),
			score,
		}, widths)
	}

	fmt.Fprintln(w, singleLine)
	fmt.Fprintf(w, "  %s\n", eval.Summary.Reasoning)
	for _, b := range eval.Styles {
		if r, ok := eval.PerStyle[b.Style]; ok && r.Reasoning != "" {
			fmt.Fprintf(w, "   • %s: %s\n", b.Style, r.Reasoning)
		}
	}
	fmt.Fprintln(w, doubleLine)
}

func signalIcon(s contracts.Signal) string {
	switch s {
	case contracts.SignalBullish:
		return "▲"
	case contracts.SignalBearish:
		return "▼"
	default:
		return "■"
	}
}
