package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-panel/internal/contracts"
)

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "single object", input: `{"code": "AAPL"}`, want: []string{"AAPL"}},
		{name: "array", input: ` [{"code": "AAPL"}, {"code": "MSFT"}]`, want: []string{"AAPL", "MSFT"}},
		{name: "empty", input: "  ", wantErr: true},
		{name: "broken", input: `{"code":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := decodeRecords([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var codes []string
			for _, r := range records {
				codes = append(codes, r.Code)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestParseAsOf(t *testing.T) {
	got, err := parseAsOf("2024-06-30")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))

	_, err = parseAsOf("06/30/2024")
	assert.Error(t, err)

	now, err := parseAsOf("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}

func TestPrintEvaluation(t *testing.T) {
	eval := &contracts.Evaluation{
		Code:     "AAPL",
		AsOf:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Lookback: 5,
		Consensus: contracts.ConsensusResult{
			Signal:      contracts.SignalBullish,
			Strength:    contracts.StrengthModerate,
			Percentages: contracts.SignalPercentages{Bullish: 66.7, Bearish: 33.3},
		},
		Styles: []contracts.StyleBundle{
			{Style: contracts.StyleValue, Signal: contracts.SignalBullish, Confidence: 80, RawScore: 8, MaxScore: 10},
			{Style: contracts.StyleRisk, Signal: contracts.SignalNeutral},
		},
		Summary: contracts.Result{Signal: contracts.SignalBullish, Confidence: 67, Reasoning: "bullish consensus (moderate)"},
		PerStyle: map[contracts.Style]contracts.Result{
			contracts.StyleValue: {Reasoning: "P/E 12.0 below 15"},
		},
		Missing: []string{"news"},
	}

	var buf bytes.Buffer
	PrintEvaluation(&buf, eval)
	out := buf.String()

	assert.Contains(t, out, "AAPL  (as of 2024-06-30, lookback 5)")
	assert.Contains(t, out, "▲ BULLISH")
	assert.Contains(t, out, "Confidence: 67%")
	assert.Contains(t, out, "66.7% bullish / 33.3% bearish / 0.0% neutral")
	assert.Contains(t, out, "Missing   : news")
	assert.Contains(t, out, "8/10")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "• value: P/E 12.0 below 15")
	assert.False(t, strings.Contains(out, "• risk"))
}

func TestEvaluateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aapl.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"code": "aapl",
		"as_of": "2024-06-30T00:00:00Z",
		"periods": [
			{"period_end": "2020-12-31T00:00:00Z", "eps": 1.0},
			{"period_end": "2021-12-31T00:00:00Z", "eps": 1.2},
			{"period_end": "2022-12-31T00:00:00Z", "eps": 1.5},
			{"period_end": "2023-12-31T00:00:00Z", "eps": 1.8}
		]
	}`), 0o644))

	eval, err := evaluateFile(t.Context(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", eval.Code)
	assert.Len(t, eval.Styles, 5)
	assert.NotEmpty(t, eval.Summary.Reasoning)

	multi := filepath.Join(dir, "many.json")
	require.NoError(t, os.WriteFile(multi, []byte(`[{"code":"A"},{"code":"B"}]`), 0o644))
	_, err = evaluateFile(t.Context(), multi, nil)
	assert.Error(t, err)
}
