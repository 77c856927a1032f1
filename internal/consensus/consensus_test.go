package consensus

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-panel/internal/contracts"
)

func bundles(signals ...contracts.Signal) []contracts.StyleBundle {
	out := make([]contracts.StyleBundle, len(signals))
	for i, s := range signals {
		out[i] = contracts.StyleBundle{Style: contracts.Style("s" + string(rune('a'+i))), Signal: s}
	}
	return out
}

const (
	bull = contracts.SignalBullish
	bear = contracts.SignalBearish
	neut = contracts.SignalNeutral
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		signals      []contracts.Signal
		wantSignal   contracts.Signal
		wantStrength contracts.Strength
	}{
		{"two bullish one bearish", []contracts.Signal{bull, bull, bear}, bull, contracts.StrengthModerate},
		{"one of each", []contracts.Signal{bull, bear, neut}, bull, contracts.StrengthDivided},
		{"single style", []contracts.Signal{bear}, bear, contracts.StrengthStrong},
		{"unanimous", []contracts.Signal{neut, neut, neut, neut, neut}, neut, contracts.StrengthStrong},
		{"exactly 50% is moderate", []contracts.Signal{bear, bear, neut, bull}, bear, contracts.StrengthModerate},
		{"50/50 tie goes bullish", []contracts.Signal{bear, bull}, bull, contracts.StrengthModerate},
		{"bearish beats neutral on tie", []contracts.Signal{bear, bear, neut, neut, bull}, bear, contracts.StrengthWeak},
		{"narrow plurality is divided", []contracts.Signal{bull, bull, neut, bear, bear, neut, neut, bull, bull, neut, bull, bear}, bull, contracts.StrengthDivided},
		{"4 of 5 is strong", []contracts.Signal{bull, bull, bull, bull, neut}, bull, contracts.StrengthStrong},
		{"3 of 5 is moderate", []contracts.Signal{bull, bull, bull, bear, neut}, bull, contracts.StrengthModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute("AAPL", bundles(tt.signals...), DefaultTiers())
			assert.Equal(t, tt.wantSignal, got.Signal)
			assert.Equal(t, tt.wantStrength, got.Strength)
			assert.Equal(t, len(tt.signals), got.Counts.Total)
		})
	}
}

func TestCompute_WeakPlurality(t *testing.T) {
	// 45% / 35% / 20%: no majority, spread 25 ≥ 20
	signals := []contracts.Signal{}
	for i := 0; i < 9; i++ {
		signals = append(signals, bull)
	}
	for i := 0; i < 7; i++ {
		signals = append(signals, bear)
	}
	for i := 0; i < 4; i++ {
		signals = append(signals, neut)
	}

	got := Compute("AAPL", bundles(signals...), DefaultTiers())
	assert.Equal(t, bull, got.Signal)
	assert.Equal(t, contracts.StrengthWeak, got.Strength)
	assert.Equal(t, contracts.SignalPercentages{Bullish: 45, Bearish: 35, Neutral: 20}, got.Percentages)
}

func TestCompute_Empty(t *testing.T) {
	got := Compute("AAPL", nil, DefaultTiers())

	assert.Equal(t, contracts.SignalNeutral, got.Signal)
	assert.Equal(t, contracts.StrengthWeak, got.Strength)
	assert.Equal(t, contracts.SignalPercentages{}, got.Percentages)
	assert.Zero(t, got.Counts.Total)
}

func TestCompute_PercentagesSumTo100(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	all := []contracts.Signal{bull, bear, neut}

	for n := 1; n <= 12; n++ {
		signals := make([]contracts.Signal, n)
		for i := range signals {
			signals[i] = all[rng.Intn(len(all))]
		}

		got := Compute("AAPL", bundles(signals...), DefaultTiers())
		p := got.Percentages
		assert.InDelta(t, 100, p.Bullish+p.Bearish+p.Neutral, 0.2, "n=%d", n)

		if got.Strength == contracts.StrengthStrong {
			assert.GreaterOrEqual(t, got.Percentage(got.Signal), 70.0)
		}
	}
}

func TestCompute_OrderIndependent(t *testing.T) {
	signals := []contracts.Signal{bull, bear, neut, bull, bear, bear, neut}
	want := Compute("AAPL", bundles(signals...), DefaultTiers())

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]contracts.Signal(nil), signals...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Compute("AAPL", bundles(shuffled...), DefaultTiers())
		assert.Equal(t, want.Signal, got.Signal)
		assert.Equal(t, want.Strength, got.Strength)
		assert.Equal(t, want.Percentages, got.Percentages)
		assert.Equal(t, want.Counts, got.Counts)
	}
}

func TestCompute_InvalidSignalCountsNeutral(t *testing.T) {
	got := Compute("AAPL", bundles("", "sideways", bull), DefaultTiers())
	assert.Equal(t, 2, got.Counts.Neutral)
	assert.Equal(t, neut, got.Signal)
	assert.Equal(t, contracts.StrengthModerate, got.Strength)
}
