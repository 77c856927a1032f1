package contracts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricRecord_Series(t *testing.T) {
	record := &MetricRecord{
		Periods: []Period{
			{EPS: Float(1.0)},
			{EPS: nil},
			{EPS: Float(-0.5)},
			{EPS: Float(2.0)},
		},
	}

	assert.Equal(t, []float64{1.0, -0.5, 2.0}, record.Series(FieldEPS))
	assert.Empty(t, record.Series(FieldRevenue))

	var nilRecord *MetricRecord
	assert.Nil(t, nilRecord.Series(FieldEPS))
}

func TestMetricRecord_Latest(t *testing.T) {
	record := &MetricRecord{
		Periods: []Period{
			{Revenue: Float(100)},
			{Revenue: Float(120)},
			{Revenue: nil},
		},
	}

	v, ok := record.Latest(FieldRevenue)
	assert.True(t, ok)
	assert.Equal(t, 120.0, v)

	_, ok = record.Latest(FieldEPS)
	assert.False(t, ok)
}

func TestSignal_Valid(t *testing.T) {
	tests := []struct {
		signal Signal
		want   bool
	}{
		{SignalBullish, true},
		{SignalBearish, true},
		{SignalNeutral, true},
		{Signal("buy"), false},
		{Signal(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.signal), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.signal.Valid())
		})
	}
}

func TestStyleBundle_Reasoning(t *testing.T) {
	bundle := StyleBundle{Details: []string{"first", "second"}}
	assert.Equal(t, "first; second", bundle.Reasoning())
	assert.False(t, bundle.HasData())

	bundle.MaxScore = 3
	assert.True(t, bundle.HasData())
}

func TestConsensusResult_Percentage(t *testing.T) {
	c := ConsensusResult{Percentages: SignalPercentages{Bullish: 50, Bearish: 30, Neutral: 20}}

	assert.Equal(t, 50.0, c.Percentage(SignalBullish))
	assert.Equal(t, 30.0, c.Percentage(SignalBearish))
	assert.Equal(t, 20.0, c.Percentage(SignalNeutral))
}

func TestDataError(t *testing.T) {
	err := NewDataError("XYZ", "lookup failed", ErrUnknownInstrument)
	wrapped := fmt.Errorf("evaluate: %w", err)

	assert.True(t, IsDataError(wrapped))
	assert.True(t, errors.Is(wrapped, ErrUnknownInstrument))
	assert.Contains(t, err.Error(), "XYZ")
	assert.False(t, IsDataError(errors.New("plain")))
}
