package contracts

import (
	"strings"
	"time"
)

// Signal is a directional opinion
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// Valid reports whether s is one of the three known signals
func (s Signal) Valid() bool {
	switch s {
	case SignalBullish, SignalBearish, SignalNeutral:
		return true
	}
	return false
}

// Strength classifies how unanimous a consensus is
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
	StrengthDivided  Strength = "divided"
)

// Style is one analytical viewpoint on the panel
type Style string

const (
	StyleValue     Style = "value"
	StyleGrowth    Style = "growth"
	StyleQuality   Style = "quality"
	StyleSentiment Style = "sentiment"
	StyleRisk      Style = "risk"
)

// FactorScore is the bounded result of one factor scorer
// MaxScore only counts sub-checks that were actually evaluated.
type FactorScore struct {
	Score    int      `json:"score"`
	MaxScore int      `json:"max_score"`
	Details  []string `json:"details"`
}

// NamedScore pairs a factor name with its score, keeping evaluation order
type NamedScore struct {
	Name  string      `json:"name"`
	Score FactorScore `json:"score"`
}

// StyleBundle is one style's opinion on one instrument
// ⭐ SSOT: 스타일별 판단 결과
type StyleBundle struct {
	Code       string                 `json:"code"`
	Style      Style                  `json:"style"`
	Signal     Signal                 `json:"signal"`
	Confidence int                    `json:"confidence"` // 0 ~ 100
	RawScore   float64                `json:"raw_score"`
	MaxScore   float64                `json:"max_score"`
	Breakdown  map[string]FactorScore `json:"breakdown"`
	Factors    []string               `json:"factors"` // evaluation order
	Details    []string               `json:"details"`
}

// Reasoning joins the bundle's details in evaluation order
func (b StyleBundle) Reasoning() string {
	return strings.Join(b.Details, "; ")
}

// HasData reports whether any sub-check was evaluated
func (b StyleBundle) HasData() bool {
	return b.MaxScore > 0
}

// SignalCounts counts style signals
type SignalCounts struct {
	Bullish int `json:"bullish"`
	Bearish int `json:"bearish"`
	Neutral int `json:"neutral"`
	Total   int `json:"total"`
}

// SignalPercentages holds bucket shares in percent (0 ~ 100)
type SignalPercentages struct {
	Bullish float64 `json:"bullish"`
	Bearish float64 `json:"bearish"`
	Neutral float64 `json:"neutral"`
}

// ConsensusResult is the panel's combined opinion on one instrument
// ⭐ SSOT: 컨센서스 결과
type ConsensusResult struct {
	Code        string            `json:"code"`
	Signal      Signal            `json:"signal"`
	Strength    Strength          `json:"strength"`
	Percentages SignalPercentages `json:"percentages"`
	Counts      SignalCounts      `json:"counts"`
}

// Percentage returns the share of the given signal
func (c ConsensusResult) Percentage(s Signal) float64 {
	switch s {
	case SignalBullish:
		return c.Percentages.Bullish
	case SignalBearish:
		return c.Percentages.Bearish
	}
	return c.Percentages.Neutral
}

// ConfidenceScale tells how a confidence value is expressed
type ConfidenceScale int

const (
	ScalePercent  ConfidenceScale = iota // 0 ~ 100 (내부 기준)
	ScaleFraction                        // 0 ~ 1
)

// Result is the external contract consumed by storage and presentation
type Result struct {
	Signal     Signal   `json:"signal"`
	Confidence int      `json:"confidence"` // 0 ~ 100
	Reasoning  string   `json:"reasoning"`
	Details    []string `json:"details,omitempty"`
}

// Evaluation is everything produced for one instrument in one request
type Evaluation struct {
	RunID      string             `json:"run_id"`
	Code       string             `json:"code"`
	AsOf       time.Time          `json:"as_of"`
	Lookback   int                `json:"lookback"`
	PolicyHash string             `json:"policy_hash,omitempty"`
	Consensus  ConsensusResult    `json:"consensus"`
	Styles     []StyleBundle      `json:"styles"`
	Summary    Result             `json:"summary"`
	PerStyle   map[Style]Result   `json:"per_style"`
	Missing    []string           `json:"missing_sections,omitempty"`
	Quality    *DataQualityReport `json:"quality,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}
