package contracts

import (
	"context"
	"time"
)

// MetricsSource supplies raw instrument data (S0)
// ⭐ SSOT: 원천 데이터 조회 인터페이스
//
// Each section is fetched independently so a slow or failing section
// degrades to missing data instead of failing the evaluation.
type MetricsSource interface {
	// Lookup validates the instrument; unknown codes return ErrUnknownInstrument
	Lookup(ctx context.Context, code string) error
	Financials(ctx context.Context, code string, asOf time.Time, periods int) ([]RawPeriod, error)
	Prices(ctx context.Context, code string, from, to time.Time) ([]PricePoint, error)
	MarketCap(ctx context.Context, code string, asOf time.Time) (*float64, error)
	InsiderTrades(ctx context.Context, code string, from, to time.Time) ([]InsiderTrade, error)
	News(ctx context.Context, code string, from, to time.Time) ([]NewsItem, error)
}

// NarrativeRequest is the structured bundle handed to a Narrator
type NarrativeRequest struct {
	Code      string           `json:"code"`
	Style     Style            `json:"style,omitempty"` // empty for the consensus
	Bundle    *StyleBundle     `json:"bundle,omitempty"`
	Consensus *ConsensusResult `json:"consensus,omitempty"`
}

// Narrative is free text produced by a Narrator
// Confidence is reported on the narrator's own scale.
type Narrative struct {
	Signal     Signal          `json:"signal"`
	Confidence float64         `json:"confidence"`
	Scale      ConfidenceScale `json:"scale"`
	Reasoning  string          `json:"reasoning"`
}

// Narrator optionally turns a bundle into free text
// It never changes the rule-based signal or confidence.
type Narrator interface {
	Narrate(ctx context.Context, req NarrativeRequest) (Narrative, error)
}

// ResultStore persists evaluations
type ResultStore interface {
	Save(ctx context.Context, eval *Evaluation) error
	GetLatest(ctx context.Context, code string) (*Evaluation, error)
}

// ProgressStage marks a checkpoint in an evaluation
type ProgressStage string

const (
	ProgressFetchDone     ProgressStage = "fetch_done"
	ProgressStyleStarted  ProgressStage = "style_started"
	ProgressStyleFinished ProgressStage = "style_finished"
	ProgressConsensus     ProgressStage = "consensus"
)

// ProgressEvent is emitted at evaluation checkpoints
type ProgressEvent struct {
	Code   string        `json:"code"`
	Stage  ProgressStage `json:"stage"`
	Style  Style         `json:"style,omitempty"`
	Signal Signal        `json:"signal,omitempty"`
}

// ProgressFunc observes evaluation progress
// It may be called concurrently from style goroutines.
type ProgressFunc func(ProgressEvent)
