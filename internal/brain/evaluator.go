package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-panel/internal/consensus"
	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/format"
	"github.com/wonny/aegis-panel/internal/s0_data"
	"github.com/wonny/aegis-panel/internal/s0_data/quality"
	"github.com/wonny/aegis-panel/internal/strategyconfig"
	"github.com/wonny/aegis-panel/internal/styles"
	"github.com/wonny/aegis-panel/pkg/logger"
)

// Recorder is the metrics surface the evaluator reports to
type Recorder interface {
	RecordEvaluation(signal, strength string)
	RecordStyleSignal(style, signal string)
	RecordFetchError(section string)
	RecordLatency(op string, seconds float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordEvaluation(string, string)  {}
func (nopRecorder) RecordStyleSignal(string, string) {}
func (nopRecorder) RecordFetchError(string)          {}
func (nopRecorder) RecordLatency(string, float64)    {}

// Evaluator runs the analyst panel for one instrument
// ⭐ SSOT: 평가 파이프라인 조율은 여기서만
//
// fetch (S0) → extract → styles in parallel → consensus → format → narrate → save
type Evaluator struct {
	source   contracts.MetricsSource
	narrator contracts.Narrator    // optional
	store    contracts.ResultStore // optional

	policy       *strategyconfig.Config
	policyHash   string
	fetchTimeout time.Duration
	quality      *quality.Gate

	metrics Recorder
	logger  *logger.Logger
	now     func() time.Time
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithNarrator attaches a free-text narrator
func WithNarrator(n contracts.Narrator) Option {
	return func(e *Evaluator) { e.narrator = n }
}

// WithStore persists every evaluation
func WithStore(s contracts.ResultStore) Option {
	return func(e *Evaluator) { e.store = s }
}

// WithMetrics reports to r
func WithMetrics(r Recorder) Option {
	return func(e *Evaluator) { e.metrics = r }
}

// WithFetchTimeout bounds each metrics section fetch
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.fetchTimeout = d
		}
	}
}

// WithClock overrides time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// NewEvaluator creates an evaluator; a nil policy means the built-in default
func NewEvaluator(source contracts.MetricsSource, policy *strategyconfig.Config, log *logger.Logger, opts ...Option) (*Evaluator, error) {
	if policy == nil {
		policy = strategyconfig.Default()
	}
	if err := strategyconfig.Validate(policy); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	hash, err := strategyconfig.Hash(policy)
	if err != nil {
		return nil, fmt.Errorf("hash policy: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	e := &Evaluator{
		source:       source,
		policy:       policy,
		policyHash:   hash,
		fetchTimeout: 5 * time.Second,
		quality:      quality.NewGate(quality.DefaultConfig()),
		metrics:      nopRecorder{},
		logger:       log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Policy returns the active policy
func (e *Evaluator) Policy() *strategyconfig.Config {
	return e.policy
}

// PolicyHash returns the hash recorded on every evaluation
func (e *Evaluator) PolicyHash() string {
	return e.policyHash
}

// Evaluate fetches an instrument's metrics and runs the panel on them
// Only a *contracts.DataError (or a cancelled context) is returned as error;
// failing sections become missing data.
func (e *Evaluator) Evaluate(ctx context.Context, code string, asOf time.Time, lookback int, progress contracts.ProgressFunc) (*contracts.Evaluation, error) {
	if err := s0_data.ValidateCode(code); err != nil {
		return nil, err
	}
	code = s0_data.NormalizeCode(code)

	if e.source == nil {
		return nil, contracts.NewDataError(code, "no metrics source configured", nil)
	}
	if err := e.source.Lookup(ctx, code); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, contracts.ErrUnknownInstrument) {
			return nil, contracts.NewDataError(code, "unknown instrument", err)
		}
		return nil, contracts.NewDataError(code, "instrument lookup failed", err)
	}

	start := e.now()
	raw, missing := e.fetch(ctx, code, asOf, lookback)
	e.metrics.RecordLatency("fetch", e.now().Sub(start).Seconds())
	emit(progress, contracts.ProgressEvent{Code: code, Stage: contracts.ProgressFetchDone})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.run(ctx, raw, lookback, missing, progress)
}

// EvaluateRecord runs the panel on an already assembled raw record
// Used for inline requests and files; no instrument lookup or fetch happens.
func (e *Evaluator) EvaluateRecord(ctx context.Context, raw *contracts.RawRecord, lookback int, progress contracts.ProgressFunc) (*contracts.Evaluation, error) {
	if raw == nil {
		return nil, contracts.NewDataError("", "empty record", nil)
	}
	emit(progress, contracts.ProgressEvent{Code: s0_data.NormalizeCode(raw.Code), Stage: contracts.ProgressFetchDone})
	return e.run(ctx, raw, lookback, nil, progress)
}

func (e *Evaluator) run(ctx context.Context, raw *contracts.RawRecord, lookback int, missing []string, progress contracts.ProgressFunc) (*contracts.Evaluation, error) {
	start := e.now()

	record, err := s0_data.Extract(raw, lookback)
	if err != nil {
		return nil, err
	}

	log := e.logger.WithFields(map[string]interface{}{
		"code":     record.Code,
		"as_of":    raw.AsOf.Format("2006-01-02"),
		"lookback": lookback,
	})
	log.WithFields(map[string]interface{}{
		"periods": len(record.Periods),
		"prices":  len(record.Prices),
		"missing": missing,
	}).Debug("Metrics extracted")

	report := e.quality.Check(record, lookback)
	if !report.Passed {
		log.WithFields(map[string]interface{}{
			"quality_score": report.QualityScore,
			"thin":          report.Thin,
		}).Warn("Thin data, expect more neutral factors")
	}

	bundles := e.runStyles(record, progress, log)

	result := consensus.Compute(record.Code, bundles, e.policy.Consensus)
	emit(progress, contracts.ProgressEvent{Code: record.Code, Stage: contracts.ProgressConsensus, Signal: result.Signal})

	eval := &contracts.Evaluation{
		RunID:      uuid.NewString(),
		Code:       record.Code,
		AsOf:       raw.AsOf,
		Lookback:   lookback,
		PolicyHash: e.policyHash,
		Consensus:  result,
		Styles:     bundles,
		Summary:    format.Panel(result, bundles),
		PerStyle:   make(map[contracts.Style]contracts.Result, len(bundles)),
		Missing:    missing,
		Quality:    report,
		CreatedAt:  e.now(),
	}
	for _, b := range bundles {
		eval.PerStyle[b.Style] = format.Style(b)
	}

	if e.narrator != nil {
		e.narrate(ctx, eval, log)
	}

	e.metrics.RecordEvaluation(string(result.Signal), string(result.Strength))
	e.metrics.RecordLatency("evaluate", e.now().Sub(start).Seconds())

	log.WithFields(map[string]interface{}{
		"run_id":     eval.RunID,
		"signal":     result.Signal,
		"strength":   result.Strength,
		"confidence": eval.Summary.Confidence,
	}).Info("Evaluation completed")

	if e.store != nil {
		if err := e.store.Save(ctx, eval); err != nil {
			log.WithError(err).Error("Failed to save evaluation")
		}
	}

	return eval, nil
}

// runStyles scores every enabled style in its own goroutine
// Bundles keep policy order regardless of completion order.
func (e *Evaluator) runStyles(record *contracts.MetricRecord, progress contracts.ProgressFunc, log *logger.Logger) []contracts.StyleBundle {
	enabled := e.policy.Styles.Enabled
	bundles := make([]contracts.StyleBundle, len(enabled))

	var g errgroup.Group
	for i, style := range enabled {
		g.Go(func() error {
			emit(progress, contracts.ProgressEvent{Code: record.Code, Stage: contracts.ProgressStyleStarted, Style: style})

			bundle, err := styles.Run(style, record, e.policy.Aggregator)
			if err != nil {
				// 계산 오류는 버그: 로그만 남기고 해당 팩터는 데이터 부족으로 처리됨
				log.WithError(err).WithField("style", style).Error("Computation error in style")
			}
			bundles[i] = bundle
			e.metrics.RecordStyleSignal(string(style), string(bundle.Signal))

			emit(progress, contracts.ProgressEvent{Code: record.Code, Stage: contracts.ProgressStyleFinished, Style: style, Signal: bundle.Signal})
			return nil
		})
	}
	_ = g.Wait()

	return bundles
}

// narrate replaces reasoning with narrator text where available
// Styles are narrated concurrently; the consensus afterwards.
// A failing narrator leaves the rule-based reasoning in place.
func (e *Evaluator) narrate(ctx context.Context, eval *contracts.Evaluation, log *logger.Logger) {
	tolerance := e.policy.Narrative.DisagreementTolerance

	narratives := make([]*contracts.Narrative, len(eval.Styles))
	var g errgroup.Group
	for i := range eval.Styles {
		b := eval.Styles[i]
		g.Go(func() error {
			n, err := e.narrator.Narrate(ctx, contracts.NarrativeRequest{Code: eval.Code, Style: b.Style, Bundle: &b})
			if err != nil {
				log.WithError(err).WithField("style", b.Style).Warn("Narrator failed, keeping rule-based reasoning")
				return nil
			}
			narratives[i] = &n
			return nil
		})
	}
	_ = g.Wait()

	for i, n := range narratives {
		if n == nil {
			continue
		}
		style := eval.Styles[i].Style
		r := eval.PerStyle[style]
		if format.Disagrees(r, *n, tolerance) {
			log.WithFields(map[string]interface{}{
				"style":                style,
				"rule_signal":          r.Signal,
				"narrative_signal":     n.Signal,
				"rule_confidence":      r.Confidence,
				"narrative_confidence": format.NormalizeConfidence(n.Confidence, n.Scale),
			}).Warn("Narrative disagrees with rule-based result")
		}
		eval.PerStyle[style] = format.WithNarrative(r, n)
	}

	c := eval.Consensus
	n, err := e.narrator.Narrate(ctx, contracts.NarrativeRequest{Code: eval.Code, Consensus: &c})
	if err != nil {
		log.WithError(err).Warn("Narrator failed for consensus, keeping rule-based reasoning")
		return
	}
	eval.Summary = format.WithNarrative(eval.Summary, &n)
}

func emit(progress contracts.ProgressFunc, ev contracts.ProgressEvent) {
	if progress != nil {
		progress(ev)
	}
}
