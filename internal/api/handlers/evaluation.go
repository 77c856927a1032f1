package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/data/repos"
	"github.com/wonny/aegis-panel/internal/s0_data"
	"github.com/wonny/aegis-panel/pkg/logger"
)

const (
	dateLayout   = "2006-01-02"
	maxLookback  = 40
	maxBodyBytes = 4 << 20
)

// Evaluator runs the analyst panel
type Evaluator interface {
	Evaluate(ctx context.Context, code string, asOf time.Time, lookback int, progress contracts.ProgressFunc) (*contracts.Evaluation, error)
	EvaluateRecord(ctx context.Context, raw *contracts.RawRecord, lookback int, progress contracts.ProgressFunc) (*contracts.Evaluation, error)
}

// HistoryStore lists past evaluations; optional on top of ResultStore
type HistoryStore interface {
	ListByCode(ctx context.Context, code string, limit int) ([]repos.EvaluationSummary, error)
}

// EvaluationHandler handles evaluation API endpoints
// ⭐ SSOT: 평가 API 핸들러는 이 구조체에서만
type EvaluationHandler struct {
	evaluator       Evaluator
	store           contracts.ResultStore  // optional
	progress        contracts.ProgressFunc // optional
	defaultLookback int
	logger          *logger.Logger
	now             func() time.Time
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evaluator Evaluator, store contracts.ResultStore, progress contracts.ProgressFunc, defaultLookback int, log *logger.Logger) *EvaluationHandler {
	if defaultLookback <= 0 {
		defaultLookback = 5
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EvaluationHandler{
		evaluator:       evaluator,
		store:           store,
		progress:        progress,
		defaultLookback: defaultLookback,
		logger:          log,
		now:             time.Now,
	}
}

// EvaluateRequest is an inline raw record to evaluate
type EvaluateRequest struct {
	Code      string                   `json:"code" validate:"required,max=16"`
	AsOf      string                   `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
	Lookback  int                      `json:"lookback" validate:"gte=0,lte=40"`
	MarketCap *float64                 `json:"market_cap" validate:"omitempty,gte=0"`
	Periods   []contracts.RawPeriod    `json:"periods" validate:"max=200"`
	Prices    []contracts.PricePoint   `json:"prices" validate:"max=5000"`
	Insider   []contracts.InsiderTrade `json:"insider_trades" validate:"max=2000"`
	News      []contracts.NewsItem     `json:"news" validate:"max=2000"`
}

func (req *EvaluateRequest) record(now time.Time) *contracts.RawRecord {
	asOf := now
	if req.AsOf != "" {
		// already checked by the datetime tag
		asOf, _ = time.Parse(dateLayout, req.AsOf)
	}
	return &contracts.RawRecord{
		Code:      req.Code,
		AsOf:      asOf,
		MarketCap: req.MarketCap,
		Periods:   req.Periods,
		Prices:    req.Prices,
		Insider:   req.Insider,
		News:      req.News,
	}
}

// Evaluate runs the panel against stored metrics
// GET /api/evaluate/{code}?as_of=2024-06-30&lookback=5
func (h *EvaluationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	asOf := h.now()
	if s := r.URL.Query().Get("as_of"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	lookback, err := h.parseLookback(r.URL.Query().Get("lookback"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	eval, err := h.evaluator.Evaluate(r.Context(), code, asOf, lookback, h.progress)
	if err != nil {
		h.fail(w, code, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    eval,
	})
}

// EvaluateRecord runs the panel on an inline record
// POST /api/evaluate
func (h *EvaluationHandler) EvaluateRecord(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.StructCtx(r.Context(), &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErrors(err),
		})
		return
	}

	lookback := req.Lookback
	if lookback == 0 {
		lookback = h.defaultLookback
	}

	eval, err := h.evaluator.EvaluateRecord(r.Context(), req.record(h.now()), lookback, h.progress)
	if err != nil {
		h.fail(w, req.Code, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    eval,
	})
}

// GetLatest returns the most recently persisted evaluation
// GET /api/evaluations/{code}/latest
func (h *EvaluationHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "persistence is disabled")
		return
	}

	code := mux.Vars(r)["code"]
	if err := s0_data.ValidateCode(code); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	code = s0_data.NormalizeCode(code)

	eval, err := h.store.GetLatest(r.Context(), code)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "no evaluation stored for "+code)
			return
		}
		h.fail(w, code, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    eval,
	})
}

// ListHistory returns past evaluation summaries, newest first
// GET /api/evaluations/{code}?limit=20
func (h *EvaluationHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	history, ok := h.store.(HistoryStore)
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "persistence is disabled")
		return
	}

	code := mux.Vars(r)["code"]
	if err := s0_data.ValidateCode(code); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	code = s0_data.NormalizeCode(code)

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}

	items, err := history.ListByCode(r.Context(), code, limit)
	if err != nil {
		h.fail(w, code, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

func (h *EvaluationHandler) parseLookback(s string) (int, error) {
	if s == "" {
		return h.defaultLookback, nil
	}
	lookback, err := strconv.Atoi(s)
	if err != nil || lookback <= 0 || lookback > maxLookback {
		return 0, errors.New("lookback must be between 1 and " + strconv.Itoa(maxLookback))
	}
	return lookback, nil
}

func (h *EvaluationHandler) fail(w http.ResponseWriter, code string, err error) {
	status := statusFor(err)
	log := h.logger.WithError(err).WithField("code", code)
	if status >= http.StatusInternalServerError {
		log.Error("Evaluation request failed")
	} else {
		log.Debug("Evaluation request rejected")
	}

	if status == http.StatusInternalServerError {
		respondError(w, status, "Internal server error")
		return
	}
	respondError(w, status, err.Error())
}
