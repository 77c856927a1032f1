package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/data/repos"
)

type fakeEvaluator struct {
	mu       sync.Mutex
	err      error
	code     string
	asOf     time.Time
	lookback int
	raw      *contracts.RawRecord
}

func (f *fakeEvaluator) result(code string) *contracts.Evaluation {
	return &contracts.Evaluation{
		RunID:    "run-1",
		Code:     strings.ToUpper(code),
		Lookback: f.lookback,
		Summary:  contracts.Result{Signal: contracts.SignalBullish, Confidence: 67},
	}
}

func (f *fakeEvaluator) Evaluate(_ context.Context, code string, asOf time.Time, lookback int, progress contracts.ProgressFunc) (*contracts.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code, f.asOf, f.lookback = code, asOf, lookback
	if f.err != nil {
		return nil, f.err
	}
	if progress != nil {
		progress(contracts.ProgressEvent{Code: code, Stage: contracts.ProgressFetchDone})
	}
	return f.result(code), nil
}

func (f *fakeEvaluator) EvaluateRecord(_ context.Context, raw *contracts.RawRecord, lookback int, _ contracts.ProgressFunc) (*contracts.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw, f.lookback = raw, lookback
	if f.err != nil {
		return nil, f.err
	}
	return f.result(raw.Code), nil
}

type memoryStore struct {
	saved map[string]*contracts.Evaluation
	err   error
}

func (s *memoryStore) Save(_ context.Context, eval *contracts.Evaluation) error {
	s.saved[eval.Code] = eval
	return nil
}

func (s *memoryStore) GetLatest(_ context.Context, code string) (*contracts.Evaluation, error) {
	if s.err != nil {
		return nil, s.err
	}
	eval, ok := s.saved[code]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return eval, nil
}

func (s *memoryStore) ListByCode(_ context.Context, code string, _ int) ([]repos.EvaluationSummary, error) {
	eval, ok := s.saved[code]
	if !ok {
		return nil, nil
	}
	return []repos.EvaluationSummary{{RunID: eval.RunID, Code: code}}, nil
}

func newTestRouter(h *EvaluationHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/evaluate/{code}", h.Evaluate).Methods("GET")
	r.HandleFunc("/api/evaluate", h.EvaluateRecord).Methods("POST")
	r.HandleFunc("/api/evaluations/{code}/latest", h.GetLatest).Methods("GET")
	r.HandleFunc("/api/evaluations/{code}", h.ListHistory).Methods("GET")
	return r
}

func do(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestEvaluate_Success(t *testing.T) {
	eval := &fakeEvaluator{}
	var events []contracts.ProgressEvent
	h := NewEvaluationHandler(eval, nil, func(ev contracts.ProgressEvent) { events = append(events, ev) }, 5, nil)

	rec, body := do(t, newTestRouter(h), "GET", "/api/evaluate/aapl?as_of=2024-06-30&lookback=3", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "AAPL", data["code"])

	assert.Equal(t, "aapl", eval.code)
	assert.Equal(t, 3, eval.lookback)
	assert.True(t, eval.asOf.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))
	require.Len(t, events, 1)
}

func TestEvaluate_Defaults(t *testing.T) {
	eval := &fakeEvaluator{}
	h := NewEvaluationHandler(eval, nil, nil, 7, nil)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	rec, _ := do(t, newTestRouter(h), "GET", "/api/evaluate/MSFT", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, eval.lookback)
	assert.True(t, eval.asOf.Equal(fixed))
}

func TestEvaluate_BadQuery(t *testing.T) {
	h := NewEvaluationHandler(&fakeEvaluator{}, nil, nil, 5, nil)
	router := newTestRouter(h)

	tests := []struct {
		name   string
		target string
	}{
		{name: "bad date", target: "/api/evaluate/AAPL?as_of=30-06-2024"},
		{name: "zero lookback", target: "/api/evaluate/AAPL?lookback=0"},
		{name: "non numeric lookback", target: "/api/evaluate/AAPL?lookback=abc"},
		{name: "lookback too large", target: "/api/evaluate/AAPL?lookback=41"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, router, "GET", tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestEvaluate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "malformed code", err: contracts.NewDataError("??", "malformed instrument code", nil), status: http.StatusBadRequest},
		{name: "unknown instrument", err: contracts.NewDataError("ZZZ", "unknown instrument", contracts.ErrUnknownInstrument), status: http.StatusNotFound},
		{name: "lookup failed", err: contracts.NewDataError("AAPL", "instrument lookup failed", errors.New("conn refused")), status: http.StatusServiceUnavailable},
		{name: "deadline", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEvaluationHandler(&fakeEvaluator{err: tt.err}, nil, nil, 5, nil)
			rec, body := do(t, newTestRouter(h), "GET", "/api/evaluate/AAPL", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestEvaluateRecord(t *testing.T) {
	eval := &fakeEvaluator{}
	h := NewEvaluationHandler(eval, nil, nil, 5, nil)

	body := `{
		"code": "aapl",
		"as_of": "2024-06-30",
		"market_cap": 1000,
		"periods": [{"period_end": "2023-12-31T00:00:00Z", "eps": 2.0}],
		"news": [{"date": "2024-06-01T00:00:00Z", "title": "beat", "sentiment": "positive"}]
	}`
	rec, decoded := do(t, newTestRouter(h), "POST", "/api/evaluate", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decoded["success"])
	require.NotNil(t, eval.raw)
	assert.Equal(t, "aapl", eval.raw.Code)
	assert.Equal(t, 5, eval.lookback)
	require.Len(t, eval.raw.Periods, 1)
	require.Len(t, eval.raw.News, 1)
	assert.True(t, eval.raw.AsOf.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))
}

func TestEvaluateRecord_Validation(t *testing.T) {
	h := NewEvaluationHandler(&fakeEvaluator{}, nil, nil, 5, nil)
	router := newTestRouter(h)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing code", body: `{"lookback": 3}`, field: "EvaluateRequest.Code"},
		{name: "bad as_of", body: `{"code": "AAPL", "as_of": "yesterday"}`, field: "EvaluateRequest.AsOf"},
		{name: "lookback too large", body: `{"code": "AAPL", "lookback": 99}`, field: "EvaluateRequest.Lookback"},
		{name: "negative market cap", body: `{"code": "AAPL", "market_cap": -5}`, field: "EvaluateRequest.MarketCap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, router, "POST", "/api/evaluate", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			fields := body["fields"].([]interface{})
			require.NotEmpty(t, fields)
			assert.Equal(t, tt.field, fields[0].(map[string]interface{})["field"])
		})
	}
}

func TestEvaluateRecord_BadJSON(t *testing.T) {
	h := NewEvaluationHandler(&fakeEvaluator{}, nil, nil, 5, nil)

	rec, body := do(t, newTestRouter(h), "POST", "/api/evaluate", `{"code":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestGetLatest(t *testing.T) {
	store := &memoryStore{saved: map[string]*contracts.Evaluation{
		"AAPL": {RunID: "run-9", Code: "AAPL"},
	}}
	h := NewEvaluationHandler(&fakeEvaluator{}, store, nil, 5, nil)
	router := newTestRouter(h)

	rec, body := do(t, router, "GET", "/api/evaluations/aapl/latest", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-9", body["data"].(map[string]interface{})["run_id"])

	rec, _ = do(t, router, "GET", "/api/evaluations/MSFT/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, "GET", "/api/evaluations/A%20B/latest", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLatest_StoreErrors(t *testing.T) {
	store := &memoryStore{err: errors.New("db down")}
	h := NewEvaluationHandler(&fakeEvaluator{}, store, nil, 5, nil)

	rec, body := do(t, newTestRouter(h), "GET", "/api/evaluations/AAPL/latest", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])

	h = NewEvaluationHandler(&fakeEvaluator{}, nil, nil, 5, nil)
	rec, _ = do(t, newTestRouter(h), "GET", "/api/evaluations/AAPL/latest", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListHistory(t *testing.T) {
	store := &memoryStore{saved: map[string]*contracts.Evaluation{
		"AAPL": {RunID: "run-9", Code: "AAPL"},
	}}
	h := NewEvaluationHandler(&fakeEvaluator{}, store, nil, 5, nil)

	rec, body := do(t, newTestRouter(h), "GET", "/api/evaluations/AAPL?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
}
