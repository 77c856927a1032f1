package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-panel/internal/api/handlers"
	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/pkg/config"
	"github.com/wonny/aegis-panel/pkg/logger"
)

type stubEvaluator struct{}

func (stubEvaluator) Evaluate(_ context.Context, code string, _ time.Time, _ int, _ contracts.ProgressFunc) (*contracts.Evaluation, error) {
	if code == "PANIC" {
		panic("scorer blew up")
	}
	return &contracts.Evaluation{Code: code}, nil
}

func (stubEvaluator) EvaluateRecord(_ context.Context, raw *contracts.RawRecord, _ int, _ contracts.ProgressFunc) (*contracts.Evaluation, error) {
	return &contracts.Evaluation{Code: raw.Code}, nil
}

type httpCounter struct {
	mu       sync.Mutex
	requests map[string]int
}

func (c *httpCounter) RecordHTTPRequest(route, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests[route+" "+status]++
}

func (c *httpCounter) RecordLatency(string, float64) {}

func newRouter(deps Deps) http.Handler {
	if deps.Evaluation == nil {
		deps.Evaluation = handlers.NewEvaluationHandler(stubEvaluator{}, nil, nil, 5, nil)
	}
	return NewRouter(deps, logger.Nop())
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(Deps{}).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRecovery(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(Deps{}).ServeHTTP(rec, httptest.NewRequest("GET", "/api/evaluate/PANIC", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	counter := &httpCounter{requests: map[string]int{}}
	router := newRouter(Deps{Recorder: counter})

	for _, code := range []string{"AAPL", "MSFT"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/evaluate/"+code, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/evaluate/AAPL?lookback=-1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 2, counter.requests["/api/evaluate/{code} 200"])
	assert.Equal(t, 1, counter.requests["/api/evaluate/{code} 400"])
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics\n"))
	})

	rec := httptest.NewRecorder()
	newRouter(Deps{Metrics: metrics}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics\n", rec.Body.String())

	rec = httptest.NewRecorder()
	newRouter(Deps{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	router := newRouter(Deps{Limiter: NewClientLimiter(0.001, 2)})

	request := func(ip string) int {
		req := httptest.NewRequest("GET", "/api/evaluate/AAPL", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))

	// health is never limited
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientLimiter_PrunesIdleClients(t *testing.T) {
	limiter := NewClientLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	now = now.Add(10 * time.Minute)
	assert.True(t, limiter.Allow("b"))
	assert.Len(t, limiter.clients, 1)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "forwarded first hop", remoteAddr: "10.0.0.1:1", forwarded: "203.0.113.5, 10.0.0.1", want: "203.0.113.5"},
		{name: "no port", remoteAddr: "192.0.2.9", want: "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestWriteTimeout(t *testing.T) {
	assert.Equal(t, 15*time.Second, writeTimeout(5*time.Second, 0))
	assert.Equal(t, 25*time.Second, writeTimeout(10*time.Second, 0))
	assert.Equal(t, 57*time.Second, writeTimeout(5*time.Second, 42*time.Second))
}

func TestNarratorBudget(t *testing.T) {
	cfg := &config.Config{}
	assert.Zero(t, narratorBudget(cfg))

	cfg.Panel.NarratorURL = "http://narrator"
	cfg.Panel.NarratorTimeout = 10 * time.Second
	assert.Equal(t, 42*time.Second, narratorBudget(cfg))
}
