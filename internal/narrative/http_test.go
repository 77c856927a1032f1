package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/pkg/logger"
)

func newServer(t *testing.T, handler http.HandlerFunc) *HTTPNarrator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	n, err := NewHTTPNarrator(Config{URL: server.URL, Timeout: time.Second}, logger.Nop())
	require.NoError(t, err)
	return n
}

func TestNewHTTPNarrator_RequiresURL(t *testing.T) {
	_, err := NewHTTPNarrator(Config{URL: "  "}, nil)
	assert.Error(t, err)
}

func TestNarrate(t *testing.T) {
	n := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req contracts.NarrativeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "AAPL", req.Code)
		assert.Equal(t, contracts.StyleValue, req.Style)
		require.NotNil(t, req.Bundle)

		json.NewEncoder(w).Encode(contracts.Narrative{
			Signal:     contracts.SignalBullish,
			Confidence: 0.8,
			Scale:      contracts.ScaleFraction,
			Reasoning:  "Trades well below intrinsic value.",
		})
	})

	out, err := n.Narrate(context.Background(), contracts.NarrativeRequest{
		Code:   "AAPL",
		Style:  contracts.StyleValue,
		Bundle: &contracts.StyleBundle{Style: contracts.StyleValue},
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.SignalBullish, out.Signal)
	assert.Equal(t, contracts.ScaleFraction, out.Scale)
	assert.Equal(t, "Trades well below intrinsic value.", out.Reasoning)
}

func TestNarrate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		invalid bool
	}{
		{name: "unknown signal", status: http.StatusOK, body: `{"signal":"moon","reasoning":"x"}`, invalid: true},
		{name: "empty reasoning", status: http.StatusOK, body: `{"signal":"bearish","reasoning":"  "}`, invalid: true},
		{name: "not json", status: http.StatusOK, body: `<html>`},
		{name: "client error", status: http.StatusBadRequest, body: `bad bundle`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := n.Narrate(context.Background(), contracts.NarrativeRequest{Code: "AAPL"})
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidNarrative))
		})
	}
}

func TestNarrate_SignalOptional(t *testing.T) {
	n := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reasoning":"Mixed picture."}`))
	})

	out, err := n.Narrate(context.Background(), contracts.NarrativeRequest{Code: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "Mixed picture.", out.Reasoning)
	assert.Empty(t, out.Signal)
}

func TestNarrate_ContextCancelled(t *testing.T) {
	n := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := n.Narrate(ctx, contracts.NarrativeRequest{Code: "AAPL"})
	assert.Error(t, err)
}
