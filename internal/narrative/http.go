package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/pkg/httputil"
	"github.com/wonny/aegis-panel/pkg/logger"
)

// ErrInvalidNarrative is returned when the remote reply is unusable
var ErrInvalidNarrative = errors.New("invalid narrative")

// HTTPNarrator asks a remote service to narrate a bundle
// The request body is a contracts.NarrativeRequest; the reply a contracts.Narrative.
type HTTPNarrator struct {
	client *httputil.Client
	url    string
}

// Config for the remote narrator
type Config struct {
	URL     string
	Timeout time.Duration
	RPS     float64 // 0 = unlimited
}

// NewHTTPNarrator creates a narrator posting to cfg.URL
func NewHTTPNarrator(cfg Config, log *logger.Logger) (*HTTPNarrator, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("narrator url is required")
	}

	// 서술은 평가 경로 위에 있으므로 재시도는 1회만
	client := httputil.New(cfg.Timeout, log).
		WithRetry(1, 500*time.Millisecond).
		WithRateLimit(cfg.RPS, 1)

	return &HTTPNarrator{client: client, url: cfg.URL}, nil
}

// Narrate implements contracts.Narrator
func (n *HTTPNarrator) Narrate(ctx context.Context, req contracts.NarrativeRequest) (contracts.Narrative, error) {
	resp, err := n.client.PostJSON(ctx, n.url, req)
	if err != nil {
		return contracts.Narrative{}, fmt.Errorf("narrate %s: %w", req.Code, err)
	}

	var out contracts.Narrative
	if err := httputil.DecodeJSON(resp, &out); err != nil {
		return contracts.Narrative{}, fmt.Errorf("narrate %s: %w", req.Code, err)
	}

	if out.Signal != "" && !out.Signal.Valid() {
		return contracts.Narrative{}, fmt.Errorf("%w: unknown signal %q", ErrInvalidNarrative, out.Signal)
	}
	if strings.TrimSpace(out.Reasoning) == "" {
		return contracts.Narrative{}, fmt.Errorf("%w: empty reasoning", ErrInvalidNarrative)
	}
	return out, nil
}
