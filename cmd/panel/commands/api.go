package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wonny/aegis-panel/internal/api"
	"github.com/wonny/aegis-panel/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                        - Health check
  GET  /api/evaluate/{code}           - 저장된 지표로 패널 평가 (?as_of=YYYY-MM-DD&lookback=N)
  POST /api/evaluate                  - 요청 본문의 지표로 패널 평가
  GET  /api/evaluations/{code}/latest - 마지막 평가 결과
  GET  /api/evaluations/{code}        - 평가 이력
  GET  /ws/progress                   - 평가 진행 상황 (websocket, ?code=)
  GET  /metrics                       - Prometheus metrics

Example:
  go run ./cmd/panel api
  go run ./cmd/panel api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Panel API Server ===")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	hub := handlers.NewProgressHub(100*time.Millisecond, a.log)
	evaluation := handlers.NewEvaluationHandler(a.evaluator, a.store, hub.Publish, a.cfg.Panel.DefaultLookback, a.log)

	deps := api.Deps{
		Evaluation: evaluation,
		Progress:   hub,
		Limiter:    api.NewClientLimiter(a.cfg.Panel.RateLimitRPS, a.cfg.Panel.RateLimitBurst),
	}
	if a.cfg.MetricsEnabled {
		deps.Metrics = promhttp.Handler()
		deps.Recorder = a.metrics
	}

	router := api.NewRouter(deps, a.log)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
