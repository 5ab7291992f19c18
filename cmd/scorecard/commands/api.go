package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/ipo-scorecard/internal/api"
	"github.com/wonny/ipo-scorecard/internal/api/handlers"
	"github.com/wonny/ipo-scorecard/pkg/logger"
	"github.com/wonny/ipo-scorecard/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버와 보존기간 정리 스케줄러를 시작합니다.

Endpoints:
  GET  /health               - Health check
  POST /analyze              - PDF 업로드 분석 (multipart: file, slug)
  POST /api/score            - 재무 행(rows) → metrics + verdict
  GET  /api/scoring/config   - 현재 스코어링 설정 + 해시

Example:
  go run ./cmd/scorecard api
  go run ./cmd/scorecard api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire collaborators
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// 4. Handlers + router
	router := api.NewRouter(api.RouterDeps{
		Analyze:     handlers.NewAnalyzeHandler(a.orchestrator, cfg.MaxUploadBytes(), log),
		Score:       handlers.NewScoreHandler(a.orchestrator, a.engine, a.scoringSource, log),
		Limiter:     redis.NewRateLimiter(a.redis, cachePrefix),
		AnalyzeRate: cfg.AnalyzeRateLimit,
		Logger:      log,
	})

	// 5. Retention scheduler
	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// 6. Serve until Ctrl+C / SIGTERM
	server := api.New(cfg, log, router)
	log.WithFields(map[string]interface{}{
		"port":            cfg.Port,
		"scoring_config":  a.scoringSource,
		"redis_enabled":   a.redis.Enabled(),
		"registry_active": a.db != nil,
	}).Info("API server started successfully")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
