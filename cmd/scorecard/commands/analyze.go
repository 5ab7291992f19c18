package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/ipo-scorecard/internal/analyze"
)

// analyzeCmd runs the full pipeline on a local PDF
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf>",
	Short: "로컬 PDF 전체 분석 (업로드와 동일한 파이프라인)",
	Long: `PDF를 저장하고 추출(캐시 우선) → 지표 → 판단 → 리포트 JSON을 출력합니다.

Example:
  go run ./cmd/scorecard analyze acme_drhp.pdf
  go run ./cmd/scorecard analyze acme_drhp.pdf --slug acme`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeSlug string

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeSlug, "slug", "", "report slug (default: file name)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := cliLogger(cfg)

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.orchestrator.Run(ctx, analyze.Upload{
		Content:  content,
		Filename: filepath.Base(args[0]),
		Slug:     analyzeSlug,
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	return printJSON(report)
}
