package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/pkg/database"
)

// documentsCmd represents the documents command
var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "문서 레지스트리 조회 (DATABASE_URL 필요)",
	Long: `분석된 업로드 문서 기록(scorecard.documents)을 조회합니다.

Example:
  go run ./cmd/scorecard documents recent --limit 10`,
}

var documentsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "최근 분석 문서 + DB 상태",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsRecent,
}

var documentsLimit int

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.AddCommand(documentsRecentCmd)

	documentsRecentCmd.Flags().IntVar(&documentsLimit, "limit", 20, "number of documents")
}

var errRegistryDisabled = errors.New("document registry unavailable (set DATABASE_URL)")

type healthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

type recentLister interface {
	Recent(ctx context.Context, limit int) ([]*contracts.Document, error)
}

type documentsReport struct {
	Database  *database.HealthStatus `json:"database"`
	Documents []*contracts.Document  `json:"documents"`
}

// buildDocumentsReport lists documents only when the database answers its health check
func buildDocumentsReport(ctx context.Context, db healthChecker, docs recentLister, limit int) (*documentsReport, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	status, err := db.HealthCheck(ctx)
	report := &documentsReport{Database: status, Documents: []*contracts.Document{}}
	if err != nil {
		return report, fmt.Errorf("database health check: %w", err)
	}

	recent, err := docs.Recent(ctx, limit)
	if err != nil {
		return report, err
	}
	report.Documents = recent
	return report, nil
}

func runDocumentsRecent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil || a.registry == nil {
		return errRegistryDisabled
	}

	report, err := buildDocumentsReport(ctx, a.db, a.registry, documentsLimit)
	if report != nil {
		if printErr := printJSON(report); printErr != nil {
			return printErr
		}
	}
	return err
}
