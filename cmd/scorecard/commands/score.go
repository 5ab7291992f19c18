package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/ipo-scorecard/internal/contracts"
	"github.com/wonny/ipo-scorecard/internal/decision"
	"github.com/wonny/ipo-scorecard/internal/metrics"
)

// scoreCmd runs the deterministic core on a JSON file of rows
var scoreCmd = &cobra.Command{
	Use:   "score <rows.json|->",
	Short: "재무 행(rows) JSON → metrics + verdict",
	Long: `재무 행 배열을 읽어 지표와 판단을 출력합니다 (PDF/LLM 없이 코어만 실행).

입력 형식:
  [{"fy":"FY23","revenue":150,"ebitda":28,"pat":12,"net_worth":250,"debt":60,"cfo":14}, ...]
  또는 {"financials": [...]}

Example:
  go run ./cmd/scorecard score rows.json
  cat rows.json | go run ./cmd/scorecard score - --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var (
	scoreScoringPath string
	scoreExplain     bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreScoringPath, "scoring", "", "scoring YAML (default: SCORING_CONFIG or built-in)")
	scoreCmd.Flags().BoolVar(&scoreExplain, "explain", false, "include per-category sub-scores")
}

type scoreOutput struct {
	contracts.Scorecard
	SubScores *decision.SubScores `json:"sub_scores,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	path := scoreScoringPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.ScoringConfigPath
	}
	engine, _, err := newEngine(path)
	if err != nil {
		return fmt.Errorf("load scoring config: %w", err)
	}

	rows, err := readRows(args[0])
	if err != nil {
		return err
	}

	m := metrics.Compute(rows)
	verdict, subs := engine.Explain(m)

	out := scoreOutput{Scorecard: contracts.Scorecard{Metrics: m, Verdict: verdict}}
	if scoreExplain {
		out.SubScores = &subs
	}
	return printJSON(out)
}

// readRows accepts a bare array or an object with a "financials" array
func readRows(path string) ([]contracts.FinancialRow, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var rows []contracts.FinancialRow
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		return rows, nil
	}

	var wrapped struct {
		Financials []contracts.FinancialRow `json:"financials"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return wrapped.Financials, nil
}
