package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/ipo-scorecard/internal/decision"
)

// configCmd groups scoring config commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "스코어링 설정 관리",
}

// configCheckCmd validates a scoring YAML
var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "스코어링 YAML 검증 + 해시 + 경고",
	Long: `스코어링 설정을 검증하고 해시와 경고를 출력합니다.
path가 없으면 SCORING_CONFIG, 그것도 없으면 내장 기본값을 검사합니다.

Example:
  go run ./cmd/scorecard config check config/scoring/default.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

type configReport struct {
	Source   string             `json:"source"`
	Valid    bool               `json:"valid"`
	Hash     string             `json:"hash,omitempty"`
	Error    string             `json:"error,omitempty"`
	Warnings []decision.Warning `json:"warnings"`
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.ScoringConfigPath
	}

	out := configReport{Source: path, Warnings: []decision.Warning{}}
	if path == "" {
		out.Source = "default"
	}

	cfg, err := decision.LoadOrDefault(path)
	if err != nil {
		out.Error = err.Error()
		if perr := printJSON(out); perr != nil {
			return perr
		}
		return fmt.Errorf("invalid scoring config: %w", err)
	}

	hash, err := decision.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash scoring config: %w", err)
	}

	out.Valid = true
	out.Hash = hash
	out.Warnings = append(out.Warnings, decision.Warn(cfg)...)
	return printJSON(out)
}
