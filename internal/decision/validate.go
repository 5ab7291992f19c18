package decision

import (
	"fmt"
	"math"
)

// ValidationError 검증 실패 (엔진 생성 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const weightsEpsilon = 1e-6

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Weights ===
	for _, w := range cfg.Weights.named() {
		if err := validateUnitRange(w.weight, "weights."+w.name); err != nil {
			return err
		}
	}
	if sum := cfg.Weights.Sum(); math.Abs(sum-1.0) > weightsEpsilon {
		return ValidationError{"weights", fmt.Sprintf("must sum to 1.00, got %.4f", sum)}
	}

	// === Thresholds ===
	if cfg.CategoryCap <= 0 {
		return ValidationError{"category_cap", "must be > 0"}
	}
	t := cfg.Thresholds
	if t.Neutral < 0 || t.Apply > cfg.CategoryCap {
		return ValidationError{"thresholds", fmt.Sprintf("must lie within [0, %.0f]", cfg.CategoryCap)}
	}
	if t.Neutral >= t.Apply {
		return ValidationError{"thresholds", "neutral must be < apply"}
	}

	// === Confidence ===
	c := cfg.Confidence
	if err := validateUnitRange(c.Floor, "confidence.floor"); err != nil {
		return err
	}
	if err := validateUnitRange(c.Ceiling, "confidence.ceiling"); err != nil {
		return err
	}
	if c.Floor > c.Ceiling {
		return ValidationError{"confidence", "floor must be <= ceiling"}
	}
	if c.Width <= 0 {
		return ValidationError{"confidence.width", "must be > 0"}
	}

	// === Ladders ===
	for _, nl := range cfg.ladders() {
		if err := validateLadder(nl.path, nl.ladder, cfg.CategoryCap); err != nil {
			return err
		}
	}

	// === Bonuses ===
	if err := validateBand("growth.ebitda_cagr_bonus", cfg.Growth.EBITDACAGRBonus, cfg.CategoryCap); err != nil {
		return err
	}
	if err := validateBand("profitability.margin_trend_bonus", cfg.Profitability.MarginTrendBonus, cfg.CategoryCap); err != nil {
		return err
	}

	return nil
}

// Warn returns recommendation violations
// 실패 아님 - 경고만 반환
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if gap := cfg.Thresholds.Apply - cfg.Thresholds.Neutral; gap < cfg.Confidence.Width {
		warnings = append(warnings, Warning{
			Code:    "CONFIDENCE_BAND_OVERLAP",
			Message: fmt.Sprintf("apply-neutral gap %.2f is narrower than confidence width %.2f", gap, cfg.Confidence.Width),
		})
	}

	for _, w := range cfg.Weights.named() {
		if w.weight == 0 {
			warnings = append(warnings, Warning{
				Code:    "ZERO_WEIGHT",
				Message: fmt.Sprintf("%s has zero weight; its reasons are still reported", w.name),
			})
		}
	}

	for _, nl := range cfg.ladders() {
		l := nl.ladder
		if l.Missing == nil || len(l.Bands) == 0 {
			continue
		}
		if l.Missing.Score >= l.Bands[0].Score {
			warnings = append(warnings, Warning{
				Code:    "MISSING_OUTSCORES_BEST",
				Message: fmt.Sprintf("%s: missing score %.0f >= best band score %.0f", nl.path, l.Missing.Score, l.Bands[0].Score),
			})
		}
	}

	return warnings
}

// === Helper Functions ===

func validateLadder(path string, l *Ladder, limit float64) error {
	if len(l.Bands) == 0 {
		return ValidationError{path + ".bands", "must not be empty"}
	}
	if l.Else == nil {
		return ValidationError{path + ".else", "required"}
	}

	lower := l.Bands[0].Op.lowerBound()
	for i, b := range l.Bands {
		field := fmt.Sprintf("%s.bands[%d]", path, i)
		if err := validateBand(field, b, limit); err != nil {
			return err
		}
		if b.Op.lowerBound() != lower {
			return ValidationError{field + ".op", "must not mix lower-bound (>=, >) and upper-bound (<=, <) bands"}
		}
		if i == 0 {
			continue
		}

		// 단조성: 구간 경계는 순서대로, 점수는 비증가
		prev := l.Bands[i-1]
		if lower && b.Bound >= prev.Bound {
			return ValidationError{field + ".bound", fmt.Sprintf("must be < %.4f (bands run from high to low)", prev.Bound)}
		}
		if !lower && b.Bound <= prev.Bound {
			return ValidationError{field + ".bound", fmt.Sprintf("must be > %.4f (bands run from low to high)", prev.Bound)}
		}
		if b.Score > prev.Score {
			return ValidationError{field + ".score", fmt.Sprintf("must be <= %.2f (scores must not increase)", prev.Score)}
		}
	}

	last := l.Bands[len(l.Bands)-1]
	if err := validateOutcome(path+".else", *l.Else, limit); err != nil {
		return err
	}
	if l.Else.Score > last.Score {
		return ValidationError{path + ".else.score", fmt.Sprintf("must be <= %.2f", last.Score)}
	}
	if l.Missing != nil {
		if err := validateOutcome(path+".missing", *l.Missing, limit); err != nil {
			return err
		}
	}
	return nil
}

func validateBand(field string, b Band, limit float64) error {
	if !b.Op.Valid() {
		return ValidationError{field + ".op", fmt.Sprintf("unknown operator %q", b.Op)}
	}
	if math.IsNaN(b.Bound) || math.IsInf(b.Bound, 0) {
		return ValidationError{field + ".bound", "must be finite"}
	}
	return validateOutcome(field, Outcome{Score: b.Score, Reason: b.Reason}, limit)
}

func validateOutcome(field string, o Outcome, limit float64) error {
	if o.Score < 0 || o.Score > limit {
		return ValidationError{field + ".score", fmt.Sprintf("must be in range [0, %.0f]", limit)}
	}
	if o.Reason == "" {
		return ValidationError{field + ".reason", "required"}
	}
	return nil
}

// validateUnitRange는 값이 0~1 범위인지 검증
func validateUnitRange(v float64, field string) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
