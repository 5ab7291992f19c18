// Package decision scores a metrics record across five weighted categories
// and turns the aggregate into an Apply / Neutral / Avoid verdict.
//
// An Engine owns a private copy of its Config and never mutates it, so one
// Engine can serve concurrent callers without locking.
package decision

import (
	"math"

	"github.com/wonny/ipo-scorecard/internal/contracts"
)

// Engine produces verdicts from metrics
// ⭐ SSOT: 투자 판단(라벨/점수/신뢰도)은 여기서만
type Engine struct {
	cfg Config
}

// SubScores are the per-category results behind one verdict
type SubScores struct {
	Growth        float64 `json:"growth"`
	Profitability float64 `json:"profitability"`
	Cashflow      float64 `json:"cashflow"`
	Leverage      float64 `json:"leverage"`
	Volatility    float64 `json:"volatility"`
}

// NewEngine validates cfg and keeps a deep copy of it
func NewEngine(cfg Config) (*Engine, error) {
	owned := cfg.Clone()
	if err := Validate(&owned); err != nil {
		return nil, err
	}
	return &Engine{cfg: owned}, nil
}

// NewDefaultEngine returns an engine on DefaultConfig
func NewDefaultEngine() *Engine {
	return &Engine{cfg: DefaultConfig()}
}

// Config returns a copy of the engine's rulebook
func (e *Engine) Config() Config {
	return e.cfg.Clone()
}

// Decide scores m. It never fails: missing metrics take their fallback branch.
func (e *Engine) Decide(m contracts.MetricsRecord) contracts.VerdictRecord {
	verdict, _ := e.Explain(m)
	return verdict
}

// Explain is Decide plus the category sub-scores
func (e *Engine) Explain(m contracts.MetricsRecord) (contracts.VerdictRecord, SubScores) {
	reasons := []string{}
	subs := make([]float64, 0, 5)
	score := 0.0

	for _, c := range e.categories() {
		s := c.score(m, &reasons)
		subs = append(subs, s)
		score += c.weight * s
	}

	return contracts.VerdictRecord{
		Label:      e.label(score),
		Score:      round2(score),
		Confidence: round2(e.confidence(score)),
		Reasons:    reasons,
	}, SubScores{
		Growth:        subs[0],
		Profitability: subs[1],
		Cashflow:      subs[2],
		Leverage:      subs[3],
		Volatility:    subs[4],
	}
}

// label uses inclusive lower bounds on the unrounded score
func (e *Engine) label(score float64) contracts.Label {
	switch {
	case score >= e.cfg.Thresholds.Apply:
		return contracts.LabelApply
	case score >= e.cfg.Thresholds.Neutral:
		return contracts.LabelNeutral
	default:
		return contracts.LabelAvoid
	}
}

// confidence shrinks near either threshold, clamped to [Floor, Ceiling]
func (e *Engine) confidence(score float64) float64 {
	t, c := e.cfg.Thresholds, e.cfg.Confidence
	dist := math.Min(math.Abs(score-t.Apply), math.Abs(score-t.Neutral)) / c.Width
	return math.Max(c.Floor, math.Min(c.Ceiling, 1.0-dist))
}

// round2 rounds half away from zero to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
