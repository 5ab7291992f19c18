package decision

import (
	"math"

	"github.com/wonny/ipo-scorecard/internal/contracts"
)

// category is one scorer; it returns a sub-score and appends its reasons
type category struct {
	name   string
	weight float64
	score  func(m contracts.MetricsRecord, reasons *[]string) float64
}

// categories lists the scorers in reporting order
func (e *Engine) categories() []category {
	w := e.cfg.Weights
	return []category{
		{"growth", w.Growth, e.scoreGrowth},
		{"profitability", w.Profitability, e.scoreProfitability},
		{"cashflow", w.Cashflow, e.scoreCashflow},
		{"leverage", w.Leverage, e.scoreLeverage},
		{"volatility", w.Volatility, e.scoreVolatility},
	}
}

// tally accumulates awarded outcomes for one category
type tally struct {
	total   float64
	reasons *[]string
}

func (t *tally) add(o Outcome, ok bool) {
	if !ok {
		return
	}
	t.total += o.Score
	*t.reasons = append(*t.reasons, o.Reason)
}

func (t *tally) capped(limit float64) float64 {
	return math.Min(t.total, limit)
}

func (e *Engine) scoreGrowth(m contracts.MetricsRecord, reasons *[]string) float64 {
	r := e.cfg.Growth
	t := tally{reasons: reasons}
	t.add(r.RevenueCAGR.evaluate(m.RevenueCAGR))
	t.add(r.EBITDACAGRBonus.bonus(m.EBITDACAGR))
	return t.capped(e.cfg.CategoryCap)
}

func (e *Engine) scoreProfitability(m contracts.MetricsRecord, reasons *[]string) float64 {
	r := e.cfg.Profitability
	t := tally{reasons: reasons}
	t.add(r.EBITDAMargin.evaluate(m.EBITDAMargin))
	t.add(r.PATMargin.evaluate(m.PATMargin))
	t.add(r.MarginTrendBonus.bonus(m.MarginTrendEBITDA))
	return t.capped(e.cfg.CategoryCap)
}

func (e *Engine) scoreCashflow(m contracts.MetricsRecord, reasons *[]string) float64 {
	r := e.cfg.Cashflow
	t := tally{reasons: reasons}
	t.add(r.LatestCFO.evaluate(m.CFOLatest))
	t.add(r.CFOToPAT.evaluate(m.CFOToPAT))
	t.add(r.PositiveYears.evaluate(m.CFOPositiveYearsRatio))
	return t.capped(e.cfg.CategoryCap)
}

func (e *Engine) scoreLeverage(m contracts.MetricsRecord, reasons *[]string) float64 {
	r := e.cfg.Leverage
	t := tally{reasons: reasons}
	t.add(r.DebtToNetWorth.evaluate(m.DebtToNetWorth))
	t.add(r.NetDebtToEBITDA.evaluate(m.NetDebtToEBITDA))
	return t.capped(e.cfg.CategoryCap)
}

func (e *Engine) scoreVolatility(m contracts.MetricsRecord, reasons *[]string) float64 {
	t := tally{reasons: reasons}
	t.add(e.cfg.Volatility.RevenueVolatility.evaluate(m.RevenueVolatility))
	return t.capped(e.cfg.CategoryCap)
}
