// Package metrics derives ratios, growth rates and volatility from yearly financial rows.
//
// Compute is pure: no I/O, no shared state, safe for concurrent use. Missing or
// non-numeric inputs never fail the computation; the affected metric is null instead.
package metrics

import (
	"github.com/wonny/ipo-scorecard/internal/contracts"
)

// WindowYears is the number of most recent fiscal years analysed
const WindowYears = 6

// Compute converts financial rows (any order) into a metrics record
func Compute(rows []contracts.FinancialRow) contracts.MetricsRecord {
	record := contracts.MetricsRecord{YoYRevenueGrowth: []float64{}}
	if len(rows) == 0 {
		return record
	}

	window := trailingWindow(orderChronologically(rows), WindowYears)
	last := len(window) - 1

	record.WindowYears = len(window)
	record.FYRange = &contracts.FYRange{window[0].FY, window[last].FY}

	revenue := column(window, func(r contracts.FinancialRow) contracts.Amount { return r.Revenue })
	ebitda := column(window, func(r contracts.FinancialRow) contracts.Amount { return r.EBITDA })
	pat := column(window, func(r contracts.FinancialRow) contracts.Amount { return r.PAT })
	netWorth := column(window, func(r contracts.FinancialRow) contracts.Amount { return r.NetWorth })
	debt := column(window, func(r contracts.FinancialRow) contracts.Amount { return r.Debt })
	cfo := column(window, func(r contracts.FinancialRow) contracts.Amount { return r.CFO })

	// Growth
	record.RevenueCAGR = cagr(revenue)
	record.PATCAGR = cagr(pat)
	record.EBITDACAGR = cagr(ebitda)

	// Profitability
	record.PATMargin = latestRatio(pat, revenue)
	record.EBITDAMargin = latestRatio(ebitda, revenue)
	record.MarginTrendEBITDA = spread(ratioSeries(ebitda, revenue))

	// Stability
	record.YoYRevenueGrowth = yoyGrowth(revenue)
	record.RevenueVolatility = sampleStdDev(record.YoYRevenueGrowth)

	// Latest period only
	record.DebtToNetWorth = ratio(debt[last], netWorth[last])
	record.NetDebtToEBITDA = ratio(debt[last], ebitda[last])
	record.CFOToPAT = ratio(cfo[last], pat[last])
	record.CFOLatest = cfo[last].Ptr()

	record.CFOPositiveYearsRatio, record.CFOCumulative = cfoStats(cfo)

	return record
}

// cfoStats returns the share of positive valid CFO values and their sum
func cfoStats(cfo series) (positiveRatio, cumulative *float64) {
	valid, positive := 0, 0
	sum := 0.0
	for _, a := range cfo {
		if !a.Valid {
			continue
		}
		valid++
		sum += a.Value
		if a.Value > 0 {
			positive++
		}
	}
	if valid == 0 {
		return nil, nil
	}
	return finite(float64(positive) / float64(valid)), finite(sum)
}
