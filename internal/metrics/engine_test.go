package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ipo-scorecard/internal/contracts"
)

const eps = 1e-4

func some(v float64) contracts.Amount { return contracts.Some(v) }

func sampleRows() []contracts.FinancialRow {
	return []contracts.FinancialRow{
		{FY: "FY21", Revenue: some(100), PAT: some(5), EBITDA: some(15), NetWorth: some(200), Debt: some(50), CFO: some(4)},
		{FY: "FY22", Revenue: some(120), PAT: some(8), EBITDA: some(20), NetWorth: some(220), Debt: some(55), CFO: some(9)},
		{FY: "FY23", Revenue: some(150), PAT: some(12), EBITDA: some(28), NetWorth: some(250), Debt: some(60), CFO: some(14)},
	}
}

func TestCompute_Empty(t *testing.T) {
	for _, rows := range [][]contracts.FinancialRow{nil, {}} {
		m := Compute(rows)

		assert.Equal(t, 0, m.WindowYears)
		assert.Nil(t, m.FYRange)
		assert.Nil(t, m.RevenueCAGR)
		assert.Nil(t, m.PATMargin)
		assert.Nil(t, m.EBITDAMargin)
		assert.Nil(t, m.MarginTrendEBITDA)
		assert.Nil(t, m.RevenueVolatility)
		assert.Nil(t, m.DebtToNetWorth)
		assert.Nil(t, m.CFOLatest)
		assert.Nil(t, m.CFOPositiveYearsRatio)
		assert.Nil(t, m.CFOCumulative)
		assert.NotNil(t, m.YoYRevenueGrowth)
		assert.Empty(t, m.YoYRevenueGrowth)
	}
}

func TestCompute_ThreeYears(t *testing.T) {
	m := Compute(sampleRows())

	assert.Equal(t, 3, m.WindowYears)
	require.NotNil(t, m.FYRange)
	assert.Equal(t, contracts.FYRange{"FY21", "FY23"}, *m.FYRange)

	tests := []struct {
		name string
		got  *float64
		want float64
	}{
		{"revenue_cagr", m.RevenueCAGR, math.Sqrt(1.5) - 1},
		{"pat_cagr", m.PATCAGR, math.Sqrt(12.0/5.0) - 1},
		{"ebitda_cagr", m.EBITDACAGR, math.Sqrt(28.0/15.0) - 1},
		{"pat_margin", m.PATMargin, 0.08},
		{"ebitda_margin", m.EBITDAMargin, 28.0 / 150.0},
		{"margin_trend_ebitda", m.MarginTrendEBITDA, 28.0/150.0 - 0.15},
		{"revenue_volatility", m.RevenueVolatility, 0.05 / math.Sqrt2},
		{"debt_to_networth", m.DebtToNetWorth, 0.24},
		{"net_debt_to_ebitda", m.NetDebtToEBITDA, 60.0 / 28.0},
		{"cfo_latest", m.CFOLatest, 14},
		{"cfo_to_pat", m.CFOToPAT, 14.0 / 12.0},
		{"cfo_positive_years_ratio", m.CFOPositiveYearsRatio, 1.0},
		{"cfo_cumulative", m.CFOCumulative, 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.got)
			assert.InDelta(t, tt.want, *tt.got, eps)
		})
	}

	require.Len(t, m.YoYRevenueGrowth, 2)
	assert.InDelta(t, 0.20, m.YoYRevenueGrowth[0], eps)
	assert.InDelta(t, 0.25, m.YoYRevenueGrowth[1], eps)
}

func TestCompute_ReordersFiscalYears(t *testing.T) {
	rows := sampleRows()
	shuffled := []contracts.FinancialRow{rows[2], rows[0], rows[1]}

	assert.Equal(t, Compute(rows), Compute(shuffled))
}

func TestCompute_UnparsedLabelsGoLast(t *testing.T) {
	rows := []contracts.FinancialRow{
		{FY: "latest", Revenue: some(200)},
		{FY: "FY2022", Revenue: some(120)},
		{FY: "FY2021", Revenue: some(100)},
	}

	m := Compute(rows)
	require.NotNil(t, m.FYRange)
	assert.Equal(t, contracts.FYRange{"FY2021", "latest"}, *m.FYRange)
	require.Len(t, m.YoYRevenueGrowth, 2)
	assert.InDelta(t, 0.20, m.YoYRevenueGrowth[0], eps)
	assert.InDelta(t, 200.0/120.0-1, m.YoYRevenueGrowth[1], eps)
}

func TestCompute_NoParsableLabelsKeepsInputOrder(t *testing.T) {
	rows := []contracts.FinancialRow{
		{FY: "a", Revenue: some(100)},
		{FY: "b", Revenue: some(50)},
	}

	m := Compute(rows)
	assert.Equal(t, contracts.FYRange{"a", "b"}, *m.FYRange)
	require.Len(t, m.YoYRevenueGrowth, 1)
	assert.InDelta(t, -0.5, m.YoYRevenueGrowth[0], eps)
}

func TestCompute_TrailingWindow(t *testing.T) {
	var rows []contracts.FinancialRow
	for i, year := range []string{"FY2016", "FY2017", "FY2018", "FY2019", "FY2020", "FY2021", "FY2022", "FY2023"} {
		rows = append(rows, contracts.FinancialRow{FY: year, Revenue: some(float64(100 + 10*i))})
	}

	m := Compute(rows)
	assert.Equal(t, WindowYears, m.WindowYears)
	assert.Equal(t, contracts.FYRange{"FY2018", "FY2023"}, *m.FYRange)
	assert.Len(t, m.YoYRevenueGrowth, WindowYears-1)
	require.NotNil(t, m.RevenueCAGR)
	assert.InDelta(t, math.Pow(170.0/120.0, 1.0/5.0)-1, *m.RevenueCAGR, eps)
}

// The exponent counts every step in the window, even when the endpoints are not the first
// and last rows.
func TestCompute_CAGRExponentUsesWindowLength(t *testing.T) {
	rows := []contracts.FinancialRow{
		{FY: "FY21"},
		{FY: "FY22", Revenue: some(100)},
		{FY: "FY23", Revenue: some(121)},
	}

	m := Compute(rows)
	require.NotNil(t, m.RevenueCAGR)
	assert.InDelta(t, 0.10, *m.RevenueCAGR, eps)
}

func TestCompute_CAGRGuards(t *testing.T) {
	tests := []struct {
		name    string
		revenue []contracts.Amount
	}{
		{"single point", []contracts.Amount{some(100)}},
		{"one valid", []contracts.Amount{some(100), contracts.None()}},
		{"zero start", []contracts.Amount{some(0), some(100)}},
		{"negative end", []contracts.Amount{some(100), some(-5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []contracts.FinancialRow
			for _, r := range tt.revenue {
				rows = append(rows, contracts.FinancialRow{Revenue: r})
			}
			assert.Nil(t, Compute(rows).RevenueCAGR)
		})
	}
}

func TestCompute_ZeroDenominators(t *testing.T) {
	rows := []contracts.FinancialRow{
		{FY: "FY22", Revenue: some(100), EBITDA: some(10), PAT: some(4)},
		{FY: "FY23", Revenue: some(0), EBITDA: some(0), PAT: some(0), NetWorth: some(0), Debt: some(30), CFO: some(5)},
	}

	m := Compute(rows)

	// margins fall back to the most recent usable year
	require.NotNil(t, m.PATMargin)
	assert.InDelta(t, 0.04, *m.PATMargin, eps)
	require.NotNil(t, m.EBITDAMargin)
	assert.InDelta(t, 0.10, *m.EBITDAMargin, eps)

	// latest-period ratios never look back
	assert.Nil(t, m.DebtToNetWorth)
	assert.Nil(t, m.NetDebtToEBITDA)
	assert.Nil(t, m.CFOToPAT)
	require.NotNil(t, m.CFOLatest)
	assert.Equal(t, 5.0, *m.CFOLatest)

	// one margin observation has no trend
	assert.Nil(t, m.MarginTrendEBITDA)

	// prior revenue 100 > 0, current 0 is valid
	assert.Equal(t, []float64{-1}, m.YoYRevenueGrowth)
	assert.Nil(t, m.RevenueVolatility)
}

func TestCompute_YoYSkipsGaps(t *testing.T) {
	rows := []contracts.FinancialRow{
		{FY: "FY19", Revenue: some(100)},
		{FY: "FY20"},
		{FY: "FY21", Revenue: some(80)},
		{FY: "FY22", Revenue: some(100)},
		{FY: "FY23", Revenue: some(120)},
	}

	m := Compute(rows)
	require.Len(t, m.YoYRevenueGrowth, 2)
	assert.InDelta(t, 0.25, m.YoYRevenueGrowth[0], eps)
	assert.InDelta(t, 0.20, m.YoYRevenueGrowth[1], eps)
	require.NotNil(t, m.RevenueVolatility)
	assert.InDelta(t, 0.05/math.Sqrt2, *m.RevenueVolatility, eps)
}

func TestCompute_CFOStats(t *testing.T) {
	rows := []contracts.FinancialRow{
		{FY: "FY20", CFO: some(-10)},
		{FY: "FY21", CFO: some(10)},
		{FY: "FY22"},
		{FY: "FY23", CFO: some(0)},
	}

	m := Compute(rows)
	require.NotNil(t, m.CFOPositiveYearsRatio)
	assert.InDelta(t, 1.0/3.0, *m.CFOPositiveYearsRatio, eps)
	require.NotNil(t, m.CFOCumulative)
	assert.Equal(t, 0.0, *m.CFOCumulative)
	require.NotNil(t, m.CFOLatest)
	assert.Equal(t, 0.0, *m.CFOLatest)
}

func TestCompute_AllFieldsMissing(t *testing.T) {
	m := Compute([]contracts.FinancialRow{{FY: "FY23"}, {}})

	assert.Equal(t, 2, m.WindowYears)
	assert.Nil(t, m.RevenueCAGR)
	assert.Nil(t, m.CFOLatest)
	assert.Nil(t, m.CFOPositiveYearsRatio)
	assert.Nil(t, m.CFOCumulative)
	assert.Empty(t, m.YoYRevenueGrowth)
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	reversed := []contracts.FinancialRow{rows[2], rows[1], rows[0]}
	before := append([]contracts.FinancialRow(nil), reversed...)

	Compute(reversed)
	assert.Equal(t, before, reversed)
}

func TestCompute_Idempotent(t *testing.T) {
	first, err := json.Marshal(Compute(sampleRows()))
	require.NoError(t, err)
	second, err := json.Marshal(Compute(sampleRows()))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}
