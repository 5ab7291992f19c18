package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Amount is an optional real number taken from a financial statement.
// Anything that is not a finite JSON number decodes to an invalid Amount.
type Amount struct {
	Value float64
	Valid bool
}

// Some returns a valid Amount (NaN and ±Inf stay invalid)
func Some(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}
	}
	return Amount{Value: v, Valid: true}
}

// None returns an invalid Amount
func None() Amount {
	return Amount{}
}

// Ptr returns the value as *float64, nil when invalid
func (a Amount) Ptr() *float64 {
	if !a.Valid {
		return nil
	}
	v := a.Value
	return &v
}

// MarshalJSON writes null for invalid amounts
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(a.Value, 'g', -1, 64)), nil
}

// UnmarshalJSON never fails: strings, bools, objects and null all become invalid
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == 'n' || trimmed[0] == '"' {
		return nil
	}

	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil
	}
	*a = Some(v)
	return nil
}

// FinancialRow is one fiscal year's figures, in a single homogeneous unit
// ⭐ SSOT: 재무 행(row) 입력 계약은 여기서만
type FinancialRow struct {
	FY       string `json:"fy"`
	Revenue  Amount `json:"revenue"`
	EBITDA   Amount `json:"ebitda"`
	PAT      Amount `json:"pat"`
	NetWorth Amount `json:"net_worth"`
	Debt     Amount `json:"debt"`
	CFO      Amount `json:"cfo"`
}

// UnmarshalJSON takes a numeric fy as its text (2023 → "2023"); any other non-string fy is empty
func (r *FinancialRow) UnmarshalJSON(data []byte) error {
	var raw struct {
		FY       json.RawMessage `json:"fy"`
		Revenue  Amount          `json:"revenue"`
		EBITDA   Amount          `json:"ebitda"`
		PAT      Amount          `json:"pat"`
		NetWorth Amount          `json:"net_worth"`
		Debt     Amount          `json:"debt"`
		CFO      Amount          `json:"cfo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fy, _ := labelText(raw.FY)

	*r = FinancialRow{
		FY:       fy,
		Revenue:  raw.Revenue,
		EBITDA:   raw.EBITDA,
		PAT:      raw.PAT,
		NetWorth: raw.NetWorth,
		Debt:     raw.Debt,
		CFO:      raw.CFO,
	}
	return nil
}

// FYRange is the first and last fiscal-year label of the analysis window
type FYRange [2]string

// MetricsRecord is the derived output of the metrics engine.
// Every optional field is a nil pointer when unavailable and is serialized as null.
type MetricsRecord struct {
	WindowYears int      `json:"window_years"`
	FYRange     *FYRange `json:"fy_range"`

	RevenueCAGR *float64 `json:"revenue_cagr"`
	PATCAGR     *float64 `json:"pat_cagr"`
	EBITDACAGR  *float64 `json:"ebitda_cagr"`

	PATMargin         *float64 `json:"pat_margin"`
	EBITDAMargin      *float64 `json:"ebitda_margin"`
	MarginTrendEBITDA *float64 `json:"margin_trend_ebitda"`

	RevenueVolatility *float64 `json:"revenue_volatility"`

	DebtToNetWorth  *float64 `json:"debt_to_networth"`
	NetDebtToEBITDA *float64 `json:"net_debt_to_ebitda"`

	CFOLatest             *float64 `json:"cfo_latest"`
	CFOToPAT              *float64 `json:"cfo_to_pat"`
	CFOPositiveYearsRatio *float64 `json:"cfo_positive_years_ratio"`
	CFOCumulative         *float64 `json:"cfo_cumulative"`

	YoYRevenueGrowth []float64 `json:"yoy_revenue_growth"`
}

// MarshalJSON keeps yoy_revenue_growth an array even on a zero-value record
func (m MetricsRecord) MarshalJSON() ([]byte, error) {
	type plain MetricsRecord
	out := plain(m)
	if out.YoYRevenueGrowth == nil {
		out.YoYRevenueGrowth = []float64{}
	}
	return json.Marshal(out)
}

// Label is the categorical investment verdict
type Label string

const (
	LabelApply   Label = "Apply"
	LabelNeutral Label = "Neutral"
	LabelAvoid   Label = "Avoid"
)

// Valid reports whether l is one of the three verdict labels
func (l Label) Valid() bool {
	switch l {
	case LabelApply, LabelNeutral, LabelAvoid:
		return true
	default:
		return false
	}
}

// VerdictRecord is the output of the decision engine
type VerdictRecord struct {
	Label      Label    `json:"label"`
	Score      float64  `json:"score"`      // 0~100, 2dp
	Confidence float64  `json:"confidence"` // 0.40~0.95, 2dp
	Reasons    []string `json:"reasons"`
}

// MarshalJSON keeps reasons an array even on a zero-value record
func (v VerdictRecord) MarshalJSON() ([]byte, error) {
	type plain VerdictRecord
	out := plain(v)
	if out.Reasons == nil {
		out.Reasons = []string{}
	}
	return json.Marshal(out)
}

// Scorecard pairs the two core outputs for one invocation
type Scorecard struct {
	Metrics MetricsRecord `json:"metrics"`
	Verdict VerdictRecord `json:"verdict"`
}
