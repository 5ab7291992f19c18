package contracts

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Amount
	}{
		{"number", `12.5`, Amount{Value: 12.5, Valid: true}},
		{"negative", `-3`, Amount{Value: -3, Valid: true}},
		{"zero", `0`, Amount{Value: 0, Valid: true}},
		{"null", `null`, Amount{}},
		{"string", `"120"`, Amount{}},
		{"bool", `true`, Amount{}},
		{"object", `{"value": 1}`, Amount{}},
		{"array", `[1]`, Amount{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestSome_RejectsNonFinite(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.True(t, Some(1).Valid)
	assert.Nil(t, None().Ptr())
	assert.Equal(t, 2.0, *Some(2).Ptr())
}

func TestFinancialRow_UnmarshalJSON(t *testing.T) {
	input := `[
		{"fy": "FY23", "revenue": 150, "pat": "n/a", "cfo": null},
		{"fy": null, "ebitda": 28},
		{},
		{"fy": 2023, "revenue": 10},
		{"fy": true}
	]`

	var rows []FinancialRow
	require.NoError(t, json.Unmarshal([]byte(input), &rows))
	require.Len(t, rows, 5)

	assert.Equal(t, "FY23", rows[0].FY)
	assert.Equal(t, Some(150), rows[0].Revenue)
	assert.False(t, rows[0].PAT.Valid)
	assert.False(t, rows[0].CFO.Valid)

	assert.Equal(t, "", rows[1].FY)
	assert.Equal(t, Some(28), rows[1].EBITDA)

	assert.Equal(t, FinancialRow{}, rows[2])
	assert.Equal(t, "2023", rows[3].FY)
	assert.Equal(t, "", rows[4].FY)
}

func TestFinancialRow_MarshalJSON(t *testing.T) {
	row := FinancialRow{FY: "FY21", Revenue: Some(100)}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fy":"FY21","revenue":100,"ebitda":null,"pat":null,"net_worth":null,"debt":null,"cfo":null}`, string(data))
}

func TestMetricsRecord_NullsNeverOmitted(t *testing.T) {
	data, err := json.Marshal(MetricsRecord{})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	keys := []string{
		"window_years", "fy_range", "revenue_cagr", "pat_cagr", "ebitda_cagr",
		"pat_margin", "ebitda_margin", "margin_trend_ebitda", "revenue_volatility",
		"debt_to_networth", "net_debt_to_ebitda", "cfo_latest", "cfo_to_pat",
		"cfo_positive_years_ratio", "cfo_cumulative", "yoy_revenue_growth",
	}
	assert.Len(t, decoded, len(keys))
	for _, k := range keys {
		assert.Contains(t, decoded, k)
	}
	assert.Nil(t, decoded["fy_range"])
	assert.Nil(t, decoded["revenue_cagr"])
	assert.Equal(t, []interface{}{}, decoded["yoy_revenue_growth"])
}

func TestMetricsRecord_FYRangeIsPair(t *testing.T) {
	data, err := json.Marshal(MetricsRecord{WindowYears: 2, FYRange: &FYRange{"FY22", "FY23"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fy_range":["FY22","FY23"]`)
}

func TestVerdictRecord_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(VerdictRecord{Label: LabelAvoid, Score: 33.75, Confidence: 0.4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Avoid","score":33.75,"confidence":0.4,"reasons":[]}`, string(data))
}

func TestLabel_Valid(t *testing.T) {
	assert.True(t, LabelApply.Valid())
	assert.True(t, LabelNeutral.Valid())
	assert.True(t, LabelAvoid.Valid())
	assert.False(t, Label("Buy").Valid())
}

func TestStatementRow_FinancialRow(t *testing.T) {
	fy := "FY2023"
	env := Extracted{Financials: []StatementRow{
		{FY: &fy, RevenueCr: Some(150), NetworthCr: Some(250), CFOCr: Some(14)},
		{RevenueCr: Some(120)},
	}}

	rows := env.FinancialRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "FY2023", rows[0].FY)
	assert.Equal(t, Some(250), rows[0].NetWorth)
	assert.Equal(t, Some(14), rows[0].CFO)
	assert.Equal(t, "", rows[1].FY)
}
