package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// 모델 응답의 타입 흔들림(숫자 문자열, 정수 자리에 실수 등) 흡수용

var numericToken = regexp.MustCompile(`\d+(?:\.\d+)?`)

// absent reports a missing or null field; json.Unmarshal treats null as a no-op
func absent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// labelText reads a label that may come back as a string or a bare number.
// Anything else (null, bool, object, array) is not a label.
func labelText(raw json.RawMessage) (string, bool) {
	if absent(raw) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// optionalString returns nil unless raw is a JSON string
func optionalString(raw json.RawMessage) *string {
	if absent(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// numbersIn returns every finite number in raw: a JSON number as is, a string such as
// "₹1,250" or "₹100 - ₹110" by its numeric tokens
func numbersIn(raw json.RawMessage) []float64 {
	if absent(raw) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return []float64{v}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}

	var out []float64
	for _, tok := range numericToken.FindAllString(strings.ReplaceAll(s, ",", ""), -1) {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// UnmarshalJSON keeps whatever fields are usable; mistyped fields become nil
func (m *Meta) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Meta{
		Company:  optionalString(raw["company"]),
		Industry: optionalString(raw["industry"]),
	}
	return nil
}

// UnmarshalJSON accepts price bands as numbers, numeric strings or a single "low - high"
// string, and integral lot sizes written as 12.0 or "12"
func (t *Terms) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = Terms{
		PriceBand: priceBand(raw["price_band"]),
		LotSize:   lotSize(raw["lot_size"]),
		OpenDate:  optionalString(raw["open_date"]),
		CloseDate: optionalString(raw["close_date"]),
	}
	return nil
}

func priceBand(raw json.RawMessage) []float64 {
	if absent(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return numbersIn(raw)
	}

	var band []float64
	for _, item := range items {
		if nums := numbersIn(item); len(nums) > 0 {
			band = append(band, nums[0])
		}
	}
	return band
}

func lotSize(raw json.RawMessage) *int {
	nums := numbersIn(raw)
	if len(nums) != 1 || nums[0] != math.Trunc(nums[0]) || nums[0] > math.MaxInt32 {
		return nil
	}
	n := int(nums[0])
	return &n
}

// UnmarshalJSON accepts a numeric fy (2023 → "2023"); any other non-string fy is nil
func (s *StatementRow) UnmarshalJSON(data []byte) error {
	var raw struct {
		FY         json.RawMessage `json:"fy"`
		RevenueCr  Amount          `json:"revenue_cr"`
		EBITDACr   Amount          `json:"ebitda_cr"`
		PATCr      Amount          `json:"pat_cr"`
		NetworthCr Amount          `json:"networth_cr"`
		DebtCr     Amount          `json:"debt_cr"`
		CFOCr      Amount          `json:"cfo_cr"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = StatementRow{
		RevenueCr:  raw.RevenueCr,
		EBITDACr:   raw.EBITDACr,
		PATCr:      raw.PATCr,
		NetworthCr: raw.NetworthCr,
		DebtCr:     raw.DebtCr,
		CFOCr:      raw.CFOCr,
	}
	if fy, ok := labelText(raw.FY); ok {
		s.FY = &fy
	}
	return nil
}
