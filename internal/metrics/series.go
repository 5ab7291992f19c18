package metrics

import (
	"math"

	"github.com/wonny/ipo-scorecard/internal/contracts"
)

// notFound is the sentinel index returned by the scans below
const notFound = -1

// series is one field across the analysis window, oldest first
type series []contracts.Amount

func column(rows []contracts.FinancialRow, pick func(contracts.FinancialRow) contracts.Amount) series {
	s := make(series, len(rows))
	for i, r := range rows {
		s[i] = pick(r)
	}
	return s
}

// firstValid scans forward for the first valid value
func (s series) firstValid() int {
	for i := 0; i < len(s); i++ {
		if s[i].Valid {
			return i
		}
	}
	return notFound
}

// lastValid scans backward for the last valid value
func (s series) lastValid() int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Valid {
			return i
		}
	}
	return notFound
}

func (s series) validCount() int {
	n := 0
	for _, a := range s {
		if a.Valid {
			n++
		}
	}
	return n
}

// at returns the value at i, invalid when out of range
func (s series) at(i int) contracts.Amount {
	if i < 0 || i >= len(s) {
		return contracts.None()
	}
	return s[i]
}

// finite wraps a computed value, nil when NaN or ±Inf
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ratio divides two amounts, nil unless both are valid and den != 0
func ratio(num, den contracts.Amount) *float64 {
	if !num.Valid || !den.Valid || den.Value == 0 {
		return nil
	}
	return finite(num.Value / den.Value)
}

// cagr is the compound growth between the first and last valid values.
// The exponent uses the whole window (len-1 steps), not the gap between the two points.
func cagr(s series) *float64 {
	if s.validCount() < 2 {
		return nil
	}

	first, last := s[s.firstValid()].Value, s[s.lastValid()].Value
	if first <= 0 || last <= 0 {
		return nil
	}

	n := len(s) - 1
	return finite(math.Pow(last/first, 1/float64(n)) - 1)
}

// latestRatio is num/den at the most recent index where both are usable
func latestRatio(num, den series) *float64 {
	best := notFound
	for i := 0; i < len(num) && i < len(den); i++ {
		if ratio(num[i], den[i]) != nil {
			best = i
		}
	}
	if best == notFound {
		return nil
	}
	return ratio(num[best], den[best])
}

// ratioSeries is num/den at each index, nil where not computable
func ratioSeries(num, den series) []*float64 {
	out := make([]*float64, len(num))
	for i := range num {
		out[i] = ratio(num[i], den.at(i))
	}
	return out
}

// spread is last valid minus first valid; needs two distinct observations
func spread(values []*float64) *float64 {
	first, last := notFound, notFound
	for i, v := range values {
		if v == nil {
			continue
		}
		if first == notFound {
			first = i
		}
		last = i
	}
	if first == notFound || first == last {
		return nil
	}
	return finite(*values[last] - *values[first])
}

// yoyGrowth walks adjacent pairs; the prior value must be valid and positive
func yoyGrowth(s series) []float64 {
	out := []float64{}
	for i := 1; i < len(s); i++ {
		prev, cur := s[i-1], s[i]
		if !prev.Valid || prev.Value <= 0 || !cur.Valid {
			continue
		}
		if g := finite(cur.Value/prev.Value - 1); g != nil {
			out = append(out, *g)
		}
	}
	return out
}

// sampleStdDev divides by n-1; nil for fewer than two points
func sampleStdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return finite(math.Sqrt(sumSq / float64(len(values)-1)))
}
