package decision

// Op compares a metric against a band bound
type Op string

const (
	OpGTE Op = ">="
	OpGT  Op = ">"
	OpLTE Op = "<="
	OpLT  Op = "<"
)

// Valid reports whether op is a known comparison
func (op Op) Valid() bool {
	switch op {
	case OpGTE, OpGT, OpLTE, OpLT:
		return true
	default:
		return false
	}
}

// lowerBound reports whether op reads "at least": bands then run from high to low bounds
func (op Op) lowerBound() bool {
	return op == OpGTE || op == OpGT
}

func (op Op) holds(v, bound float64) bool {
	switch op {
	case OpGTE:
		return v >= bound
	case OpGT:
		return v > bound
	case OpLTE:
		return v <= bound
	case OpLT:
		return v < bound
	default:
		return false
	}
}

// Band awards Score (and Reason) when `metric Op Bound` holds
type Band struct {
	Op     Op      `yaml:"op" json:"op"`
	Bound  float64 `yaml:"bound" json:"bound"`
	Score  float64 `yaml:"score" json:"score"`
	Reason string  `yaml:"reason" json:"reason"`
}

// Outcome is a fixed score and reason
type Outcome struct {
	Score  float64 `yaml:"score" json:"score"`
	Reason string  `yaml:"reason" json:"reason"`
}

// Ladder scores one metric: the first matching band wins, then Else.
// Missing applies to an unavailable metric; a nil Missing contributes nothing.
type Ladder struct {
	Bands   []Band   `yaml:"bands" json:"bands"`
	Else    *Outcome `yaml:"else" json:"else"`
	Missing *Outcome `yaml:"missing" json:"missing"`
}

// evaluate returns the awarded outcome, or false when nothing is awarded
func (l Ladder) evaluate(v *float64) (Outcome, bool) {
	if v == nil {
		if l.Missing == nil {
			return Outcome{}, false
		}
		return *l.Missing, true
	}

	for _, b := range l.Bands {
		if b.Op.holds(*v, b.Bound) {
			return Outcome{Score: b.Score, Reason: b.Reason}, true
		}
	}

	if l.Else == nil {
		return Outcome{}, false
	}
	return *l.Else, true
}

// bonus returns the band's award when the metric is present and the band holds
func (b Band) bonus(v *float64) (Outcome, bool) {
	if v == nil || !b.Op.holds(*v, b.Bound) {
		return Outcome{}, false
	}
	return Outcome{Score: b.Score, Reason: b.Reason}, true
}

func (l Ladder) clone() Ladder {
	out := Ladder{}
	if l.Bands != nil {
		out.Bands = make([]Band, len(l.Bands))
		copy(out.Bands, l.Bands)
	}
	if l.Else != nil {
		e := *l.Else
		out.Else = &e
	}
	if l.Missing != nil {
		m := *l.Missing
		out.Missing = &m
	}
	return out
}

// maxScore is the best score the ladder can award
func (l Ladder) maxScore() float64 {
	best := 0.0
	for _, b := range l.Bands {
		if b.Score > best {
			best = b.Score
		}
	}
	if l.Else != nil && l.Else.Score > best {
		best = l.Else.Score
	}
	if l.Missing != nil && l.Missing.Score > best {
		best = l.Missing.Score
	}
	return best
}
