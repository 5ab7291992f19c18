package decision

// Config is the complete scoring rulebook of the decision engine
// ⭐ SSOT: 점수 구간/가중치/임계값은 여기서만 (하드코딩 금지)
type Config struct {
	Weights     Weights        `yaml:"weights" json:"weights"`
	Thresholds  Thresholds     `yaml:"thresholds" json:"thresholds"`
	Confidence  ConfidenceBand `yaml:"confidence" json:"confidence"`
	CategoryCap float64        `yaml:"category_cap" json:"category_cap"`

	Growth        GrowthRules        `yaml:"growth" json:"growth"`
	Profitability ProfitabilityRules `yaml:"profitability" json:"profitability"`
	Cashflow      CashflowRules      `yaml:"cashflow" json:"cashflow"`
	Leverage      LeverageRules      `yaml:"leverage" json:"leverage"`
	Volatility    VolatilityRules    `yaml:"volatility" json:"volatility"`
}

// Weights of the five categories (합 = 1.0)
type Weights struct {
	Growth        float64 `yaml:"growth" json:"growth"`
	Profitability float64 `yaml:"profitability" json:"profitability"`
	Cashflow      float64 `yaml:"cashflow" json:"cashflow"`
	Leverage      float64 `yaml:"leverage" json:"leverage"`
	Volatility    float64 `yaml:"volatility" json:"volatility"`
}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Growth + w.Profitability + w.Cashflow + w.Leverage + w.Volatility
}

type namedWeight struct {
	name   string
	weight float64
}

func (w Weights) named() []namedWeight {
	return []namedWeight{
		{"growth", w.Growth},
		{"profitability", w.Profitability},
		{"cashflow", w.Cashflow},
		{"leverage", w.Leverage},
		{"volatility", w.Volatility},
	}
}

// Thresholds are the inclusive lower bounds of the Apply and Neutral labels
type Thresholds struct {
	Apply   float64 `yaml:"apply" json:"apply"`
	Neutral float64 `yaml:"neutral" json:"neutral"`
}

// ConfidenceBand shapes confidence = clamp(1 - distance/Width, Floor, Ceiling)
type ConfidenceBand struct {
	Floor   float64 `yaml:"floor" json:"floor"`
	Ceiling float64 `yaml:"ceiling" json:"ceiling"`
	Width   float64 `yaml:"width" json:"width"`
}

type GrowthRules struct {
	RevenueCAGR     Ladder `yaml:"revenue_cagr" json:"revenue_cagr"`
	EBITDACAGRBonus Band   `yaml:"ebitda_cagr_bonus" json:"ebitda_cagr_bonus"`
}

type ProfitabilityRules struct {
	EBITDAMargin     Ladder `yaml:"ebitda_margin" json:"ebitda_margin"`
	PATMargin        Ladder `yaml:"pat_margin" json:"pat_margin"`
	MarginTrendBonus Band   `yaml:"margin_trend_bonus" json:"margin_trend_bonus"`
}

type CashflowRules struct {
	LatestCFO     Ladder `yaml:"latest_cfo" json:"latest_cfo"`
	CFOToPAT      Ladder `yaml:"cfo_to_pat" json:"cfo_to_pat"`
	PositiveYears Ladder `yaml:"positive_years" json:"positive_years"`
}

type LeverageRules struct {
	DebtToNetWorth  Ladder `yaml:"debt_to_networth" json:"debt_to_networth"`
	NetDebtToEBITDA Ladder `yaml:"net_debt_to_ebitda" json:"net_debt_to_ebitda"`
}

type VolatilityRules struct {
	RevenueVolatility Ladder `yaml:"revenue_volatility" json:"revenue_volatility"`
}

// Clone returns a deep copy; ladders own their band slices and outcome pointers
func (c Config) Clone() Config {
	out := c
	out.Growth.RevenueCAGR = c.Growth.RevenueCAGR.clone()
	out.Profitability.EBITDAMargin = c.Profitability.EBITDAMargin.clone()
	out.Profitability.PATMargin = c.Profitability.PATMargin.clone()
	out.Cashflow.LatestCFO = c.Cashflow.LatestCFO.clone()
	out.Cashflow.CFOToPAT = c.Cashflow.CFOToPAT.clone()
	out.Cashflow.PositiveYears = c.Cashflow.PositiveYears.clone()
	out.Leverage.DebtToNetWorth = c.Leverage.DebtToNetWorth.clone()
	out.Leverage.NetDebtToEBITDA = c.Leverage.NetDebtToEBITDA.clone()
	out.Volatility.RevenueVolatility = c.Volatility.RevenueVolatility.clone()
	return out
}

// ladders lists every ladder with its config path, in category order
func (c *Config) ladders() []namedLadder {
	return []namedLadder{
		{"growth.revenue_cagr", &c.Growth.RevenueCAGR},
		{"profitability.ebitda_margin", &c.Profitability.EBITDAMargin},
		{"profitability.pat_margin", &c.Profitability.PATMargin},
		{"cashflow.latest_cfo", &c.Cashflow.LatestCFO},
		{"cashflow.cfo_to_pat", &c.Cashflow.CFOToPAT},
		{"cashflow.positive_years", &c.Cashflow.PositiveYears},
		{"leverage.debt_to_networth", &c.Leverage.DebtToNetWorth},
		{"leverage.net_debt_to_ebitda", &c.Leverage.NetDebtToEBITDA},
		{"volatility.revenue_volatility", &c.Volatility.RevenueVolatility},
	}
}

type namedLadder struct {
	path   string
	ladder *Ladder
}

func band(op Op, bound, score float64, reason string) Band {
	return Band{Op: op, Bound: bound, Score: score, Reason: reason}
}

func outcome(score float64, reason string) *Outcome {
	return &Outcome{Score: score, Reason: reason}
}

// DefaultConfig returns the built-in rulebook
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Growth:        0.30,
			Profitability: 0.25,
			Cashflow:      0.20,
			Leverage:      0.15,
			Volatility:    0.10,
		},
		Thresholds:  Thresholds{Apply: 70, Neutral: 55},
		Confidence:  ConfidenceBand{Floor: 0.40, Ceiling: 0.95, Width: 15},
		CategoryCap: 100,

		Growth: GrowthRules{
			RevenueCAGR: Ladder{
				Bands: []Band{
					band(OpGTE, 0.20, 100, "Strong revenue CAGR"),
					band(OpGTE, 0.10, 70, "Moderate revenue CAGR"),
					band(OpGT, 0, 40, "Low revenue CAGR"),
				},
				Else:    outcome(15, "Declining revenue"),
				Missing: outcome(25, "Revenue CAGR unavailable"),
			},
			EBITDACAGRBonus: band(OpGT, 0.10, 10, "EBITDA CAGR supportive"),
		},

		Profitability: ProfitabilityRules{
			EBITDAMargin: Ladder{
				Bands: []Band{
					band(OpGTE, 0.20, 55, "Strong EBITDA margin"),
					band(OpGTE, 0.12, 40, "Moderate EBITDA margin"),
					band(OpGT, 0.05, 25, "Thin EBITDA margin"),
				},
				Else:    outcome(10, "Weak EBITDA margin"),
				Missing: outcome(20, "EBITDA margin unavailable"),
			},
			PATMargin: Ladder{
				Bands: []Band{
					band(OpGTE, 0.12, 35, "Healthy PAT margin"),
					band(OpGTE, 0.07, 25, "Moderate PAT margin"),
					band(OpGT, 0, 15, "Thin PAT margin"),
				},
				Else:    outcome(5, "Negative PAT"),
				Missing: outcome(15, "PAT margin unavailable"),
			},
			MarginTrendBonus: band(OpGT, 0, 10, "Improving EBITDA margin trend"),
		},

		Cashflow: CashflowRules{
			LatestCFO: Ladder{
				Bands: []Band{
					band(OpGT, 0, 45, "Latest CFO positive"),
				},
				Else:    outcome(15, "Latest CFO negative"),
				Missing: outcome(25, "CFO data unavailable"),
			},
			// 누락 시 점수/사유 없음
			CFOToPAT: Ladder{
				Bands: []Band{
					band(OpGTE, 0.9, 35, "Strong cash conversion"),
					band(OpGTE, 0.5, 25, "Moderate cash conversion"),
					band(OpGT, 0, 15, "Weak cash conversion"),
				},
				Else: outcome(5, "Poor cash conversion"),
			},
			PositiveYears: Ladder{
				Bands: []Band{
					band(OpGTE, 0.66, 20, "Consistently positive CFO"),
					band(OpGTE, 0.33, 10, "Occasionally positive CFO"),
				},
				Else: outcome(5, "Mostly negative CFO"),
			},
		},

		Leverage: LeverageRules{
			DebtToNetWorth: Ladder{
				Bands: []Band{
					band(OpLTE, 0.5, 50, "Low leverage vs net worth"),
					band(OpLTE, 1.0, 35, "Moderate leverage vs net worth"),
					band(OpLTE, 2.0, 20, "High leverage vs net worth"),
				},
				Else:    outcome(10, "Very high leverage"),
				Missing: outcome(25, "Leverage (DNW) unavailable"),
			},
			NetDebtToEBITDA: Ladder{
				Bands: []Band{
					band(OpLTE, 1.0, 50, "Low net debt to EBITDA"),
					band(OpLTE, 3.0, 35, "Moderate net debt to EBITDA"),
					band(OpLTE, 5.0, 20, "High net debt to EBITDA"),
				},
				Else:    outcome(10, "Very high net debt to EBITDA"),
				Missing: outcome(25, "Net debt to EBITDA unavailable"),
			},
		},

		Volatility: VolatilityRules{
			RevenueVolatility: Ladder{
				Bands: []Band{
					band(OpLTE, 0.10, 100, "Low revenue volatility"),
					band(OpLTE, 0.20, 70, "Moderate revenue volatility"),
				},
				Else:    outcome(35, "High revenue volatility"),
				Missing: outcome(50, "Volatility unavailable"),
			},
		},
	}
}
