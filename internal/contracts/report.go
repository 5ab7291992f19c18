package contracts

// Report is the response assembled for one analyzed document
type Report struct {
	Slug       string        `json:"slug"`
	Components []interface{} `json:"components"` // TermsComponent, QualityComponent, VerdictComponent
	Sources    []Source      `json:"sources"`
	MCPMemory  MemoryStatus  `json:"mcp_memory"`
}

// Component names, in report order
const (
	ComponentTermsAndFinancials = "terms_and_financials"
	ComponentFinancialQuality   = "financial_quality"
	ComponentVerdict            = "verdict"
)

// TermsComponent echoes what was extracted from the document
type TermsComponent struct {
	Component  string         `json:"component"`
	Company    *string        `json:"company"`
	Terms      Terms          `json:"terms"`
	Financials []StatementRow `json:"financials"`
	Reasons    []string       `json:"reasons"`
}

// QualityComponent carries the derived metrics
type QualityComponent struct {
	Component string                 `json:"component"`
	Metrics   MetricsRecord          `json:"metrics"`
	Valuation map[string]interface{} `json:"valuation"`
	Reasons   []string               `json:"reasons"`
}

// VerdictComponent carries the decision and its explanation
type VerdictComponent struct {
	Component    string   `json:"component"`
	Verdict      Label    `json:"verdict"`
	Confidence   float64  `json:"confidence"`
	Why          []string `json:"why"`
	PlainEnglish string   `json:"plain_english"`
}

// Source is a document the report was built from
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// MemoryStatus reports what the memory tool server exposed, if it was reachable
type MemoryStatus struct {
	Connected bool     `json:"connected"`
	Tools     []string `json:"tools"`
}
