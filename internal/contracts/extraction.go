package contracts

// Envelope is the structured document returned by the extraction model
// ⭐ SSOT: 추출 스키마(JSON) ↔ Go 타입 매핑은 여기서만
type Envelope struct {
	Extracted Extracted `json:"extracted"`
}

// Extracted holds the three sections the model is asked for
type Extracted struct {
	Meta       Meta           `json:"meta"`
	Terms      Terms          `json:"terms"`
	Financials []StatementRow `json:"financials"`
}

// Meta identifies the issuer
type Meta struct {
	Company  *string `json:"company"`
	Industry *string `json:"industry"`
}

// Terms are the offer terms of the issue
type Terms struct {
	PriceBand []float64 `json:"price_band"`
	LotSize   *int      `json:"lot_size"`
	OpenDate  *string   `json:"open_date"`
	CloseDate *string   `json:"close_date"`
}

// StatementRow is one fiscal year as extracted, in ₹ crore
type StatementRow struct {
	FY         *string `json:"fy"`
	RevenueCr  Amount  `json:"revenue_cr"`
	EBITDACr   Amount  `json:"ebitda_cr"`
	PATCr      Amount  `json:"pat_cr"`
	NetworthCr Amount  `json:"networth_cr"`
	DebtCr     Amount  `json:"debt_cr"`
	CFOCr      Amount  `json:"cfo_cr"`
}

// FinancialRow maps the extraction keys onto the metrics input contract
func (s StatementRow) FinancialRow() FinancialRow {
	fy := ""
	if s.FY != nil {
		fy = *s.FY
	}
	return FinancialRow{
		FY:       fy,
		Revenue:  s.RevenueCr,
		EBITDA:   s.EBITDACr,
		PAT:      s.PATCr,
		NetWorth: s.NetworthCr,
		Debt:     s.DebtCr,
		CFO:      s.CFOCr,
	}
}

// FinancialRows maps every extracted row, preserving order
func (e Extracted) FinancialRows() []FinancialRow {
	rows := make([]FinancialRow, 0, len(e.Financials))
	for _, s := range e.Financials {
		rows = append(rows, s.FinancialRow())
	}
	return rows
}

// EmptyEnvelope is what a failed or unusable extraction degrades to
func EmptyEnvelope() *Envelope {
	return &Envelope{Extracted: Extracted{Financials: []StatementRow{}}}
}
