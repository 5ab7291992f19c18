// Package extraction turns offer-document text into the structured envelope
// the metrics engine consumes, using an LLM constrained by a JSON schema.
package extraction

// SystemPrompt instructs the model how to read the document
const SystemPrompt = "Parse Indian DRHP/RHP. JSON only per schema. Normalize to ₹ crore (2 decimals). " +
	"If missing, leave null. If conflicting, include both with source_page. Use keys exactly as schema."

func nullable(kind string) map[string]interface{} {
	return map[string]interface{}{"type": []string{kind, "null"}}
}

// Schema returns the JSON schema of the extraction envelope
// ⭐ SSOT: contracts.Envelope 와 동일한 키 유지
func Schema() map[string]interface{} {
	row := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"fy":          nullable("string"),
			"revenue_cr":  nullable("number"),
			"ebitda_cr":   nullable("number"),
			"pat_cr":      nullable("number"),
			"networth_cr": nullable("number"),
			"debt_cr":     nullable("number"),
			"cfo_cr":      nullable("number"),
		},
		"required":             []string{"fy"},
		"additionalProperties": false,
	}

	priceBand := nullable("array")
	priceBand["items"] = map[string]interface{}{"type": "number"}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"extracted": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"meta": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"company":  nullable("string"),
							"industry": nullable("string"),
						},
						"additionalProperties": true,
					},
					"terms": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"price_band": priceBand,
							"lot_size":   nullable("integer"),
							"open_date":  nullable("string"),
							"close_date": nullable("string"),
						},
						"additionalProperties": true,
					},
					"financials": map[string]interface{}{
						"type":  "array",
						"items": row,
					},
				},
				"required":             []string{"meta", "terms", "financials"},
				"additionalProperties": false,
			},
		},
		"required":             []string{"extracted"},
		"additionalProperties": false,
	}
}
