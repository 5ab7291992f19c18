package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"github.com/wonny/ipo-scorecard/internal/contracts"
)

// ErrEmptyReply is returned when the model produced no text
var ErrEmptyReply = errors.New("empty model reply")

// ParseEnvelope decodes a model reply. Strict JSON is tried first, then a repaired
// version (markdown fences, trailing commas, single quotes, unclosed brackets).
func ParseEnvelope(reply string) (*contracts.Envelope, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, ErrEmptyReply
	}

	env, err := decode(reply)
	if err == nil {
		return env, nil
	}

	repaired, repairErr := jsonrepair.RepairJSON(reply)
	if repairErr != nil {
		return nil, fmt.Errorf("failed to repair model reply: %w", repairErr)
	}

	env, err = decode(repaired)
	if err != nil {
		return nil, fmt.Errorf("failed to decode repaired model reply: %w", err)
	}
	return env, nil
}

// decode accepts the envelope with or without the outer "extracted" key.
// Sections decode independently: a mistyped meta or terms never costs the financials,
// and a financial row that is not an object is skipped.
func decode(data string) (*contracts.Envelope, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &top); err != nil {
		return nil, err
	}

	sections := top
	if raw, ok := top["extracted"]; ok {
		sections = nil
		if err := json.Unmarshal(raw, &sections); err != nil {
			return nil, err
		}
	}

	env := contracts.EmptyEnvelope()
	if raw, ok := sections["meta"]; ok {
		if err := json.Unmarshal(raw, &env.Extracted.Meta); err != nil {
			env.Extracted.Meta = contracts.Meta{}
		}
	}
	if raw, ok := sections["terms"]; ok {
		if err := json.Unmarshal(raw, &env.Extracted.Terms); err != nil {
			env.Extracted.Terms = contracts.Terms{}
		}
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(sections["financials"], &rows); err == nil {
		for _, raw := range rows {
			var row contracts.StatementRow
			if err := json.Unmarshal(raw, &row); err != nil {
				continue
			}
			env.Extracted.Financials = append(env.Extracted.Financials, row)
		}
	}
	return env, nil
}
