package plangen

import (
	"encoding/json"
	"strings"
)

// ParseOutcome classifies how (or whether) a generator response yielded a
// usable document. Each stage maps deterministically to either a validated
// document or a forced fallback, which keeps the degrade-to-fallback policy
// auditable independent of the external call.
type ParseOutcome int

const (
	// StrictParse: the whole response text is a valid JSON document pair.
	StrictParse ParseOutcome = iota
	// LenientExtract: the pair was recovered from the first {...} block
	// embedded in surrounding prose.
	LenientExtract
	// Unparseable: no usable pair; the caller must substitute the fallback.
	Unparseable
)

func (o ParseOutcome) String() string {
	switch o {
	case StrictParse:
		return "strict"
	case LenientExtract:
		return "lenient"
	default:
		return "unparseable"
	}
}

// Parse extracts a plan pair from raw generator output. Strict JSON is tried
// first, then the substring from the first '{' to the last '}'. A document
// missing either the workout or the nutrition half is Unparseable: the policy
// is full fallback substitution, never a partial merge.
func Parse(text string) (*Document, ParseOutcome) {
	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err == nil {
		if doc.Workout != nil && doc.Nutrition != nil {
			return &doc, StrictParse
		}
		return nil, Unparseable
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, Unparseable
	}

	doc = Document{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return nil, Unparseable
	}
	if doc.Workout == nil || doc.Nutrition == nil {
		return nil, Unparseable
	}
	return &doc, LenientExtract
}
