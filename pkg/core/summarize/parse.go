package summarize

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// record is the JSON object requested from the generation service
type record struct {
	Date       *string         `json:"date"`
	Milestone  string          `json:"milestone"`
	Confidence *float64        `json:"confidence"`
	Sources    []string        `json:"sources"`
	Notes      json.RawMessage `json:"notes"`
}

// ParseResponse extracts the summary record enclosed between the first '{'
// and the last '}' of text. Every returned error wraps model.ErrParseFailure.
func ParseResponse(text string, maxSources int) (*model.Summary, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, goerr.Wrap(model.ErrParseFailure, "no JSON object in response", goerr.V("response", text))
	}

	var rec record
	if err := json.Unmarshal([]byte(text[start:end+1]), &rec); err != nil {
		return nil, goerr.Wrap(model.ErrParseFailure, "malformed JSON object in response",
			goerr.V("response", text),
			goerr.V("cause", err.Error()))
	}

	milestone := strings.TrimSpace(rec.Milestone)
	if milestone == "" {
		return nil, goerr.Wrap(model.ErrParseFailure, "response has no milestone", goerr.V("response", text))
	}

	summary := &model.Summary{
		Date:       parseDate(rec.Date),
		Milestone:  milestone,
		Confidence: 0,
		Sources:    normalizeSources(rec.Sources, maxSources),
		Notes:      parseNotes(rec.Notes),
	}
	if rec.Confidence != nil {
		summary.Confidence = clamp(*rec.Confidence)
	}

	return summary, nil
}

// parseDate accepts "YYYY-MM-DD" optionally followed by a time part. Anything
// else is treated as no date so that the canonical date is used instead.
func parseDate(s *string) *model.Date {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if len(v) > len(model.DateLayout) {
		v = v[:len(model.DateLayout)]
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return nil
	}
	return &d
}

// parseNotes accepts a string, a list of strings or null
func parseNotes(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, "; "))
	}

	return strings.TrimSpace(string(raw))
}

func normalizeSources(sources []string, limit int) []string {
	seen := make(map[string]struct{}, len(sources))
	result := make([]string, 0, len(sources))
	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		if len(result) >= limit {
			break
		}
		seen[src] = struct{}{}
		result = append(result, src)
	}
	return result
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
