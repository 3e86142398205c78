package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContradictionMarker is placed in Summary.Notes when supporting quotes
// assert incompatible claims
const ContradictionMarker = "CONTRADICTION DETECTED"

// TimelineID is a UUID-based identifier for Timeline
type TimelineID string

// NewTimelineID generates a new UUID v4 TimelineID
func NewTimelineID() TimelineID {
	return TimelineID(uuid.New().String())
}

func (x TimelineID) String() string {
	return string(x)
}

// Summary is the structured description of one cluster
type Summary struct {
	Date       *Date    `json:"date"`
	Milestone  string   `json:"milestone"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
	Notes      string   `json:"notes"`
}

// HasContradiction reports whether the notes carry the contradiction marker
func (s *Summary) HasContradiction() bool {
	return hasContradiction(s.Notes)
}

func hasContradiction(notes string) bool {
	return strings.Contains(strings.ToUpper(notes), ContradictionMarker)
}

// SupportingStatement links an entry back to its source sentence
type SupportingStatement struct {
	Text       string `json:"text" yaml:"text"`
	SourceName string `json:"source_name" yaml:"source_name"`
	URL        string `json:"url" yaml:"url"`
}

// Entry is one milestone of a timeline with its provenance
type Entry struct {
	Date                 *Date                 `json:"date" yaml:"date"`
	Milestone            string                `json:"milestone_text" yaml:"milestone_text"`
	Confidence           float64               `json:"confidence" yaml:"confidence"`
	Sources              []string              `json:"sources" yaml:"sources"`
	Notes                string                `json:"notes" yaml:"notes"`
	SupportingStatements []SupportingStatement `json:"supporting_statements" yaml:"supporting_statements"`
}

// HasContradiction reports whether the notes carry the contradiction marker
func (e *Entry) HasContradiction() bool {
	return hasContradiction(e.Notes)
}

// Timeline is the ordered result of a pipeline run
type Timeline struct {
	ID        TimelineID `json:"id" yaml:"id"`
	Query     string     `json:"query" yaml:"query"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	Entries   []*Entry   `json:"entries" yaml:"entries"`
}

// SortEntries orders entries by date ascending with undated entries last.
// The sort is stable so equal dates keep their discovery order.
func SortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Date, entries[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// DateRange returns the first and last dated entries' dates, nil when no
// entry is dated. Entries must be sorted.
func (t *Timeline) DateRange() (*Date, *Date) {
	var first, last *Date
	for _, e := range t.Entries {
		if e.Date == nil {
			continue
		}
		if first == nil {
			first = e.Date
		}
		last = e.Date
	}
	return first, last
}

// SourceCount is the number of supporting statements from one source
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// SourceCounts aggregates supporting statements per source name, ordered by
// count descending and then by name
func (t *Timeline) SourceCounts() []SourceCount {
	counts := make(map[string]int)
	for _, e := range t.Entries {
		for _, s := range e.SupportingStatements {
			if s.SourceName == "" {
				continue
			}
			counts[s.SourceName]++
		}
	}

	result := make([]SourceCount, 0, len(counts))
	for source, count := range counts {
		result = append(result, SourceCount{Source: source, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Source < result[j].Source
	})
	return result
}
