package model

import "time"

// Candidate is a sentence-level statement extracted from one article that
// possibly describes a dated event.
type Candidate struct {
	SourceURL         string     `json:"source_url"`
	SourceTitle       string     `json:"source_title"`
	SourceName        string     `json:"source_name"`
	SourcePublishedAt *time.Time `json:"source_published_at"`
	Text              string     `json:"text"`
	MentionedDate     *Date      `json:"mentioned_date"`
	Embedding         []float32  `json:"embedding,omitempty"`
}

// Cluster is a group of candidates believed to describe one milestone.
// Index is the discovery order of the cluster within a run.
type Cluster struct {
	Index   int          `json:"index"`
	Members []*Candidate `json:"members"`
}

// Sources returns up to limit distinct source names in member order
func (c *Cluster) Sources(limit int) []string {
	seen := make(map[string]struct{}, len(c.Members))
	sources := make([]string, 0, limit)
	for _, m := range c.Members {
		if len(sources) >= limit {
			break
		}
		if m.SourceName == "" {
			continue
		}
		if _, ok := seen[m.SourceName]; ok {
			continue
		}
		seen[m.SourceName] = struct{}{}
		sources = append(sources, m.SourceName)
	}
	return sources
}
