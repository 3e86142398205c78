package model

import "time"

// Article is one fetched news article. It is the input of a pipeline run and
// is never mutated.
type Article struct {
	URL         string     `json:"url" yaml:"url"`
	Title       string     `json:"title" yaml:"title"`
	Source      string     `json:"source" yaml:"source"`
	PublishedAt *time.Time `json:"published_at" yaml:"published_at"`
	Content     string     `json:"content" yaml:"content"`
	// RawContent is the search API snippet, used when Content is empty
	RawContent string `json:"raw_content,omitempty" yaml:"raw_content,omitempty"`
}

// Body returns Content, falling back to RawContent
func (a *Article) Body() string {
	if a.Content != "" {
		return a.Content
	}
	return a.RawContent
}
