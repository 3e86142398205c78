package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrExtractionNotConfigured = errors.New("article extraction is not configured")
	ErrRepositoryNotConfigured = errors.New("repository is not configured")
	ErrNoArticles              = errors.New("no articles given")
)

// Context keys for error values
const (
	QueryKey = "query"
)
