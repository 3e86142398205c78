package model

import "errors"

// Sentinel errors shared by the timeline pipeline
var (
	// ErrDependencyUnavailable means a segmentation, entity or embedding
	// service could not be reached. It fails the whole extraction batch.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrParseFailure means a date or summary record could not be parsed.
	// It is always absorbed by the caller with a fallback value.
	ErrParseFailure = errors.New("parse failure")

	// ErrGenerationFailure means the generation service errored or timed out
	ErrGenerationFailure = errors.New("generation failure")

	// ErrInvalidInput means malformed or inconsistent input to a pipeline stage
	ErrInvalidInput = errors.New("invalid input")

	ErrTimelineNotFound = errors.New("timeline not found")
)

// Context keys for error values
const (
	TimelineIDKey = "timeline_id"
	ClusterKey    = "cluster"
	CandidateKey  = "candidate"
)
