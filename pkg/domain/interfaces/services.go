package interfaces

import (
	"context"

	"github.com/secmon-lab/chronicle/pkg/domain/model"
)

// Segmenter splits text into sentences and recognizes calendar date
// expressions within a sentence
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
	RecognizeDates(ctx context.Context, sentence string) ([]string, error)
}

// DateParser resolves a calendar date from free text. With preferPast the
// parse is loose and ambiguous expressions resolve to the most recent past
// occurrence; otherwise only complete dates are accepted.
type DateParser interface {
	Parse(text string, preferPast bool) (*model.Date, error)
}

// Embedder computes fixed-dimensionality embeddings, one per input text.
// A nil or empty vector in the result means that text could not be embedded.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free text for a prompt. Implementations run with
// temperature 0 and a bounded output length.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Notifier announces a completed timeline
type Notifier interface {
	NotifyTimeline(ctx context.Context, timeline *model.Timeline) error
}

// Exporter publishes a serialized timeline and returns its location
type Exporter interface {
	Export(ctx context.Context, timeline *model.Timeline) (string, error)
}
