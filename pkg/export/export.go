package export

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"gopkg.in/yaml.v3"
)

// Format is a serialization of a timeline
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name or a file extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", goerr.Wrap(model.ErrInvalidInput, "unsupported format", goerr.V("format", s))
	}
}

// Extension returns the file extension without dot
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

// Marshal serializes a timeline. JSON and YAML round-trip through Unmarshal.
func Marshal(timeline *model.Timeline, format Format) ([]byte, error) {
	if timeline == nil {
		return nil, goerr.Wrap(model.ErrInvalidInput, "timeline is nil")
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(timeline, "", "  ")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal timeline to JSON", goerr.V(model.TimelineIDKey, timeline.ID))
		}
		return append(data, '\n'), nil

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(timeline); err != nil {
			return nil, goerr.Wrap(err, "failed to marshal timeline to YAML", goerr.V(model.TimelineIDKey, timeline.ID))
		}
		if err := enc.Close(); err != nil {
			return nil, goerr.Wrap(err, "failed to flush YAML encoder")
		}
		return buf.Bytes(), nil

	case FormatMarkdown:
		return []byte(Markdown(timeline)), nil

	default:
		return nil, goerr.Wrap(model.ErrInvalidInput, "unsupported format", goerr.V("format", format))
	}
}

// Unmarshal decodes a JSON or YAML timeline
func Unmarshal(data []byte, format Format) (*model.Timeline, error) {
	var timeline model.Timeline

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &timeline); err != nil {
			return nil, goerr.Wrap(model.ErrParseFailure, "failed to unmarshal JSON timeline", goerr.V("cause", err.Error()))
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &timeline); err != nil {
			return nil, goerr.Wrap(model.ErrParseFailure, "failed to unmarshal YAML timeline", goerr.V("cause", err.Error()))
		}
	default:
		return nil, goerr.Wrap(model.ErrInvalidInput, "format cannot be decoded", goerr.V("format", format))
	}

	return &timeline, nil
}
