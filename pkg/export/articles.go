package export

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"gopkg.in/yaml.v3"
)

// ArticleSet is the input of one pipeline run. The query is optional.
type ArticleSet struct {
	Query    string           `json:"query" yaml:"query"`
	Articles []*model.Article `json:"articles" yaml:"articles"`
}

// UnmarshalArticles decodes either an ArticleSet object or a bare list of
// articles in JSON or YAML
func UnmarshalArticles(data []byte, format Format) (*ArticleSet, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "article input is empty")
	}

	switch format {
	case FormatJSON:
		if data[0] == '[' {
			var list []*model.Article
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, goerr.Wrap(model.ErrParseFailure, "failed to unmarshal JSON articles", goerr.V("cause", err.Error()))
			}
			return &ArticleSet{Articles: list}, nil
		}
		var set ArticleSet
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, goerr.Wrap(model.ErrParseFailure, "failed to unmarshal JSON articles", goerr.V("cause", err.Error()))
		}
		return &set, nil

	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, goerr.Wrap(model.ErrParseFailure, "failed to unmarshal YAML articles", goerr.V("cause", err.Error()))
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var list []*model.Article
			if err := node.Decode(&list); err != nil {
				return nil, goerr.Wrap(model.ErrParseFailure, "failed to decode YAML articles", goerr.V("cause", err.Error()))
			}
			return &ArticleSet{Articles: list}, nil
		}
		var set ArticleSet
		if err := node.Decode(&set); err != nil {
			return nil, goerr.Wrap(model.ErrParseFailure, "failed to decode YAML articles", goerr.V("cause", err.Error()))
		}
		return &set, nil

	default:
		return nil, goerr.Wrap(model.ErrInvalidInput, "format cannot be decoded", goerr.V("format", format))
	}
}
