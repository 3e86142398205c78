package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
)

const (
	OllamaDefaultEndpoint = "http://localhost:11434"
	OllamaDefaultModel    = "nomic-embed-text"
)

// Ollama computes embeddings with a local Ollama server
type Ollama struct {
	endpoint string
	model    string
	client   *http.Client
}

var _ interfaces.Embedder = &Ollama{}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func NewOllama(endpoint, model string) *Ollama {
	if endpoint == "" {
		endpoint = OllamaDefaultEndpoint
	}
	if model == "" {
		model = OllamaDefaultModel
	}
	return &Ollama{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Input: sanitizeAll(texts)})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal ollama request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ollama request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "ollama request failed", goerr.V("endpoint", o.endpoint))
	}

	respBody, err := safe.ReadAll(ctx, resp.Body, maxResponseBytes)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read ollama response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("ollama returned error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", truncateBody(respBody)))
	}

	var embedResp ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &embedResp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse ollama response")
	}
	if len(embedResp.Embeddings) != len(texts) {
		return nil, goerr.New("ollama embedding count mismatch",
			goerr.V("expected", len(texts)),
			goerr.V("actual", len(embedResp.Embeddings)))
	}
	return embedResp.Embeddings, nil
}
