package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
	"golang.org/x/time/rate"
)

const (
	jinaEndpoint     = "https://api.jina.ai/v1/embeddings"
	JinaDefaultModel = "jina-embeddings-v3"
	jinaDimensions   = 1024
	jinaChunkSize    = 25
	jinaTask         = "retrieval.passage"
	maxRetryAfter    = 30 * time.Second
	maxResponseBytes = 10 << 20
)

// Jina computes embeddings with the Jina AI embeddings API
type Jina struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	backoffs []time.Duration
}

var _ interfaces.Embedder = &Jina{}

type JinaOption func(*Jina)

func WithJinaModel(model string) JinaOption {
	return func(j *Jina) {
		if model != "" {
			j.model = model
		}
	}
}

func WithJinaEndpoint(endpoint string) JinaOption {
	return func(j *Jina) {
		j.endpoint = endpoint
	}
}

func WithJinaHTTPClient(client *http.Client) JinaOption {
	return func(j *Jina) {
		j.client = client
	}
}

// WithJinaRateLimit sets the minimum interval between requests
func WithJinaRateLimit(every time.Duration) JinaOption {
	return func(j *Jina) {
		j.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
}

// WithJinaBackoffs sets the delays between retries. The number of delays is
// the number of retries.
func WithJinaBackoffs(backoffs ...time.Duration) JinaOption {
	return func(j *Jina) {
		j.backoffs = backoffs
	}
}

func NewJina(apiKey string, opts ...JinaOption) (*Jina, error) {
	if apiKey == "" {
		return nil, goerr.New("jina API key is required")
	}

	j := &Jina{
		apiKey:   apiKey,
		model:    JinaDefaultModel,
		endpoint: jinaEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(750*time.Millisecond), 1), // ~80 RPM
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

type jinaEmbedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Task       string   `json:"task"`
	Dimensions int      `json:"dimensions"`
	Truncate   bool     `json:"truncate"`
}

type jinaEmbedResponse struct {
	Data []jinaEmbedding `json:"data"`
}

type jinaEmbedding struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// Embed sends texts in chunks and places each vector by its response index
func (j *Jina) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	inputs := sanitizeAll(texts)
	for start := 0; start < len(inputs); start += jinaChunkSize {
		end := min(start+jinaChunkSize, len(inputs))
		chunk := inputs[start:end]

		resp, err := j.embed(ctx, chunk)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed chunk", goerr.V("chunk_start", start))
		}

		for _, item := range resp.Data {
			if item.Index < 0 || item.Index >= len(chunk) {
				return nil, goerr.New("jina returned out-of-range index",
					goerr.V("index", item.Index),
					goerr.V("chunk_size", len(chunk)),
					goerr.V("chunk_start", start))
			}
			results[start+item.Index] = item.Embedding
		}
	}

	return results, nil
}

func (j *Jina) embed(ctx context.Context, input []string) (*jinaEmbedResponse, error) {
	body, err := json.Marshal(jinaEmbedRequest{
		Model:      j.model,
		Input:      input,
		Task:       jinaTask,
		Dimensions: jinaDimensions,
		Truncate:   true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal jina request")
	}

	return j.doWithRetry(ctx, body)
}

// doWithRetry retries 429 and 5xx responses and malformed bodies. A 429 with
// Retry-After waits for the advertised delay, capped at maxRetryAfter.
func (j *Jina) doWithRetry(ctx context.Context, reqBody []byte) (*jinaEmbedResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= len(j.backoffs); attempt++ {
		if err := j.limiter.Wait(ctx); err != nil {
			return nil, goerr.Wrap(err, "rate limiter wait failed")
		}

		resp, err := j.do(ctx, reqBody)
		if err != nil {
			return nil, err
		}

		body, err := safe.ReadAll(ctx, resp.Body, maxResponseBytes)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read jina response")
		}

		var delay time.Duration
		if attempt < len(j.backoffs) {
			delay = j.backoffs[attempt]
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var embedResp jinaEmbedResponse
			if err := json.Unmarshal(body, &embedResp); err == nil {
				return &embedResp, nil
			}
			lastErr = goerr.New("failed to parse jina response", goerr.V("body", truncateBody(body)))

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = goerr.New("jina returned retryable status",
				goerr.V("status", resp.StatusCode),
				goerr.V("body", truncateBody(body)))
			if resp.StatusCode == http.StatusTooManyRequests {
				if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
					delay = d
				}
			}

		default:
			return nil, goerr.New("jina returned error status",
				goerr.V("status", resp.StatusCode),
				goerr.V("body", truncateBody(body)))
		}

		if attempt == len(j.backoffs) {
			break
		}

		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "jina request canceled during retry")
		case <-time.After(delay):
		}
	}

	return nil, goerr.Wrap(lastErr, "all jina retries exhausted")
}

func (j *Jina) do(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create jina request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.apiKey)

	resp, err := j.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, goerr.Wrap(ctx.Err(), "jina request canceled")
		}
		return nil, goerr.Wrap(err, "jina request failed")
	}
	return resp, nil
}

func retryAfter(value string) (time.Duration, bool) {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return min(time.Duration(seconds)*time.Second, maxRetryAfter), true
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
