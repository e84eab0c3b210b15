// internal/embeddings/openai.go
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"jobtrail/internal/common/config"
	commonhttp "jobtrail/internal/common/http"
	"jobtrail/internal/common/metrics"
)

// ErrEmbeddingFailed marks any failure of the embedding provider: transport
// errors, non-2xx responses, or an unusable payload. Callers surface it as a
// 500 without retrying.
var ErrEmbeddingFailed = errors.New("EMBEDDING_PROVIDER_FAILED")

// Provider turns free text into a fixed-length vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client is a thin wrapper over the OpenAI embeddings API.
type Client struct {
	httpClient *commonhttp.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(cfg config.EmbeddingConfig) *Client {
	return &Client{
		httpClient: commonhttp.NewClient(cfg.Timeout()),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed requests a vector for text. An empty query is still embedded; the
// provider returns a valid vector for it.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := c.embed(ctx, text)
	metrics.ExternalCallsTotal.WithLabelValues("embedding_provider", metrics.Outcome(err)).Inc()
	return vector, err
}

func (c *Client) embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embeddingRequest{Input: text, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrEmbeddingFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrEmbeddingFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, body)
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrEmbeddingFailed, err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding payload", ErrEmbeddingFailed)
	}

	return out.Data[0].Embedding, nil
}
