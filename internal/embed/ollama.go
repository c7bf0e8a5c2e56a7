package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaEmbedder requests embeddings from a local Ollama runtime.
type OllamaEmbedder struct {
	httpClient *http.Client
	host       string
	model      string
	timeout    time.Duration
}

func NewOllamaEmbedder(host, model string, timeout time.Duration) *OllamaEmbedder {
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaEmbedder{
		httpClient: &http.Client{Timeout: timeout},
		host:       host,
		model:      model,
		timeout:    timeout,
	}
}

func (c *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	type reqBody struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}
	type respBody struct {
		Embedding []float64 `json:"embedding"`
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b, _ := json.Marshal(reqBody{Model: c.model, Prompt: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/embeddings", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("ollama embeddings status %s: %s", resp.Status, string(body))
	}
	var rb respBody
	if err := json.NewDecoder(resp.Body).Decode(&rb); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	vec := make([]float32, len(rb.Embedding))
	for i := range rb.Embedding {
		vec[i] = float32(rb.Embedding[i])
	}
	return vec, nil
}
