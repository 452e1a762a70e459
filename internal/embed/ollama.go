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

// OllamaEmbedder generates embeddings via an Ollama-compatible server.
// Model invocation can take seconds for large candidate batches; callers
// bound it with their request context.
type OllamaEmbedder struct {
	endpoint string       // e.g., "http://localhost:11434"
	model    string       // e.g., "nomic-embed-text"
	client   *http.Client // HTTP client for requests
}

// ollamaTagsResponse represents the response from GET /api/tags.
type ollamaTagsResponse struct {
	Models []ollamaModel `json:"models"`
}

// ollamaModel represents a model in the tags response.
type ollamaModel struct {
	Name string `json:"name"`
}

// ollamaEmbedRequest represents the request body for POST /api/embed.
// Input may be a single string or a list of strings.
type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

// ollamaEmbedResponse represents the response from POST /api/embed.
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaEmbedder creates a new OllamaEmbedder with the given endpoint and model.
func NewOllamaEmbedder(endpoint, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		endpoint: endpoint,
		model:    model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Available returns true if the server is accessible and the model exists.
// Uses a 3-second timeout for the availability check.
func (e *OllamaEmbedder) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}

	var tagsResp ollamaTagsResponse
	if err := json.Unmarshal(body, &tagsResp); err != nil {
		return false
	}

	// Accept both exact matches and matches without the tag suffix,
	// e.g. "nomic-embed-text" matches "nomic-embed-text:latest".
	for _, model := range tagsResp.Models {
		if model.Name == e.model || model.Name == e.model+":latest" {
			return true
		}
	}

	return false
}

// Embed generates a vector embedding for the given text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embed: no embeddings returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates one embedding per input text in a single call.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	embeddings, err := e.embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embed: got %d embeddings for %d inputs", len(embeddings), len(texts))
	}
	return embeddings, nil
}

// embed posts the input (string or []string) to /api/embed.
func (e *OllamaEmbedder) embed(ctx context.Context, input any) ([][]float32, error) {
	reqBody := ollamaEmbedRequest{
		Model: e.model,
		Input: input,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("embed: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("embed: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("embed: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("embed: server returned status %d (failed to read body: %v)", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("embed: server returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed: failed to read response: %w", err)
	}

	var embedResp ollamaEmbedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("embed: failed to parse response: %w", err)
	}

	return embedResp.Embeddings, nil
}
