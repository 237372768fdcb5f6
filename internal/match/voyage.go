package match

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/arun3676/agentception/pkg/httpclient"
)

const (
	defaultEmbedBaseURL = "https://api.voyageai.com"
	defaultEmbedModel   = "voyage-3-large"
)

// ErrNoEmbedKey indicates the embeddings client has no API key. Callers fall
// back to keyword scoring instead of failing the run.
var ErrNoEmbedKey = errors.New("match: embeddings API key missing")

// VoyageConfig configures the embeddings client.
type VoyageConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// VoyageClient calls the Voyage embeddings API. Vectors are L2-normalized on
// return so cosine similarity reduces to a dot product.
type VoyageClient struct {
	cfg   VoyageConfig
	httpc *httpclient.Client
}

var _ Embedder = (*VoyageClient)(nil)

// NewVoyageClient creates an embeddings client.
func NewVoyageClient(cfg VoyageConfig) (*VoyageClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultEmbedBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultEmbedModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 40 * time.Second
	}

	httpc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, MaxRedirects: 5})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}
	return &VoyageClient{cfg: cfg, httpc: httpc}, nil
}

type embedRequest struct {
	Model     string   `json:"model"`
	Input     []string `json:"input"`
	InputType string   `json:"input_type"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one normalized vector per input text, in input order.
func (v *VoyageClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if v.cfg.APIKey == "" {
		return nil, ErrNoEmbedKey
	}

	payload, err := json.Marshal(embedRequest{
		Model:     v.cfg.Model,
		Input:     texts,
		InputType: "document",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.BaseURL+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpc.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned status %d", resp.StatusCode)
	}

	var parsed embedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(parsed.Data), len(texts))
	}

	out := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = normalize(d.Embedding)
	}
	return out, nil
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
