// Package gemini adapts the Google Generative Language REST API to the
// provider interface, serving both the generation and embedding kinds.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/peakform/coachd/services/providers"
)

const (
	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGenerateModel  = "gemini-1.5-flash"
	defaultEmbeddingModel = "embedding-001"
)

// Config configures the Gemini adapter.
type Config struct {
	APIKey         string
	BaseURL        string
	GenerateModel  string
	EmbeddingModel string
	Timeout        time.Duration
}

// Adapter implements the Provider interface for the Gemini API.
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// NewAdapter creates a new Gemini adapter.
func NewAdapter(config Config) (*Adapter, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.GenerateModel == "" {
		config.GenerateModel = defaultGenerateModel
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = defaultEmbeddingModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Adapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Name returns the provider name.
func (a *Adapter) Name() string { return "gemini" }

// Invoke dispatches on the request type. Generation requests return the
// generated text as a string; embedding requests return the vector as
// []float64.
func (a *Adapter) Invoke(ctx context.Context, req providers.Request) (interface{}, error) {
	switch r := req.(type) {
	case providers.GenerationRequest:
		return a.generate(ctx, r)
	case providers.EmbeddingRequest:
		return a.embed(ctx, r.Text)
	default:
		return nil, providers.NewProviderError(a.Name(), "UNSUPPORTED_REQUEST",
			fmt.Sprintf("gemini cannot serve %T", req), 0, false, nil)
	}
}

// IsAvailable checks if the provider is currently reachable.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/models?key=%s", a.config.BaseURL, a.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (a *Adapter) generate(ctx context.Context, req providers.GenerationRequest) (string, error) {
	body := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		a.config.BaseURL, a.config.GenerateModel, a.config.APIKey)

	var out generateContentResponse
	if err := a.post(ctx, url, body, &out); err != nil {
		return "", err
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", providers.NewProviderError(a.Name(), "EMPTY_RESPONSE",
			"no candidates returned", http.StatusOK, false, nil)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

type embedContentRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

func (a *Adapter) embed(ctx context.Context, text string) ([]float64, error) {
	body := embedContentRequest{
		Model:   "models/" + a.config.EmbeddingModel,
		Content: content{Parts: []part{{Text: text}}},
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s",
		a.config.BaseURL, a.config.EmbeddingModel, a.config.APIKey)

	var out embedContentResponse
	if err := a.post(ctx, url, body, &out); err != nil {
		return nil, err
	}

	if len(out.Embedding.Values) == 0 {
		return nil, providers.NewProviderError(a.Name(), "EMPTY_EMBEDDING",
			"no embedding returned", http.StatusOK, false, nil)
	}
	return out.Embedding.Values, nil
}

// post performs one JSON request/response round trip, classifying transport
// and status errors as retryable or not.
func (a *Adapter) post(ctx context.Context, url string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return providers.NewProviderError(a.Name(), "MARSHAL_ERROR",
			"failed to marshal request", 0, false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return providers.NewProviderError(a.Name(), "REQUEST_ERROR",
			"failed to build request", 0, false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		// Network errors and timeouts are transient.
		return providers.NewProviderError(a.Name(), "NETWORK_ERROR",
			"request failed", 0, true, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.NewProviderError(a.Name(), "READ_ERROR",
			"failed to read response", resp.StatusCode, true, err)
	}

	if resp.StatusCode != http.StatusOK {
		return providers.NewProviderError(a.Name(), "API_ERROR",
			fmt.Sprintf("gemini returned status %d", resp.StatusCode),
			resp.StatusCode, retryableStatus(resp.StatusCode), nil)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return providers.NewProviderError(a.Name(), "UNMARSHAL_ERROR",
			"failed to unmarshal response", resp.StatusCode, false, err)
	}
	return nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status >= 500
}
