package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/symposium-ai/symposium/internal/llm/providers"
	"github.com/symposium-ai/symposium/internal/models"
)

const (
	// GeminiAPIBase is the generative language API base URL
	GeminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the default Gemini model
	DefaultModel = "gemini-2.0-flash"
)

// Provider implements the llm.Provider capability for Google Gemini.
type Provider struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	retryConfig providers.RetryConfig
}

// Request represents a Gemini generateContent request
type Request struct {
	Contents          []Content          `json:"contents"`
	SystemInstruction *Content           `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig  `json:"generationConfig,omitempty"`
}

// Content is a role-tagged list of parts
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part holds one piece of content
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig tunes the generation
type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// StreamResponse represents one streamed chunk
type StreamResponse struct {
	Candidates []struct {
		Content      Content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewProvider creates a new Gemini provider
func NewProvider(apiKey, baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = GeminiAPIBase
	}
	if model == "" {
		model = DefaultModel
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
		retryConfig: providers.DefaultRetryConfig(),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() models.ProviderID {
	return models.ProviderGemini
}

// GenerateStream issues a streaming generateContent call. The alt=sse
// form wraps each chunk in a data: line like the other providers.
func (p *Provider) GenerateStream(ctx context.Context, req *models.LLMRequest) (<-chan models.Fragment, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, model)

	body, err := json.Marshal(p.convertRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := providers.DoWithRetry(ctx, p.retryConfig, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", p.apiKey)
		return p.httpClient.Do(httpReq)
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini streaming call failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("Gemini API error: %d - %s", resp.StatusCode, string(errBody))
	}

	ch := make(chan models.Fragment)
	go func() {
		defer resp.Body.Close()
		defer close(ch)

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				if err == io.EOF {
					return
				}
				select {
				case ch <- models.Fragment{Err: fmt.Errorf("Gemini stream read failed: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			line = bytes.TrimSpace(line)
			if !bytes.HasPrefix(line, []byte("data: ")) {
				continue
			}
			line = bytes.TrimPrefix(line, []byte("data: "))

			var streamResp StreamResponse
			if err := json.Unmarshal(line, &streamResp); err != nil {
				continue
			}

			if streamResp.Error != nil {
				select {
				case ch <- models.Fragment{Err: fmt.Errorf("Gemini stream error: %s", streamResp.Error.Message)}:
				case <-ctx.Done():
				}
				return
			}

			for _, cand := range streamResp.Candidates {
				for _, part := range cand.Content.Parts {
					if part.Text == "" {
						continue
					}
					select {
					case ch <- models.Fragment{Text: part.Text}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch, nil
}

// HealthCheck verifies provider connectivity
func (p *Provider) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	return nil
}

func (p *Provider) convertRequest(req *models.LLMRequest) Request {
	apiReq := Request{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: req.Prompt}}},
		},
	}
	if req.SystemPrompt != "" {
		apiReq.SystemInstruction = &Content{Parts: []Part{{Text: req.SystemPrompt}}}
	}
	if req.Temperature > 0 || req.MaxTokens > 0 {
		apiReq.GenerationConfig = &GenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}
	return apiReq
}
