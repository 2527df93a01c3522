package anthropic

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
	// AnthropicAPIURL is the messages endpoint
	AnthropicAPIURL = "https://api.anthropic.com/v1/messages"
	// DefaultModel is the default Anthropic model
	DefaultModel = "claude-sonnet-4-20250514"
	// APIVersion is the Anthropic API version header value
	APIVersion = "2023-06-01"
)

// Provider implements the llm.Provider capability for Anthropic.
type Provider struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	retryConfig providers.RetryConfig
}

// Request represents an Anthropic messages request
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamEvent represents one streamed event
type StreamEvent struct {
	Type  string `json:"type"`
	Delta *struct {
		Type       string `json:"type,omitempty"`
		Text       string `json:"text,omitempty"`
		StopReason string `json:"stop_reason,omitempty"`
	} `json:"delta,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewProvider creates a new Anthropic provider
func NewProvider(apiKey, baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = AnthropicAPIURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 300 * time.Second, // Anthropic can have long responses
		},
		retryConfig: providers.DefaultRetryConfig(),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() models.ProviderID {
	return models.ProviderAnthropic
}

// GenerateStream issues a streaming messages call and yields fragments
// as they arrive.
func (p *Provider) GenerateStream(ctx context.Context, req *models.LLMRequest) (<-chan models.Fragment, error) {
	apiReq := p.convertRequest(req)
	apiReq.Stream = true

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := providers.DoWithRetry(ctx, p.retryConfig, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", p.apiKey)
		httpReq.Header.Set("anthropic-version", APIVersion)
		return p.httpClient.Do(httpReq)
	})
	if err != nil {
		return nil, fmt.Errorf("Anthropic streaming call failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("Anthropic API error: %d - %s", resp.StatusCode, string(errBody))
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
				case ch <- models.Fragment{Err: fmt.Errorf("Anthropic stream read failed: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			line = bytes.TrimSpace(line)
			if !bytes.HasPrefix(line, []byte("data: ")) {
				continue
			}
			line = bytes.TrimPrefix(line, []byte("data: "))

			var event StreamEvent
			if err := json.Unmarshal(line, &event); err != nil {
				continue
			}

			switch event.Type {
			case "content_block_delta":
				if event.Delta != nil && event.Delta.Text != "" {
					select {
					case ch <- models.Fragment{Text: event.Delta.Text}:
					case <-ctx.Done():
						return
					}
				}
			case "error":
				msg := "unknown stream error"
				if event.Error != nil {
					msg = event.Error.Message
				}
				select {
				case ch <- models.Fragment{Err: fmt.Errorf("Anthropic stream error: %s", msg)}:
				case <-ctx.Done():
				}
				return
			case "message_stop":
				return
			}
		}
	}()

	return ch, nil
}

// HealthCheck verifies provider connectivity with a minimal request
func (p *Provider) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ch, err := p.GenerateStream(ctx, &models.LLMRequest{
		ID:        "health-check",
		Prompt:    "Hi",
		MaxTokens: 5,
	})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	for frag := range ch {
		if frag.Err != nil {
			return fmt.Errorf("health check failed: %w", frag.Err)
		}
	}
	return nil
}

func (p *Provider) convertRequest(req *models.LLMRequest) Request {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return Request{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: req.Prompt}},
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: req.Temperature,
	}
}
