package openai

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
	// OpenAIChatURL is the chat completions endpoint
	OpenAIChatURL = "https://api.openai.com/v1/chat/completions"
	// OpenAIModelsURL is the models listing endpoint, used for health checks
	OpenAIModelsURL = "https://api.openai.com/v1/models"
	// DefaultModel is the default OpenAI model
	DefaultModel = "gpt-4o-mini"
)

// Provider implements the llm.Provider capability for OpenAI.
type Provider struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	retryConfig providers.RetryConfig
}

// Request represents an OpenAI chat completions request
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamResponse represents one streamed chunk
type StreamResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewProvider creates a new OpenAI provider
func NewProvider(apiKey, baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = OpenAIChatURL
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
	return models.ProviderOpenAI
}

// GenerateStream issues a streaming chat completion and yields fragments
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
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
		return p.httpClient.Do(httpReq)
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI streaming call failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("OpenAI API error: %d - %s", resp.StatusCode, string(errBody))
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
				case ch <- models.Fragment{Err: fmt.Errorf("OpenAI stream read failed: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			line = bytes.TrimSpace(line)
			if !bytes.HasPrefix(line, []byte("data: ")) {
				continue
			}
			line = bytes.TrimPrefix(line, []byte("data: "))

			if string(line) == "[DONE]" {
				return
			}

			var streamResp StreamResponse
			if err := json.Unmarshal(line, &streamResp); err != nil {
				continue
			}

			if len(streamResp.Choices) > 0 && streamResp.Choices[0].Delta.Content != "" {
				select {
				case ch <- models.Fragment{Text: streamResp.Choices[0].Delta.Content}:
				case <-ctx.Done():
					return
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

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, OpenAIModelsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

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
	messages := make([]Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: req.Prompt})

	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	return Request{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}
