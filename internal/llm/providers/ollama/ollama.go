package ollama

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
	// DefaultBaseURL is the local Ollama daemon address
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is the default local model
	DefaultModel = "llama3.2"
)

// Provider implements the llm.Provider capability for a local Ollama
// daemon. Ollama streams newline-delimited JSON rather than SSE.
type Provider struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	retryConfig providers.RetryConfig
}

// Request represents an Ollama chat request
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes the generation
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// StreamResponse represents one streamed NDJSON line
type StreamResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// NewProvider creates a new Ollama provider
func NewProvider(baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Provider{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 300 * time.Second, // local models can be slow
		},
		retryConfig: providers.RetryConfig{
			MaxRetries:   1,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
	}
}

// Name returns the provider identifier
func (p *Provider) Name() models.ProviderID {
	return models.ProviderOllama
}

// GenerateStream issues a streaming chat call and yields fragments as
// they arrive.
func (p *Provider) GenerateStream(ctx context.Context, req *models.LLMRequest) (<-chan models.Fragment, error) {
	messages := make([]Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: req.Prompt})

	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	apiReq := Request{
		Model:    model,
		Messages: messages,
		Stream:   true,
	}
	if req.Temperature > 0 || req.MaxTokens > 0 {
		apiReq.Options = &Options{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := p.baseURL + "/api/chat"
	resp, err := providers.DoWithRetry(ctx, p.retryConfig, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return p.httpClient.Do(httpReq)
	})
	if err != nil {
		return nil, fmt.Errorf("Ollama streaming call failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("Ollama API error: %d - %s", resp.StatusCode, string(errBody))
	}

	ch := make(chan models.Fragment)
	go func() {
		defer resp.Body.Close()
		defer close(ch)

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			var streamResp StreamResponse
			if err := json.Unmarshal(scanner.Bytes(), &streamResp); err != nil {
				continue
			}

			if streamResp.Error != "" {
				select {
				case ch <- models.Fragment{Err: fmt.Errorf("Ollama stream error: %s", streamResp.Error)}:
				case <-ctx.Done():
				}
				return
			}

			if streamResp.Message.Content != "" {
				select {
				case ch <- models.Fragment{Text: streamResp.Message.Content}:
				case <-ctx.Done():
					return
				}
			}

			if streamResp.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case ch <- models.Fragment{Err: fmt.Errorf("Ollama stream read failed: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

// HealthCheck verifies the daemon is reachable
func (p *Provider) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

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
