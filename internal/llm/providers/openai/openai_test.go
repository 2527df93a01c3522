package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-ai/symposium/internal/models"
)

func TestNewProvider_Defaults(t *testing.T) {
	p := NewProvider("sk-test", "", "")
	assert.Equal(t, OpenAIChatURL, p.baseURL)
	assert.Equal(t, DefaultModel, p.model)
	assert.Equal(t, models.ProviderOpenAI, p.Name())
	assert.NotNil(t, p.httpClient)

	custom := NewProvider("sk-test", "https://proxy.example.com/chat", "gpt-4o")
	assert.Equal(t, "https://proxy.example.com/chat", custom.baseURL)
	assert.Equal(t, "gpt-4o", custom.model)
}

func sseChunk(content string) string {
	return `data: {"id":"c1","choices":[{"delta":{"content":` + jsonString(content) + `}}]}` + "\n\n"
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func collect(t *testing.T, ch <-chan models.Fragment) (string, error) {
	t.Helper()
	var sb strings.Builder
	for frag := range ch {
		if frag.Err != nil {
			return sb.String(), frag.Err
		}
		sb.WriteString(frag.Text)
	}
	return sb.String(), nil
}

func TestGenerateStream_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var req Request
		require.NoError(t, json.Unmarshal(body, &req))
		assert.True(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(sseChunk("Hello")))
		w.Write([]byte(sseChunk(", world")))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	p := NewProvider("sk-test", server.URL, "gpt-4o-mini")
	ch, err := p.GenerateStream(context.Background(), &models.LLMRequest{
		ID:           "req-1",
		Prompt:       "Say hello",
		SystemPrompt: "Be brief",
	})
	require.NoError(t, err)

	text, streamErr := collect(t, ch)
	require.NoError(t, streamErr)
	assert.Equal(t, "Hello, world", text)
}

func TestGenerateStream_SkipsNonDataLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(": keep-alive comment\n\n"))
		w.Write([]byte(sseChunk("ok")))
		w.Write([]byte("data: not-json\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	p := NewProvider("sk-test", server.URL, "")
	ch, err := p.GenerateStream(context.Background(), &models.LLMRequest{Prompt: "q"})
	require.NoError(t, err)

	text, streamErr := collect(t, ch)
	require.NoError(t, streamErr)
	assert.Equal(t, "ok", text)
}

func TestGenerateStream_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	p := NewProvider("sk-bad", server.URL, "")
	_, err := p.GenerateStream(context.Background(), &models.LLMRequest{Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI API error: 401")
}

func TestGenerateStream_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(sseChunk("recovered")))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	p := NewProvider("sk-test", server.URL, "")
	p.retryConfig.InitialDelay = time.Millisecond

	ch, err := p.GenerateStream(context.Background(), &models.LLMRequest{Prompt: "q"})
	require.NoError(t, err)

	text, streamErr := collect(t, ch)
	require.NoError(t, streamErr)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateStream_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sseChunk("first")))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewProvider("sk-test", server.URL, "")
	ch, err := p.GenerateStream(ctx, &models.LLMRequest{Prompt: "q"})
	require.NoError(t, err)

	frag := <-ch
	assert.Equal(t, "first", frag.Text)

	cancel()
	for range ch { // drains until the reader notices the dead context
	}
}

func TestConvertRequest(t *testing.T) {
	p := NewProvider("sk-test", "", "gpt-4o-mini")

	req := p.convertRequest(&models.LLMRequest{
		Prompt:      "question",
		Temperature: 0.5,
		MaxTokens:   256,
	})
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, 0.5, req.Temperature)
	assert.Equal(t, 256, req.MaxTokens)

	// Per-request model override wins.
	overridden := p.convertRequest(&models.LLMRequest{Prompt: "q", Model: "gpt-4o"})
	assert.Equal(t, "gpt-4o", overridden.Model)
}
