package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papergraph-backend/internal/errors"
)

func TestExtractKnowledgeGraph_Mock(t *testing.T) {
	svc := NewService(NewMockProvider(), nil)

	raw, err := svc.ExtractKnowledgeGraph(context.Background(), []Section{{Title: "Intro", Content: "..."}})
	require.NoError(t, err)

	var env SampleEnvelope
	require.NoError(t, json.Unmarshal(raw, &env), "code fences are stripped")
	assert.Len(t, env.Nodes, 5)
	assert.Len(t, env.Edges, 3)
}

func TestExtractKnowledgeGraph_Unavailable(t *testing.T) {
	mock := NewMockProvider()
	mock.SetAvailable(false)
	svc := NewService(mock, nil)

	_, err := svc.ExtractKnowledgeGraph(context.Background(), nil)
	assert.Equal(t, errors.CodeServiceUnavailable, errors.CodeOf(err))
	assert.Zero(t, mock.Calls())

	_, err = NewService(nil, nil).ExtractKnowledgeGraph(context.Background(), nil)
	assert.Equal(t, errors.CodeServiceUnavailable, errors.CodeOf(err))
}

func TestExtractKnowledgeGraph_ProviderError(t *testing.T) {
	mock := NewMockProvider().WithError(fmt.Errorf("boom"))
	svc := NewService(mock, nil)

	_, err := svc.ExtractKnowledgeGraph(context.Background(), nil)
	assert.Equal(t, errors.CodeExtractionFailed, errors.CodeOf(err))
	assert.Equal(t, 1, mock.Calls(), "no retries")
}

func TestExtractKnowledgeGraph_PassesNonJSONThrough(t *testing.T) {
	svc := NewService(NewMockProvider().WithResponse("sorry, I cannot help"), nil)

	raw, err := svc.ExtractKnowledgeGraph(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "sorry, I cannot help", string(raw))
}

func TestBuildKnowledgeGraphPrompt(t *testing.T) {
	prompt := BuildKnowledgeGraphPrompt([]Section{
		{Title: "Abstract", Content: "We propose X."},
		{Title: "Method", Content: "X uses Y."},
	})
	assert.Contains(t, prompt, "Title: Abstract\nContent: We propose X.\n\nTitle: Method\nContent: X uses Y.")
	assert.Contains(t, prompt, "knowledge graph")
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go: {\"a\":{\"b\":2}} done", `{"a":{"b":2}}`},
		{"  nothing  ", "nothing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSONObject(tt.in))
	}
}

func TestBreakerProvider_OpensAfterFailures(t *testing.T) {
	mock := NewMockProvider().WithError(fmt.Errorf("upstream down"))
	cfg := DefaultBreakerConfig("test")
	cfg.MinRequests = 2
	cfg.FailureThreshold = 0.5
	cfg.Timeout = time.Minute
	bp := NewBreakerProvider(mock, cfg, nil)
	svc := NewService(bp, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.ExtractKnowledgeGraph(context.Background(), nil)
		assert.Equal(t, errors.CodeExtractionFailed, errors.CodeOf(err))
	}
	assert.Equal(t, gobreaker.StateOpen, bp.State())
	assert.False(t, bp.IsAvailable())

	_, err := bp.Complete(context.Background(), "knowledge graph", CompletionOptions{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, mock.Calls())
}

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req chatRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "test-model", req.Model)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"nodes\":[],\"edges\":[]}"}}]}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("secret", server.URL+"/", "test-model", time.Second)
	require.True(t, p.IsAvailable())

	out, err := p.Complete(context.Background(), "hi", CompletionOptions{Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[],"edges":[]}`, out)
}

func TestOpenAIProvider_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewOpenAIProvider("secret", server.URL, "", time.Second)
	_, err := p.Complete(context.Background(), "hi", CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	assert.False(t, NewOpenAIProvider("", "", "", 0).IsAvailable())
}
