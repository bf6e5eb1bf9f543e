package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
)

// MockProvider returns a fixed knowledge graph for development and tests.
type MockProvider struct {
	available bool
	response  string
	err       error
	calls     atomic.Int64
}

// NewMockProvider creates a mock provider answering with SampleGraph.
func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

// WithResponse makes the mock return raw text verbatim.
func (m *MockProvider) WithResponse(response string) *MockProvider {
	m.response = response
	return m
}

// WithError makes every completion fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.err = err
	return m
}

// SetAvailable toggles availability.
func (m *MockProvider) SetAvailable(available bool) {
	m.available = available
}

// Calls returns how many completions were requested.
func (m *MockProvider) Calls() int { return int(m.calls.Load()) }

// IsAvailable returns whether the mock provider is available
func (m *MockProvider) IsAvailable() bool {
	return m.available
}

// Complete answers knowledge-graph prompts with the sample graph.
func (m *MockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}
	if m.err != nil {
		return "", m.err
	}
	if m.response != "" {
		return m.response, nil
	}
	if !strings.Contains(prompt, "knowledge graph") {
		return "", fmt.Errorf("unsupported prompt type")
	}

	data, err := json.Marshal(SampleGraph())
	if err != nil {
		return "", err
	}
	return "```json\n" + string(data) + "\n```", nil
}

// SampleNode and SampleEdge mirror the producer's wire shape.
type SampleNode struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Importance int    `json:"importance"`
}

type SampleEdge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Relationship string  `json:"relationship"`
	Strength     float64 `json:"strength"`
}

// SampleEnvelope is the {nodes, edges} payload the mock produces.
type SampleEnvelope struct {
	Nodes []SampleNode `json:"nodes"`
	Edges []SampleEdge `json:"edges"`
}

// SampleGraph is a small deep-learning graph: five nodes, three edges,
// two components.
func SampleGraph() SampleEnvelope {
	return SampleEnvelope{
		Nodes: []SampleNode{
			{ID: "深度学习", Type: "concept", Importance: 5},
			{ID: "自然语言处理", Type: "concept", Importance: 4},
			{ID: "Transformer", Type: "method", Importance: 5},
			{ID: "BERT", Type: "method", Importance: 4},
			{ID: "注意力机制", Type: "method", Importance: 3},
		},
		Edges: []SampleEdge{
			{Source: "深度学习", Target: "自然语言处理", Relationship: "influences", Strength: 0.9},
			{Source: "Transformer", Target: "BERT", Relationship: "isPartOf", Strength: 0.8},
			{Source: "注意力机制", Target: "Transformer", Relationship: "isPartOf", Strength: 0.7},
		},
	}
}
