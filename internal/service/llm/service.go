// Package llm provides the knowledge-graph extraction producer.
//
// A Provider turns a prompt into raw model text. Service builds the
// extraction prompt from paper sections and returns the model's JSON
// envelope bytes untouched apart from trimming surrounding prose or code
// fences; decoding and validation belong to the ingestion adapter.
package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"papergraph-backend/internal/errors"
)

// Provider defines the interface for completion backends (OpenAI-compatible
// endpoints, the mock, ...).
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
}

// CompletionOptions configures completion requests
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}

// Section is one titled chunk of paper text.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Service extracts knowledge graphs with the configured provider.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService creates a new extraction service with the specified provider
func NewService(provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// IsAvailable returns true if the provider can take requests
func (s *Service) IsAvailable() bool {
	return s.provider != nil && s.provider.IsAvailable()
}

// ExtractKnowledgeGraph asks the provider for a {nodes, edges} envelope
// describing the given sections. There are no retries: a failed call is
// reported and the caller keeps its current graph.
func (s *Service) ExtractKnowledgeGraph(ctx context.Context, sections []Section) ([]byte, error) {
	if !s.IsAvailable() {
		return nil, errors.Unavailable(errors.CodeServiceUnavailable.String(), "extraction provider is not available").
			WithOperation("ExtractKnowledgeGraph").
			Build()
	}

	prompt := BuildKnowledgeGraphPrompt(sections)

	response, err := s.provider.Complete(ctx, prompt, CompletionOptions{
		Temperature: 0.3,
		MaxTokens:   2000,
		Format:      "json",
	})
	if err != nil {
		s.logger.Warn("Knowledge graph extraction failed",
			zap.Int("sections", len(sections)),
			zap.Error(err),
		)
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Unavailable(errors.CodeServiceUnavailable.String(), "extraction provider circuit is open").
				WithOperation("ExtractKnowledgeGraph").
				WithCause(err).
				Build()
		}
		return nil, errors.External(errors.CodeExtractionFailed.String(), "failed to get extraction response").
			WithDetails(err.Error()).
			WithOperation("ExtractKnowledgeGraph").
			WithCause(err).
			Build()
	}

	s.logger.Debug("Knowledge graph extracted",
		zap.Int("sections", len(sections)),
		zap.Int("response_bytes", len(response)),
	)
	return []byte(extractJSONObject(response)), nil
}

// BuildKnowledgeGraphPrompt renders sections as "title\ncontent" blocks
// under the extraction instructions.
func BuildKnowledgeGraphPrompt(sections []Section) string {
	blocks := make([]string, 0, len(sections))
	for _, sec := range sections {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s", sec.Title, sec.Content))
	}

	return fmt.Sprintf(`Analyze the following paper sections and build a knowledge graph. Return JSON:
{
  "nodes": [
    {"id": "Concept 1", "type": "concept|method|theory|finding|conclusion", "importance": 5},
    {"id": "Concept 2", "type": "concept", "importance": 3}
  ],
  "edges": [
    {"source": "Concept 1", "target": "Concept 2", "relationship": "isPartOf|influences|supports|contradicts|references|implements", "strength": 0.8}
  ]
}

Include the 10-15 most important concept nodes and connect them with relationship edges.
Importance is an integer from 1 to 5. Strength is a number from 0 to 1.

Paper sections:
%s
`, strings.Join(blocks, "\n\n"))
}

// extractJSONObject strips markdown fences or surrounding prose. Text
// without a brace pair is returned as is so the adapter reports it.
func extractJSONObject(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end < start {
		return strings.TrimSpace(response)
	}
	return response[start : end+1]
}
