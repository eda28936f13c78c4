package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driving"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// Ensure AgentService implements the interface.
var _ driving.AskService = (*AgentService)(nil)

// answerPrompt frames retrieved context for the generation model. The
// model is told to answer only from the provided excerpts.
const answerPrompt = `Answer the question using only the context below.
If the context does not contain the answer, say so plainly.

Context:
%s

Question: %s

Answer:`

// noAnswerText is returned when retrieval finds nothing relevant.
const noAnswerText = "No relevant information was found in the ingested documents."

// AgentService orchestrates retrieval and answer synthesis.
// The generation service is optional: when nil or failing, answers are
// assembled from the retrieved chunk text directly.
type AgentService struct {
	retrieval driving.RetrievalService
	generator driven.GenerationService
	topK      int
}

// NewAgentService creates a new agent service. generator may be nil.
func NewAgentService(retrieval driving.RetrievalService, generator driven.GenerationService) *AgentService {
	return &AgentService{
		retrieval: retrieval,
		generator: generator,
		topK:      DefaultTopK,
	}
}

// SetTopK overrides the number of chunks retrieved per question.
func (s *AgentService) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// Ask retrieves relevant chunks and synthesises an attributed answer.
func (s *AgentService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	resp, err := s.retrieval.Query(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	answer := &domain.Answer{
		Question:   question,
		Confidence: resp.Confidence,
	}

	if resp.Empty() {
		logger.Debug("No context retrieved for %q", question)
		answer.Text = noAnswerText
		return answer, nil
	}

	for _, r := range resp.Results {
		answer.Sources = append(answer.Sources, r.Attribution())
	}

	if s.generator != nil {
		text, genErr := s.generator.Generate(ctx, s.buildPrompt(question, resp.Results))
		if genErr == nil && strings.TrimSpace(text) != "" {
			answer.Text = strings.TrimSpace(text)
			return answer, nil
		}
		if genErr != nil {
			logger.Warn("Generation failed, falling back to templated answer: %v", genErr)
		}
	}

	answer.Text = templatedAnswer(resp.Results)
	answer.Templated = true
	return answer, nil
}

// buildPrompt assembles the generation prompt from retrieved chunks.
func (s *AgentService) buildPrompt(question string, results []domain.RetrievedChunk) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] (%s)\n%s\n\n", i+1, r.Metadata.SourcePath, r.Text)
	}
	return fmt.Sprintf(answerPrompt, strings.TrimRight(b.String(), "\n"), question)
}

// templatedAnswer builds a plain answer directly from retrieved text,
// best match first. Used when no generation service is available.
func templatedAnswer(results []domain.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("Based on the ingested documents:\n")
	for _, r := range results {
		text := r.Text
		if len(text) > domain.PreviewLength {
			text = text[:domain.PreviewLength] + "..."
		}
		fmt.Fprintf(&b, "\n- %s (from %s, similarity %.2f)",
			text, r.Metadata.SourcePath, r.Similarity)
	}
	return b.String()
}
