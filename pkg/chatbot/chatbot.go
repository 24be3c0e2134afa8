// Package chatbot answers free-text questions about the analytical
// schema using retrieved catalog context.
package chatbot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clinsight-inc/clinsight-engine/pkg/llm"
	"github.com/clinsight-inc/clinsight-engine/pkg/prompts"
	"github.com/clinsight-inc/clinsight-engine/pkg/schema"
)

// chatTopK bounds the schema context attached to chatbot prompts.
const chatTopK = 20

// Service is a stateful schema Q&A session. Each concurrent caller
// must hold its own Service instance.
type Service struct {
	catalog   *schema.Catalog
	assembler *prompts.Assembler
	client    llm.Client
	logger    *zap.Logger

	history []prompts.Message
}

// NewService wires a chatbot session.
func NewService(catalog *schema.Catalog, assembler *prompts.Assembler, client llm.Client, logger *zap.Logger) *Service {
	return &Service{
		catalog:   catalog,
		assembler: assembler,
		client:    client,
		logger:    logger.Named("chatbot"),
	}
}

// Ask answers a question about the schema, threading recent
// conversation history into the prompt.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	relevant := s.catalog.RelevantColumns(question, chatTopK, true)
	schemaContext := schema.FormatForLLM(relevant)

	prompt, err := s.assembler.SchemaChatbot(question, schemaContext, s.history)
	if err != nil {
		return "", fmt.Errorf("assemble chatbot prompt: %w", err)
	}

	response, err := s.client.Generate(ctx, prompt, "")
	if err != nil {
		return "", fmt.Errorf("chatbot call failed: %w", err)
	}

	answer := strings.TrimSpace(response)
	s.history = append(s.history,
		prompts.Message{Role: "user", Content: question},
		prompts.Message{Role: "assistant", Content: answer},
	)

	s.logger.Info("schema question answered",
		zap.String("question", question),
		zap.Int("history_len", len(s.history)))
	return answer, nil
}

// History returns the conversation so far.
func (s *Service) History() []prompts.Message {
	return s.history
}

// Reset clears the conversation history.
func (s *Service) Reset() {
	s.history = nil
}
