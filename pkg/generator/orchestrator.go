// Package generator orchestrates retrieval-augmented natural-language
// to SQL generation and iterative refinement.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clinsight-inc/clinsight-engine/pkg/fewshot"
	"github.com/clinsight-inc/clinsight-engine/pkg/llm"
	"github.com/clinsight-inc/clinsight-engine/pkg/prompts"
	"github.com/clinsight-inc/clinsight-engine/pkg/reference"
	"github.com/clinsight-inc/clinsight-engine/pkg/schema"
)

// Retrieval sizes for first generation and refinement.
const (
	generateTopK = 30
	refineTopK   = 15
)

// FailureKind classifies a generation failure.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureParseError     FailureKind = "parse_error"
	FailureSchemaMismatch FailureKind = "schema_mismatch"
	FailureGeneration     FailureKind = "generation_error"
)

// Analysis is the model's structured reading of the request.
type Analysis struct {
	RequiredTables []string `json:"required_tables"`
	KeyConditions  []string `json:"key_conditions"`
	Intent         string   `json:"intent"`
	Explanation    string   `json:"explanation"`
}

// Result is the outcome of one generation or refinement call.
// Failures are carried in the result; they never propagate as errors.
type Result struct {
	Success          bool
	SQLQuery         string
	Analysis         Analysis
	ReferencedTables []string
	RelevantExamples []string
	ErrorMessage     string
	FailureKind      FailureKind
	RAGHit           bool
}

// modelResponse is the wire shape expected from the language model.
// SQL is a pointer so a missing key is distinguishable from an empty
// query.
type modelResponse struct {
	SQL      *string  `json:"sql"`
	Analysis Analysis `json:"analysis"`
}

// Orchestrator composes retrieval, code resolution, example selection
// and prompt assembly around the language model call.
type Orchestrator struct {
	catalog   *schema.Catalog
	reference *reference.Store
	assembler *prompts.Assembler
	client    llm.Client
	logger    *zap.Logger
	history   *History
}

// NewOrchestrator wires the generation dependencies explicitly.
func NewOrchestrator(
	catalog *schema.Catalog,
	refStore *reference.Store,
	assembler *prompts.Assembler,
	client llm.Client,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		catalog:   catalog,
		reference: refStore,
		assembler: assembler,
		client:    client,
		logger:    logger.Named("generator"),
		history:   NewHistory(),
	}
}

// History returns the orchestrator's generation history.
func (o *Orchestrator) History() *History {
	return o.history
}

// GenerateSQL turns a free-text request into an executable SQL query.
func (o *Orchestrator) GenerateSQL(ctx context.Context, userQuery string) *Result {
	keywords := ExtractKeywords(userQuery)

	hints := o.reference.FindDiseaseCodes(userQuery)
	diseaseHints := reference.FormatHints(hints)

	relevant := o.catalog.RelevantColumns(userQuery, generateTopK, true)
	schemaContext := schema.FormatForLLM(relevant)

	examples := fewshot.Select(userQuery, keywords)

	prompt, err := o.assembler.NL2SQL(userQuery, schemaContext, examples)
	if err != nil {
		return o.failure(userQuery, FailureGeneration, len(hints) > 0,
			fmt.Sprintf("prompt assembly failed: %v", err))
	}
	if diseaseHints != "" {
		prompt += "\n\n## 🎯 질병 코드 힌트 (RAG 자동 검색 결과)\n\n" + diseaseHints
	}

	response, err := o.client.Generate(ctx, prompt, "")
	if err != nil {
		return o.failure(userQuery, FailureGeneration, len(hints) > 0,
			fmt.Sprintf("SQL generation failed: %v", err))
	}

	result := o.parseResponse(userQuery, response, len(hints) > 0)
	if result.Success {
		result.RelevantExamples = exampleQuestions(examples)
		o.history.Record(userQuery, result.SQLQuery, EntryGenerate)
	}

	o.logger.Info("sql generation",
		zap.String("query", userQuery),
		zap.Bool("success", result.Success),
		zap.Bool("rag_hit", result.RAGHit),
		zap.Int("disease_hints", len(hints)))
	return result
}

// RefineSQL rewrites an existing query according to a free-text
// refinement request. The model is instructed to emit a complete
// replacement query, never a diff.
func (o *Orchestrator) RefineSQL(ctx context.Context, originalQuery, currentSQL, refinementRequest string) *Result {
	hints := o.reference.FindDiseaseCodes(refinementRequest)
	diseaseHints := reference.FormatHints(hints)

	combined := originalQuery + " " + refinementRequest
	relevant := o.catalog.RelevantColumns(combined, refineTopK, true)
	schemaContext := schema.FormatForLLM(relevant)

	examples := fewshot.Library()[:2]

	prompt, err := o.assembler.Refinement(originalQuery, currentSQL, refinementRequest, schemaContext, diseaseHints, examples)
	if err != nil {
		return o.failure(refinementRequest, FailureGeneration, len(hints) > 0,
			fmt.Sprintf("prompt assembly failed: %v", err))
	}

	response, err := o.client.Generate(ctx, prompt, "")
	if err != nil {
		return o.failure(refinementRequest, FailureGeneration, len(hints) > 0,
			fmt.Sprintf("SQL refinement failed: %v", err))
	}

	result := o.parseResponse(refinementRequest, response, len(hints) > 0)
	if result.Success {
		o.history.Record(originalQuery, result.SQLQuery, EntryRefine)
	}

	o.logger.Info("sql refinement",
		zap.String("refinement", refinementRequest),
		zap.Bool("success", result.Success),
		zap.Bool("rag_hit", result.RAGHit))
	return result
}

// parseResponse extracts and validates the model's structured output.
func (o *Orchestrator) parseResponse(query, response string, ragHit bool) *Result {
	payload, err := llm.ExtractPayload(response)
	if err != nil {
		return o.failure(query, FailureParseError, ragHit,
			fmt.Sprintf("response parsing failed: %v", err))
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return o.failure(query, FailureParseError, ragHit,
			fmt.Sprintf("response is not valid JSON: %v", err))
	}

	if parsed.SQL == nil {
		return o.failure(query, FailureSchemaMismatch, ragHit,
			`response missing required key "sql"`)
	}

	return &Result{
		Success:          true,
		SQLQuery:         strings.TrimSpace(*parsed.SQL),
		Analysis:         parsed.Analysis,
		ReferencedTables: parsed.Analysis.RequiredTables,
		RAGHit:           ragHit,
	}
}

func (o *Orchestrator) failure(query string, kind FailureKind, ragHit bool, message string) *Result {
	o.logger.Warn("generation failure",
		zap.String("query", query),
		zap.String("kind", string(kind)),
		zap.String("error", message))
	return &Result{
		Success:      false,
		ErrorMessage: message,
		FailureKind:  kind,
		RAGHit:       ragHit,
	}
}

func exampleQuestions(examples []fewshot.Example) []string {
	out := make([]string, len(examples))
	for i, ex := range examples {
		out[i] = ex.Question
	}
	return out
}
