// Package pipeline runs the disease-centric analysis workflow: a fixed
// core recipe battery, LLM-recommended additional recipes with
// natural-language refinement, and execution of the approved subset.
package pipeline

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinsight-inc/clinsight-engine/pkg/llm"
	"github.com/clinsight-inc/clinsight-engine/pkg/prompts"
	"github.com/clinsight-inc/clinsight-engine/pkg/recipes"
	"github.com/clinsight-inc/clinsight-engine/pkg/schema"
	"github.com/clinsight-inc/clinsight-engine/pkg/sqltmpl"
)

// CoreRecipes are always executed for any disease, independent of
// recommendation.
var CoreRecipes = []string{
	"get_patient_count_by_disease_keyword",
	"get_demographic_distribution_by_disease",
	"analyze_screened_regional_distribution",
	"get_top_prescribed_ingredients_by_disease",
}

// ExecutionResult is the outcome of rendering one recipe.
type ExecutionResult struct {
	RecipeName string
	Success    bool
	SQLQuery   string
	Parameters map[string]any
	Metadata   *recipes.Recipe
	Error      string
}

// Run aggregates the state of one analysis session, built incrementally
// across the pipeline's stages.
type Run struct {
	ID          uuid.UUID
	DiseaseName string
	CoreResults []ExecutionResult
	Recommended []string
	Approved    []string
	Executed    []ExecutionResult
	SuccessRate float64
}

// Pipeline drives the analysis workflow. Dependencies are injected;
// the pipeline holds no shared mutable state beyond the immutable
// catalog and index caches.
type Pipeline struct {
	index     *recipes.Index
	engine    *sqltmpl.Engine
	catalog   *schema.Catalog
	assembler *prompts.Assembler
	client    llm.Client
	logger    *zap.Logger

	// now is injectable for deterministic parameter synthesis tests.
	now func() time.Time
}

// New wires a Pipeline.
func New(
	index *recipes.Index,
	engine *sqltmpl.Engine,
	catalog *schema.Catalog,
	assembler *prompts.Assembler,
	client llm.Client,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		index:     index,
		engine:    engine,
		catalog:   catalog,
		assembler: assembler,
		client:    client,
		logger:    logger.Named("pipeline"),
		now:       time.Now,
	}
}

// ExecuteCoreRecipes renders the fixed core battery for a disease.
// Individual failures are isolated; the batch always completes.
func (p *Pipeline) ExecuteCoreRecipes(diseaseName string) []ExecutionResult {
	return p.executeRecipes(diseaseName, CoreRecipes)
}

// ExecuteApprovedRecipes renders the caller-approved subset with the
// same parameter synthesis and per-recipe failure isolation as the
// core stage.
func (p *Pipeline) ExecuteApprovedRecipes(diseaseName string, approvedNames []string) []ExecutionResult {
	return p.executeRecipes(diseaseName, approvedNames)
}

func (p *Pipeline) executeRecipes(diseaseName string, names []string) []ExecutionResult {
	results := make([]ExecutionResult, 0, len(names))

	for _, name := range names {
		recipe := p.index.ByName(name)
		if recipe == nil {
			results = append(results, ExecutionResult{
				RecipeName: name,
				Error:      "recipe " + name + " not found",
			})
			continue
		}

		values := recipes.SynthesizeParameters(recipe, diseaseName, p.now())
		params := recipes.ToTemplateParams(values)

		sqlQuery, err := p.engine.RenderTemplate(name, params)
		if err != nil {
			p.logger.Warn("recipe render failed",
				zap.String("recipe", name),
				zap.String("disease", diseaseName),
				zap.Error(err))
			results = append(results, ExecutionResult{
				RecipeName: name,
				Parameters: params,
				Metadata:   recipe,
				Error:      err.Error(),
			})
			continue
		}

		results = append(results, ExecutionResult{
			RecipeName: name,
			Success:    true,
			SQLQuery:   sqlQuery,
			Parameters: params,
			Metadata:   recipe,
		})
	}

	return results
}

// availableRecipes returns the non-core portion of the catalog, the
// pool recommendation draws from.
func (p *Pipeline) availableRecipes() []*recipes.Recipe {
	coreSet := make(map[string]bool, len(CoreRecipes))
	for _, name := range CoreRecipes {
		coreSet[name] = true
	}

	var out []*recipes.Recipe
	for _, r := range p.index.All() {
		if !coreSet[r.Name] {
			out = append(out, r)
		}
	}
	return out
}

// successRate computes successful executions over total executions.
func successRate(results []ExecutionResult) float64 {
	if len(results) == 0 {
		return 0
	}
	success := 0
	for _, r := range results {
		if r.Success {
			success++
		}
	}
	return float64(success) / float64(len(results))
}
