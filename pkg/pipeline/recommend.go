package pipeline

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/clinsight-inc/clinsight-engine/pkg/llm"
	"github.com/clinsight-inc/clinsight-engine/pkg/recipes"
	"github.com/clinsight-inc/clinsight-engine/pkg/schema"
)

// recommendTopK bounds the schema context attached to recommendation
// prompts.
const recommendTopK = 20

// RecommendationOutcome reports which path produced a recommendation
// list, so callers and tests can distinguish an LLM result from the
// fallback.
type RecommendationOutcome struct {
	Recipes  []string
	Fallback bool
	Reason   string
}

type recommendationResponse struct {
	RecommendedRecipes []string `json:"recommended_recipes"`
}

type refinementResponse struct {
	RefinedRecipes []string `json:"refined_recipes"`
	Changes        string   `json:"changes"`
}

// RecommendAdditionalRecipes asks the model for targetCount non-core
// recipes suited to the disease. Any call or parse failure falls back
// to a uniform-random sample so the workflow never dead-ends; the
// outcome records which path executed.
func (p *Pipeline) RecommendAdditionalRecipes(ctx context.Context, diseaseName string, targetCount int) RecommendationOutcome {
	available := p.availableRecipes()
	recipeList := recipes.DescribeAll(available)

	relevant := p.catalog.RelevantColumns(diseaseName+" 질환 환자 분석", recommendTopK, true)
	schemaInfo := schema.FormatForLLM(relevant)

	prompt, err := p.assembler.RecipeRecommendation(diseaseName, recipeList, schemaInfo, targetCount)
	if err != nil {
		return p.fallbackRecommendation(available, targetCount, "prompt assembly failed: "+err.Error())
	}

	response, err := p.client.Generate(ctx, prompt, "")
	if err != nil {
		return p.fallbackRecommendation(available, targetCount, "llm call failed: "+err.Error())
	}

	parsed, err := llm.ParseResponse[recommendationResponse](response)
	if err != nil {
		return p.fallbackRecommendation(available, targetCount, "response parsing failed: "+err.Error())
	}

	validated := filterValidNames(parsed.RecommendedRecipes, available)
	if len(validated) > targetCount {
		validated = validated[:targetCount]
	}

	if len(validated) < targetCount {
		p.logger.Warn("recommendation returned fewer valid recipes than requested",
			zap.Int("valid", len(validated)),
			zap.Int("target", targetCount))
	}

	p.logger.Info("llm recommended recipes",
		zap.String("disease", diseaseName),
		zap.Int("count", len(validated)))
	return RecommendationOutcome{Recipes: validated}
}

func (p *Pipeline) fallbackRecommendation(available []*recipes.Recipe, targetCount int, reason string) RecommendationOutcome {
	p.logger.Warn("recommendation fell back to random selection",
		zap.String("reason", reason))

	n := targetCount
	if n > len(available) {
		n = len(available)
	}

	names := make([]string, 0, n)
	for _, i := range rand.Perm(len(available))[:n] {
		names = append(names, available[i].Name)
	}

	return RecommendationOutcome{Recipes: names, Fallback: true, Reason: reason}
}

// RefineRecommendations adjusts a recommendation list from free-text
// feedback. Refinement is best-effort: any failure returns the input
// list unchanged.
func (p *Pipeline) RefineRecommendations(ctx context.Context, diseaseName string, current []string, feedback string) []string {
	available := p.availableRecipes()

	prompt := buildRefinementPrompt(diseaseName, current, feedback, recipes.DescribeAll(available))

	response, err := p.client.Generate(ctx, prompt, "")
	if err != nil {
		p.logger.Warn("recommendation refinement failed, keeping original list",
			zap.Error(err))
		return current
	}

	parsed, err := llm.ParseResponse[refinementResponse](response)
	if err != nil {
		p.logger.Warn("recommendation refinement parse failed, keeping original list",
			zap.Error(err))
		return current
	}

	validated := filterValidNames(parsed.RefinedRecipes, available)
	if len(validated) == 0 {
		return current
	}

	p.logger.Info("refined recommendations",
		zap.Int("count", len(validated)),
		zap.String("changes", parsed.Changes))
	return validated
}

func buildRefinementPrompt(diseaseName string, current []string, feedback, recipeList string) string {
	currentList := ""
	for _, name := range current {
		currentList += "- " + name + "\n"
	}

	return `당신은 임상 데이터 분석 전문가입니다.

질환명: ` + diseaseName + `

현재 추천된 레시피 목록:
` + currentList + `
사용자 피드백:
"` + feedback + `"

위 피드백을 반영하여 레시피 목록을 조정해주세요.

사용 가능한 전체 레시피:
` + recipeList + `

**규칙:**
1. 사용자 피드백에 따라 레시피를 추가/제거/교체하세요
2. 총 개수는 기존과 비슷하게 유지하세요 (±2개 허용)
3. 피드백에 명시적으로 요청된 내용을 최우선으로 반영하세요

응답 형식 (JSON):
{
  "refined_recipes": ["recipe_name_1", "recipe_name_2"],
  "changes": "어떤 변경을 했는지 간단히"
}
`
}

// filterValidNames drops names not present in the available recipe set,
// preserving order.
func filterValidNames(names []string, available []*recipes.Recipe) []string {
	valid := make(map[string]bool, len(available))
	for _, r := range available {
		valid[r.Name] = true
	}

	var out []string
	for _, name := range names {
		if valid[name] {
			out = append(out, name)
		}
	}
	return out
}
