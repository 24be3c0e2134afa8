package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultTargetCount is the number of additional recipes requested from
// the model in a complete run.
const defaultTargetCount = 7

// RunOptions configures a complete pipeline run.
type RunOptions struct {
	// Approved restricts execution to these recipe names. When nil,
	// all recommended recipes are auto-approved.
	Approved []string

	// Feedback, when non-empty, refines the recommendation list before
	// approval.
	Feedback string

	// TargetCount overrides the number of recommendations requested.
	TargetCount int
}

// RunComplete drives all pipeline stages end to end: core battery,
// recommendation, optional NL refinement, approval, and execution of
// the approved subset.
func (p *Pipeline) RunComplete(ctx context.Context, diseaseName string, opts RunOptions) *Run {
	targetCount := opts.TargetCount
	if targetCount <= 0 {
		targetCount = defaultTargetCount
	}

	p.logger.Info("starting disease analysis run",
		zap.String("disease", diseaseName))

	coreResults := p.ExecuteCoreRecipes(diseaseName)

	outcome := p.RecommendAdditionalRecipes(ctx, diseaseName, targetCount)
	recommended := outcome.Recipes

	if opts.Feedback != "" {
		recommended = p.RefineRecommendations(ctx, diseaseName, recommended, opts.Feedback)
	}

	approved := opts.Approved
	if approved == nil {
		approved = recommended
	}

	approvedResults := p.ExecuteApprovedRecipes(diseaseName, approved)

	executed := make([]ExecutionResult, 0, len(coreResults)+len(approvedResults))
	executed = append(executed, coreResults...)
	executed = append(executed, approvedResults...)

	run := &Run{
		ID:          uuid.New(),
		DiseaseName: diseaseName,
		CoreResults: coreResults,
		Recommended: recommended,
		Approved:    approved,
		Executed:    executed,
		SuccessRate: successRate(executed),
	}

	p.logger.Info("disease analysis run complete",
		zap.String("disease", diseaseName),
		zap.String("run_id", run.ID.String()),
		zap.Bool("recommendation_fallback", outcome.Fallback),
		zap.Int("total", len(executed)),
		zap.Float64("success_rate", run.SuccessRate))
	return run
}
