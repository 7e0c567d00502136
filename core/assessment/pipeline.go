package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/plimantour/rai-agent/core/cache"
	"github.com/plimantour/rai-agent/core/completion"
	"github.com/plimantour/rai-agent/core/extract"
	"github.com/plimantour/rai-agent/core/llm"
)

// Client is the completion seam, satisfied by *completion.Orchestrator.
type Client interface {
	GetCompletion(ctx context.Context, p completion.Params) (completion.Completion, error)
}

// ProgressFunc receives human-readable progress messages during a run.
type ProgressFunc func(message string)

// Pipeline drives the generation steps for one assessment draft.
type Pipeline struct {
	client Client
	store  cache.Store
	logger *slog.Logger
}

func NewPipeline(client Client, store cache.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{client: client, store: store, logger: logger}
}

// RunParams configures one assessment generation run.
type RunParams struct {
	SolutionDescription string
	Language            string
	Model               string
	Compress            bool
	RebuildCache        bool
	ReasoningEffort     string
	Progress            ProgressFunc
}

// RunResult is the outcome of a pipeline run: the accumulated
// substitution map, the per-step payloads merged by top-level key, and
// the usage totals across all steps.
type RunResult struct {
	RunID         string
	Substitutions *Substitutions
	Aggregate     map[string]any
	IntendedUses  []IntendedUse
	Stakeholders  StakeholderMap
	TotalCost     float64
	PromptTokens  int64
	OutputTokens  int64
	Summary       llm.ReasoningSummary
}

// Run executes the generation steps in order. Steps after the first
// only run when the Intended Uses step produced at least one use;
// otherwise the run terminates early with the partial substitution
// map. A completion failure aborts the whole run.
func (p *Pipeline) Run(ctx context.Context, params RunParams) (RunResult, error) {
	if params.Language == "" {
		params.Language = "English"
	}
	progress := params.Progress
	if progress == nil {
		progress = func(string) {}
	}

	result := RunResult{
		RunID:         uuid.NewString(),
		Substitutions: NewSubstitutions(),
		Aggregate:     map[string]any{},
	}
	result.Substitutions.Add("##SOLUTION_DESCRIPTION", params.SolutionDescription)

	system := strings.ReplaceAll(systemPrompt, targetLanguagePlaceholder, params.Language)
	state := &pipelineState{stakeholders: StakeholderMap{}}
	steps := Steps()

	for i, step := range steps {
		if i > 0 && len(state.uses) == 0 {
			p.logger.Info("no intended uses generated, skipping dependent step", slog.String("step", step.Name))
			continue
		}

		progress(fmt.Sprintf("Step %d / %d: Generating %q with %s", i+1, len(steps), step.Name, displayModel(params.Model)))

		prompt := p.fillPrompt(step.Prompt, params, state)
		comp, err := p.client.GetCompletion(ctx, completion.Params{
			Prompt:          prompt,
			SystemPrompt:    system,
			Model:           params.Model,
			Temperature:     step.Temperature,
			JSONMode:        step.JSONMode,
			Language:        params.Language,
			Compress:        params.Compress,
			ReasoningEffort: params.ReasoningEffort,
			RebuildCache:    params.RebuildCache,
		})
		if err != nil {
			p.rollback(step.Name, comp.CacheKeys)
			return RunResult{RunID: result.RunID}, fmt.Errorf("step %q failed: %w", step.Name, err)
		}

		result.TotalCost += comp.Cost
		result.PromptTokens += comp.PromptTokens
		result.OutputTokens += comp.OutputTokens
		if !comp.FromCache {
			result.Summary = comp.Summary
		}

		parsed := extract.Extract(comp.Answer, step.ExpectedKey, p.logger)
		if len(parsed) == 0 {
			// A malformed answer must not replay from cache on the
			// next run.
			if comp.Answer != "" {
				p.rollback(step.Name, comp.CacheKeys)
			}
			p.logger.Warn("step produced no usable payload, emitting blank substitutions", slog.String("step", step.Name))
		}

		search, replace := step.Process(parsed, state)
		result.Substitutions.AddPairs(search, replace)

		if payload, ok := parsed[step.ExpectedKey]; ok {
			mergeSection(result.Aggregate, step.ExpectedKey, payload)
		}
	}

	result.IntendedUses = state.uses
	result.Stakeholders = state.stakeholders

	progress(fmt.Sprintf("Total completion cost: %.4f €", result.TotalCost))
	p.logger.Info(
		"assessment generation finished",
		slog.String("run_id", result.RunID),
		slog.Int("substitutions", result.Substitutions.Len()),
		slog.Int64("prompt_tokens", result.PromptTokens),
		slog.Int64("output_tokens", result.OutputTokens),
	)
	return result, nil
}

func (p *Pipeline) fillPrompt(prompt string, params RunParams, state *pipelineState) string {
	uses := state.uses
	if uses == nil {
		uses = []IntendedUse{}
	}
	usesJSON, _ := json.Marshal(uses)
	stakeholdersJSON, _ := json.Marshal(state.stakeholders)

	prompt = strings.ReplaceAll(prompt, solutionDescriptionPlaceholder, params.SolutionDescription)
	prompt = strings.ReplaceAll(prompt, targetLanguagePlaceholder, params.Language)
	prompt = strings.ReplaceAll(prompt, intendedUsesPlaceholder, string(usesJSON))
	prompt = strings.ReplaceAll(prompt, stakeholdersPlaceholder, string(stakeholdersJSON))
	return prompt
}

func (p *Pipeline) rollback(stepName string, keys []string) {
	if p.store == nil || len(keys) == 0 {
		return
	}
	if err := p.store.Delete(keys); err != nil {
		p.logger.Warn(
			"failed to roll back cache entries",
			slog.String("step", stepName),
			slog.String("error", err.Error()),
		)
		return
	}
	p.logger.Info(
		"rolled back cache entries for failed step",
		slog.String("step", stepName),
		slog.Int("entries", len(keys)),
	)
}

// mergeSection merges one step's payload into the aggregate. Two steps
// sharing a top-level key merge their sub-mappings instead of
// overwriting.
func mergeSection(aggregate map[string]any, key string, payload any) {
	existing, ok := aggregate[key]
	if !ok {
		aggregate[key] = payload
		return
	}
	existingMap, okExisting := existing.(map[string]any)
	payloadMap, okPayload := payload.(map[string]any)
	if okExisting && okPayload {
		for k, v := range payloadMap {
			existingMap[k] = v
		}
		return
	}
	aggregate[key] = payload
}

// displayModel maps the Azure serverless deployment alias to the
// model it fronts.
func displayModel(model string) string {
	if model == "azureai" {
		return "Mistral Large"
	}
	return model
}
