// Package completion wraps the model invoker with the response cache
// and owns the escalation policy for truncated answers.
package completion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plimantour/rai-agent/core/cache"
	"github.com/plimantour/rai-agent/core/compress"
	"github.com/plimantour/rai-agent/core/llm"
	"github.com/plimantour/rai-agent/core/pricing"
)

// Invoker is the completion call seam, satisfied by *llm.Invoker.
type Invoker interface {
	Invoke(ctx context.Context, req llm.Request) (llm.Result, error)
}

// Params is one cache-or-invoke request.
type Params struct {
	Prompt          string
	SystemPrompt    string
	Model           string
	Temperature     float64
	JSONMode        bool
	Language        string
	Compress        bool
	ReasoningEffort string
	RebuildCache    bool
}

// Completion is the normalized outcome. PromptTokens and OutputTokens
// are zero on a cache hit; Cost still reports what the cached answer
// originally cost, for accounting.
type Completion struct {
	Answer       string
	Cost         float64
	PromptTokens int64
	OutputTokens int64
	CacheKeys    []string
	FromCache    bool
	Summary      llm.ReasoningSummary
}

// Orchestrator resolves completions cache-first and persists fresh
// answers for replay.
type Orchestrator struct {
	invoker       Invoker
	store         cache.Store
	pricing       *pricing.Table
	compressor    compress.Compressor
	fallbackModel string
	globalRate    float64
	logger        *slog.Logger
}

func NewOrchestrator(
	invoker Invoker,
	store cache.Store,
	table *pricing.Table,
	compressor compress.Compressor,
	fallbackModel string,
	globalRate float64,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if compressor == nil {
		compressor = compress.Identity{}
	}
	return &Orchestrator{
		invoker:       invoker,
		store:         store,
		pricing:       table,
		compressor:    compressor,
		fallbackModel: fallbackModel,
		globalRate:    globalRate,
		logger:        logger,
	}
}

// forcedTextFamilies cannot use the structured-JSON response format
// reliably, whatever the caller asked for.
var forcedTextFamilies = []string{"32k", "mistral", "azureai"}

func forcesTextMode(model string) bool {
	lowered := strings.ToLower(model)
	for _, family := range forcedTextFamilies {
		if strings.Contains(lowered, family) {
			return true
		}
	}
	return false
}

// GetCompletion returns the cached answer for the request fingerprint
// when one exists, otherwise invokes the model and caches the result.
// A truncated answer is retried once against the fallback model, and
// the final answer is cached under both fingerprints so either model
// choice replays from cache later.
func (o *Orchestrator) GetCompletion(ctx context.Context, p Params) (Completion, error) {
	if forcesTextMode(p.Model) {
		p.JSONMode = false
	}
	if !p.Compress {
		p.Prompt = compress.StripMarkup(p.Prompt)
		p.SystemPrompt = compress.StripMarkup(p.SystemPrompt)
	}

	effort := o.effortFor(p.Model, p.ReasoningEffort)
	fingerprint := cache.Fingerprint(p.Model, p.Language, p.Prompt, p.Temperature, p.Compress, effort)

	if entry, ok := o.store.Get(fingerprint); ok && !p.RebuildCache {
		o.logger.Info(
			"serving completion from cache",
			slog.String("model", p.Model),
			slog.String("fingerprint", fingerprint),
		)
		return Completion{
			Answer:    entry.Answer,
			Cost:      entry.InputCost + entry.OutputCost,
			CacheKeys: []string{fingerprint},
			FromCache: true,
		}, nil
	}

	usePrompt, useSystem := p.Prompt, p.SystemPrompt
	if p.Compress {
		usePrompt = o.compressPrompt(ctx, p.Prompt, "prompt")
		useSystem = o.compressPrompt(ctx, p.SystemPrompt, "system prompt")
	}

	result, err := o.invoker.Invoke(ctx, llm.Request{
		Model:           p.Model,
		SystemPrompt:    useSystem,
		Prompt:          usePrompt,
		Temperature:     p.Temperature,
		JSONMode:        p.JSONMode,
		ReasoningEffort: effort,
	})
	if err != nil {
		o.logger.Error(
			"completion failed",
			slog.String("model", p.Model),
			slog.String("error", err.Error()),
		)
		return Completion{}, err
	}

	requestedModel := p.Model
	escalated := false
	if result.FinishReason == llm.FinishLength && o.fallbackModel != "" && !strings.EqualFold(p.Model, o.fallbackModel) {
		o.logger.Warn(
			"answer truncated, escalating to fallback model",
			slog.String("model", p.Model),
			slog.String("fallback", o.fallbackModel),
		)
		result, err = o.invoker.Invoke(ctx, llm.Request{
			Model:           o.fallbackModel,
			SystemPrompt:    useSystem,
			Prompt:          usePrompt,
			Temperature:     p.Temperature,
			JSONMode:        p.JSONMode && !forcesTextMode(o.fallbackModel),
			ReasoningEffort: o.effortFor(o.fallbackModel, p.ReasoningEffort),
		})
		if err != nil {
			o.logger.Error(
				"fallback completion failed",
				slog.String("model", o.fallbackModel),
				slog.String("error", err.Error()),
			)
			return Completion{}, err
		}
		escalated = true
	}

	if result.Answer == "" {
		o.logger.Warn("model returned an empty answer, not caching", slog.String("model", result.Model))
		return Completion{Summary: result.Summary}, nil
	}

	inputCost, outputCost := o.pricing.Cost(result.Model, int(result.PromptTokens), int(result.OutputTokens))

	entry := cache.Entry{
		Model:      result.Model,
		Language:   p.Language,
		InputCost:  inputCost,
		OutputCost: outputCost,
		Answer:     result.Answer,
	}

	var keys []string
	if escalated {
		// The requested model's fingerprint also records the answer so
		// a later identical request tries the default model's cache
		// before re-invoking.
		requestedFP := cache.Fingerprint(requestedModel, p.Language, p.Prompt, p.Temperature, p.Compress, effort)
		requestedEntry := entry
		requestedEntry.Model = requestedModel
		if err := o.store.Put(requestedFP, requestedEntry); err != nil {
			o.logger.Warn("failed to cache completion for requested model", slog.String("error", err.Error()))
		} else {
			keys = append(keys, requestedFP)
		}
	}

	actualFP := cache.Fingerprint(result.Model, p.Language, p.Prompt, p.Temperature, p.Compress, o.effortFor(result.Model, p.ReasoningEffort))
	if err := o.store.Put(actualFP, entry); err != nil {
		o.logger.Warn("failed to cache completion", slog.String("error", err.Error()))
	} else {
		keys = append(keys, actualFP)
	}

	return Completion{
		Answer:       result.Answer,
		Cost:         inputCost + outputCost,
		PromptTokens: result.PromptTokens,
		OutputTokens: result.OutputTokens,
		CacheKeys:    keys,
		Summary:      result.Summary,
	}, nil
}

// effortFor keeps the reasoning-effort value out of requests, and
// fingerprints, for models that do not accept one.
func (o *Orchestrator) effortFor(model, effort string) string {
	if effort == "" {
		return ""
	}
	if o.pricing.Profile(model).SupportsReasoningEffort || o.pricing.IsReasoning(model) {
		return effort
	}
	return ""
}

func (o *Orchestrator) compressPrompt(ctx context.Context, prompt, kind string) string {
	result, err := compress.ProcessPrompt(ctx, o.compressor, prompt, o.globalRate, o.logger)
	if err != nil {
		o.logger.Warn(
			"compression markup invalid, sending prompt uncompressed",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return compress.StripMarkup(prompt)
	}
	o.logger.Info(
		"compressed "+kind,
		slog.Int("origin_tokens", result.OriginTokens),
		slog.Int("compressed_tokens", result.CompressedTokens),
	)
	return result.CompressedPrompt
}
