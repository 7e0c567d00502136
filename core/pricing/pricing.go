// Package pricing holds the per-model cost table and capability profiles.
// Unknown models degrade to zero cost instead of failing a generation run;
// the reasoning predicate drives request shape in the invoker, so profile
// flags take priority over name-prefix heuristics.
package pricing

import (
	"log/slog"
	"strings"
	"sync"
)

// ModelProfile describes one completion model. Costs are EUR per 1K tokens.
type ModelProfile struct {
	Name          string  `yaml:"name"`
	ContextWindow int     `yaml:"context_window"`
	InputPer1K    float64 `yaml:"input_per_1k"`
	OutputPer1K   float64 `yaml:"output_per_1k"`
	Reasoning     bool    `yaml:"reasoning"`

	// TokenParam names the output-token limit parameter the model
	// accepts: "max_tokens" for legacy chat models,
	// "max_completion_tokens" for reasoning families.
	TokenParam string `yaml:"token_param"`

	// SupportsSampling is false for reasoning models, which reject
	// temperature and the penalty parameters outright.
	SupportsSampling bool `yaml:"supports_sampling"`

	// SupportsReasoningEffort gates the effort parameter.
	SupportsReasoningEffort bool `yaml:"supports_reasoning_effort"`
}

// reasoningPrefixes covers reasoning-family names absent from the explicit
// table. Matches the deployment naming used on Azure OpenAI.
var reasoningPrefixes = []string{"gpt-5", "o1", "o3", "o4"}

func defaultProfiles() map[string]ModelProfile {
	list := []ModelProfile{
		{Name: "gpt-3.5-turbo-0125", ContextWindow: 16000, InputPer1K: 0.0005, OutputPer1K: 0.0014, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-4-turbo", ContextWindow: 128000, InputPer1K: 0.010, OutputPer1K: 0.028, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-4", ContextWindow: 8000, InputPer1K: 0.028, OutputPer1K: 0.056, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-4-32k", ContextWindow: 32000, InputPer1K: 0.056, OutputPer1K: 0.112, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-4o", ContextWindow: 128000, InputPer1K: 0.0047, OutputPer1K: 0.0139, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-4o-mini", ContextWindow: 128000, InputPer1K: 0.00014277, OutputPer1K: 0.0005711, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-4.1", ContextWindow: 128000, InputPer1K: 0.00173, OutputPer1K: 0.00691, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-4.1-mini", ContextWindow: 128000, InputPer1K: 0.00035, OutputPer1K: 0.00139, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-4.1-nano", ContextWindow: 128000, InputPer1K: 0.00009, OutputPer1K: 0.00035, SupportsSampling: true, TokenParam: "max_tokens"},
		{Name: "gpt-5", ContextWindow: 400000, InputPer1K: 0.00108, OutputPer1K: 0.00863, Reasoning: true, TokenParam: "max_completion_tokens", SupportsReasoningEffort: true},
		{Name: "gpt-5-mini", ContextWindow: 400000, InputPer1K: 0.00022, OutputPer1K: 0.00173, Reasoning: true, TokenParam: "max_completion_tokens", SupportsReasoningEffort: true},
		{Name: "o1-mini", ContextWindow: 128000, InputPer1K: 0.0010470, OutputPer1K: 0.004187884, Reasoning: true, TokenParam: "max_completion_tokens", SupportsReasoningEffort: true},
		{Name: "o3-mini", ContextWindow: 200000, InputPer1K: 0.0010470, OutputPer1K: 0.004187884, Reasoning: true, TokenParam: "max_completion_tokens", SupportsReasoningEffort: true},
		{Name: "o4-mini", ContextWindow: 128000, InputPer1K: 0.00095, OutputPer1K: 0.00380, Reasoning: true, TokenParam: "max_completion_tokens", SupportsReasoningEffort: true},
		// Mistral Large served through the OpenAI-compatible endpoint.
		{Name: "azureai", ContextWindow: 32000, InputPer1K: 0.0074088, OutputPer1K: 0.0222264, SupportsSampling: true, TokenParam: "max_tokens"},
	}

	m := make(map[string]ModelProfile, len(list))
	for _, p := range list {
		m[strings.ToLower(p.Name)] = p
	}
	return m
}

// Table resolves model profiles and prices completions. Safe for concurrent
// use; Replace swaps the whole table atomically (used by the override
// watcher).
type Table struct {
	mu       sync.RWMutex
	profiles map[string]ModelProfile
	logger   *slog.Logger
}

func NewTable(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{
		profiles: defaultProfiles(),
		logger:   logger,
	}
}

// Profile resolves a model name case-insensitively. Names not in the table
// fall back to a default chat profile, with reasoning-prefix names mapped to
// a reasoning-shaped profile so request construction stays correct even for
// unpriced deployments.
func (t *Table) Profile(model string) ModelProfile {
	lowered := strings.ToLower(model)

	t.mu.RLock()
	p, ok := t.profiles[lowered]
	t.mu.RUnlock()
	if ok {
		return p
	}

	if hasReasoningPrefix(lowered) {
		return ModelProfile{
			Name:                    model,
			ContextWindow:           128000,
			Reasoning:               true,
			TokenParam:              "max_completion_tokens",
			SupportsReasoningEffort: true,
		}
	}
	return ModelProfile{
		Name:             model,
		ContextWindow:    128000,
		TokenParam:       "max_tokens",
		SupportsSampling: true,
	}
}

// Cost prices a completion. Models without a pricing entry return (0, 0);
// the miss is logged but never aborts assessment generation.
func (t *Table) Cost(model string, inputTokens, outputTokens int) (inputCost, outputCost float64) {
	lowered := strings.ToLower(model)

	t.mu.RLock()
	p, ok := t.profiles[lowered]
	t.mu.RUnlock()
	if !ok {
		t.logger.Warn("model not found in pricing table, using zero cost", "model", model)
		return 0, 0
	}

	inputCost = float64(inputTokens) / 1000 * p.InputPer1K
	outputCost = float64(outputTokens) / 1000 * p.OutputPer1K
	return inputCost, outputCost
}

// IsReasoning reports whether the model follows reasoning-API conventions.
// An explicit profile flag wins; otherwise known family prefixes match.
func (t *Table) IsReasoning(model string) bool {
	lowered := strings.ToLower(model)

	t.mu.RLock()
	p, ok := t.profiles[lowered]
	t.mu.RUnlock()
	if ok {
		return p.Reasoning
	}
	return hasReasoningPrefix(lowered)
}

// Replace swaps in a new profile set. Entries keep their declared names;
// lookups remain case-insensitive.
func (t *Table) Replace(profiles []ModelProfile) {
	m := make(map[string]ModelProfile, len(profiles))
	for _, p := range profiles {
		m[strings.ToLower(p.Name)] = p
	}

	t.mu.Lock()
	t.profiles = m
	t.mu.Unlock()
}

func hasReasoningPrefix(lowered string) bool {
	for _, pfx := range reasoningPrefixes {
		if strings.HasPrefix(lowered, pfx) {
			return true
		}
	}
	return false
}
