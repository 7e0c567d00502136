package completion

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plimantour/rai-agent/core/cache"
	"github.com/plimantour/rai-agent/core/llm"
	"github.com/plimantour/rai-agent/core/pricing"
)

type scriptedInvoker struct {
	requests []llm.Request
	results  []llm.Result
	errs     []error
}

func (s *scriptedInvoker) Invoke(_ context.Context, req llm.Request) (llm.Result, error) {
	idx := len(s.requests)
	s.requests = append(s.requests, req)
	if idx < len(s.errs) && s.errs[idx] != nil {
		return llm.Result{}, s.errs[idx]
	}
	if idx < len(s.results) {
		return s.results[idx], nil
	}
	return llm.Result{}, errors.New("no scripted result")
}

func newTestOrchestrator(t *testing.T, invoker Invoker) (*Orchestrator, cache.Store) {
	t.Helper()
	store, err := cache.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), 64, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	orch := NewOrchestrator(invoker, store, pricing.NewTable(nil), nil, "gpt-4-32k", 0.33, nil)
	return orch, store
}

func baseParams() Params {
	return Params{
		Prompt:       "List the intended uses.",
		SystemPrompt: "You draft assessments.",
		Model:        "gpt-4o",
		Temperature:  0.1,
		JSONMode:     true,
		Language:     "English",
	}
}

func TestGetCompletionCachesAndReplays(t *testing.T) {
	invoker := &scriptedInvoker{results: []llm.Result{{
		Answer:       `{"intendeduses": []}`,
		Model:        "gpt-4o",
		PromptTokens: 1000,
		OutputTokens: 500,
		FinishReason: "stop",
	}}}
	orch, _ := newTestOrchestrator(t, invoker)

	first, err := orch.GetCompletion(context.Background(), baseParams())
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, `{"intendeduses": []}`, first.Answer)
	assert.InDelta(t, 0.0047+0.00695, first.Cost, 1e-9)
	require.Len(t, first.CacheKeys, 1)

	second, err := orch.GetCompletion(context.Background(), baseParams())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, first.Cost, second.Cost)
	assert.Zero(t, second.PromptTokens)
	assert.Zero(t, second.OutputTokens)
	// Only the first request reached the model.
	assert.Len(t, invoker.requests, 1)
}

func TestGetCompletionRebuildCacheReinvokes(t *testing.T) {
	invoker := &scriptedInvoker{results: []llm.Result{
		{Answer: "first", Model: "gpt-4o", FinishReason: "stop"},
		{Answer: "second", Model: "gpt-4o", FinishReason: "stop"},
	}}
	orch, _ := newTestOrchestrator(t, invoker)

	_, err := orch.GetCompletion(context.Background(), baseParams())
	require.NoError(t, err)

	params := baseParams()
	params.RebuildCache = true
	rebuilt, err := orch.GetCompletion(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "second", rebuilt.Answer)
	assert.Len(t, invoker.requests, 2)
}

func TestGetCompletionTruncationEscalates(t *testing.T) {
	invoker := &scriptedInvoker{results: []llm.Result{
		{Answer: "partial", Model: "gpt-4o", FinishReason: llm.FinishLength},
		{Answer: "full answer", Model: "gpt-4-32k", PromptTokens: 10, OutputTokens: 20, FinishReason: "stop"},
	}}
	orch, store := newTestOrchestrator(t, invoker)

	result, err := orch.GetCompletion(context.Background(), baseParams())
	require.NoError(t, err)
	assert.Equal(t, "full answer", result.Answer)

	require.Len(t, invoker.requests, 2)
	assert.Equal(t, "gpt-4o", invoker.requests[0].Model)
	assert.Equal(t, "gpt-4-32k", invoker.requests[1].Model)
	// The fallback model cannot do JSON mode.
	assert.False(t, invoker.requests[1].JSONMode)

	// Both fingerprints replay the escalated answer.
	require.Len(t, result.CacheKeys, 2)
	for _, key := range result.CacheKeys {
		entry, ok := store.Get(key)
		require.True(t, ok)
		assert.Equal(t, "full answer", entry.Answer)
	}

	replay, err := orch.GetCompletion(context.Background(), baseParams())
	require.NoError(t, err)
	assert.True(t, replay.FromCache)
	assert.Len(t, invoker.requests, 2)
}

func TestGetCompletionFallbackModelNotReescalated(t *testing.T) {
	invoker := &scriptedInvoker{results: []llm.Result{
		{Answer: "still truncated", Model: "gpt-4-32k", FinishReason: llm.FinishLength},
	}}
	orch, _ := newTestOrchestrator(t, invoker)

	params := baseParams()
	params.Model = "gpt-4-32k"
	result, err := orch.GetCompletion(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "still truncated", result.Answer)
	assert.Len(t, invoker.requests, 1)
}

func TestGetCompletionForcesTextModeForLegacyFamilies(t *testing.T) {
	for _, model := range []string{"gpt-4-32k", "mistral-large", "azureai"} {
		invoker := &scriptedInvoker{results: []llm.Result{
			{Answer: "a", Model: model, FinishReason: "stop"},
		}}
		orch, _ := newTestOrchestrator(t, invoker)

		params := baseParams()
		params.Model = model
		_, err := orch.GetCompletion(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, invoker.requests, 1)
		assert.False(t, invoker.requests[0].JSONMode, "model %s must not request JSON mode", model)
	}
}

func TestForcesTextModeMatchesDeploymentNames(t *testing.T) {
	for _, model := range []string{"gpt-4-32k", "GPT-4-32K", "mistral-large", "azureai"} {
		assert.True(t, forcesTextMode(model), "model %s must force text mode", model)
	}
	for _, model := range []string{"gpt-4o", "gpt-5-mini", "o3"} {
		assert.False(t, forcesTextMode(model), "model %s must keep JSON mode available", model)
	}
}

func TestGetCompletionStripsMarkupWhenCompressionOff(t *testing.T) {
	invoker := &scriptedInvoker{results: []llm.Result{
		{Answer: "a", Model: "gpt-4o", FinishReason: "stop"},
	}}
	orch, _ := newTestOrchestrator(t, invoker)

	params := baseParams()
	params.Prompt = "<llmlingua, compress=False>Answer in JSON.</llmlingua><llmlingua, rate=0.5>Context.</llmlingua>"
	_, err := orch.GetCompletion(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "Answer in JSON.Context.", invoker.requests[0].Prompt)
}

func TestGetCompletionFailureNotCached(t *testing.T) {
	invoker := &scriptedInvoker{errs: []error{errors.New("boom")}}
	orch, store := newTestOrchestrator(t, invoker)

	_, err := orch.GetCompletion(context.Background(), baseParams())
	require.Error(t, err)

	// A retry after the failure invokes again instead of replaying.
	retry := &scriptedInvoker{results: []llm.Result{
		{Answer: "ok", Model: "gpt-4o", FinishReason: "stop"},
	}}
	orch2 := NewOrchestrator(retry, store, pricing.NewTable(nil), nil, "gpt-4-32k", 0.33, nil)
	result, err := orch2.GetCompletion(context.Background(), baseParams())
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, "ok", result.Answer)
}

func TestGetCompletionEmptyAnswerNotCached(t *testing.T) {
	invoker := &scriptedInvoker{results: []llm.Result{
		{Answer: "", Model: "gpt-4o", FinishReason: "stop"},
	}}
	orch, _ := newTestOrchestrator(t, invoker)

	result, err := orch.GetCompletion(context.Background(), baseParams())
	require.NoError(t, err)
	assert.Empty(t, result.Answer)
	assert.Zero(t, result.Cost)
	assert.Empty(t, result.CacheKeys)
}

func TestGetCompletionFingerprintSensitivity(t *testing.T) {
	invoker := &scriptedInvoker{results: []llm.Result{
		{Answer: "english", Model: "gpt-4o", FinishReason: "stop"},
		{Answer: "french", Model: "gpt-4o", FinishReason: "stop"},
	}}
	orch, _ := newTestOrchestrator(t, invoker)

	_, err := orch.GetCompletion(context.Background(), baseParams())
	require.NoError(t, err)

	params := baseParams()
	params.Language = "French"
	result, err := orch.GetCompletion(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, "french", result.Answer)
	assert.Len(t, invoker.requests, 2)
}
