package assessment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plimantour/rai-agent/core/cache"
	"github.com/plimantour/rai-agent/core/completion"
)

type fakeClient struct {
	answers []string
	errs    []error
	params  []completion.Params
}

func (f *fakeClient) GetCompletion(_ context.Context, p completion.Params) (completion.Completion, error) {
	idx := len(f.params)
	f.params = append(f.params, p)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return completion.Completion{}, f.errs[idx]
	}
	answer := ""
	if idx < len(f.answers) {
		answer = f.answers[idx]
	}
	return completion.Completion{
		Answer:       answer,
		Cost:         0.01,
		PromptTokens: 100,
		OutputTokens: 50,
		CacheKeys:    []string{fmt.Sprintf("key-%d", idx)},
	}, nil
}

type memStore struct {
	entries map[string]cache.Entry
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]cache.Entry{}}
}

func (m *memStore) Get(fp string) (cache.Entry, bool) {
	e, ok := m.entries[fp]
	return e, ok
}

func (m *memStore) Put(fp string, e cache.Entry) error {
	m.entries[fp] = e
	return nil
}

func (m *memStore) Delete(fps []string) error {
	for _, fp := range fps {
		delete(m.entries, fp)
		m.deleted = append(m.deleted, fp)
	}
	return nil
}

func (m *memStore) Close() error { return nil }

// stepAnswers returns one well-formed answer per generation step, in
// step order.
func stepAnswers() []string {
	return []string{
		`{"intendeduses": [
			{"name": "Claims triage", "description": "Routes incoming claims"},
			{"name": "Fraud screening", "description": "Flags suspicious claims"}
		]}`,
		`{"solutionscope": {"current_deployment_location": "France", "cloud_platform": "Azure"}}`,
		`{"solution_information": {"solution_name": "ClaimsAI", "solution_purpose": "Faster claims",
			"supplementary_informations": [{"name": "Demo", "link": "https://example.com"}],
			"existing_features": ["Routing"], "upcoming_features": [], "solution_relations": "Standalone"}}`,
		`{"fitnessforpurpose": [
			{"intendeduse_id": "01", "fitness_for_purpose": "Well suited"},
			{"intendeduse_id": "02", "fitness_for_purpose": "Adequate"}
		]}`,
		`{"intendeduse_stakeholder": [
			{"intendeduse_id": "01", "StakeHolders": [
				{"name": "Claims agents", "potential_solution_benefits": "Less toil", "potential_solution_harms": "Deskilling"}
			]}
		]}`,
		`{"intendeduse_answers": [
			{"intendeduse_id": "01", "answers": [
				{"question_id": "GOAL_A5_Q1", "detailed_answer": "Agents review every routing decision"}
			]}
		]}`,
		`{"intendeduse_fairness_answers": [
			{"intendeduse_id": "01", "answers": [
				{"question_id": "GOAL_F1_Q1", "detailed_answer": "Claimants with atypical files"}
			]}
		]}`,
		`{"intendeduse_assessment": [
			{"intendeduse_id": "01", "assessment": [
				{"technology_readiness_id": "technology_readiness_3", "task_complexity_id": "task_complexity_2",
				 "role_of_humans_id": "role_of_humans_4", "deployment_environment_complexity_id": "deployment_environment_complexity_1"}
			]}
		]}`,
		`{"risksofuse": {"restricted_uses": ["Medical claims"], "unsupported_uses": ["Legal advice"],
			"known_limitations": "French market only",
			"potential_impact_of_failure_on_stakeholders": "Delayed claims",
			"potential_impact_of_misuse_on_stakeholders": "Unfair denials",
			"sensitive_use_1": true, "sensitive_use_2": false, "sensitive_use_3": false}}`,
		`{"intendeduse_impactonstakeholders": [
			{"intendeduse_id": "01", "impact_on_stakeholders": [
				{"potential_impact_of_failure_on_stakeholders": "Claims stuck in queue",
				 "potential_impact_of_misuse_on_stakeholders": "Systematic rejections"}
			]}
		]}`,
		`{"harms_assessment": [
			{"identified_harm": "Biased routing", "corresponding_goals": "F1, F2",
			 "assessment": {"Q1": false, "Q2": true, "Q3": false, "Q4": false, "Q5": false, "Q6": false,
				"Q7": false, "Q8": true, "Q9": false, "Q10": false, "Q11": false, "Q12": false, "Q13": false}}
		]}`,
		`{"disclosureofaiinteraction": {"disclosure_of_ai_interaction_applies": true, "explanation": "Chat interface"}}`,
	}
}

func TestPipelineFullRun(t *testing.T) {
	client := &fakeClient{answers: stepAnswers()}
	pipeline := NewPipeline(client, newMemStore(), nil)

	result, err := pipeline.Run(context.Background(), RunParams{
		SolutionDescription: "An AI claims triage system.",
		Model:               "gpt-4o",
	})
	require.NoError(t, err)

	assert.Len(t, client.params, 12)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, result.IntendedUses, 2)
	assert.Equal(t, "01", result.IntendedUses[0].ID)
	assert.Equal(t, "Claims triage", result.IntendedUses[0].Name)
	assert.Equal(t, []string{"Claims agents"}, result.Stakeholders["intended_use_01"])

	name, ok := result.Substitutions.Get("##INTENDED_USE_NAME_01")
	require.True(t, ok)
	assert.Equal(t, "Claims triage", name)

	// Unused slots are blanked, not left behind.
	blank, ok := result.Substitutions.Get("##INTENDED_USE_NAME_03")
	require.True(t, ok)
	assert.Empty(t, blank)

	oversight, ok := result.Substitutions.Get("##HUMAN_OVERSIGHT_IU01")
	require.True(t, ok)
	assert.Equal(t, "Agents review every routing decision", oversight)

	// Fairness answers missing for use 02 degrade to N/A.
	fairness, ok := result.Substitutions.Get("##QUALITYOFSERVICE_STAKEHOLDERS_IU02")
	require.True(t, ok)
	assert.Equal(t, "N/A", fairness)

	tech, ok := result.Substitutions.Get("##TECH_ASSESSMENT_03_IU01")
	require.True(t, ok)
	assert.Equal(t, "X", tech)
	techOther, _ := result.Substitutions.Get("##TECH_ASSESSMENT_01_IU01")
	assert.Empty(t, techOther)

	sensitive, _ := result.Substitutions.Get("##SENSITIVE_USE_01")
	assert.Equal(t, "  Yes", sensitive)

	// Impact on stakeholders rewrites the shared placeholders, leading
	// with the risks step's solution-wide text before the per-use
	// refinements.
	failure, _ := result.Substitutions.Get("##FAILURE_ON_STAKEHOLDERS")
	assert.Equal(t, "Delayed claims\n\nClaims triage:\nClaims stuck in queue", failure)
	assert.NotContains(t, failure, "##")

	mitigation, _ := result.Substitutions.Get("##HARM_01_MITIGATION")
	assert.Contains(t, mitigation, "Goal A3: Fit for purpose")
	assert.Contains(t, mitigation, "Goal F1: Quality of Service")

	disclosure, _ := result.Substitutions.Get("##DISCLOSURE_OF_AI_INTERACTION")
	assert.Equal(t, "  Yes", disclosure)

	// Aggregate carries every step's payload under its own key.
	assert.Contains(t, result.Aggregate, "intendeduses")
	assert.Contains(t, result.Aggregate, "risksofuse")
	assert.Contains(t, result.Aggregate, "disclosureofaiinteraction")

	assert.InDelta(t, 0.12, result.TotalCost, 1e-9)
	assert.Equal(t, int64(1200), result.PromptTokens)
	assert.Equal(t, int64(600), result.OutputTokens)
}

func TestPipelineEarlyTerminationWithoutIntendedUses(t *testing.T) {
	client := &fakeClient{answers: []string{`{"intendeduses": []}`}}
	pipeline := NewPipeline(client, newMemStore(), nil)

	result, err := pipeline.Run(context.Background(), RunParams{
		SolutionDescription: "Vague idea.",
		Model:               "gpt-4o",
	})
	require.NoError(t, err)

	// Only the first step reached the model.
	assert.Len(t, client.params, 1)
	assert.Empty(t, result.IntendedUses)

	// The partial map still blanks the intended-use grid.
	blank, ok := result.Substitutions.Get("##INTENDED_USE_NAME_01")
	require.True(t, ok)
	assert.Empty(t, blank)
}

func TestPipelineAbortsOnCompletionFailure(t *testing.T) {
	answers := stepAnswers()
	client := &fakeClient{
		answers: answers[:3],
		errs:    []error{nil, nil, nil, errors.New("provider down")},
	}
	pipeline := NewPipeline(client, newMemStore(), nil)

	_, err := pipeline.Run(context.Background(), RunParams{
		SolutionDescription: "An AI claims triage system.",
		Model:               "gpt-4o",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fitness for Purpose")
	assert.Len(t, client.params, 4)
}

func TestPipelineRollsBackMalformedStep(t *testing.T) {
	answers := stepAnswers()
	answers[1] = "I cannot produce JSON today."
	client := &fakeClient{answers: answers}
	store := newMemStore()
	pipeline := NewPipeline(client, store, nil)

	result, err := pipeline.Run(context.Background(), RunParams{
		SolutionDescription: "An AI claims triage system.",
		Model:               "gpt-4o",
	})
	require.NoError(t, err)

	// The malformed step's cache entry was deleted so it will not
	// replay, and its placeholders were blanked.
	assert.Equal(t, []string{"key-1"}, store.deleted)
	location, ok := result.Substitutions.Get("##CURRENT_DEPLOYMENT_LOCATION")
	require.True(t, ok)
	assert.Empty(t, location)

	// Later steps still ran.
	assert.Len(t, client.params, 12)
}

func TestPipelinePromptEmbedsPriorStepOutputs(t *testing.T) {
	client := &fakeClient{answers: stepAnswers()}
	pipeline := NewPipeline(client, newMemStore(), nil)

	_, err := pipeline.Run(context.Background(), RunParams{
		SolutionDescription: "An AI claims triage system.",
		Model:               "gpt-4o",
	})
	require.NoError(t, err)

	// Fitness for Purpose (step 4) receives the intended uses list.
	assert.Contains(t, client.params[3].Prompt, "Claims triage")
	assert.Contains(t, client.params[3].Prompt, `"id":"01"`)

	// Impact on Stakeholders (step 10) receives the stakeholder map.
	assert.Contains(t, client.params[9].Prompt, "Claims agents")
}

func TestSubstitutionsApplyAndOverwrite(t *testing.T) {
	subs := NewSubstitutions()
	subs.Add("##INTENDED_USE_01", "Triage")
	subs.Add("##INTENDED_USE_NAME_01", "Claims triage")
	subs.Add("##FAILURE_ON_STAKEHOLDERS", "first")
	subs.Add("##FAILURE_ON_STAKEHOLDERS", "second")

	assert.Equal(t, 3, subs.Len())

	applied := subs.Apply("Use: ##INTENDED_USE_NAME_01 / ##INTENDED_USE_01 / ##FAILURE_ON_STAKEHOLDERS")
	assert.Equal(t, "Use: Claims triage / Triage / second", applied)
}

func TestMergeSectionMergesSharedKey(t *testing.T) {
	aggregate := map[string]any{}
	mergeSection(aggregate, "solutionscope", map[string]any{"cloud_platform": "Azure"})
	mergeSection(aggregate, "solutionscope", map[string]any{"data_requirements": "Claims data"})

	merged := aggregate["solutionscope"].(map[string]any)
	assert.Equal(t, "Azure", merged["cloud_platform"])
	assert.Equal(t, "Claims data", merged["data_requirements"])
}
