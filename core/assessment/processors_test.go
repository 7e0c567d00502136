package assessment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessIntendedUsesCapsAtTen(t *testing.T) {
	var list []any
	for i := 1; i <= 12; i++ {
		list = append(list, map[string]any{
			"name":        fmt.Sprintf("Use %d", i),
			"description": fmt.Sprintf("Description %d", i),
		})
	}
	state := &pipelineState{}

	search, replace := processIntendedUses(map[string]any{"intendeduses": list}, state)

	require.Len(t, state.uses, 10)
	assert.Equal(t, "01", state.uses[0].ID)
	assert.Equal(t, "10", state.uses[9].ID)
	// Three placeholders per slot, ten slots.
	assert.Len(t, search, 30)
	assert.Len(t, replace, 30)
}

func TestProcessStakeholdersNormalizesUseID(t *testing.T) {
	parsed := map[string]any{
		"intendeduse_stakeholder": []any{
			map[string]any{
				"intendeduse_id": "intended_use_1",
				"StakeHolders": []any{
					map[string]any{
						"name":                        "Operators",
						"potential_solution_benefits": "Faster work",
						"potential_solution_harms":    "Overreliance",
					},
				},
			},
		},
	}
	state := &pipelineState{}

	search, replace := processStakeholders(parsed, state)

	assert.Equal(t, []string{"Operators"}, state.stakeholders["intended_use_01"])
	found := false
	for i, placeholder := range search {
		if placeholder == "##STAKEHOLDER_01_IU01" {
			assert.Equal(t, "Operators", replace[i])
			found = true
		}
	}
	assert.True(t, found)
}

func TestProcessStakeholdersCapsAtTenPerUse(t *testing.T) {
	var stakeholders []any
	for i := 1; i <= 14; i++ {
		stakeholders = append(stakeholders, map[string]any{
			"name": fmt.Sprintf("Stakeholder %d", i),
		})
	}
	parsed := map[string]any{
		"intendeduse_stakeholder": []any{
			map[string]any{
				"intendeduse_id": "01",
				"StakeHolders":   stakeholders,
			},
		},
	}
	state := &pipelineState{}

	search, _ := processStakeholders(parsed, state)

	require.Len(t, state.stakeholders["intended_use_01"], 10)
	assert.Equal(t, "Stakeholder 10", state.stakeholders["intended_use_01"][9])
	assert.NotContains(t, search, "##STAKEHOLDER_11_IU01")
}

func TestProcessRisksOfUseJoinsLists(t *testing.T) {
	parsed := map[string]any{
		"risksofuse": map[string]any{
			"restricted_uses":   []any{"one", "two"},
			"unsupported_uses":  "plain text",
			"known_limitations": "limits",
			"sensitive_use_1":   false,
		},
	}

	search, replace := processRisksOfUse(parsed, &pipelineState{})

	values := map[string]string{}
	for i, placeholder := range search {
		values[placeholder] = replace[i]
	}
	assert.Equal(t, "one\ntwo\n", values["##RESTRICTED_USES"])
	assert.Equal(t, "plain text", values["##UNSUPPORTED_USES"])
	assert.Equal(t, "  No", values["##SENSITIVE_USE_01"])
}

func TestProcessImpactLeadsWithRisksText(t *testing.T) {
	state := &pipelineState{uses: []IntendedUse{{ID: "01", Name: "Triage"}}}

	_, riskValues := processRisksOfUse(map[string]any{
		"risksofuse": map[string]any{
			"potential_impact_of_failure_on_stakeholders": "Delayed claims",
			"potential_impact_of_misuse_on_stakeholders":  "Unfair denials",
		},
	}, state)
	for _, value := range riskValues {
		assert.NotContains(t, value, "##", "placeholder markers must never appear in replacement text")
	}

	_, impactValues := processImpactOnStakeholders(map[string]any{
		"intendeduse_impactonstakeholders": []any{
			map[string]any{
				"intendeduse_id": "01",
				"impact_on_stakeholders": []any{
					map[string]any{
						"potential_impact_of_failure_on_stakeholders": "Stuck in queue",
						"potential_impact_of_misuse_on_stakeholders":  "Rejections",
					},
				},
			},
		},
	}, state)

	require.Len(t, impactValues, 2)
	assert.Equal(t, "Delayed claims\n\nTriage:\nStuck in queue", impactValues[0])
	assert.Equal(t, "Unfair denials\n\nTriage:\nRejections", impactValues[1])
}

func TestProcessEmptyPayloadsEmitBlankGrids(t *testing.T) {
	state := &pipelineState{}
	empty := map[string]any{}

	for name, proc := range map[string]processor{
		"fitness":    processFitnessForPurpose,
		"scope":      processSolutionScope,
		"harms":      processHarmsAssessment,
		"disclosure": processDisclosure,
	} {
		search, replace := proc(empty, state)
		assert.NotEmpty(t, search, "%s must clear its placeholders", name)
		assert.Len(t, replace, len(search), "%s search/replace length mismatch", name)
	}
}
