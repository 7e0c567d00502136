package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWellFormed(t *testing.T) {
	answer := `{"intendeduses": [{"intendeduse_id": "01", "name": "Triage"}]}`

	result := Extract(answer, "intendeduses", nil)

	uses, ok := result["intendeduses"].([]any)
	require.True(t, ok)
	require.Len(t, uses, 1)
	use := uses[0].(map[string]any)
	assert.Equal(t, "01", use["intendeduse_id"])
	assert.Equal(t, "Triage", use["name"])
}

func TestExtractSurroundingProse(t *testing.T) {
	answer := "Sure, here is the JSON you asked for:\n" +
		`{"stakeholders": [{"intendeduse_id": "01", "names": ["Operators"]}]}` +
		"\nLet me know if you need anything else."

	result := Extract(answer, "stakeholders", nil)
	require.Contains(t, result, "stakeholders")
}

func TestExtractBareListWrapped(t *testing.T) {
	answer := `[{"name": "Claims triage", "description": "Routes claims"}]`

	result := Extract(answer, "intendeduses", nil)

	uses, ok := result["intendeduses"].([]any)
	require.True(t, ok)
	assert.Len(t, uses, 1)
}

func TestExtractFlatObjectWrapped(t *testing.T) {
	// No nested structure, wrong key: wrap the whole object.
	answer := `{"name": "Claims triage", "description": "Routes claims"}`

	result := Extract(answer, "solutionscope", nil)

	inner, ok := result["solutionscope"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Claims triage", inner["name"])
}

func TestExtractRenamesFirstKey(t *testing.T) {
	// Nested structure under the wrong top-level key: rename it.
	answer := `{"intended_uses_list": [{"name": "Triage"}], "note": "extra"}`

	result := Extract(answer, "intendeduses", nil)

	require.Contains(t, result, "intendeduses")
	assert.NotContains(t, result, "intended_uses_list")
	uses, ok := result["intendeduses"].([]any)
	require.True(t, ok)
	assert.Len(t, uses, 1)
}

func TestExtractNormalizesDriftKeys(t *testing.T) {
	answer := `{"intendeduse_answers": [{"inteduse_id": "01", "answers": []}]}`

	result := Extract(answer, "intendeduse_answers", nil)

	answers, ok := result["intendeduse_answers"].([]any)
	require.True(t, ok)
	require.Len(t, answers, 1)
	first := answers[0].(map[string]any)
	assert.Equal(t, "01", first["intendeduse_id"])
	assert.NotContains(t, first, "inteduse_id")
}

func TestExtractParseFailureReturnsEmpty(t *testing.T) {
	assert.Empty(t, Extract("I could not produce an answer.", "intendeduses", nil))
	assert.Empty(t, Extract(`{"broken": `, "intendeduses", nil))
	assert.Empty(t, Extract("", "intendeduses", nil))
}

func TestExtractIdempotentOnExpectedKey(t *testing.T) {
	answer := `{"harmsassessment": {"q1": "text"}}`

	once := Extract(answer, "harmsassessment", nil)
	require.Contains(t, once, "harmsassessment")

	// Already-correct payloads pass through untouched.
	inner, ok := once["harmsassessment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text", inner["q1"])
}
