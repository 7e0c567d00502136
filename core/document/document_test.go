package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plimantour/rai-agent/core/assessment"
)

func TestTextApplierFillsTemplate(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.md")
	outputPath := filepath.Join(dir, "filled.md")

	template := "# Assessment\n\nSolution: ##SOLUTION_NAME\nFirst use: ##INTENDED_USE_NAME_01\nUnfilled: ##NEVER_SET\n"
	require.NoError(t, os.WriteFile(templatePath, []byte(template), 0o644))

	subs := assessment.NewSubstitutions()
	subs.Add("##SOLUTION_NAME", "ClaimsAI")
	subs.Add("##INTENDED_USE_NAME_01", "Claims triage")

	applier := NewTextApplier(nil)
	require.NoError(t, applier.Apply(templatePath, outputPath, subs))

	filled, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(filled), "Solution: ClaimsAI")
	assert.Contains(t, string(filled), "First use: Claims triage")
	assert.Contains(t, string(filled), "##NEVER_SET")
}

func TestTextApplierMissingTemplate(t *testing.T) {
	applier := NewTextApplier(nil)
	err := applier.Apply(filepath.Join(t.TempDir(), "absent.md"), "out.md", assessment.NewSubstitutions())
	assert.Error(t, err)
}

func TestCountPlaceholders(t *testing.T) {
	assert.Equal(t, 2, countPlaceholders("a ##FOO b\n##BAR"))
	assert.Equal(t, 0, countPlaceholders("markdown ## heading"))
}
