package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/plimantour/rai-agent/core/completion"
	"github.com/plimantour/rai-agent/core/extract"
)

// AnalyzeParams configures the free-text solution-description review.
type AnalyzeParams struct {
	SolutionDescription string
	Language            string
	Model               string
	RebuildCache        bool
	Progress            ProgressFunc
}

// AnalyzeDescription reviews a solution description and returns
// feedback on what is missing or unclear for a high quality
// assessment, plus the completion cost incurred.
func (p *Pipeline) AnalyzeDescription(ctx context.Context, params AnalyzeParams) (string, float64, error) {
	if params.Language == "" {
		params.Language = "English"
	}
	if params.Progress != nil {
		params.Progress(fmt.Sprintf("Auditing the solution description with %s", displayModel(params.Model)))
	}

	system := strings.ReplaceAll(systemPrompt, targetLanguagePlaceholder, params.Language)
	prompt := strings.ReplaceAll(descriptionAnalysisPrompt, solutionDescriptionPlaceholder, params.SolutionDescription)
	prompt = strings.ReplaceAll(prompt, targetLanguagePlaceholder, params.Language)

	comp, err := p.client.GetCompletion(ctx, completion.Params{
		Prompt:       prompt,
		SystemPrompt: system,
		Model:        params.Model,
		Temperature:  0.4,
		Language:     params.Language,
		RebuildCache: params.RebuildCache,
	})
	if err != nil {
		return "", 0, fmt.Errorf("solution description analysis failed: %w", err)
	}
	return comp.Answer, comp.Cost, nil
}

// SecurityAudit is the outcome of the bias and prompt-injection audit
// of a solution description.
type SecurityAudit struct {
	Report               string
	RewrittenDescription string
	IdentifiedBias       []string
	IdentifiedCommands   []string
	Cost                 float64
}

// AuditDescription checks a solution description for embedded bias and
// prompt-injection attempts before it is fed to the pipeline. On
// failure the original description is returned unmodified so the
// caller can proceed.
func (p *Pipeline) AuditDescription(ctx context.Context, params AnalyzeParams) (SecurityAudit, error) {
	if params.Language == "" {
		params.Language = "English"
	}
	if params.Progress != nil {
		params.Progress(fmt.Sprintf("Auditing the solution description bias or risks with %s", displayModel(params.Model)))
	}

	system := strings.ReplaceAll(systemPrompt, targetLanguagePlaceholder, params.Language)
	prompt := strings.ReplaceAll(securityAnalysisPrompt, solutionDescriptionPlaceholder, params.SolutionDescription)
	prompt = strings.ReplaceAll(prompt, targetLanguagePlaceholder, params.Language)

	audit := SecurityAudit{RewrittenDescription: params.SolutionDescription}

	comp, err := p.client.GetCompletion(ctx, completion.Params{
		Prompt:       prompt,
		SystemPrompt: system,
		Model:        params.Model,
		Temperature:  0.1,
		Language:     params.Language,
		RebuildCache: params.RebuildCache,
	})
	if err != nil {
		return audit, fmt.Errorf("solution description audit failed: %w", err)
	}
	audit.Cost = comp.Cost

	parsed := extract.Extract(comp.Answer, "solutionassessment", p.logger)
	assessmentPayload := asMap(parsed["solutionassessment"])
	if assessmentPayload == nil {
		return audit, nil
	}

	audit.IdentifiedBias = getStringList(assessmentPayload, "identified_bias")
	audit.IdentifiedCommands = getStringList(assessmentPayload, "identified_prompt_commands")
	if rewritten := getString(assessmentPayload, "rewritten_solution_description"); rewritten != "" {
		audit.RewrittenDescription = rewritten
	}

	var report strings.Builder
	if len(audit.IdentifiedBias) > 0 {
		report.WriteString("### Potential Bias in the solution description:\n")
		for _, bias := range audit.IdentifiedBias {
			report.WriteString("\n- " + bias)
		}
		report.WriteString("\n\n")
	}
	if len(audit.IdentifiedCommands) > 0 {
		report.WriteString("### Potential Risks in the solution description:\n")
		for _, risk := range audit.IdentifiedCommands {
			report.WriteString("\n- " + risk)
		}
		report.WriteString("\n\n")
	}
	audit.Report = report.String()
	return audit, nil
}
