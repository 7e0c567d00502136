// Package document applies a finished substitution map to assessment
// template documents.
package document

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/plimantour/rai-agent/core/assessment"
)

// Applier fills a template with the substitutions from a pipeline run.
type Applier interface {
	Apply(templatePath, outputPath string, subs *assessment.Substitutions) error
}

// TextApplier fills plain-text templates. Placeholders left unfilled
// after application are logged so template drift is visible.
type TextApplier struct {
	logger *slog.Logger
}

func NewTextApplier(logger *slog.Logger) *TextApplier {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextApplier{logger: logger}
}

func (a *TextApplier) Apply(templatePath, outputPath string, subs *assessment.Substitutions) error {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}

	filled := subs.Apply(string(raw))

	if leftover := countPlaceholders(filled); leftover > 0 {
		a.logger.Warn(
			"template still contains unfilled placeholders",
			slog.String("template", templatePath),
			slog.Int("placeholders", leftover),
		)
	}

	if err := os.WriteFile(outputPath, []byte(filled), 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", outputPath, err)
	}
	a.logger.Info(
		"applied substitutions to template",
		slog.String("template", templatePath),
		slog.String("output", outputPath),
		slog.Int("substitutions", subs.Len()),
	)
	return nil
}

// countPlaceholders counts remaining ## tokens of the template's
// placeholder form.
func countPlaceholders(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		for {
			idx := strings.Index(line, "##")
			if idx < 0 {
				break
			}
			rest := line[idx+2:]
			if len(rest) > 0 && rest[0] >= 'A' && rest[0] <= 'Z' {
				count++
			}
			line = rest
		}
	}
	return count
}
