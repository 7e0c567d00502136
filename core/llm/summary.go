package llm

import (
	"strings"

	"github.com/openai/openai-go/responses"
)

// summaryCharBudget caps the surfaced reasoning summary. Traces can
// run to many thousands of characters and the UI only shows a digest.
const summaryCharBudget = 1200

// summaryFromResponse gathers the reasoning-item summary fragments of
// a response into one capped string and classifies the outcome.
func summaryFromResponse(response *responses.Response) (string, SummaryStatus) {
	var fragments []string
	sawReasoning := false
	for _, item := range response.Output {
		if item.Type != "reasoning" {
			continue
		}
		sawReasoning = true
		for _, part := range item.Summary {
			fragments = append(fragments, part.Text)
		}
	}

	text := flattenFragments(fragments)
	switch {
	case text != "":
		return text, SummaryCaptured
	case sawReasoning:
		return "", SummaryEmpty
	default:
		return "", SummaryAbsent
	}
}

// flattenFragments joins fragments in order, dropping blanks and
// duplicates, and truncates to the character budget with an ellipsis.
func flattenFragments(fragments []string) string {
	seen := make(map[string]bool, len(fragments))
	var kept []string
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" || seen[fragment] {
			continue
		}
		seen[fragment] = true
		kept = append(kept, fragment)
	}

	joined := strings.Join(kept, "\n")
	runes := []rune(joined)
	if len(runes) <= summaryCharBudget {
		return joined
	}
	return string(runes[:summaryCharBudget]) + "…"
}
