// Package extract recovers structured JSON payloads from model answers
// that may surround the payload with prose or drift from the requested
// key names.
package extract

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
)

// driftKeys maps known vendor-specific key misspellings to their
// canonical names. Mistral Large in particular drops syllables from
// long snake_case keys.
var driftKeys = map[string]string{
	"inteduse_id":               "intendeduse_id",
	"inteduse_answers":          "intendeduse_answers",
	"inteduse_fairness_answers": "intendeduse_fairness_answers",
}

// Extract trims the answer, locates the JSON payload inside it, and
// re-keys the result so that expectedKey is the top-level key. A bare
// list answer is wrapped under expectedKey. On any parse failure the
// raw answer is logged and an empty map is returned so the caller can
// degrade to blank substitutions.
func Extract(answer string, expectedKey string, logger *slog.Logger) map[string]any {
	if logger == nil {
		logger = slog.Default()
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		logger.Warn("empty answer, nothing to extract", slog.String("expected_key", expectedKey))
		return map[string]any{}
	}

	if answer[0] == '[' {
		var list []any
		if err := json.Unmarshal([]byte(normalizeDriftKeys(answer)), &list); err != nil {
			logger.Warn(
				"failed to parse list answer",
				slog.String("expected_key", expectedKey),
				slog.String("answer", answer),
				slog.String("error", err.Error()),
			)
			return map[string]any{}
		}
		return map[string]any{expectedKey: list}
	}

	span, ok := jsonSpan(answer)
	if !ok {
		logger.Warn(
			"no JSON object found in answer",
			slog.String("expected_key", expectedKey),
			slog.String("answer", answer),
		)
		return map[string]any{}
	}
	span = normalizeDriftKeys(span)

	parsed := map[string]any{}
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		logger.Warn(
			"failed to parse JSON answer",
			slog.String("expected_key", expectedKey),
			slog.String("answer", answer),
			slog.String("error", err.Error()),
		)
		return map[string]any{}
	}

	if _, found := parsed[expectedKey]; found {
		return parsed
	}

	if !hasNestedStructures(parsed) {
		return map[string]any{expectedKey: parsed}
	}

	// The model produced a structured object under the wrong name.
	// Rename the first key in document order to the expected one.
	firstKey := firstDocumentKey(span)
	if firstKey == "" {
		return map[string]any{expectedKey: parsed}
	}
	logger.Info(
		"renaming top-level key to expected key",
		slog.String("from", firstKey),
		slog.String("to", expectedKey),
	)
	parsed[expectedKey] = parsed[firstKey]
	delete(parsed, firstKey)
	return parsed
}

// jsonSpan returns the greedy outermost brace span of the answer,
// tolerating prose before and after it.
func jsonSpan(answer string) (string, bool) {
	start := strings.IndexByte(answer, '{')
	end := strings.LastIndexByte(answer, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return answer[start : end+1], true
}

// normalizeDriftKeys rewrites known misspelled keys in place. The
// replacements operate on quoted key tokens so values are untouched.
func normalizeDriftKeys(payload string) string {
	for drift, canonical := range driftKeys {
		payload = strings.ReplaceAll(payload, `"`+drift+`"`, `"`+canonical+`"`)
	}
	return payload
}

// hasNestedStructures reports whether any top-level value is itself an
// object or a list containing objects. A flat object is safe to wrap
// under the expected key wholesale; a nested one already carries the
// intended shape and only needs its top-level key renamed.
func hasNestedStructures(parsed map[string]any) bool {
	for _, value := range parsed {
		switch v := value.(type) {
		case map[string]any:
			return true
		case []any:
			for _, item := range v {
				if _, ok := item.(map[string]any); ok {
					return true
				}
			}
		}
	}
	return false
}

// firstDocumentKey returns the first top-level key in document order.
// Go maps do not preserve insertion order, so the raw payload is
// re-scanned with gjson, which iterates keys as written.
func firstDocumentKey(span string) string {
	first := ""
	gjson.Parse(span).ForEach(func(key, _ gjson.Result) bool {
		first = key.String()
		return false
	})
	return first
}
