package assessment

import "strings"

// Helpers for walking the loosely-typed maps produced by JSON
// extraction. Missing or mistyped values degrade to zero values so
// processors can emit blank substitutions instead of failing.

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case []any:
		// Some models return a list where a paragraph was expected.
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func getBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	default:
		return false
	}
}

func getStringList(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	var out []string
	switch v := m[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		out = append(out, v)
	}
	return out
}

// listJoin renders a list value the way the template expects: list
// entries one per line with a trailing newline, a plain string as is.
func listJoin(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return ""
		}
		return strings.Join(parts, "\n") + "\n"
	default:
		return ""
	}
}

// useID normalizes an intended-use id, tolerating models that return
// "intended_use_03" instead of "03".
func useID(m map[string]any, key string) string {
	id := getString(m, key)
	if idx := strings.LastIndex(id, "_"); idx >= 0 {
		id = id[idx+1:]
	}
	if len(id) == 1 {
		id = "0" + id
	}
	return id
}
