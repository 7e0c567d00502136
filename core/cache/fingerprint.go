package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Fingerprint derives the content-addressed cache key for one completion
// request. Every semantically relevant input participates: model and
// language (lowercased model only; language is caller-controlled), the full
// user prompt, sampling temperature, the compression flag, and the
// reasoning-effort value when the model takes one. Changing any single
// field yields a different key.
func Fingerprint(model, language, prompt string, temperature float64, compress bool, reasoningEffort string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(model))
	b.WriteByte('\x1f')
	b.WriteString(language)
	b.WriteByte('\x1f')
	b.WriteString(prompt)
	b.WriteByte('\x1f')
	b.WriteString(strconv.FormatFloat(temperature, 'g', -1, 64))
	b.WriteByte('\x1f')
	b.WriteString(strconv.FormatBool(compress))
	if reasoningEffort != "" {
		b.WriteByte('\x1f')
		b.WriteString(reasoningEffort)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
