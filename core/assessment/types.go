// Package assessment runs the template-fill pipeline that drafts a
// Responsible AI assessment from a solution description: a fixed
// sequence of generation steps, each with its own prompt, temperature,
// and post-processor emitting placeholder substitutions.
package assessment

import (
	"fmt"
	"strings"
)

// maxIntendedUses caps how many intended uses the template has slots
// for. Extra uses returned by the model are dropped.
const maxIntendedUses = 10

// maxStakeholdersPerUse caps the stakeholder slots per intended use.
const maxStakeholdersPerUse = 10

// IntendedUse is one generated intended use. The two-digit ID is
// assigned after generation, in list order.
type IntendedUse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StakeholderMap maps "intended_use_<id>" to the stakeholder names
// identified for that use.
type StakeholderMap map[string][]string

// Substitutions accumulates placeholder replacements across steps.
// Insertion order is preserved; re-adding a key updates its value in
// place, so a later step can legitimately recompute a shared
// placeholder.
type Substitutions struct {
	keys   []string
	values map[string]string
}

func NewSubstitutions() *Substitutions {
	return &Substitutions{values: map[string]string{}}
}

func (s *Substitutions) Add(placeholder, replacement string) {
	if _, exists := s.values[placeholder]; !exists {
		s.keys = append(s.keys, placeholder)
	}
	s.values[placeholder] = replacement
}

func (s *Substitutions) AddPairs(placeholders, replacements []string) {
	for i, placeholder := range placeholders {
		if i < len(replacements) {
			s.Add(placeholder, replacements[i])
		}
	}
}

func (s *Substitutions) Get(placeholder string) (string, bool) {
	v, ok := s.values[placeholder]
	return v, ok
}

func (s *Substitutions) Len() int {
	return len(s.keys)
}

// Keys returns the placeholders in insertion order.
func (s *Substitutions) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Apply replaces every placeholder in text with its replacement.
// Longer placeholders are applied first so a token that prefixes
// another cannot clobber it.
func (s *Substitutions) Apply(text string) string {
	keys := s.Keys()
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && len(keys[j]) > len(keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	for _, key := range keys {
		text = strings.ReplaceAll(text, key, s.values[key])
	}
	return text
}

// zeroPad formats a 1-based index as the template's two-digit form.
func zeroPad(n int) string {
	return fmt.Sprintf("%02d", n)
}
