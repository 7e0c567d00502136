// Package compress implements prompt compression: parsing the inline
// segment markup that marks which spans of a prompt may be compressed
// and at what rate, and forwarding compressible spans to an external
// compression service.
package compress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	openTag  = "<llmlingua"
	closeTag = "</llmlingua>"
)

// segmentPattern matches one <llmlingua ...>content</llmlingua> span.
// rate and compress are both optional and may appear in either order.
var segmentPattern = regexp.MustCompile(
	`<llmlingua\s*(?:,\s*rate\s*=\s*([\d.]+))?\s*(?:,\s*compress\s*=\s*(True|False))?\s*(?:,\s*rate\s*=\s*([\d.]+))?\s*(?:,\s*compress\s*=\s*(True|False))?\s*>([^<]+)</llmlingua>`,
)

// anyTagPattern matches any markup tag, open or close, for stripping.
var anyTagPattern = regexp.MustCompile(`<llmlingua[^>]*>|</llmlingua>`)

// Segment is one annotated span of a prompt.
type Segment struct {
	Text     string
	Rate     float64
	Compress bool
}

// ParseSegments splits a prompt into its annotated segments. Text
// outside any tag is wrapped in a default segment, which compresses at
// globalRate. A segment with compress=False keeps rate 1.0 unless one
// was given explicitly.
func ParseSegments(prompt string, globalRate float64) ([]Segment, error) {
	if !strings.HasPrefix(prompt, openTag) {
		prompt = openTag + ">" + prompt
	}
	if !strings.HasSuffix(prompt, closeTag) {
		prompt = prompt + closeTag
	}

	matches := segmentPattern.FindAllStringSubmatch(prompt, -1)
	segments := make([]Segment, 0, len(matches))
	for _, match := range matches {
		rawRate := match[1]
		if rawRate == "" {
			rawRate = match[3]
		}
		rawCompress := match[2]
		if rawCompress == "" {
			rawCompress = match[4]
		}

		seg := Segment{Text: match[5], Compress: true}
		if rawCompress != "" {
			seg.Compress = rawCompress == "True"
		}
		switch {
		case rawRate != "":
			rate, err := strconv.ParseFloat(rawRate, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid rate %q in compression markup: %w", rawRate, err)
			}
			seg.Rate = rate
		case seg.Compress:
			seg.Rate = globalRate
		default:
			seg.Rate = 1.0
		}
		if seg.Rate > 1.0 {
			return nil, fmt.Errorf("compression rate %v exceeds 1.0", seg.Rate)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// StripMarkup removes all compression tags from a prompt, leaving the
// plain text. Used when compression is disabled so the markup never
// reaches the model.
func StripMarkup(prompt string) string {
	return anyTagPattern.ReplaceAllString(prompt, "")
}
