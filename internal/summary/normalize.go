package summary

import (
	"regexp"
	"strings"
)

// headerPattern matches markdown headers (h1-h6) at the start of a line.
// Trailing spaces/tabs on the header line are trimmed by the [^\n]+ group.
var headerPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+([^\n]+?)[ \t]*$`)

// fencePattern matches fenced code block delimiters (``` or ~~~) at the
// start of a line, allowing 0-3 spaces of indentation per CommonMark.
var fencePattern = regexp.MustCompile("(?m)^[ ]{0,3}(`{3,}|~{3,})")

// narrativeSynonyms maps narrative section names to the header spellings
// (lowercase) accepted when carving a free-form report into sections.
var narrativeSynonyms = map[string][]string{
	"summary":        {"summary", "overview", "tl;dr", "tldr"},
	"purpose":        {"purpose", "goal", "objective", "why"},
	"key_decisions":  {"key decisions", "decisions", "decisions / constraints", "decisions/constraints", "choices"},
	"technologies":   {"technologies", "tech", "stack", "tools"},
	"status":         {"status", "current status", "state", "progress", "where we are"},
	"extended_notes": {"extended notes", "notes", "details", "additional notes", "misc"},
}

// MatchNarrative resolves a header spelling to a narrative section name,
// or "" if it matches none.
func MatchNarrative(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	for name, synonyms := range narrativeSynonyms {
		for _, syn := range synonyms {
			if h == syn {
				return name
			}
		}
	}
	return ""
}

// ExtractNarrative carves a free-form markdown report into narrative section
// values by matching headers (synonym-aware, case-insensitive). Headers
// inside fenced code blocks are ignored. Text before the first matched
// header is dropped. When no header matches, the whole report lands in
// extended_notes so nothing is lost.
//
// This is the deterministic fallback for the normalization collaborator;
// an AI-backed normalizer can replace it behind the same contract.
func ExtractNarrative(raw string) map[string]string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	matches := headerPattern.FindAllStringSubmatchIndex(raw, -1)
	fences := fencedRanges(raw)

	type boundary struct {
		name         string
		contentStart int
	}
	var boundaries []boundary
	var headerStarts []int

	for _, m := range matches {
		if insideFence(m[0], fences) {
			continue
		}
		headerStarts = append(headerStarts, m[0])
		name := MatchNarrative(raw[m[4]:m[5]])
		if name == "" {
			continue
		}
		contentStart := m[1]
		if contentStart < len(raw) && raw[contentStart] == '\n' {
			contentStart++
		}
		boundaries = append(boundaries, boundary{name: name, contentStart: contentStart})
	}

	if len(boundaries) == 0 {
		return map[string]string{"extended_notes": trimmed}
	}

	out := make(map[string]string, len(boundaries))
	for _, b := range boundaries {
		contentEnd := len(raw)
		for _, hs := range headerStarts {
			if hs >= b.contentStart {
				contentEnd = hs
				break
			}
		}
		content := strings.TrimSpace(raw[b.contentStart:contentEnd])
		if content == "" {
			continue
		}
		// First occurrence wins when a report repeats a section.
		if _, ok := out[b.name]; !ok {
			out[b.name] = content
		}
	}

	if len(out) == 0 {
		return map[string]string{"extended_notes": trimmed}
	}
	return out
}

// fencedRanges returns byte offset ranges [start, end) for fenced code
// blocks. A closing fence must use the same character and be at least as
// long as the opening fence.
func fencedRanges(text string) [][2]int {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 2 {
		return nil
	}

	var ranges [][2]int
	var openChar byte
	var openLen int
	var openStart int
	inFence := false

	for _, match := range matches {
		fenceChars := text[match[2]:match[3]]
		char := fenceChars[0]
		fenceLen := len(fenceChars)

		if !inFence {
			openChar = char
			openLen = fenceLen
			openStart = match[0]
			inFence = true
		} else if char == openChar && fenceLen >= openLen {
			ranges = append(ranges, [2]int{openStart, match[1]})
			inFence = false
		}
	}
	return ranges
}

// insideFence reports whether byte offset pos falls inside any fenced range.
func insideFence(pos int, ranges [][2]int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
