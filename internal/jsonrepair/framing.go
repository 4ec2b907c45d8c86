package jsonrepair

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// stripFraming removes reasoning blocks and markdown fence lines that models wrap
// around the payload. An unclosed reasoning block is cut up to the first line that
// starts with '{', since the payload normally follows the reasoning.
func stripFraming(s string) string {
	s = stripReasoning(s)
	return stripFences(s)
}

func stripReasoning(s string) string {
	// A closing tag with no opener means everything before it is reasoning.
	if c := strings.Index(s, thinkClose); c >= 0 {
		if o := strings.Index(s, thinkOpen); o < 0 || o > c {
			s = s[c+len(thinkClose):]
		}
	}
	for {
		o := strings.Index(s, thinkOpen)
		if o < 0 {
			return s
		}
		rest := s[o+len(thinkOpen):]
		if c := strings.Index(rest, thinkClose); c >= 0 {
			s = s[:o] + rest[c+len(thinkClose):]
			continue
		}
		if nl := strings.Index(rest, "\n{"); nl >= 0 {
			return s[:o] + rest[nl+1:]
		}
		if b := strings.IndexByte(rest, '{'); b >= 0 {
			return s[:o] + rest[b:]
		}
		return s[:o]
	}
}

// stripFences drops lines that open or close a markdown code fence. Such lines cannot
// occur inside a valid JSON string because raw newlines are not allowed there.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}
