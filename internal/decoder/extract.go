package decoder

import (
	"fmt"
	"strings"
)

// Extractor isolates the JSON payload inside a model reply.
type Extractor interface {
	Extract(raw string) (string, bool)
}

// BraceSpan takes everything from the first '{' to the last '}', inclusive.
type BraceSpan struct{}

// Extract implements Extractor.
func (BraceSpan) Extract(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// FencedBlock prefers the body of the first markdown code fence and then
// applies BraceSpan. Replies without a fence fall back to BraceSpan directly.
type FencedBlock struct{}

// Extract implements Extractor.
func (FencedBlock) Extract(raw string) (string, bool) {
	return BraceSpan{}.Extract(stripFence(raw))
}

func stripFence(text string) string {
	open := strings.Index(text, "```")
	if open < 0 {
		return text
	}
	body := text[open+3:]

	// Skip a language tag such as "json" on the opening line.
	if nl := strings.Index(body, "\n"); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if len(tag) < 20 && !strings.ContainsAny(tag, " {") {
			body = body[nl+1:]
		}
	}

	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// ExtractorByName maps the workflow.extractor setting to a strategy.
func ExtractorByName(name string) (Extractor, error) {
	switch name {
	case "", "brace":
		return BraceSpan{}, nil
	case "fenced":
		return FencedBlock{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
}
