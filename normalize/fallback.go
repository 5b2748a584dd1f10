package normalize

import (
	"strings"
	"unicode"
)

// fallbackResponse handles input with no JSON and no Markdown structure.
// If the text still shows list-like shape (numbered lines, bullets, or
// "Label: content" lines) it gets a light structuring pass; otherwise the
// trimmed input becomes one raw section verbatim.
func fallbackResponse(trimmed, raw string) *NormalizedResponse {
	if trimmed == "" {
		return &NormalizedResponse{Sections: []Section{}}
	}

	lines := strings.Split(trimmed, "\n")

	content := trimmed
	if hasListStructure(lines) {
		content = restructure(lines)
	}

	return &NormalizedResponse{
		Sections: []Section{{Type: SectionRaw, ContentMarkdown: content}},
		RawText:  raw,
	}
}

// hasListStructure reports whether any line looks like a list item or a
// labeled statement.
func hasListStructure(lines []string) bool {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if _, ok := cutNumberPrefix(trimmed); ok {
			return true
		}
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			return true
		}
		if _, _, ok := splitLabel(trimmed); ok && i > 0 {
			return true
		}
	}
	return false
}

// restructure rewrites list-like lines into normalized bullet and label
// forms and joins everything back into one block.
func restructure(lines []string) string {
	var out []string

	appendLine := func(s string) {
		if s == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			return
		}
		out = append(out, s)
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			appendLine("")
			continue
		}

		if rest, ok := cutNumberPrefix(trimmed); ok {
			appendLine("- " + rest)
			continue
		}

		if label, content, ok := splitLabel(trimmed); ok && i > 0 {
			appendLine("**" + label + ":** " + content)
			continue
		}

		appendLine(trimmed)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// splitLabel splits "Label: content" or "**Label**: content" lines. The
// label must be capitalized and short so ordinary prose containing a colon
// is left alone.
func splitLabel(line string) (label, content string, ok bool) {
	if rest, found := strings.CutPrefix(line, "**"); found {
		if idx := strings.Index(rest, "**:"); idx > 0 {
			label = strings.TrimSpace(rest[:idx])
			content = strings.TrimSpace(rest[idx+3:])
			if label != "" && content != "" {
				return label, content, true
			}
		}
		return "", "", false
	}

	idx := strings.Index(line, ": ")
	if idx <= 0 {
		return "", "", false
	}

	label = line[:idx]
	if len(label) > 60 || strings.ContainsAny(label, "|#`*") {
		return "", "", false
	}
	if !unicode.IsUpper([]rune(label)[0]) {
		return "", "", false
	}

	content = strings.TrimSpace(line[idx+1:])
	if content == "" {
		return "", "", false
	}
	return label, content, true
}
