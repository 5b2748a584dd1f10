package normalize

import (
	"fmt"
	"strings"
)

// Normalize converts a raw provider payload into a renderable document. It
// never returns an error and never panics: the three parse strategies are
// attempted in order and the last one always succeeds, while a panic
// anywhere inside degrades to an error section.
func Normalize(raw string) (resp *NormalizedResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = ErrorResponse(fmt.Sprintf("normalization failed: %v", r))
		}
	}()

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &NormalizedResponse{Sections: []Section{}}
	}

	if r, ok := tryJSON(trimmed); ok {
		return r
	}

	if sections, ok := parseMarkdown(trimmed); ok && len(sections) > 0 {
		return &NormalizedResponse{Sections: sections, RawText: raw}
	}

	return fallbackResponse(trimmed, raw)
}

// ErrorResponse builds the document returned when normalization itself
// failed: one error-typed section plus the Error field, so renderers still
// receive something displayable.
func ErrorResponse(message string) *NormalizedResponse {
	return &NormalizedResponse{
		Sections: []Section{{
			Type:            SectionError,
			Title:           "Error",
			ContentMarkdown: message,
		}},
		Error: message,
	}
}
