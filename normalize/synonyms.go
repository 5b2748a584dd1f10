package normalize

import (
	"strings"
	"unicode"
)

// headingSynonyms maps lower-cased heading text to a section type. This is
// static configuration, not logic: extending the vocabulary means adding a
// row, nothing else.
var headingSynonyms = map[string]SectionType{
	"summary":                    SectionSummary,
	"executive summary":          SectionSummary,
	"overview":                   SectionSummary,
	"tl;dr":                      SectionSummary,
	"risks":                      SectionRisks,
	"key risks":                  SectionRisks,
	"risk factors":               SectionRisks,
	"concerns":                   SectionRisks,
	"opportunities":              SectionOpportunities,
	"growth opportunities":       SectionOpportunities,
	"actions":                    SectionActions,
	"action items":               SectionActions,
	"immediate actions":          SectionActions,
	"recommendations":            SectionRecommendations,
	"recommended actions":        SectionRecommendations,
	"next steps":                 SectionNextSteps,
	"nextsteps":                  SectionNextSteps,
	"metrics":                    SectionMetrics,
	"key metrics":                SectionMetrics,
	"kpis":                       SectionMetrics,
	"key performance indicators": SectionMetrics,
	"analysis":                   SectionAnalysis,
	"detailed analysis":          SectionAnalysis,
	"assessment":                 SectionAnalysis,
	"key points":                 SectionKeyPoints,
	"keypoints":                  SectionKeyPoints,
	"highlights":                 SectionKeyPoints,
	"key takeaways":              SectionKeyPoints,
	"follow-up questions":        SectionFollowUps,
	"follow up questions":        SectionFollowUps,
	"followups":                  SectionFollowUps,
}

// jsonKeySections maps normalized top-level JSON keys to section types.
// Keys are lower-cased with underscores and hyphens removed, so
// "nextSteps", "next_steps", and "next-steps" all land on the same row.
var jsonKeySections = map[string]SectionType{
	"summary":         SectionSummary,
	"risks":           SectionRisks,
	"opportunities":   SectionOpportunities,
	"actions":         SectionActions,
	"recommendations": SectionRecommendations,
	"nextsteps":       SectionNextSteps,
	"analysis":        SectionAnalysis,
	"keypoints":       SectionKeyPoints,
}

// sectionTypeForHeading resolves a heading to a section type. Unmatched
// headings degrade to raw.
func sectionTypeForHeading(heading string) SectionType {
	key := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(heading), ":")))
	if t, ok := headingSynonyms[key]; ok {
		return t
	}
	return SectionRaw
}

// knownHeading reports whether the heading matches the synonym table.
func knownHeading(heading string) bool {
	key := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(heading), ":")))
	_, ok := headingSynonyms[key]
	return ok
}

// sectionTypeForJSONKey resolves a top-level JSON key to a section type.
func sectionTypeForJSONKey(key string) (SectionType, bool) {
	t, ok := jsonKeySections[normalizeKey(key)]
	return t, ok
}

// normalizeKey lower-cases a key and strips underscores, hyphens, and
// spaces for case-insensitive matching.
func normalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch r {
		case '_', '-', ' ':
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// titleCase renders a heading or key as a human-readable title: camelCase
// and snake_case are split into words and each word is capitalized.
func titleCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// splitWords breaks camelCase, snake_case, kebab-case, and spaced text into
// words.
func splitWords(s string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()

	if len(words) == 0 {
		return []string{s}
	}
	return words
}
