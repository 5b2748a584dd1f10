package normalize

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// tryJSON attempts the direct-JSON parse path: first the whole trimmed
// input, then the contents of a fenced ```json block. Only a top-level JSON
// object qualifies; arrays and scalars fall through to the Markdown path.
func tryJSON(trimmed string) (*NormalizedResponse, bool) {
	if resp, ok := parseJSONObject(trimmed); ok {
		return resp, true
	}
	if block, ok := fencedJSONBlock(trimmed); ok {
		return parseJSONObject(block)
	}
	return nil, false
}

// parseJSONObject walks the object's top-level keys with a token decoder so
// key order is preserved: section order must match source order.
func parseJSONObject(src string) (*NormalizedResponse, bool) {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}

	resp := &NormalizedResponse{Sections: []Section{}}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}

		mapTopLevelField(resp, key, value)
	}

	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}

	resp.RawJSON = json.RawMessage(src)
	return resp, true
}

// mapTopLevelField routes one top-level key/value pair. citations/sources,
// metrics/kpis, and follow-up keys are intercepted before generic section
// mapping.
func mapTopLevelField(resp *NormalizedResponse, key string, value any) {
	switch normalizeKey(key) {
	case "citations", "sources":
		resp.Citations = append(resp.Citations, parseCitations(value)...)

	case "metrics", "kpis":
		metrics := parseMetrics(value)
		if len(metrics) > 0 {
			resp.Sections = append(resp.Sections, Section{
				Type:    SectionMetrics,
				Title:   titleCase(key),
				Metrics: metrics,
			})
		}

	case "followupquestions", "followup", "followups":
		resp.FollowUpQuestions = append(resp.FollowUpQuestions, parseFollowUps(value)...)

	default:
		sec := sectionForJSONField(key, value)
		if !sec.Empty() {
			resp.Sections = append(resp.Sections, sec)
		}
	}
}

// sectionForJSONField builds a generic section: arrays become list items,
// strings become markdown prose, anything else is stringified. Unrecognized
// keys degrade to raw.
func sectionForJSONField(key string, value any) Section {
	sectionType, known := sectionTypeForJSONKey(key)
	if !known {
		sectionType = SectionRaw
	}

	sec := Section{Type: sectionType, Title: titleCase(key)}

	switch v := value.(type) {
	case []any:
		items := lo.FilterMap(v, func(item any, _ int) (string, bool) {
			s := stringifyScalar(item)
			return s, s != ""
		})
		sec.ListItems = items
	case string:
		sec.ContentMarkdown = v
	default:
		sec.ContentMarkdown = stringifyScalar(v)
	}

	return sec
}

// parseCitations accepts an array of citation objects. Entries missing an
// id get a generated one so renderers can key them.
func parseCitations(value any) []Citation {
	arr, ok := value.([]any)
	if !ok {
		return nil
	}

	var citations []Citation
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		c := Citation{
			ID:    stringField(m, "id"),
			Title: stringField(m, "title", "name"),
			URL:   stringField(m, "url", "link"),
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}

		c.SourceType = citationSourceType(stringField(m, "sourceType", "source_type", "type"))

		if n, ok := numberField(m, "pageNumber", "page_number", "page"); ok {
			c.PageNumber = int(n)
		}

		if tr, ok := fieldValue(m, "timestampRange", "timestamp_range").(map[string]any); ok {
			r := &TimestampRange{}
			if start, ok := numberField(tr, "start"); ok {
				r.Start = start
			}
			if end, ok := numberField(tr, "end"); ok {
				r.End = end
			}
			c.TimestampRange = r
		}

		if meta, ok := fieldValue(m, "metadata").(map[string]any); ok {
			c.Metadata = meta
		}

		citations = append(citations, c)
	}
	return citations
}

func citationSourceType(raw string) SourceType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pdf":
		return SourcePDF
	case "email":
		return SourceEmail
	case "audio":
		return SourceAudio
	case "":
		return SourceOther
	default:
		return SourceType(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// parseMetrics accepts either an array of metric objects or a flat
// name-to-value map (sorted by name for determinism).
func parseMetrics(value any) []Metric {
	switch v := value.(type) {
	case []any:
		var metrics []Metric
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			metric := Metric{
				Name:        stringField(m, "name", "label", "metric"),
				Unit:        stringField(m, "unit"),
				Description: stringField(m, "description"),
				Severity:    MetricSeverity(strings.ToLower(stringField(m, "severity"))),
				Trend:       MetricTrend(strings.ToLower(stringField(m, "trend"))),
			}
			if raw := fieldValue(m, "value"); raw != nil {
				metric.Value = scalarValue(raw)
			}
			if metric.Name == "" && metric.Value == nil {
				continue
			}
			metrics = append(metrics, metric)
		}
		return metrics

	case map[string]any:
		names := lo.Keys(v)
		sort.Strings(names)
		var metrics []Metric
		for _, name := range names {
			metrics = append(metrics, Metric{
				Name:  titleCase(name),
				Value: scalarValue(v[name]),
			})
		}
		return metrics

	default:
		return nil
	}
}

// parseFollowUps accepts an array (taken as-is) or a newline-separated
// string with optional list numbering.
func parseFollowUps(value any) []string {
	switch v := value.(type) {
	case []any:
		return lo.FilterMap(v, func(item any, _ int) (string, bool) {
			s := strings.TrimSpace(stringifyScalar(item))
			return s, s != ""
		})
	case string:
		var questions []string
		for _, line := range strings.Split(v, "\n") {
			q := stripListPrefix(strings.TrimSpace(line))
			if q != "" {
				questions = append(questions, q)
			}
		}
		return questions
	default:
		return nil
	}
}

// fieldValue finds the first of the named keys present in m, matching keys
// case-insensitively and ignoring underscores and hyphens.
func fieldValue(m map[string]any, names ...string) any {
	for _, name := range names {
		if v, ok := m[name]; ok {
			return v
		}
	}
	for k, v := range m {
		nk := normalizeKey(k)
		for _, name := range names {
			if nk == normalizeKey(name) {
				return v
			}
		}
	}
	return nil
}

func stringField(m map[string]any, names ...string) string {
	if v := fieldValue(m, names...); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return stringifyScalar(v)
	}
	return ""
}

func numberField(m map[string]any, names ...string) (float64, bool) {
	switch v := fieldValue(m, names...).(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// scalarValue converts decoded JSON values to plain Go scalars: integers
// stay integral, other numbers become float64.
func scalarValue(v any) any {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

// stringifyScalar renders a decoded JSON value as display text. Composite
// values serialize to compact JSON.
func stringifyScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// stripListPrefix removes one leading list marker: "1. ", "2) ", "- ", or
// "* ".
func stripListPrefix(line string) string {
	if rest, ok := cutNumberPrefix(line); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(line, "- "); ok {
		return strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutPrefix(line, "* "); ok {
		return strings.TrimSpace(rest)
	}
	return line
}

// cutNumberPrefix strips a "<digits>. " or "<digits>) " marker.
func cutNumberPrefix(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return line, false
	}
	if line[i] != '.' && line[i] != ')' {
		return line, false
	}
	rest := line[i+1:]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return line, false
	}
	return strings.TrimSpace(rest), true
}

// fencedJSONBlock extracts the contents of the first ```json fence.
func fencedJSONBlock(s string) (string, bool) {
	lower := strings.ToLower(s)
	start := strings.Index(lower, "```json")
	if start < 0 {
		return "", false
	}

	rest := s[start+len("```json"):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}

	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(rest[:end]), true
}
