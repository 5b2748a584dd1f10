package normalize

import "encoding/json"

// SectionType identifies the visual block a section renders as. Renderers
// must handle every value, including raw and error.
type SectionType string

const (
	SectionSummary         SectionType = "summary"
	SectionRisks           SectionType = "risks"
	SectionOpportunities   SectionType = "opportunities"
	SectionActions         SectionType = "actions"
	SectionRecommendations SectionType = "recommendations"
	SectionNextSteps       SectionType = "nextSteps"
	SectionMetrics         SectionType = "metrics"
	SectionAnalysis        SectionType = "analysis"
	SectionKeyPoints       SectionType = "keyPoints"
	SectionFollowUps       SectionType = "followUps"
	SectionTable           SectionType = "table"
	SectionRaw             SectionType = "raw"
	SectionError           SectionType = "error"
)

// Section is one typed block of the normalized document. At least one of
// ContentMarkdown, ListItems, Metrics, or Table is populated; Normalize
// never emits an empty section.
type Section struct {
	Type            SectionType `json:"type"`
	Title           string      `json:"title,omitempty"`
	ContentMarkdown string      `json:"contentMarkdown,omitempty"`
	ListItems       []string    `json:"listItems,omitempty"`
	Metrics         []Metric    `json:"metrics,omitempty"`
	Table           *Table      `json:"table,omitempty"`
}

// Empty reports whether the section carries no content at all.
func (s Section) Empty() bool {
	return s.ContentMarkdown == "" && len(s.ListItems) == 0 && len(s.Metrics) == 0 && s.Table == nil
}

// MetricSeverity grades a metric's urgency.
type MetricSeverity string

const (
	MetricSeverityInfo     MetricSeverity = "info"
	MetricSeverityLow      MetricSeverity = "low"
	MetricSeverityMedium   MetricSeverity = "medium"
	MetricSeverityHigh     MetricSeverity = "high"
	MetricSeverityCritical MetricSeverity = "critical"
)

// MetricTrend is the direction a metric is moving.
type MetricTrend string

const (
	TrendUp   MetricTrend = "up"
	TrendDown MetricTrend = "down"
	TrendFlat MetricTrend = "flat"
)

// Metric is one named measurement extracted from the source.
type Metric struct {
	Name        string         `json:"name"`
	Value       any            `json:"value"` // number or string
	Unit        string         `json:"unit,omitempty"`
	Description string         `json:"description,omitempty"`
	Severity    MetricSeverity `json:"severity,omitempty"`
	Trend       MetricTrend    `json:"trend,omitempty"`
}

// SourceType categorizes where a citation points.
type SourceType string

const (
	SourcePDF   SourceType = "pdf"
	SourceEmail SourceType = "email"
	SourceAudio SourceType = "audio"
	SourceOther SourceType = "other"
)

// TimestampRange locates a citation inside time-based media.
type TimestampRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Citation is one source reference extracted from the response.
type Citation struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	SourceType     SourceType      `json:"sourceType"`
	URL            string          `json:"url,omitempty"`
	PageNumber     int             `json:"pageNumber,omitempty"`
	TimestampRange *TimestampRange `json:"timestampRange,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

// Table is a parsed Markdown or JSON table. Every row has exactly
// len(Columns) cells; a cell is a string, a float64, or nil.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NormalizedResponse is the output document handed to renderers.
type NormalizedResponse struct {
	// Sections, in document order. Never nil.
	Sections []Section `json:"sections"`

	// Citations from a citations/sources field, if present.
	Citations []Citation `json:"citations,omitempty"`

	// FollowUpQuestions suggested by the source, in order.
	FollowUpQuestions []string `json:"followUpQuestions,omitempty"`

	// RawJSON records the source when the JSON path parsed it. At most one
	// of RawJSON and RawText is set.
	RawJSON json.RawMessage `json:"rawJson,omitempty"`

	// RawText records the source when the Markdown or fallback path was
	// taken.
	RawText string `json:"rawText,omitempty"`

	// Error is set only when normalization itself failed; the response
	// still carries one error-typed section.
	Error string `json:"error,omitempty"`
}

// InError reports whether the response represents a failure: either Error
// is set or any section is error-typed.
func (r *NormalizedResponse) InError() bool {
	if r.Error != "" {
		return true
	}
	for _, s := range r.Sections {
		if s.Type == SectionError {
			return true
		}
	}
	return false
}
