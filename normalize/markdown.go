package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

// lineKind is the classification the Markdown scanner assigns to each line.
type lineKind int

const (
	lineBlank lineKind = iota
	lineHeading
	lineNumberedSection
	lineNumberedItem
	lineBullet
	lineTableStart
	linePlain
)

// classifiedLine carries a line's kind and its extracted payload: heading
// text for section openers, item text for list lines, the line itself
// otherwise.
type classifiedLine struct {
	kind lineKind
	text string
}

// classifyLine is the single place that decides what a line is. The order
// of checks is the precedence order: heading, table, numbered
// section/item, bullet, plain.
func classifyLine(line string) classifiedLine {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return classifiedLine{kind: lineBlank}
	}

	if strings.HasPrefix(trimmed, "#") {
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level <= 3 {
			if text := strings.TrimSpace(trimmed[level:]); text != "" {
				return classifiedLine{kind: lineHeading, text: text}
			}
		}
		return classifiedLine{kind: linePlain, text: trimmed}
	}

	if strings.HasPrefix(trimmed, "|") {
		return classifiedLine{kind: lineTableStart, text: trimmed}
	}

	if rest, ok := cutNumberPrefix(trimmed); ok {
		if heading, ok := numberedSectionHeading(rest); ok {
			return classifiedLine{kind: lineNumberedSection, text: heading}
		}
		return classifiedLine{kind: lineNumberedItem, text: rest}
	}

	if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
		return classifiedLine{kind: lineBullet, text: strings.TrimSpace(rest)}
	}
	if rest, ok := strings.CutPrefix(trimmed, "* "); ok {
		return classifiedLine{kind: lineBullet, text: strings.TrimSpace(rest)}
	}

	return classifiedLine{kind: linePlain, text: trimmed}
}

// numberedSectionHeading decides whether the text after a "<n>. " marker is
// a section heading rather than a list item. List items are the common
// case, so the heading form is deliberately narrow: bold-wrapped text, or a
// short capitalized synonym-table match with no trailing punctuation.
// Headings longer than 100 characters are treated as list items.
func numberedSectionHeading(text string) (string, bool) {
	if text == "" || len(text) >= 100 {
		return "", false
	}

	if strings.HasPrefix(text, "**") && strings.HasSuffix(text, "**") && len(text) > 4 {
		inner := strings.TrimSpace(text[2 : len(text)-2])
		if inner != "" && !strings.Contains(inner, "**") {
			return inner, true
		}
		return "", false
	}

	runes := []rune(text)
	if !unicode.IsUpper(runes[0]) {
		return "", false
	}
	if strings.ContainsRune(".,:;!?", runes[len(runes)-1]) {
		return "", false
	}
	if knownHeading(text) {
		return text, true
	}
	return "", false
}

// sectionBuilder accumulates one section while the scanner walks the input.
type sectionBuilder struct {
	typ   SectionType
	title string
	body  []string
	table *Table
}

func (b *sectionBuilder) build() (Section, bool) {
	sec := Section{
		Type:            b.typ,
		Title:           b.title,
		ContentMarkdown: strings.TrimSpace(strings.Join(b.body, "\n")),
		Table:           b.table,
	}
	if sec.Empty() {
		return Section{}, false
	}
	return sec, true
}

func (b *sectionBuilder) appendLine(line string) {
	b.body = append(b.body, line)
}

func (b *sectionBuilder) appendBlank() {
	if len(b.body) > 0 && b.body[len(b.body)-1] != "" {
		b.body = append(b.body, "")
	}
}

// parseMarkdown scans the input line by line and returns the sections it
// found. The boolean reports whether any structural marker (heading,
// numbered section, table) was seen; without one the caller falls through
// to the unstructured path.
func parseMarkdown(trimmed string) ([]Section, bool) {
	lines := strings.Split(trimmed, "\n")

	var sections []Section
	var current *sectionBuilder
	structured := false

	flush := func() {
		if current != nil {
			if sec, ok := current.build(); ok {
				sections = append(sections, sec)
			}
			current = nil
		}
	}

	open := func(heading string) {
		flush()
		title := strings.TrimSuffix(strings.TrimSpace(heading), ":")
		current = &sectionBuilder{
			typ:   sectionTypeForHeading(heading),
			title: titleCase(title),
		}
		structured = true
	}

	body := func() *sectionBuilder {
		if current == nil {
			// Content before the first heading collects in an untitled
			// raw section.
			current = &sectionBuilder{typ: SectionRaw}
		}
		return current
	}

	for i := 0; i < len(lines); i++ {
		cl := classifyLine(lines[i])

		switch cl.kind {
		case lineBlank:
			if current != nil {
				current.appendBlank()
			}

		case lineHeading, lineNumberedSection:
			open(cl.text)

		case lineNumberedItem, lineBullet:
			body().appendLine("- " + cl.text)

		case lineTableStart:
			table, next, ok := parseTable(lines, i)
			if !ok {
				body().appendLine(cl.text)
				continue
			}
			structured = true
			if current != nil && current.table == nil {
				current.table = table
			} else {
				flush()
				sections = append(sections, Section{Type: SectionTable, Table: table})
			}
			i = next - 1

		case linePlain:
			body().appendLine(cl.text)
		}
	}
	flush()

	if !structured {
		return nil, false
	}
	return sections, true
}

// parseTable parses a Markdown table starting at lines[start]: a header
// row, a separator row, then body rows. It returns the index of the first
// line past the table.
func parseTable(lines []string, start int) (*Table, int, bool) {
	columns := splitTableRow(lines[start])
	if len(columns) == 0 {
		return nil, start, false
	}
	if start+1 >= len(lines) || !isSeparatorRow(lines[start+1]) {
		return nil, start, false
	}

	var rows [][]any
	i := start + 2
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "|") {
			break
		}
		cells := splitTableRow(trimmed)
		row := make([]any, len(columns))
		for j := range columns {
			if j < len(cells) {
				row[j] = tableCellValue(cells[j])
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, i, true
}

// splitTableRow breaks "| a | b |" into trimmed cell strings.
func splitTableRow(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")

	parts := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	// A row of entirely empty cells is not a row.
	allEmpty := true
	for _, c := range cells {
		if c != "" {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		return nil
	}
	return cells
}

// isSeparatorRow reports whether the line is the dashes-and-colons row
// between a table header and its body.
func isSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") {
		return false
	}
	sawDash := false
	for _, r := range trimmed {
		switch r {
		case '-':
			sawDash = true
		case '|', ':', ' ', '\t':
		default:
			return false
		}
	}
	return sawDash
}

// tableCellValue types a cell: empty becomes nil, numeric becomes float64,
// everything else stays a string.
func tableCellValue(cell string) any {
	if cell == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
