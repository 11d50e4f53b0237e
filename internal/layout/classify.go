package layout

import (
	"regexp"
	"strings"
)

// Kind tags one line of generated text. Classification is total: every
// line gets exactly one tag.
type Kind int

const (
	KindBlank Kind = iota
	KindTableRow
	KindTableDivider
	KindRule
	KindDiagram
	KindSectionHeader
	KindQuestion
	KindOption
	KindFillBlank
	KindCaption
	KindProse
)

// Line is one classified line. Only the fields relevant to the Kind are
// populated.
type Line struct {
	Kind Kind
	Text string

	// Number is the stem's numbering as written ("Q1", "12"); Marks is
	// the value of a trailing bracket tag. Set for KindQuestion.
	Number string
	Marks  int

	// Letter is set for KindOption.
	Letter string

	// Cells is set for KindTableRow.
	Cells []string

	// KeyHeader marks a section header that opens the answer key.
	KeyHeader bool
}

var (
	ruleRe     = regexp.MustCompile(`^[=\-_]{3,}$`)
	diagramRe  = regexp.MustCompile(`(?i)^\[\s*(?:diagram|draw)\b\s*:?\s*(.*?)\s*\]?\s*$`)
	sectionRe  = regexp.MustCompile(`(?i)^(?:section|part)\s+(?:[A-Z]|[IVXL]{1,5}|\d{1,2})\s*(?:[:.\-(].*)?$`)
	questionRe = regexp.MustCompile(`^((?:Q\.?\s*)?\d{1,3})[.)]\s*(\S.*)$`)
	optionRe   = regexp.MustCompile(`^\(([a-dA-D])\)\s*(.*)$`)
	marksRe    = regexp.MustCompile(`(?i)[\[(](\d+)\s*marks?[\])]\s*$`)
	blanksRe   = regexp.MustCompile(`_{3,}`)
	captionRe  = regexp.MustCompile(`(?i)^figure\b[:.]?\s*`)
	dividerRe  = regexp.MustCompile(`^[\s:\-]*$`)
)

// Headers that do not follow the SECTION/PART pattern but still open a
// banner. Compared lowercase with trailing colons removed.
var literalHeaders = map[string]bool{
	"general instructions":           true,
	"instructions":                   true,
	"answer key":                     true,
	"marking scheme":                 true,
	"answer key and marking scheme":  true,
	"answer key with marking scheme": true,
}

// Classify tags a raw line. Checks run in a fixed priority order: table
// row, horizontal rule, diagram placeholder, section header, question
// stem, option, fill-blank, figure caption, prose.
func Classify(raw string) Line {
	s := stripDecor(strings.TrimSpace(raw))
	if s == "" {
		return Line{Kind: KindBlank}
	}

	if strings.HasPrefix(s, "|") && strings.Count(s, "|") >= 2 {
		cells := splitCells(s)
		if isDividerRow(cells) {
			return Line{Kind: KindTableDivider}
		}
		return Line{Kind: KindTableRow, Cells: cells}
	}

	if ruleRe.MatchString(s) {
		return Line{Kind: KindRule}
	}

	if m := diagramRe.FindStringSubmatch(s); m != nil {
		return Line{Kind: KindDiagram, Text: strings.TrimSpace(m[1])}
	}

	if key, ok := headerLine(s); ok {
		return Line{Kind: KindSectionHeader, Text: s, KeyHeader: key}
	}

	if m := questionRe.FindStringSubmatch(s); m != nil {
		text, marks := extractMarks(m[2])
		return Line{Kind: KindQuestion, Number: m[1], Text: text, Marks: marks}
	}

	if m := optionRe.FindStringSubmatch(s); m != nil {
		return Line{Kind: KindOption, Letter: m[1], Text: strings.TrimSpace(m[2])}
	}

	if blanksRe.MatchString(s) {
		return Line{Kind: KindFillBlank, Text: s}
	}

	if captionRe.MatchString(s) {
		return Line{Kind: KindCaption, Text: s}
	}

	return Line{Kind: KindProse, Text: s}
}

// stripDecor removes markdown dressing models sometimes add despite the
// plain-text instruction: heading hashes and surrounding bold markers.
func stripDecor(s string) string {
	for strings.HasPrefix(s, "#") {
		s = strings.TrimPrefix(s, "#")
	}
	s = strings.TrimSpace(s)
	if len(s) > 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**") {
		s = strings.TrimSpace(s[2 : len(s)-2])
	}
	return s
}

func headerLine(s string) (key, ok bool) {
	if sectionRe.MatchString(s) {
		return false, true
	}
	plain := strings.ToLower(strings.TrimRight(s, ":. "))
	if literalHeaders[plain] {
		return strings.Contains(plain, "answer key"), true
	}
	return false, false
}

// splitCells breaks a pipe row into trimmed cell values, dropping the
// empty fields the outer pipes produce.
func splitCells(s string) []string {
	fields := strings.Split(s, "|")
	if len(fields) > 0 && strings.TrimSpace(fields[0]) == "" {
		fields = fields[1:]
	}
	if len(fields) > 0 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = strings.TrimSpace(f)
	}
	return cells
}

// isDividerRow reports a markdown alignment row: cells of dashes and
// colons only. Divider rows are dropped, never rendered.
func isDividerRow(cells []string) bool {
	for _, c := range cells {
		if !dividerRe.MatchString(c) {
			return false
		}
	}
	return true
}

// extractMarks pulls a trailing "[N Marks]" or "(N marks)" tag off a
// question stem.
func extractMarks(s string) (string, int) {
	m := marksRe.FindStringSubmatchIndex(s)
	if m == nil {
		return strings.TrimSpace(s), 0
	}
	n := 0
	for _, d := range s[m[2]:m[3]] {
		n = n*10 + int(d-'0')
	}
	return strings.TrimSpace(s[:m[0]]), n
}
