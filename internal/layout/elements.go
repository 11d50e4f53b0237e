// Package layout turns the generated plain-text paper into a paginated
// PDF. A classification pass tags each line, a small state machine folds
// the tagged lines into an ordered element sequence, and a renderer maps
// elements onto PDF drawing primitives. The element sequence is the only
// contract between the two halves, so each side stays testable on its
// own.
package layout

// Element is one drawable unit of the document. The set is closed; the
// renderer type-switches over it.
type Element interface {
	element()
}

// Spacer advances the cursor by a fixed height.
type Spacer struct {
	Height float64
}

// PageBreak forces a new page.
type PageBreak struct{}

// RuleLine is a full-width horizontal divider.
type RuleLine struct{}

// Banner is a section header drawn as a filled band with an underline.
// Key selects the answer-key color.
type Banner struct {
	Text string
	Key  bool
}

// Paragraph is word-wrapped prose.
type Paragraph struct {
	Text string
}

// Question is a numbered stem. Marks is the value of a trailing bracket
// tag, zero when the line carried none.
type Question struct {
	Number string
	Text   string
	Marks  int
}

// SubPart is an isolated lettered line under a question, indented past
// the stem.
type SubPart struct {
	Letter string
	Text   string
}

// Option is one MCQ choice.
type Option struct {
	Letter string
	Text   string
}

// OptionGroup is a block of exactly four consecutive options laid out in
// two columns.
type OptionGroup struct {
	Options []Option
}

// Table is an accumulated pipe-table. The first row is styled as the
// header; divider rows never make it in here.
type Table struct {
	Rows [][]string
}

// InstructionList is the compact numbered block under a "General
// Instructions" header.
type InstructionList struct {
	Items []string
}

// Caption is a small italic line, used for "Figure: ..." text.
type Caption struct {
	Text string
}

// DiagramBox marks where a figure belongs. The renderer resolves the
// description to an image, or reserves an empty bordered box so
// pagination does not depend on resolution succeeding.
type DiagramBox struct {
	Description string
}

func (Spacer) element()          {}
func (PageBreak) element()       {}
func (RuleLine) element()        {}
func (Banner) element()          {}
func (Paragraph) element()       {}
func (Question) element()        {}
func (SubPart) element()         {}
func (Option) element()          {}
func (OptionGroup) element()     {}
func (Table) element()           {}
func (InstructionList) element() {}
func (Caption) element()         {}
func (DiagramBox) element()      {}

// DiagramDescriptions lists the distinct diagram descriptions in
// document order, for pre-resolving before the render pass.
func DiagramDescriptions(els []Element) []string {
	seen := make(map[string]bool)
	var out []string
	for _, el := range els {
		box, ok := el.(DiagramBox)
		if !ok || box.Description == "" || seen[box.Description] {
			continue
		}
		seen[box.Description] = true
		out = append(out, box.Description)
	}
	return out
}
