package layout

import "strings"

// blankGap is the cursor advance for one blank source line, matching the
// original renderer's spacing.
const blankGap = 4

// optionGroupSize is how many consecutive options form a two-column
// group. Fewer flush as indented sub-parts; a fifth lettered line starts
// a fresh accumulation rather than joining the group.
const optionGroupSize = 4

// parser state. Transitions are driven by the classification of each
// incoming line.
type state int

const (
	stateDefault state = iota
	stateTable
	stateInstructions
	stateOptions
)

type parser struct {
	els   []Element
	st    state
	rows  [][]string
	opts  []Option
	items []string
}

// Parse folds the text's classified lines into an element sequence.
func Parse(text string) []Element {
	var p parser
	for _, raw := range strings.Split(text, "\n") {
		p.feed(Classify(raw))
	}
	p.flushAll()
	return p.trimmed()
}

// BuildDocument assembles the full element sequence for a paper and an
// optional key. The key starts on a fresh page under its own banner; an
// absent key adds nothing, so the paper never gains a trailing page.
func BuildDocument(paper, key string) []Element {
	els := Parse(paper)
	if strings.TrimSpace(key) == "" {
		return els
	}
	els = append(els, PageBreak{}, Banner{Text: "ANSWER KEY", Key: true})
	return append(els, Parse(key)...)
}

func (p *parser) feed(ln Line) {
	switch p.st {
	case stateTable:
		switch ln.Kind {
		case KindTableRow:
			p.rows = append(p.rows, ln.Cells)
			return
		case KindTableDivider:
			return
		}
		p.flushTable()

	case stateOptions:
		if ln.Kind == KindOption {
			p.opts = append(p.opts, Option{Letter: ln.Letter, Text: ln.Text})
			if len(p.opts) == optionGroupSize {
				p.flushOptions()
			}
			return
		}
		p.flushOptions()

	case stateInstructions:
		switch ln.Kind {
		case KindQuestion:
			p.items = append(p.items, ln.Number+". "+ln.Text)
			return
		case KindProse, KindFillBlank:
			p.items = append(p.items, ln.Text)
			return
		case KindBlank:
			p.flushInstructions()
			p.add(Spacer{Height: blankGap})
			return
		}
		p.flushInstructions()
	}

	switch ln.Kind {
	case KindBlank:
		p.add(Spacer{Height: blankGap})
	case KindTableRow:
		p.st = stateTable
		p.rows = [][]string{ln.Cells}
	case KindTableDivider:
		// a stray divider with no open table is noise
	case KindRule:
		p.add(RuleLine{})
	case KindDiagram:
		p.add(DiagramBox{Description: ln.Text})
	case KindSectionHeader:
		p.add(Banner{Text: ln.Text, Key: ln.KeyHeader})
		if strings.Contains(strings.ToLower(ln.Text), "instruction") {
			p.st = stateInstructions
		}
	case KindQuestion:
		p.add(Question{Number: ln.Number, Text: ln.Text, Marks: ln.Marks})
	case KindOption:
		p.st = stateOptions
		p.opts = []Option{{Letter: ln.Letter, Text: ln.Text}}
	case KindCaption:
		p.add(Caption{Text: ln.Text})
	case KindFillBlank, KindProse:
		p.add(Paragraph{Text: ln.Text})
	}
}

func (p *parser) add(el Element) {
	p.els = append(p.els, el)
	p.st = stateDefault
}

func (p *parser) flushTable() {
	if len(p.rows) > 0 {
		p.els = append(p.els, Table{Rows: p.rows})
		p.rows = nil
	}
	p.st = stateDefault
}

// flushOptions emits a full group as two-column options and anything
// shorter as indented sub-parts of the preceding question.
func (p *parser) flushOptions() {
	switch {
	case len(p.opts) == optionGroupSize:
		p.els = append(p.els, OptionGroup{Options: p.opts})
	default:
		for _, o := range p.opts {
			p.els = append(p.els, SubPart{Letter: o.Letter, Text: o.Text})
		}
	}
	p.opts = nil
	p.st = stateDefault
}

func (p *parser) flushInstructions() {
	if len(p.items) > 0 {
		p.els = append(p.els, InstructionList{Items: p.items})
		p.items = nil
	}
	p.st = stateDefault
}

func (p *parser) flushAll() {
	switch p.st {
	case stateTable:
		p.flushTable()
	case stateOptions:
		p.flushOptions()
	case stateInstructions:
		p.flushInstructions()
	}
}

// trimmed drops trailing spacers so an output ending in blank lines does
// not spill onto an empty page.
func (p *parser) trimmed() []Element {
	els := p.els
	for len(els) > 0 {
		if _, ok := els[len(els)-1].(Spacer); !ok {
			break
		}
		els = els[:len(els)-1]
	}
	return els
}
