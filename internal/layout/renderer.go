package layout

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"examforge/internal/logger"
	"examforge/pkg/mathtext"
)

const (
	fontFamily = "DejaVu"

	bodySize   = 12
	lineHeight = 7

	supFontSize = 8.0
	supRise     = 4.0
	subDrop     = -2.0

	subPartIndent = 8.0

	// A diagram that fails to resolve still reserves this much vertical
	// space, caption included, so pagination does not shift.
	diagramBoxHeight     = 38.0
	diagramBoxDrawHeight = 29.0
	diagramImageWidth    = 90.0
)

// Meta carries the document header fields.
type Meta struct {
	Subject string
	Chapter string
	Board   string
}

// Title is the bold centered first line of the paper.
func (m Meta) Title() string {
	switch {
	case m.Subject != "" && m.Chapter != "":
		return m.Subject + " - " + m.Chapter
	case m.Subject != "":
		return m.Subject
	default:
		return "Question Paper"
	}
}

// Filename is the download attachment name, spaces replaced so the
// header stays unquoted-safe.
func (m Meta) Filename() string {
	subject := m.Subject
	if subject == "" {
		subject = "paper"
	}
	chapter := m.Chapter
	if chapter == "" {
		chapter = "full"
	}
	name := strings.ReplaceAll(subject, " ", "_") + "_" + strings.ReplaceAll(chapter, " ", "_")
	return name + ".pdf"
}

// Resolver supplies pre-rendered PNG bytes for a diagram description.
// Returning ok=false leaves the reserved box empty.
type Resolver interface {
	Resolve(description string) ([]byte, bool)
}

// Renderer draws element sequences into PDF bytes. It is stateless
// across calls; each render builds its own document.
type Renderer struct {
	fontPath string
	log      *logger.Logger
}

// NewRenderer configures the renderer. fontPath names a Unicode TTF;
// when empty or missing the core Helvetica font is used and math output
// degrades to ASCII, the way the earliest revisions shipped.
func NewRenderer(fontPath string, log *logger.Logger) *Renderer {
	return &Renderer{fontPath: fontPath, log: log}
}

// Render lays out a paper and optional key and returns the PDF bytes.
func (r *Renderer) Render(meta Meta, paper, key string, diagrams Resolver) ([]byte, error) {
	return r.RenderElements(meta, BuildDocument(paper, key), diagrams)
}

// RenderElements draws an already-built element sequence.
func (r *Renderer) RenderElements(meta Meta, els []Element, diagrams Resolver) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title(), true)
	pdf.SetAutoPageBreak(true, 18)

	d := &drawer{pdf: pdf, font: "Helvetica", diagrams: diagrams, log: r.log}
	if r.fontPath != "" {
		if _, err := os.Stat(r.fontPath); err == nil {
			pdf.AddUTF8Font(fontFamily, "", r.fontPath)
			pdf.AddUTF8Font(fontFamily, "B", r.fontPath)
			pdf.AddUTF8Font(fontFamily, "I", r.fontPath)
			d.font = fontFamily
			d.unicode = true
		} else {
			r.log.Warn("unicode font unavailable, using core font", "path", r.fontPath, "error", err)
		}
	}
	d.conv = mathtext.Converter{ASCIIOnly: !d.unicode}

	pdf.AddPage()
	d.header(meta)
	for _, el := range els {
		d.draw(el)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type drawer struct {
	pdf      *fpdf.Fpdf
	font     string
	unicode  bool
	conv     mathtext.Converter
	diagrams Resolver
	log      *logger.Logger
	imgSeq   int
}

func (d *drawer) setFont(style string, size float64) {
	d.pdf.SetFont(d.font, style, size)
}

func (d *drawer) usable() (lm, rm, width float64) {
	l, _, r, _ := d.pdf.GetMargins()
	w, _ := d.pdf.GetPageSize()
	return l, r, w - l - r
}

func (d *drawer) header(meta Meta) {
	d.setFont("B", 16)
	d.pdf.CellFormat(0, 10, d.text(meta.Title()), "", 1, "C", false, 0, "")
	if meta.Board != "" {
		d.setFont("", 11)
		d.pdf.CellFormat(0, 6, d.text(meta.Board), "", 1, "C", false, 0, "")
	}
	d.pdf.Ln(4)
	d.setFont("", bodySize)
}

func (d *drawer) draw(el Element) {
	switch el := el.(type) {
	case Spacer:
		d.pdf.Ln(el.Height)
	case PageBreak:
		d.pdf.AddPage()
	case RuleLine:
		d.rule()
	case Banner:
		d.banner(el)
	case Paragraph:
		d.setFont("", bodySize)
		d.richPara(el.Text, lineHeight, 0)
	case Question:
		d.question(el)
	case SubPart:
		d.setFont("", bodySize)
		d.richPara("("+el.Letter+") "+el.Text, 6.5, subPartIndent)
	case OptionGroup:
		d.optionGroup(el)
	case Table:
		d.table(el)
	case InstructionList:
		d.instructions(el)
	case Caption:
		d.caption(el.Text)
	case DiagramBox:
		d.diagram(el)
	}
}

func (d *drawer) rule() {
	lm, rm, _ := d.usable()
	w, _ := d.pdf.GetPageSize()
	y := d.pdf.GetY() + 1
	d.pdf.SetDrawColor(156, 163, 175)
	d.pdf.Line(lm, y, w-rm, y)
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.Ln(4)
}

func (d *drawer) banner(b Banner) {
	d.pdf.Ln(2)
	if b.Key {
		d.pdf.SetFillColor(219, 234, 254)
	} else {
		d.pdf.SetFillColor(229, 231, 235)
	}
	d.setFont("B", 13)
	d.pdf.CellFormat(0, 9, "  "+d.text(d.plain(b.Text)), "", 1, "L", true, 0, "")
	lm, rm, _ := d.usable()
	w, _ := d.pdf.GetPageSize()
	y := d.pdf.GetY()
	d.pdf.SetDrawColor(107, 114, 128)
	d.pdf.Line(lm, y, w-rm, y)
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.Ln(3)
	d.setFont("", bodySize)
}

func (d *drawer) question(q Question) {
	d.setFont("", bodySize)
	d.richPara(q.Number+". "+q.Text, lineHeight, 0)
	if q.Marks > 0 {
		d.setFont("I", 10)
		d.pdf.SetTextColor(70, 90, 140)
		d.pdf.CellFormat(0, 5, markTag(q.Marks), "", 1, "R", false, 0, "")
		d.pdf.SetTextColor(0, 0, 0)
		d.setFont("", bodySize)
	}
}

func markTag(n int) string {
	if n == 1 {
		return "[1 Mark]"
	}
	return fmt.Sprintf("[%d Marks]", n)
}

// optionGroup draws four choices in two columns when they fit, one per
// line otherwise so long options never collide.
func (d *drawer) optionGroup(g OptionGroup) {
	d.setFont("", bodySize)
	lm, _, usable := d.usable()
	col := usable / 2

	texts := make([]string, len(g.Options))
	fits := true
	for i, o := range g.Options {
		texts[i] = d.text("(" + o.Letter + ") " + d.plain(o.Text))
		if d.pdf.GetStringWidth(texts[i]) > col-4 {
			fits = false
		}
	}

	if !fits {
		for _, t := range texts {
			d.pdf.SetX(lm + subPartIndent)
			d.pdf.MultiCell(0, 6.5, t, "", "L", false)
		}
		d.pdf.Ln(1)
		return
	}
	for i := 0; i < len(texts); i += 2 {
		d.pdf.CellFormat(col, 6.5, texts[i], "", 0, "L", false, 0, "")
		if i+1 < len(texts) {
			d.pdf.CellFormat(col, 6.5, texts[i+1], "", 0, "L", false, 0, "")
		}
		d.pdf.Ln(6.5)
	}
	d.pdf.Ln(1)
}

func (d *drawer) table(t Table) {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}
	_, _, usable := d.usable()
	colW := usable / float64(cols)

	for i, row := range t.Rows {
		if i == 0 {
			d.setFont("B", 11)
			d.pdf.SetFillColor(229, 231, 235)
		} else {
			d.setFont("", 11)
		}
		align := "L"
		if i == 0 {
			align = "C"
		}
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			d.pdf.CellFormat(colW, 8, d.text(d.plain(cell)), "1", 0, align, i == 0, 0, "")
		}
		d.pdf.Ln(8)
	}
	d.setFont("", bodySize)
	d.pdf.Ln(2)
}

func (d *drawer) instructions(il InstructionList) {
	lm, _, _ := d.usable()
	d.setFont("", 10)
	for _, item := range il.Items {
		d.pdf.SetX(lm + 4)
		d.pdf.MultiCell(0, 5.5, d.text(d.plain(item)), "", "L", false)
	}
	d.setFont("", bodySize)
	d.pdf.Ln(1)
}

func (d *drawer) caption(text string) {
	d.setFont("I", 11)
	d.pdf.SetTextColor(75, 85, 99)
	d.pdf.MultiCell(0, 6, d.text(d.plain(text)), "", "L", false)
	d.pdf.SetTextColor(0, 0, 0)
	d.setFont("", bodySize)
}

func (d *drawer) diagram(box DiagramBox) {
	if d.diagrams != nil {
		if png, ok := d.diagrams.Resolve(box.Description); ok && len(png) > 0 {
			if d.image(box.Description, png) {
				return
			}
		}
	}
	d.reservedBox(box.Description)
}

func (d *drawer) image(desc string, png []byte) bool {
	d.imgSeq++
	name := fmt.Sprintf("diagram-%d", d.imgSeq)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	info := d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if info == nil {
		d.log.Warn("diagram image rejected by renderer", "description", desc)
		return false
	}
	wd, ht := info.Extent()
	if wd <= 0 || ht <= 0 {
		return false
	}

	lm, _, usable := d.usable()
	_, _, _, bm := d.pdf.GetMargins()
	_, pageH := d.pdf.GetPageSize()

	imgW := diagramImageWidth
	imgH := imgW * ht / wd
	if imgH > 120 {
		imgH = 120
		imgW = imgH * wd / ht
	}
	if d.pdf.GetY()+imgH+10 > pageH-bm {
		d.pdf.AddPage()
	}
	x := lm + (usable-imgW)/2
	d.pdf.ImageOptions(name, x, d.pdf.GetY()+2, imgW, imgH, false, opts, 0, "")
	d.pdf.SetY(d.pdf.GetY() + imgH + 4)

	if desc != "" {
		d.setFont("I", 9)
		d.pdf.SetTextColor(107, 114, 128)
		d.pdf.CellFormat(0, 5, d.text(desc), "", 1, "C", false, 0, "")
		d.pdf.SetTextColor(0, 0, 0)
		d.setFont("", bodySize)
	}
	return true
}

// reservedBox keeps the diagram's vertical footprint when no image is
// available: italic caption plus an empty bordered box for hand-drawing.
func (d *drawer) reservedBox(desc string) {
	lm, _, usable := d.usable()
	_, _, _, bm := d.pdf.GetMargins()
	_, pageH := d.pdf.GetPageSize()

	if d.pdf.GetY()+diagramBoxHeight > pageH-bm {
		d.pdf.AddPage()
	}
	if desc != "" {
		d.setFont("I", 10)
		d.pdf.SetTextColor(107, 114, 128)
		d.pdf.MultiCell(0, 5, d.text("Figure: "+desc), "", "L", false)
		d.pdf.SetTextColor(0, 0, 0)
	}
	y := d.pdf.GetY() + 1
	d.pdf.SetDrawColor(156, 163, 175)
	d.pdf.Rect(lm, y, usable, diagramBoxDrawHeight, "D")
	d.pdf.SetDrawColor(0, 0, 0)
	d.pdf.SetY(y + diagramBoxDrawHeight + 3)
	d.setFont("", bodySize)
}

// richPara draws one logical line. Plain text goes through MultiCell for
// wrapping and justification; lines with scripts are drawn as a run
// sequence with shifted baselines.
func (d *drawer) richPara(raw string, h, indent float64) {
	lm, _, _ := d.usable()
	if indent > 0 {
		d.pdf.SetX(lm + indent)
	}
	runs := parseRuns(d.conv.Line(raw))
	if len(runs) == 1 && runs[0].script == 0 {
		d.pdf.MultiCell(0, h, d.text(runs[0].text), "", "J", false)
		return
	}
	for _, run := range runs {
		switch {
		case run.script > 0:
			d.pdf.SubWrite(h, d.text(run.text), supFontSize, supRise, 0, "")
		case run.script < 0:
			d.pdf.SubWrite(h, d.text(run.text), supFontSize, subDrop, 0, "")
		default:
			d.pdf.Write(h, d.text(run.text))
		}
	}
	d.pdf.Ln(h)
}

// plain flattens converted markup for single-cell contexts where
// baseline shifts are unavailable: scripts degrade to ^ and _ prefixes.
func (d *drawer) plain(raw string) string {
	runs := parseRuns(d.conv.Line(raw))
	if len(runs) == 1 && runs[0].script == 0 {
		return runs[0].text
	}
	var b strings.Builder
	prev := 0
	for _, r := range runs {
		if r.script > 0 && prev <= 0 {
			b.WriteString("^")
		}
		if r.script < 0 && prev >= 0 {
			b.WriteString("_")
		}
		b.WriteString(r.text)
		prev = r.script
	}
	return b.String()
}

// text is the final stop before any draw call. Core-font mode
// transliterates what it can and squeezes the rest to latin-1, matching
// the original single-byte output path.
func (d *drawer) text(s string) string {
	if d.unicode {
		return s
	}
	return toLatin1(asciiReplacer.Replace(s))
}

var asciiReplacer = strings.NewReplacer(
	"₹", "Rs. ", "×", "x", "÷", "/", "−", "-", "–", "-", "—", "-",
	"“", `"`, "”", `"`, "‘", "'", "’", "'", "…", "...",
	"√", "sqrt", "≤", "<=", "≥", ">=", "≠", "!=",
	"π", "pi", "θ", "theta", "Δ", "Delta", "α", "alpha", "β", "beta",
)

func toLatin1(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= 0xFF {
			b.WriteByte(byte(r))
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// run is one stretch of text at a single baseline.
type run struct {
	text   string
	script int // +1 superscript, -1 subscript, 0 baseline
}

var entityReplacer = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">")

// parseRuns splits converter markup into baseline runs, resolving
// entities. Nested tags keep the innermost script level.
func parseRuns(markup string) []run {
	var runs []run
	var stack []int

	cur := func() int {
		if len(stack) == 0 {
			return 0
		}
		return stack[len(stack)-1]
	}
	emit := func(seg string) {
		if seg == "" {
			return
		}
		runs = append(runs, run{text: entityReplacer.Replace(seg), script: cur()})
	}

	for {
		i := strings.IndexByte(markup, '<')
		if i < 0 {
			emit(markup)
			break
		}
		rest := markup[i:]
		switch {
		case strings.HasPrefix(rest, "<sup>"):
			emit(markup[:i])
			stack = append(stack, 1)
			markup = markup[i+len("<sup>"):]
		case strings.HasPrefix(rest, "<sub>"):
			emit(markup[:i])
			stack = append(stack, -1)
			markup = markup[i+len("<sub>"):]
		case strings.HasPrefix(rest, "</sup>"), strings.HasPrefix(rest, "</sub>"):
			emit(markup[:i])
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			markup = markup[i+len("</sup>"):]
		default:
			emit(markup[:i+1])
			markup = markup[i+1:]
		}
	}
	return runs
}
