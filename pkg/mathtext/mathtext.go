// Package mathtext converts the small LaTeX-like subset that exam
// generators emit (\frac, \sqrt, super/subscripts, Greek letters,
// decorations) into flat inline markup: <sup>/<sub> tags plus Unicode
// glyph substitutions, with an ASCII degradation for core-font rendering.
//
// The three XML-significant characters &, <, > are escaped exactly once,
// at the single point where literal text is emitted. Unrecognized
// \commands become a single space. Imbalanced input degrades to literal
// text; nothing in here panics on malformed math.
package mathtext

import "strings"

// Converter converts math spans inside prose lines. The zero value emits
// Unicode glyphs; set ASCIIOnly when the output font cannot show them.
type Converter struct {
	ASCIIOnly bool
}

// HasMath reports whether a line contains a candidate math span. Cheap
// pre-check so renderers can skip the converter for ordinary prose.
func HasMath(s string) bool {
	return strings.Contains(s, "$") || strings.Contains(s, `\(`)
}

// Line converts every $...$ or \(...\) span in s and escapes the
// surrounding prose. A dollar sign without a closing partner is literal
// text, not a span.
func (c Converter) Line(s string) string {
	var out strings.Builder
	for {
		start, end, expr, ok := nextSpan(s)
		if !ok {
			out.WriteString(escape(s))
			break
		}
		out.WriteString(escape(s[:start]))
		out.WriteString(c.Expression(expr))
		s = s[end:]
	}
	return out.String()
}

// Expression converts a bare math expression with no delimiters.
func (c Converter) Expression(expr string) string {
	var out strings.Builder
	c.convert(&out, expr)
	return out.String()
}

// nextSpan locates the first complete $...$ or \(...\) span. Returns the
// span start, the index just past its end, and the inner expression.
func nextSpan(s string) (start, end int, expr string, ok bool) {
	dollar := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && s[i+1] == '(' {
				if close := strings.Index(s[i+2:], `\)`); close >= 0 {
					return i, i + 2 + close + 2, s[i+2 : i+2+close], true
				}
			}
			i++ // skip the escaped character either way
		case '$':
			if dollar >= 0 {
				return dollar, i + 1, s[dollar+1 : i], true
			}
			dollar = i
		}
	}
	return 0, 0, "", false
}

func (c Converter) convert(out *strings.Builder, expr string) {
	for i := 0; i < len(expr); {
		switch expr[i] {
		case '\\':
			i = c.command(out, expr, i)
		case '^':
			i = c.script(out, expr, i, "sup")
		case '_':
			i = c.script(out, expr, i, "sub")
		case '{', '}':
			// bare grouping braces carry no visual weight
			i++
		default:
			out.WriteString(escape(expr[i : i+1]))
			i++
		}
	}
}

// command handles a backslash sequence starting at i and returns the
// index after it.
func (c Converter) command(out *strings.Builder, expr string, i int) int {
	j := i + 1
	for j < len(expr) && isLetter(expr[j]) {
		j++
	}
	if j == i+1 {
		// \$ \{ \, and friends: a lone escaped character
		if j < len(expr) {
			if expr[j] == ',' || expr[j] == ';' || expr[j] == ' ' {
				out.WriteString(" ")
			} else {
				out.WriteString(escape(expr[j : j+1]))
			}
			return j + 1
		}
		return j
	}

	name := expr[i+1 : j]
	switch name {
	case "frac":
		num, j2 := braceArg(expr, j)
		den, j3 := braceArg(expr, j2)
		if c.ASCIIOnly {
			out.WriteString("(")
			c.convert(out, num)
			out.WriteString(")/(")
			c.convert(out, den)
			out.WriteString(")")
		} else {
			out.WriteString("<sup>")
			c.convert(out, num)
			out.WriteString("</sup>/<sub>")
			c.convert(out, den)
			out.WriteString("</sub>")
		}
		return j3
	case "sqrt":
		arg, j2 := braceArg(expr, j)
		if c.ASCIIOnly {
			out.WriteString("sqrt(")
		} else {
			out.WriteString("√(")
		}
		c.convert(out, arg)
		out.WriteString(")")
		return j2
	case "overline", "bar":
		return c.decorated(out, expr, j, "̅")
	case "vec":
		return c.decorated(out, expr, j, "⃗")
	case "hat":
		return c.decorated(out, expr, j, "̂")
	case "text", "mathrm":
		arg, j2 := braceArg(expr, j)
		out.WriteString(escape(arg))
		return j2
	}

	if sym, ok := symbols[name]; ok {
		if c.ASCIIOnly {
			out.WriteString(escape(sym.ascii))
		} else {
			out.WriteString(escape(sym.unicode))
		}
		return j
	}

	// unknown command: a single space, never a crash
	out.WriteString(" ")
	return j
}

// decorated emits a brace argument with a combining mark after each
// glyph, or the bare argument in ASCII mode.
func (c Converter) decorated(out *strings.Builder, expr string, i int, mark string) int {
	arg, next := braceArg(expr, i)
	if c.ASCIIOnly {
		c.convert(out, arg)
		return next
	}
	for _, r := range arg {
		out.WriteString(escape(string(r)))
		if r != ' ' {
			out.WriteString(mark)
		}
	}
	return next
}

// script handles ^ and _ starting at i and returns the index after the
// argument. A trailing ^ or _ with nothing after it is literal.
func (c Converter) script(out *strings.Builder, expr string, i int, tag string) int {
	arg, next := scriptArg(expr, i+1)
	if arg == "" {
		out.WriteString(escape(expr[i : i+1]))
		return i + 1
	}
	out.WriteString("<" + tag + ">")
	c.convert(out, arg)
	out.WriteString("</" + tag + ">")
	return next
}

// scriptArg extracts the argument of a super/subscript: a brace group, a
// single \command, or one character.
func scriptArg(expr string, i int) (string, int) {
	if i >= len(expr) {
		return "", i
	}
	if expr[i] == '{' {
		return braceArg(expr, i)
	}
	if expr[i] == '\\' {
		j := i + 1
		for j < len(expr) && isLetter(expr[j]) {
			j++
		}
		if j > i+1 {
			return expr[i:j], j
		}
	}
	return expr[i : i+1], i + 1
}

// braceArg returns the content of a brace group starting at or after i,
// honoring nesting. Without an opening brace the next single character
// is the argument; an unclosed group swallows the rest of the string
// rather than failing.
func braceArg(expr string, i int) (string, int) {
	if i >= len(expr) {
		return "", i
	}
	if expr[i] != '{' {
		return expr[i : i+1], i + 1
	}
	depth := 0
	for j := i; j < len(expr); j++ {
		switch expr[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return expr[i+1 : j], j + 1
			}
		}
	}
	return expr[i+1:], len(expr)
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// escape is the single place literal text becomes markup-safe. Callers
// never pre-escape, so no character is escaped twice.
func escape(s string) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

type symbol struct {
	unicode string
	ascii   string
}

var symbols = map[string]symbol{
	// Greek lowercase
	"alpha":   {"α", "alpha"},
	"beta":    {"β", "beta"},
	"gamma":   {"γ", "gamma"},
	"delta":   {"δ", "delta"},
	"epsilon": {"ε", "epsilon"},
	"zeta":    {"ζ", "zeta"},
	"eta":     {"η", "eta"},
	"theta":   {"θ", "theta"},
	"iota":    {"ι", "iota"},
	"kappa":   {"κ", "kappa"},
	"lambda":  {"λ", "lambda"},
	"mu":      {"μ", "mu"},
	"nu":      {"ν", "nu"},
	"xi":      {"ξ", "xi"},
	"pi":      {"π", "pi"},
	"rho":     {"ρ", "rho"},
	"sigma":   {"σ", "sigma"},
	"tau":     {"τ", "tau"},
	"upsilon": {"υ", "upsilon"},
	"phi":     {"φ", "phi"},
	"chi":     {"χ", "chi"},
	"psi":     {"ψ", "psi"},
	"omega":   {"ω", "omega"},
	// Greek uppercase
	"Gamma":  {"Γ", "Gamma"},
	"Delta":  {"Δ", "Delta"},
	"Theta":  {"Θ", "Theta"},
	"Lambda": {"Λ", "Lambda"},
	"Xi":     {"Ξ", "Xi"},
	"Pi":     {"Π", "Pi"},
	"Sigma":  {"Σ", "Sigma"},
	"Phi":    {"Φ", "Phi"},
	"Psi":    {"Ψ", "Psi"},
	"Omega":  {"Ω", "Omega"},
	// operators and relations
	"times":      {"×", "x"},
	"div":        {"÷", "/"},
	"pm":         {"±", "+/-"},
	"mp":         {"∓", "-/+"},
	"leq":        {"≤", "<="},
	"le":         {"≤", "<="},
	"geq":        {"≥", ">="},
	"ge":         {"≥", ">="},
	"neq":        {"≠", "!="},
	"ne":         {"≠", "!="},
	"approx":     {"≈", "~="},
	"propto":     {"∝", "prop."},
	"infty":      {"∞", "infinity"},
	"degree":     {"°", " deg"},
	"circ":       {"°", " deg"},
	"cdot":       {"·", "*"},
	"rightarrow": {"→", "->"},
	"to":         {"→", "->"},
	"leftarrow":  {"←", "<-"},
	"Rightarrow": {"⇒", "=>"},
	"therefore":  {"∴", "therefore"},
	"because":    {"∵", "because"},
	"angle":      {"∠", "angle "},
	"perp":       {"⊥", "perp."},
	"parallel":   {"∥", "||"},
	"triangle":   {"△", "triangle "},
	"sum":        {"∑", "sum"},
	"int":        {"∫", "integral"},
	"in":         {"∈", "in"},
	"subset":     {"⊂", "subset of"},
	"cup":        {"∪", "union"},
	"cap":        {"∩", "intersection"},
	"ohm":        {"Ω", "ohm"},
	"ldots":      {"…", "..."},
	"dots":       {"…", "..."},
	// function names keep their spelling
	"sin": {"sin", "sin"},
	"cos": {"cos", "cos"},
	"tan": {"tan", "tan"},
	"cot": {"cot", "cot"},
	"sec": {"sec", "sec"},
	"csc": {"csc", "csc"},
	"log": {"log", "log"},
	"ln":  {"ln", "ln"},
	"lim": {"lim", "lim"},
}
