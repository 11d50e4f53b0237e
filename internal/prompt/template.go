package prompt

import (
	"fmt"
	"sort"
	"strings"

	"examforge/internal/models"
)

// QuestionKind drives both the prompt wording and the offline filler.
type QuestionKind string

const (
	KindMCQ       QuestionKind = "mcq"
	KindFillBlank QuestionKind = "fill-blank"
	KindMatch     QuestionKind = "match"
	KindVeryShort QuestionKind = "very-short"
	KindShort     QuestionKind = "short"
	KindLong      QuestionKind = "long"
	KindEssay     QuestionKind = "essay"
	KindNumerical QuestionKind = "numerical"
)

// SectionSpec is one structural row of an exam template. Weight is the
// percentage of the total marks this section carries; PerMark is the
// denomination of a single question in it.
type SectionSpec struct {
	Label   string
	Title   string
	Kind    QuestionKind
	Weight  int
	PerMark int
	Note    string
}

// Template is a named paper structure selected by board or exam name.
type Template struct {
	Key      string
	Display  string
	Sections []SectionSpec
}

// SectionPlan is a SectionSpec resolved against a concrete total. Marks
// values across a plan always sum exactly to the requested total; Count
// times PerMark equals Marks only when Even is set.
type SectionPlan struct {
	Label   string
	Title   string
	Kind    QuestionKind
	Marks   int
	Count   int
	PerMark int
	Even    bool
	Note    string
}

// MinMarks is the floor below which requested totals are clamped.
const MinMarks = 10

// DefaultMarks is used when the caller leaves the total unset.
const DefaultMarks = 100

// ClampMarks applies the default and the floor.
func ClampMarks(marks int) int {
	if marks <= 0 {
		return DefaultMarks
	}
	if marks < MinMarks {
		return MinMarks
	}
	return marks
}

// Plan apportions total marks across the template's sections with the
// largest-remainder method, so the sub-totals reconcile exactly whatever
// the total. Sections left with zero marks are omitted.
func (t *Template) Plan(total int) []SectionPlan {
	total = ClampMarks(total)
	weights := make([]int, len(t.Sections))
	for i, s := range t.Sections {
		weights[i] = s.Weight
	}
	shares := apportion(total, weights)

	var plan []SectionPlan
	for i, s := range t.Sections {
		if shares[i] == 0 {
			continue
		}
		p := SectionPlan{
			Label:   s.Label,
			Title:   s.Title,
			Kind:    s.Kind,
			Marks:   shares[i],
			PerMark: s.PerMark,
			Note:    s.Note,
		}
		if s.PerMark > 0 && shares[i]%s.PerMark == 0 {
			p.Count = shares[i] / s.PerMark
			p.Even = true
		} else if s.PerMark > 0 {
			p.Count = shares[i] / s.PerMark
			if p.Count < 1 {
				p.Count = 1
			}
		}
		plan = append(plan, p)
	}
	return plan
}

// Line renders the section row the way the prompt states it.
func (p SectionPlan) Line() string {
	if p.Even {
		return fmt.Sprintf("Section %s: %s - %d questions x %d mark(s) = %d marks", p.Label, p.Title, p.Count, p.PerMark, p.Marks)
	}
	return fmt.Sprintf("Section %s: %s - about %d questions, %d marks total (adjust individual marks so the section sums to exactly %d)", p.Label, p.Title, p.Count, p.Marks, p.Marks)
}

// apportion splits total into len(weights) integer shares proportional to
// weights, distributing the rounding remainder to the largest fractional
// parts first. Ties keep section order.
func apportion(total int, weights []int) []int {
	sumW := 0
	for _, w := range weights {
		sumW += w
	}
	shares := make([]int, len(weights))
	if sumW == 0 {
		return shares
	}

	type leftover struct{ idx, frac int }
	assigned := 0
	rem := make([]leftover, 0, len(weights))
	for i, w := range weights {
		raw := total * w
		shares[i] = raw / sumW
		assigned += shares[i]
		rem = append(rem, leftover{idx: i, frac: raw % sumW})
	}
	sort.SliceStable(rem, func(a, b int) bool { return rem[a].frac > rem[b].frac })
	for k := 0; k < total-assigned && k < len(rem); k++ {
		shares[rem[k].idx]++
	}
	return shares
}

// Duration suggests an exam length in minutes, scaled from the customary
// three hours per hundred marks and rounded to the quarter hour.
func Duration(totalMarks int) int {
	mins := 180 * ClampMarks(totalMarks) / 100
	if mins < 45 {
		mins = 45
	}
	if mins > 180 {
		mins = 180
	}
	return (mins / 15) * 15
}

var templates = map[string]*Template{
	"ap-state": {
		Key:     "ap-state",
		Display: "AP/Telangana SSC Pattern",
		Sections: []SectionSpec{
			{Label: "I", Title: "Multiple Choice Questions", Kind: KindMCQ, Weight: 10, PerMark: 1, Note: "four options (a)-(d) each"},
			{Label: "II", Title: "Fill in the Blanks", Kind: KindFillBlank, Weight: 5, PerMark: 1},
			{Label: "III", Title: "Match the Following", Kind: KindMatch, Weight: 5, PerMark: 1, Note: "present as a two-column pipe table"},
			{Label: "IV", Title: "Very Short Answer Questions", Kind: KindVeryShort, Weight: 20, PerMark: 2},
			{Label: "V", Title: "Short Answer Questions", Kind: KindShort, Weight: 16, PerMark: 4},
			{Label: "VI", Title: "Long Answer Questions", Kind: KindLong, Weight: 24, PerMark: 6},
			{Label: "VII", Title: "Essay Questions", Kind: KindEssay, Weight: 20, PerMark: 10, Note: "offer internal choice"},
		},
	},
	"cbse": {
		Key:     "cbse",
		Display: "CBSE Pattern",
		Sections: []SectionSpec{
			{Label: "A", Title: "Multiple Choice Questions", Kind: KindMCQ, Weight: 25, PerMark: 1, Note: "four options (a)-(d) each"},
			{Label: "B", Title: "Very Short Answer Questions", Kind: KindVeryShort, Weight: 13, PerMark: 2},
			{Label: "C", Title: "Short Answer Questions", Kind: KindShort, Weight: 22, PerMark: 3},
			{Label: "D", Title: "Long Answer Questions", Kind: KindLong, Weight: 25, PerMark: 5},
			{Label: "E", Title: "Case Study Based Questions", Kind: KindEssay, Weight: 15, PerMark: 4},
		},
	},
	"icse": {
		Key:     "icse",
		Display: "ICSE Pattern",
		Sections: []SectionSpec{
			{Label: "A", Title: "Compulsory Short Answer Questions", Kind: KindVeryShort, Weight: 50, PerMark: 2},
			{Label: "B", Title: "Long Answer Questions (attempt any four)", Kind: KindLong, Weight: 50, PerMark: 10},
		},
	},
	"generic": {
		Key:     "generic",
		Display: "General State Board Pattern",
		Sections: []SectionSpec{
			{Label: "A", Title: "Objective Questions", Kind: KindMCQ, Weight: 20, PerMark: 1, Note: "four options (a)-(d) each"},
			{Label: "B", Title: "Short Answer Questions", Kind: KindShort, Weight: 30, PerMark: 2},
			{Label: "C", Title: "Long Answer Questions", Kind: KindLong, Weight: 30, PerMark: 5},
			{Label: "D", Title: "Essay Questions", Kind: KindEssay, Weight: 20, PerMark: 10},
		},
	},
	"jee": {
		Key:     "jee",
		Display: "JEE Pattern",
		Sections: []SectionSpec{
			{Label: "A", Title: "Multiple Choice Questions (single correct)", Kind: KindMCQ, Weight: 80, PerMark: 4, Note: "four options (a)-(d), mention negative marking of -1"},
			{Label: "B", Title: "Numerical Value Questions", Kind: KindNumerical, Weight: 20, PerMark: 4, Note: "answer is a number, no options"},
		},
	},
	"neet": {
		Key:     "neet",
		Display: "NEET Pattern",
		Sections: []SectionSpec{
			{Label: "A", Title: "Multiple Choice Questions", Kind: KindMCQ, Weight: 100, PerMark: 4, Note: "four options (a)-(d), mention negative marking of -1"},
		},
	},
	"clat": {
		Key:     "clat",
		Display: "CLAT Pattern",
		Sections: []SectionSpec{
			{Label: "A", Title: "Passage Based Multiple Choice Questions", Kind: KindMCQ, Weight: 100, PerMark: 1, Note: "group questions under short reading passages"},
		},
	},
	"olympiad": {
		Key:     "olympiad",
		Display: "Olympiad/NTSE Pattern",
		Sections: []SectionSpec{
			{Label: "A", Title: "Multiple Choice Questions", Kind: KindMCQ, Weight: 40, PerMark: 1, Note: "four options (a)-(d) each"},
			{Label: "B", Title: "Short Reasoning Questions", Kind: KindShort, Weight: 30, PerMark: 3},
			{Label: "C", Title: "Challenge Problems", Kind: KindLong, Weight: 30, PerMark: 5},
		},
	},
	"competitive": {
		Key:     "competitive",
		Display: "Competitive Exam Pattern",
		Sections: []SectionSpec{
			{Label: "A", Title: "Multiple Choice Questions", Kind: KindMCQ, Weight: 50, PerMark: 2, Note: "four options (a)-(d) each"},
			{Label: "B", Title: "Numerical/Reasoning Questions", Kind: KindNumerical, Weight: 30, PerMark: 3},
			{Label: "C", Title: "Descriptive Questions", Kind: KindEssay, Weight: 20, PerMark: 5},
		},
	},
}

// boardAliases maps normalized name fragments to template keys. Matching
// is first-hit over this ordered list, not a map walk, so results stay
// deterministic.
var boardAliases = []struct {
	fragment string
	key      string
}{
	{"andhra", "ap-state"},
	{"ap state", "ap-state"},
	{"ap ssc", "ap-state"},
	{"apssc", "ap-state"},
	{"telangana", "ap-state"},
	{"ts ssc", "ap-state"},
	{"cbse", "cbse"},
	{"ncert", "cbse"},
	{"icse", "icse"},
	{"isc", "icse"},
	{"cisce", "icse"},
	{"jee", "jee"},
	{"iit", "jee"},
	{"neet", "neet"},
	{"clat", "clat"},
	{"olympiad", "olympiad"},
	{"ntse", "olympiad"},
	{"nso", "olympiad"},
	{"imo", "olympiad"},
}

// normalizeBoard lower-cases and squeezes whitespace so alias matching is
// insensitive to how the caller typed the name.
func normalizeBoard(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), " ")
}

// TemplateFor selects the structural template for a request. Unrecognized
// boards land on the named general pattern rather than an error.
func TemplateFor(req *models.GenerationRequest) *Template {
	name := normalizeBoard(req.BoardLabel())
	for _, alias := range boardAliases {
		if strings.Contains(name, alias.fragment) {
			return templates[alias.key]
		}
	}
	if name == "ap" || name == "ts" {
		return templates["ap-state"]
	}
	if req.ExamType == models.ExamCompetitive {
		return templates["competitive"]
	}
	return templates["generic"]
}
