package prompt

import (
	"fmt"
	"strings"

	"examforge/internal/models"
)

// Offline builds a complete paper from the content banks, with the same
// structural markers the LLM is instructed to use, so everything
// downstream of generation is exercised identically. Deterministic:
// the same request yields the same paper.
func Offline(req *models.GenerationRequest) string {
	tmpl := TemplateFor(req)
	marks := ClampMarks(req.Marks)
	plan := tmpl.Plan(marks)
	bank := bankFor(req.Subject)

	var b strings.Builder
	title := strings.TrimSpace(req.Subject)
	if title == "" {
		title = "Question Paper"
	} else {
		title += " Question Paper"
	}
	if c := strings.TrimSpace(req.Chapter); c != "" {
		title += " - " + c
	}
	b.WriteString(title + "\n")

	var meta []string
	if req.Class != "" {
		meta = append(meta, "Class: "+req.Class)
	}
	if lbl := req.BoardLabel(); lbl != "" {
		meta = append(meta, lbl)
	}
	meta = append(meta, fmt.Sprintf("Total Marks: %d", marks), fmt.Sprintf("Time: %d minutes", Duration(marks)))
	b.WriteString(strings.Join(meta, " | ") + "\n\n")

	b.WriteString("General Instructions:\n")
	b.WriteString("1. All questions are compulsory unless an internal choice is given.\n")
	b.WriteString("2. Marks for each question are indicated against it.\n")
	b.WriteString("3. Draw neat labelled diagrams wherever required.\n\n")

	var answers []string
	qn := 0
	for _, p := range plan {
		fmt.Fprintf(&b, "SECTION %s: %s (%d Marks)\n", p.Label, p.Title, p.Marks)

		if p.Kind == KindMatch {
			qn++
			fmt.Fprintf(&b, "Q%d. Match the following: [%d Marks]\n", qn, p.Marks)
			rows, ans := matchRows(bank, p.Marks, req.Chapter)
			b.WriteString("| Column A | Column B |\n")
			b.WriteString("| --- | --- |\n")
			for _, row := range rows {
				b.WriteString(row + "\n")
			}
			answers = append(answers, fmt.Sprintf("Q%d. %s", qn, ans))
			b.WriteString("\n")
			continue
		}

		pool := questionsOfKind(bank, p.Kind)
		for i := 0; i < p.Count; i++ {
			qn++
			q := pick(pool, i, p.Kind, req.Chapter)
			qMarks := p.PerMark
			if !p.Even && i == p.Count-1 {
				qMarks = p.Marks - p.PerMark*(p.Count-1)
			}
			fmt.Fprintf(&b, "Q%d. %s [%d Marks]\n", qn, fillChapter(q.Text, req.Chapter), qMarks)
			if q.Kind == KindMCQ && len(q.Options) == 4 {
				for j, opt := range q.Options {
					fmt.Fprintf(&b, "(%c) %s\n", 'a'+j, opt)
				}
			}
			answers = append(answers, fmt.Sprintf("Q%d. %s", qn, fillChapter(q.Answer, req.Chapter)))
		}
		b.WriteString("\n")
	}

	if req.IncludeKey {
		b.WriteString("---\n")
		b.WriteString("ANSWER KEY\n")
		for _, a := range answers {
			b.WriteString(a + "\n")
		}
		b.WriteString("\nMarking Scheme:\n")
		b.WriteString("Award full marks for any correct method; deduct proportionally for incomplete steps.\n")
	}

	return b.String()
}

// questionsOfKind filters a bank by kind, falling back to the general
// bank so every section always has a pool.
func questionsOfKind(bank []BankQuestion, kind QuestionKind) []BankQuestion {
	var out []BankQuestion
	for _, q := range bank {
		if q.Kind == kind {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		for _, q := range contentBanks["general"] {
			if q.Kind == kind {
				out = append(out, q)
			}
		}
	}
	return out
}

// pick cycles the pool; once a pool is exhausted, repeats get a variant
// suffix so the paper does not show two identical stems side by side.
func pick(pool []BankQuestion, i int, kind QuestionKind, chapter string) BankQuestion {
	if len(pool) == 0 {
		return BankQuestion{Kind: kind, Text: genericStem(kind), Answer: "Per text."}
	}
	q := pool[i%len(pool)]
	if i >= len(pool) {
		q.Text = q.Text + fmt.Sprintf(" (Variant %d)", i/len(pool)+1)
	}
	return q
}

func genericStem(kind QuestionKind) string {
	switch kind {
	case KindFillBlank:
		return "The key term introduced in {chapter} is ________."
	case KindVeryShort:
		return "Define the most important term introduced in {chapter}."
	case KindShort:
		return "Summarise the main idea of {chapter} in three or four sentences."
	case KindLong:
		return "Explain the central concept of {chapter} with suitable examples."
	case KindEssay:
		return "Write a detailed essay on the themes covered in {chapter}."
	case KindNumerical:
		return "Solve the practice problem from {chapter} shown in class."
	default:
		return "Answer the question based on {chapter}."
	}
}

// matchRows builds a pipe-table of the requested length from the bank's
// match entry, padding with neutral rows when the bank runs short.
func matchRows(bank []BankQuestion, count int, chapter string) ([]string, string) {
	var src BankQuestion
	for _, q := range bank {
		if q.Kind == KindMatch {
			src = q
			break
		}
	}
	var rows []string
	for _, row := range src.Options {
		if len(rows) == count {
			break
		}
		rows = append(rows, fillChapter(row, chapter))
	}
	for len(rows) < count {
		n := len(rows) + 1
		rows = append(rows, fmt.Sprintf("| Term %d | (%c) Description %d |", n, 'a'+(n-1)%26, n))
	}
	ans := src.Answer
	if ans == "" {
		ans = "Match each term with its description as prepared by the examiner."
	}
	return rows, ans
}
