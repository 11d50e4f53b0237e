package prompt

import (
	"testing"

	"examforge/internal/models"
)

func TestAPStateBoardPlanAt100(t *testing.T) {
	req := &models.GenerationRequest{Subject: "Mathematics", Board: "AP State Board", Marks: 100}
	tmpl := TemplateFor(req)
	if tmpl.Key != "ap-state" {
		t.Fatalf("expected ap-state template, got %s", tmpl.Key)
	}

	plan := tmpl.Plan(100)
	want := []struct {
		label   string
		marks   int
		count   int
		perMark int
	}{
		{"I", 10, 10, 1},
		{"II", 5, 5, 1},
		{"III", 5, 5, 1},
		{"IV", 20, 10, 2},
		{"V", 16, 4, 4},
		{"VI", 24, 4, 6},
		{"VII", 20, 2, 10},
	}
	if len(plan) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(plan))
	}
	for i, w := range want {
		p := plan[i]
		if p.Label != w.label || p.Marks != w.marks || p.Count != w.count || p.PerMark != w.perMark {
			t.Errorf("section %s: got marks=%d count=%d per=%d, want marks=%d count=%d per=%d",
				p.Label, p.Marks, p.Count, p.PerMark, w.marks, w.count, w.perMark)
		}
		if !p.Even {
			t.Errorf("section %s should divide evenly at 100 marks", p.Label)
		}
	}
}

func TestPlanSubtotalsAlwaysSumToTotal(t *testing.T) {
	totals := []int{10, 15, 20, 25, 30, 35, 40, 50, 60, 70, 75, 80, 90, 100, 120, 150, 200}
	for key, tmpl := range templates {
		for _, total := range totals {
			plan := tmpl.Plan(total)
			sum := 0
			for _, p := range plan {
				sum += p.Marks
			}
			if sum != total {
				t.Errorf("template %s at %d marks: sections sum to %d", key, total, sum)
			}
		}
	}
}

func TestPlanClampsLowAndUnsetMarks(t *testing.T) {
	tmpl := templates["generic"]

	plan := tmpl.Plan(3)
	sum := 0
	for _, p := range plan {
		sum += p.Marks
	}
	if sum != MinMarks {
		t.Fatalf("marks below the floor must clamp to %d, got %d", MinMarks, sum)
	}

	plan = tmpl.Plan(0)
	sum = 0
	for _, p := range plan {
		sum += p.Marks
	}
	if sum != DefaultMarks {
		t.Fatalf("unset marks must default to %d, got %d", DefaultMarks, sum)
	}
}

func TestCBSEPlanAt80(t *testing.T) {
	plan := templates["cbse"].Plan(80)
	wantMarks := []int{20, 10, 18, 20, 12}
	if len(plan) != len(wantMarks) {
		t.Fatalf("expected %d sections, got %d", len(wantMarks), len(plan))
	}
	for i, w := range wantMarks {
		if plan[i].Marks != w {
			t.Errorf("section %s: got %d marks, want %d", plan[i].Label, plan[i].Marks, w)
		}
	}
}

func TestTemplateSelection(t *testing.T) {
	cases := []struct {
		name string
		req  models.GenerationRequest
		want string
	}{
		{"andhra full name", models.GenerationRequest{Board: "Andhra Pradesh State Board"}, "ap-state"},
		{"telangana", models.GenerationRequest{Board: "Telangana SSC"}, "ap-state"},
		{"short ap", models.GenerationRequest{Board: "AP"}, "ap-state"},
		{"cbse upper", models.GenerationRequest{Board: "CBSE"}, "cbse"},
		{"ncert", models.GenerationRequest{Board: "NCERT syllabus"}, "cbse"},
		{"icse", models.GenerationRequest{Board: "ICSE"}, "icse"},
		{"jee via exam", models.GenerationRequest{ExamType: models.ExamCompetitive, CompetitiveExam: "JEE Mains"}, "jee"},
		{"neet", models.GenerationRequest{ExamType: models.ExamCompetitive, CompetitiveExam: "NEET UG"}, "neet"},
		{"clat", models.GenerationRequest{ExamType: models.ExamCompetitive, CompetitiveExam: "CLAT"}, "clat"},
		{"ntse", models.GenerationRequest{ExamType: models.ExamCompetitive, CompetitiveExam: "NTSE Stage 1"}, "olympiad"},
		{"unknown board falls back", models.GenerationRequest{Board: "Board of Atlantis"}, "generic"},
		{"unknown competitive falls back", models.GenerationRequest{ExamType: models.ExamCompetitive, CompetitiveExam: "Some Entrance"}, "competitive"},
		{"state field only", models.GenerationRequest{State: "Telangana"}, "ap-state"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TemplateFor(&tc.req); got.Key != tc.want {
				t.Errorf("got %s, want %s", got.Key, tc.want)
			}
		})
	}
}

func TestApportionDistributesRemainder(t *testing.T) {
	shares := apportion(50, []int{10, 5, 5, 20, 16, 24, 20})
	sum := 0
	for _, s := range shares {
		sum += s
	}
	if sum != 50 {
		t.Fatalf("shares %v sum to %d, want 50", shares, sum)
	}
	// Largest weight must never receive less than smallest.
	if shares[5] < shares[1] {
		t.Fatalf("monotonicity broken: %v", shares)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(100); got != 180 {
		t.Errorf("Duration(100) = %d, want 180", got)
	}
	if got := Duration(50); got != 90 {
		t.Errorf("Duration(50) = %d, want 90", got)
	}
	if got := Duration(10); got != 45 {
		t.Errorf("Duration(10) = %d, want 45", got)
	}
}
