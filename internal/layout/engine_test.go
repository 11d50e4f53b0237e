package layout

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_TableAccumulation(t *testing.T) {
	text := strings.Join([]string{
		"| Column A | Column B |",
		"| --- | --- |",
		"| Mitosis | (a) Cell division |",
		"| Osmosis | (b) Water transport |",
		"Attempt all matches.",
	}, "\n")

	els := Parse(text)
	if len(els) != 2 {
		t.Fatalf("got %d elements, want 2: %#v", len(els), els)
	}
	table, ok := els[0].(Table)
	if !ok {
		t.Fatalf("first element is %T, want Table", els[0])
	}
	want := [][]string{
		{"Column A", "Column B"},
		{"Mitosis", "(a) Cell division"},
		{"Osmosis", "(b) Water transport"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows = %v, want %v", table.Rows, want)
	}
	if _, ok := els[1].(Paragraph); !ok {
		t.Errorf("second element is %T, want Paragraph", els[1])
	}
}

// The divider row must never survive into the rendered table.
func TestParse_DividerRowDropped(t *testing.T) {
	els := Parse("| A | B |\n| --- | --- |\n| 1 | 2 |")
	table := els[0].(Table)
	for _, row := range table.Rows {
		for _, cell := range row {
			if strings.Trim(cell, ":- ") == "" && cell != "" {
				t.Errorf("divider cell leaked into table: %q", cell)
			}
		}
	}
	if len(table.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(table.Rows))
	}
}

func TestParse_FourOptionsGroup(t *testing.T) {
	text := strings.Join([]string{
		"Q1. Which organelle makes ATP? [1 Mark]",
		"(a) Nucleus",
		"(b) Mitochondria",
		"(c) Ribosome",
		"(d) Vacuole",
	}, "\n")

	els := Parse(text)
	if len(els) != 2 {
		t.Fatalf("got %d elements, want question + group: %#v", len(els), els)
	}
	group, ok := els[1].(OptionGroup)
	if !ok {
		t.Fatalf("second element is %T, want OptionGroup", els[1])
	}
	if len(group.Options) != 4 {
		t.Errorf("group has %d options, want 4", len(group.Options))
	}
	if group.Options[1].Text != "Mitochondria" {
		t.Errorf("option order lost: %v", group.Options)
	}
}

// A fifth lettered line after a complete group starts over and, being
// isolated, becomes a sub-part rather than joining the group.
func TestParse_FifthOptionNeverMerged(t *testing.T) {
	text := strings.Join([]string{
		"(a) One",
		"(b) Two",
		"(c) Three",
		"(d) Four",
		"(a) Prove the identity.",
	}, "\n")

	els := Parse(text)
	if len(els) != 2 {
		t.Fatalf("got %d elements, want group + sub-part: %#v", len(els), els)
	}
	if group := els[0].(OptionGroup); len(group.Options) != 4 {
		t.Errorf("group has %d options, want 4", len(group.Options))
	}
	sub, ok := els[1].(SubPart)
	if !ok {
		t.Fatalf("second element is %T, want SubPart", els[1])
	}
	if sub.Text != "Prove the identity." {
		t.Errorf("sub-part text = %q", sub.Text)
	}
}

func TestParse_IsolatedOptionsBecomeSubParts(t *testing.T) {
	text := "Q2. Evaluate each expression. [4 Marks]\n(a) 2 + 2\n(b) 3 * 3\n\nQ3. Continue."
	els := Parse(text)

	var subs int
	for _, el := range els {
		if _, ok := el.(SubPart); ok {
			subs++
		}
		if _, ok := el.(OptionGroup); ok {
			t.Errorf("two options must not form a group")
		}
	}
	if subs != 2 {
		t.Errorf("got %d sub-parts, want 2", subs)
	}
}

func TestParse_InstructionBlock(t *testing.T) {
	text := strings.Join([]string{
		"General Instructions:",
		"1. All questions are compulsory.",
		"2. Calculators are not permitted.",
		"",
		"SECTION A",
	}, "\n")

	els := Parse(text)
	if len(els) != 4 {
		t.Fatalf("got %d elements: %#v", len(els), els)
	}
	banner := els[0].(Banner)
	if banner.Key {
		t.Error("instructions banner should not be key-styled")
	}
	list, ok := els[1].(InstructionList)
	if !ok {
		t.Fatalf("second element is %T, want InstructionList", els[1])
	}
	if len(list.Items) != 2 || !strings.Contains(list.Items[0], "compulsory") {
		t.Errorf("items = %v", list.Items)
	}
	if _, ok := els[2].(Spacer); !ok {
		t.Errorf("third element is %T, want Spacer", els[2])
	}
	if _, ok := els[3].(Banner); !ok {
		t.Errorf("fourth element is %T, want Banner", els[3])
	}
}

func TestParse_TrailingBlanksTrimmed(t *testing.T) {
	els := Parse("Q1. Last question. [1 Mark]\n\n\n\n")
	if len(els) == 0 {
		t.Fatal("no elements")
	}
	if _, ok := els[len(els)-1].(Spacer); ok {
		t.Error("trailing spacers must be trimmed")
	}
}

func TestBuildDocument_KeyOnNewPage(t *testing.T) {
	els := BuildDocument("Q1. Question body. [1 Mark]", "1. The answer.")

	var breakAt, bannerAt = -1, -1
	for i, el := range els {
		if _, ok := el.(PageBreak); ok && breakAt == -1 {
			breakAt = i
		}
		if b, ok := el.(Banner); ok && b.Key && bannerAt == -1 {
			bannerAt = i
		}
	}
	if breakAt == -1 {
		t.Fatal("key must start with a page break")
	}
	if bannerAt != breakAt+1 {
		t.Errorf("key banner at %d, want right after break at %d", bannerAt, breakAt)
	}
}

func TestBuildDocument_NoKeyNoBreak(t *testing.T) {
	els := BuildDocument("Q1. Question body. [1 Mark]", "")
	for _, el := range els {
		if _, ok := el.(PageBreak); ok {
			t.Error("paper without a key must not gain a page break")
		}
		if b, ok := el.(Banner); ok && b.Key {
			t.Error("paper without a key must not gain a key banner")
		}
	}
}

func TestDiagramDescriptions(t *testing.T) {
	els := Parse(strings.Join([]string{
		"[DIAGRAM: right triangle ABC]",
		"Some prose.",
		"[DIAGRAM: water cycle]",
		"[DIAGRAM: right triangle ABC]",
	}, "\n"))

	got := DiagramDescriptions(els)
	want := []string{"right triangle ABC", "water cycle"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("descriptions = %v, want %v", got, want)
	}
}
