package models

import (
	"fmt"
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty normalizes a free-text difficulty value. Unknown or
// empty input falls back to Medium.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

type ExamType string

const (
	ExamStateBoard  ExamType = "state-board"
	ExamCompetitive ExamType = "competitive"
)

// GenerationRequest carries everything the caller supplies for one paper.
// Transient; one per HTTP call.
type GenerationRequest struct {
	ExamType        ExamType   `json:"examType"`
	Class           string     `json:"class"`
	Subject         string     `json:"subject"`
	Chapter         string     `json:"chapter"`
	Board           string     `json:"board"`
	State           string     `json:"state"`
	CompetitiveExam string     `json:"competitiveExam"`
	Marks           int        `json:"marks"`
	Difficulty      Difficulty `json:"difficulty"`
	Suggestions     string     `json:"suggestions"`
	IncludeKey      bool       `json:"includeAnswerKey"`

	// PromptOverride replaces the built prompt verbatim when set.
	PromptOverride string `json:"prompt"`

	// UseOfflineTemplate skips the LLM and builds the paper from the
	// local content banks.
	UseOfflineTemplate bool `json:"useOfflineTemplate"`

	// ReferenceExcerpt is text extracted from an uploaded sample paper,
	// never taken from the JSON body directly.
	ReferenceExcerpt string `json:"-"`
}

// Validate reports the first malformed field so handlers can name it in
// a 400 response. Marks below the minimum are clamped, not rejected.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Subject) == "" && r.ExamType != ExamCompetitive {
		return fmt.Errorf("missing required field: subject")
	}
	if r.Marks < 0 {
		return fmt.Errorf("invalid field: marks must be a positive integer")
	}
	return nil
}

// BoardLabel is the board or exam name used for template selection and
// PDF headers, whichever field the caller populated.
func (r *GenerationRequest) BoardLabel() string {
	if r.ExamType == ExamCompetitive && r.CompetitiveExam != "" {
		return r.CompetitiveExam
	}
	if r.Board != "" {
		return r.Board
	}
	return r.State
}

// GeneratedDocument is the LLM's raw response split into its two halves.
// The key may be empty when no marker was present.
type GeneratedDocument struct {
	Paper        string
	AnswerKey    string
	Model        string
	UsedFallback bool
}

// HistoryEntry is one line of the rolling generation log.
type HistoryEntry struct {
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	Class        string     `json:"class"`
	Subject      string     `json:"subject"`
	Chapter      string     `json:"chapter"`
	Board        string     `json:"board"`
	Marks        int        `json:"marks"`
	Difficulty   Difficulty `json:"difficulty"`
	Model        string     `json:"model"`
	UsedFallback bool       `json:"used_fallback"`
}

// Chapter is one curriculum row served by /chapters.
type Chapter struct {
	Class    string   `json:"class"`
	Subject  string   `json:"subject"`
	Chapters []string `json:"chapters"`
}
