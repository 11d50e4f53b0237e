package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// referenceExcerptBudget caps how much extracted text rides along in the
// prompt. Past papers run long; the opening pages carry the conventions.
const referenceExcerptBudget = 4000

// ReferenceService extracts plain text from an uploaded sample paper so
// the prompt can imitate its conventions.
type ReferenceService struct{}

func NewReferenceService() *ReferenceService {
	return &ReferenceService{}
}

// Extract pulls text from PDF bytes and trims it to the excerpt budget.
// Scanned papers with no text layer come back empty, not as an error.
func (s *ReferenceService) Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open reference pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract reference text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read reference text: %w", err)
	}

	return truncateExcerpt(buf.String(), referenceExcerptBudget), nil
}

// ExtractUpload reads a multipart upload fully and extracts its text.
func (s *ReferenceService) ExtractUpload(file io.Reader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read reference upload: %w", err)
	}
	return s.Extract(data)
}

// truncateExcerpt trims to the rune budget at a word boundary and
// squeezes the spacing artifacts PDF extraction leaves behind.
func truncateExcerpt(text string, budget int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	cut := budget
	for cut > 0 && runes[cut-1] != ' ' {
		cut--
	}
	if cut == 0 {
		cut = budget
	}
	return strings.TrimSpace(string(runes[:cut]))
}
