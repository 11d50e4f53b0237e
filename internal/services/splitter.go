package services

import (
	"regexp"
	"strings"
)

// keyMarkers are tried in order against the raw LLM output. The strict
// own-line variants go first so an "answer key" mention inside the
// instructions never splits the paper; the loose pattern mirrors the
// permissive split older revisions shipped with and keeps the function
// total on sloppy model output.
var keyMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^[\s\-=_*#]*answer\s+key\s*(?:(?:and|&|with)\s+marking\s+scheme)?\s*[:.]?[\s\-=_*#]*$`),
	regexp.MustCompile(`(?i)answer\s+key[:]?\s*`),
}

// SplitKey divides raw generated text into the paper body and the answer
// key at the first marker match. No marker returns the trimmed input and
// an empty key. The split is total: every character lands in exactly one
// half or in the discarded marker itself.
func SplitKey(text string) (paper, key string) {
	for _, marker := range keyMarkers {
		loc := marker.FindStringIndex(text)
		if loc == nil {
			continue
		}
		return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[1]:])
	}
	return strings.TrimSpace(text), ""
}
