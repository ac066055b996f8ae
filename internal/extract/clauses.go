package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/clauserisk/internal/model"
)

// MinClauseLength is the trimmed length, in characters, a fragment must
// exceed to count as a clause
const MinClauseLength = 40

// blankLine matches a line break, optional whitespace, and another line break.
// Whitespace includes \v and Unicode spaces such as U+00A0 left by DOCX/PDF
// extraction.
var blankLine = regexp.MustCompile(`\n[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]*\n`)

// SplitClauses splits normalized text on blank lines and numbers the
// surviving fragments from 1 in document order
func SplitClauses(text string) []model.Clause {
	clauses := []model.Clause{}
	for _, part := range blankLine.Split(text, -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) <= MinClauseLength {
			continue
		}
		clauses = append(clauses, model.Clause{
			Number: len(clauses) + 1,
			Text:   part,
		})
	}
	return clauses
}

// JoinClauses rebuilds text from clauses using blank-line separators
func JoinClauses(clauses []model.Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}
