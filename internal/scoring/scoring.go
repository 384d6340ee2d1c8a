// Package scoring grades a set of stored answers against their questions'
// correct options. It is a pure computation; persisting the outcome exactly
// once is the attempt service's job.
package scoring

import "strings"

// AnswerRow is one stored answer joined to its question's answer key.
type AnswerRow struct {
	Selected *string // nil means the student skipped the question
	Correct  string
	Marks    float64
}

// Summary is the computed outcome of one attempt.
type Summary struct {
	TotalScore     float64
	CorrectAnswers int
	TotalQuestions int
}

// IsCorrect reports whether a selection matches the correct option. The
// comparison is case-insensitive and ignores surrounding whitespace; a nil
// selection is never correct.
func IsCorrect(selected *string, correct string) bool {
	if selected == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(*selected), strings.TrimSpace(correct))
}

// Score grades the given rows. TotalQuestions counts the rows passed in, i.e.
// answers the student synced at least once; questions never touched are not
// part of either the numerator or the denominator.
func Score(rows []AnswerRow) Summary {
	var s Summary
	s.TotalQuestions = len(rows)
	for _, row := range rows {
		if IsCorrect(row.Selected, row.Correct) {
			s.TotalScore += row.Marks
			s.CorrectAnswers++
		}
	}
	return s
}
