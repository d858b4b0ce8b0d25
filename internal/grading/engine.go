// Package grading implements an exam's two scoring paths: the automatic
// multiple-choice scorer that runs at submission time, and the manual
// short-answer path recorded later by lecturers. A combiner folds both
// into the overall result, and Aggregate summarizes a whole class.
package grading

import "strings"

// AnswerState classifies one multiple-choice answer.
type AnswerState string

const (
	AnswerCorrect    AnswerState = "correct"
	AnswerIncorrect  AnswerState = "incorrect"
	AnswerUnanswered AnswerState = "unanswered"
)

// MCQQuestion is the minimal view of a multiple-choice question the
// scorer needs. Keep this in sync with whatever fields your store uses.
type MCQQuestion struct {
	Ref           string // answer-map key, e.g. "mcq:3"
	Marks         float64
	CorrectOption string // "A".."D"
}

// QuestionOutcome is one per-question line of an MCQResult.
type QuestionOutcome struct {
	Ref     string      `json:"ref"`
	Answer  string      `json:"answer"`
	State   AnswerState `json:"state"`
	Marks   float64     `json:"marks"`
	Awarded float64     `json:"awarded"`
}

// MCQResult is the automatic scorer's outcome over a whole submission.
type MCQResult struct {
	TotalMarks      float64           `json:"total_marks"`
	ObtainedMarks   float64           `json:"obtained_marks"`
	Percentage      float64           `json:"percentage"`
	CorrectCount    int               `json:"correct_count"`
	IncorrectCount  int               `json:"incorrect_count"`
	UnansweredCount int               `json:"unanswered_count"`
	PerQuestion     []QuestionOutcome `json:"per_question"`
}

// ScoreMCQ grades every multiple-choice question against the student's
// answer map. A missing or blank answer counts as unanswered. Marks
// accumulate into the total whether or not the question was answered.
// Pure: rerunning over the same inputs reproduces the same result, which
// repair tooling relies on.
func ScoreMCQ(questions []MCQQuestion, answers map[string]string) MCQResult {
	res := MCQResult{PerQuestion: make([]QuestionOutcome, 0, len(questions))}
	for _, q := range questions {
		ans := NormalizeChoice(answers[q.Ref])
		out := QuestionOutcome{Ref: q.Ref, Answer: ans, Marks: q.Marks}
		switch {
		case ans == "":
			out.State = AnswerUnanswered
			res.UnansweredCount++
		case ans == NormalizeChoice(q.CorrectOption):
			out.State = AnswerCorrect
			out.Awarded = q.Marks
			res.CorrectCount++
			res.ObtainedMarks += q.Marks
		default:
			out.State = AnswerIncorrect
			res.IncorrectCount++
		}
		res.TotalMarks += q.Marks
		res.PerQuestion = append(res.PerQuestion, out)
	}
	res.Percentage = Round2(Percent(res.ObtainedMarks, res.TotalMarks))
	return res
}

// NormalizeChoice uppercases and trims a raw answer so "b " and "B"
// compare equal.
func NormalizeChoice(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Percent returns obtained/total as a percentage, 0 when total is 0.
func Percent(obtained, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return obtained / total * 100
}
