package grading

import (
	"fmt"
	"math"
)

// ShortAnswerGrade is one lecturer-recorded mark for a short-answer
// question, stored on the submission keyed by question ref.
type ShortAnswerGrade struct {
	Ref      string  `json:"ref"`
	Awarded  float64 `json:"awarded"`
	Max      float64 `json:"max"`
	Feedback string  `json:"feedback,omitempty"`
	GradedBy string  `json:"graded_by,omitempty"`
	GradedAt int64   `json:"graded_at,omitempty"`
}

// CheckAwarded validates a manual mark against the question's maximum:
// non-negative, within bounds, at most one decimal place.
func CheckAwarded(awarded, max float64) error {
	if awarded < 0 {
		return fmt.Errorf("awarded marks %.2f must not be negative", awarded)
	}
	if awarded > max {
		return fmt.Errorf("awarded marks %.2f exceed the question maximum %.1f", awarded, max)
	}
	if math.Mod(awarded*10, 1) != 0 {
		return fmt.Errorf("awarded marks %v must have at most one decimal place", awarded)
	}
	return nil
}

// ShortAnswerComplete reports whether every listed short-answer ref has
// a recorded grade. Vacuously true when the exam has none.
func ShortAnswerComplete(refs []string, grades map[string]ShortAnswerGrade) bool {
	for _, r := range refs {
		if _, ok := grades[r]; !ok {
			return false
		}
	}
	return true
}

// SumAwarded totals the recorded short-answer marks.
func SumAwarded(grades map[string]ShortAnswerGrade) float64 {
	sum := 0.0
	for _, g := range grades {
		sum += g.Awarded
	}
	return sum
}
