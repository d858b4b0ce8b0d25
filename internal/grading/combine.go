package grading

import "math"

// passMark is the combined percentage at or above which a submission
// counts as a pass.
const passMark = 50

// Combined folds the automatic and manual scores into the overall view.
type Combined struct {
	ObtainedMarks float64 `json:"obtained_marks"`
	TotalMarks    float64 `json:"total_marks"`
	Percentage    float64 `json:"percentage"`
	Letter        string  `json:"letter"`
	Passed        bool    `json:"passed"`
}

// Combine produces the overall result from the two paths' totals.
// Percentage is rounded to two decimals.
func Combine(mcqObtained, mcqTotal, saObtained, saTotal float64) Combined {
	obtained := mcqObtained + saObtained
	total := mcqTotal + saTotal
	pct := Round2(Percent(obtained, total))
	return Combined{
		ObtainedMarks: obtained,
		TotalMarks:    total,
		Percentage:    pct,
		Letter:        Letter(pct),
		Passed:        pct >= passMark,
	}
}

// Letter maps a percentage to its grade band.
func Letter(pct float64) string {
	switch {
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "F"
	}
}

// Round2 rounds to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
