package exam

import "time"

// DefaultGraceMinutes pads the hard end of the access window so a
// student mid-submission at the nominal end is not cut off.
const DefaultGraceMinutes = 5

// Window is the access interval for an exam. HardEnd includes the grace
// buffer and is the true cutoff for auto-submission.
type Window struct {
	Start   time.Time
	HardEnd time.Time
}

// ComputeWindow derives the access window from the exam's date, start
// time and duration, interpreted in the fixed zone. The stored end_time
// is advisory and ignored here: hard end = start + duration + grace.
func ComputeWindow(e Exam, loc *time.Location, grace time.Duration) (Window, error) {
	start, err := ParseDateTime(e.ExamDate, e.StartTime, loc, "exam start")
	if err != nil {
		return Window{}, err
	}
	dur := time.Duration(e.DurationMinutes) * time.Minute
	return Window{Start: start, HardEnd: start.Add(dur + grace)}, nil
}

// ParseDateTime parses a boundary "YYYY-MM-DD" date plus optional
// "HH:MM" time-of-day in loc. A blank time means midnight. Lengths are
// checked first so lenient layouts like "2025-1-2" are rejected instead
// of guessed at.
func ParseDateTime(date, tod string, loc *time.Location, field string) (time.Time, error) {
	if len(date) != len(DateLayout) {
		return time.Time{}, &FormatError{Field: field + " date", Value: date}
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, &FormatError{Field: field + " date", Value: date}
	}
	if tod == "" {
		return d, nil
	}
	if len(tod) != len(TimeLayout) {
		return time.Time{}, &FormatError{Field: field + " time", Value: tod}
	}
	t, err := time.Parse(TimeLayout, tod)
	if err != nil {
		return time.Time{}, &FormatError{Field: field + " time", Value: tod}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
