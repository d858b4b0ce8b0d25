package exam

import (
	"fmt"
	"time"
)

// Severity separates blocking schedule violations from advisory ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ScheduleViolation is one cross-field rule failure.
type ScheduleViolation struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Gap bounds across the exam-end -> grading-deadline -> release chain.
const (
	minGradingGap   = 24 * time.Hour
	minReleaseGap   = time.Hour
	pastGrace       = time.Hour
	maxTotalSpan    = 30 * 24 * time.Hour
	longGradingSpan = 14 * 24 * time.Hour
)

// ScheduleInput carries the six boundary strings the validator checks.
// The deadline and release pairs may be blank when not yet configured;
// rules involving an absent value are skipped.
type ScheduleInput struct {
	ExamEndDate  string
	ExamEndTime  string
	DeadlineDate string
	DeadlineTime string
	ReleaseDate  string
	ReleaseTime  string
}

// ValidateSchedule checks ordering and gap rules across exam end,
// grading deadline and result release. Pure over its arguments. Every
// applicable rule is evaluated so one response carries all violations
// together; only an unparsable value aborts, with a FormatError.
func ValidateSchedule(in ScheduleInput, now time.Time, loc *time.Location) ([]ScheduleViolation, error) {
	end, err := ParseDateTime(in.ExamEndDate, in.ExamEndTime, loc, "exam end")
	if err != nil {
		return nil, err
	}
	var deadline, release time.Time
	hasDeadline := in.DeadlineDate != ""
	hasRelease := in.ReleaseDate != ""
	if hasDeadline {
		if deadline, err = ParseDateTime(in.DeadlineDate, in.DeadlineTime, loc, "grading deadline"); err != nil {
			return nil, err
		}
	}
	if hasRelease {
		if release, err = ParseDateTime(in.ReleaseDate, in.ReleaseTime, loc, "result release"); err != nil {
			return nil, err
		}
	}

	var out []ScheduleViolation
	add := func(rule string, sev Severity, format string, args ...any) {
		out = append(out, ScheduleViolation{Rule: rule, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if hasDeadline && !deadline.After(end) {
		add("deadline_after_end", SeverityError,
			"grading deadline %s must be after the exam ends %s",
			deadline.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
	}
	if hasDeadline && deadline.Sub(end) < minGradingGap {
		add("min_grading_gap", SeverityError,
			"gap between exam end and grading deadline must be at least 24 hours")
	}
	if hasDeadline && hasRelease && !release.After(deadline) {
		add("release_after_deadline", SeverityError,
			"result release must be after the grading deadline")
	}
	if hasDeadline && hasRelease && release.Sub(deadline) < minReleaseGap {
		add("min_release_gap", SeverityError,
			"gap between grading deadline and result release must be at least 1 hour")
	}
	if hasDeadline && now.Sub(deadline) > pastGrace {
		add("deadline_in_past", SeverityError,
			"grading deadline is more than 1 hour in the past")
	}
	if hasRelease && now.Sub(release) > pastGrace {
		add("release_in_past", SeverityError,
			"result release is more than 1 hour in the past")
	}
	if hasRelease && release.Sub(end) > maxTotalSpan {
		add("max_total_span", SeverityError,
			"exam end to result release must not exceed 30 days")
	}
	if hasDeadline && deadline.Sub(end) > longGradingSpan {
		add("long_grading_period", SeverityWarning,
			"grading period longer than 14 days")
	}
	return out, nil
}

// HasBlocking reports whether any violation is error severity.
func HasBlocking(vs []ScheduleViolation) bool {
	for _, v := range vs {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// EndStrings returns the exam-end date and time the schedule rules
// compare against: the stored end_time when present, otherwise the
// nominal end derived from start + duration.
func (e Exam) EndStrings(loc *time.Location) (string, string, error) {
	if e.EndTime != "" {
		return e.ExamDate, e.EndTime, nil
	}
	start, err := ParseDateTime(e.ExamDate, e.StartTime, loc, "exam start")
	if err != nil {
		return "", "", err
	}
	end := start.Add(time.Duration(e.DurationMinutes) * time.Minute)
	return end.Format(DateLayout), end.Format(TimeLayout), nil
}

// DurationConsistency flags a stated duration that disagrees with the
// advisory end_time by more than a minute. Display-only: the window
// calculator derives the hard end purely from start + duration, so a
// mismatch here never moves a live exam window.
func DurationConsistency(e Exam, loc *time.Location) (*ScheduleViolation, error) {
	if e.EndTime == "" {
		return nil, nil
	}
	start, err := ParseDateTime(e.ExamDate, e.StartTime, loc, "exam start")
	if err != nil {
		return nil, err
	}
	end, err := ParseDateTime(e.ExamDate, e.EndTime, loc, "exam end")
	if err != nil {
		return nil, err
	}
	implied := end.Sub(start)
	stated := time.Duration(e.DurationMinutes) * time.Minute
	diff := implied - stated
	if diff < 0 {
		diff = -diff
	}
	if diff <= time.Minute {
		return nil, nil
	}
	return &ScheduleViolation{
		Rule:     "duration_mismatch",
		Severity: SeverityWarning,
		Message: fmt.Sprintf("stated duration %d min differs from start-to-end span %d min",
			e.DurationMinutes, int(implied/time.Minute)),
	}, nil
}
