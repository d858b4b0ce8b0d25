package exam

import (
	"fmt"
	"time"
)

// Span is whole days plus leftover hours, for human-readable deadline
// reporting.
type Span struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
}

func (s Span) String() string {
	return fmt.Sprintf("%d days %d hours", s.Days, s.Hours)
}

// LockCheck is the boundary shape of a grading-deadline query.
type LockCheck struct {
	IsLocked           bool   `json:"is_locked"`
	Message            string `json:"message"`
	RemainingOrElapsed *Span  `json:"remaining_or_elapsed,omitempty"`
}

// GradingLock evaluates whether grading writes are still permitted at
// now. Finalization locks unconditionally. A missing deadline keeps
// grading open ("no deadline set"): legacy exams without the field must
// never be blocked by it. Otherwise locked iff now is strictly past the
// deadline.
func GradingLock(e Exam, now time.Time, loc *time.Location) (LockCheck, error) {
	if e.ResultsFinalized {
		return LockCheck{IsLocked: true, Message: "results finalized"}, nil
	}
	if !e.HasGradingDeadline() {
		return LockCheck{IsLocked: false, Message: "no deadline set"}, nil
	}
	deadline, err := ParseDateTime(e.GradingDeadlineDate, e.GradingDeadlineTime, loc, "grading deadline")
	if err != nil {
		return LockCheck{}, err
	}
	if now.After(deadline) {
		sp := spanBetween(deadline, now)
		return LockCheck{
			IsLocked:           true,
			Message:            fmt.Sprintf("grading deadline passed %s ago", sp),
			RemainingOrElapsed: &sp,
		}, nil
	}
	sp := spanBetween(now, deadline)
	return LockCheck{
		IsLocked:           false,
		Message:            fmt.Sprintf("%s left until the grading deadline", sp),
		RemainingOrElapsed: &sp,
	}, nil
}

func spanBetween(a, b time.Time) Span {
	d := b.Sub(a)
	return Span{
		Days:  int(d / (24 * time.Hour)),
		Hours: int(d % (24 * time.Hour) / time.Hour),
	}
}
