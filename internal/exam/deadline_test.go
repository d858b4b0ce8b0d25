package exam

import (
	"strings"
	"testing"
	"time"
)

func TestGradingLockNoDeadlineFailsOpen(t *testing.T) {
	e := Exam{ID: "ex1"}
	lc, err := GradingLock(e, time.Now(), tz)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.IsLocked {
		t.Fatal("exam without a deadline must stay open")
	}
	if lc.Message != "no deadline set" {
		t.Fatalf("message = %q", lc.Message)
	}
}

func TestGradingLockBeforeAndAfterDeadline(t *testing.T) {
	e := Exam{Schedule: Schedule{GradingDeadlineDate: "2025-03-12", GradingDeadlineTime: "17:00"}}
	deadline := at(t, "2025-03-12", "17:00")

	open, err := GradingLock(e, deadline.Add(-26*time.Hour), tz)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.IsLocked {
		t.Fatal("before the deadline grading must be open")
	}
	if open.RemainingOrElapsed == nil || open.RemainingOrElapsed.Days != 1 || open.RemainingOrElapsed.Hours != 2 {
		t.Fatalf("remaining = %+v, want 1 day 2 hours", open.RemainingOrElapsed)
	}
	if !strings.Contains(open.Message, "left until") {
		t.Fatalf("message = %q", open.Message)
	}

	locked, err := GradingLock(e, deadline.Add(3*time.Hour), tz)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !locked.IsLocked {
		t.Fatal("past the deadline grading must be locked")
	}
	if locked.RemainingOrElapsed == nil || locked.RemainingOrElapsed.Days != 0 || locked.RemainingOrElapsed.Hours != 3 {
		t.Fatalf("elapsed = %+v, want 0 days 3 hours", locked.RemainingOrElapsed)
	}
}

func TestGradingLockExactDeadlineStillOpen(t *testing.T) {
	e := Exam{Schedule: Schedule{GradingDeadlineDate: "2025-03-12", GradingDeadlineTime: "17:00"}}
	lc, err := GradingLock(e, at(t, "2025-03-12", "17:00"), tz)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.IsLocked {
		t.Fatal("locked iff now is strictly past the deadline")
	}
}

func TestGradingLockFinalizedWins(t *testing.T) {
	e := Exam{ResultsFinalized: true}
	lc, err := GradingLock(e, time.Now(), tz)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lc.IsLocked || lc.Message != "results finalized" {
		t.Fatalf("finalized exam must be locked regardless of deadline: %+v", lc)
	}
}

func TestGradingLockBadDeadline(t *testing.T) {
	e := Exam{Schedule: Schedule{GradingDeadlineDate: "12/03/2025", GradingDeadlineTime: "17:00"}}
	if _, err := GradingLock(e, time.Now(), tz); !IsFormat(err) {
		t.Fatalf("want FormatError, got %v", err)
	}
}
