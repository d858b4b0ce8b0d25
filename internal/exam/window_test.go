package exam

import (
	"testing"
	"time"
)

var tz = time.FixedZone("UTC+03:00", 3*3600)

func at(t *testing.T, date, tod string) time.Time {
	t.Helper()
	ts, err := ParseDateTime(date, tod, tz, "test")
	if err != nil {
		t.Fatalf("parse %s %s: %v", date, tod, err)
	}
	return ts
}

func TestComputeWindow(t *testing.T) {
	e := Exam{ExamDate: "2025-03-10", StartTime: "09:00", DurationMinutes: 60}
	w, err := ComputeWindow(e, tz, 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Start.Equal(at(t, "2025-03-10", "09:00")) {
		t.Fatalf("start = %v", w.Start)
	}
	if !w.HardEnd.Equal(at(t, "2025-03-10", "10:05")) {
		t.Fatalf("hard end = %v, want 10:05", w.HardEnd)
	}
}

func TestComputeWindowIgnoresEndTime(t *testing.T) {
	e := Exam{ExamDate: "2025-03-10", StartTime: "09:00", EndTime: "17:00", DurationMinutes: 30}
	w, err := ComputeWindow(e, tz, 5*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.HardEnd.Equal(at(t, "2025-03-10", "09:35")) {
		t.Fatalf("hard end should come from duration, got %v", w.HardEnd)
	}
}

func TestComputeWindowBadDate(t *testing.T) {
	cases := []Exam{
		{ExamDate: "10-03-2025", StartTime: "09:00", DurationMinutes: 60},
		{ExamDate: "2025-3-10", StartTime: "09:00", DurationMinutes: 60},
		{ExamDate: "2025-03-10", StartTime: "9:00", DurationMinutes: 60},
		{ExamDate: "2025-03-10", StartTime: "09:00:00", DurationMinutes: 60},
		{ExamDate: "2025-13-01", StartTime: "09:00", DurationMinutes: 60},
	}
	for _, e := range cases {
		if _, err := ComputeWindow(e, tz, 5*time.Minute); !IsFormat(err) {
			t.Fatalf("exam %q %q: want FormatError, got %v", e.ExamDate, e.StartTime, err)
		}
	}
}

func TestParseDateTimeBlankTimeIsMidnight(t *testing.T) {
	ts, err := ParseDateTime("2025-06-01", "", tz, "release")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Hour() != 0 || ts.Minute() != 0 {
		t.Fatalf("blank time should mean midnight, got %v", ts)
	}
}

func TestParseDateTimeUsesFixedZone(t *testing.T) {
	ts := at(t, "2025-03-10", "09:00")
	if ts.UTC().Hour() != 6 {
		t.Fatalf("09:00 at UTC+3 should be 06:00 UTC, got %v", ts.UTC())
	}
}
