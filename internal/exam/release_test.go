package exam

import (
	"testing"
	"time"
)

func TestReleasedNoDateFailsClosed(t *testing.T) {
	ok, err := Released(Exam{}, time.Now(), tz)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("unconfigured release must keep results hidden")
	}
}

func TestReleasedBoundary(t *testing.T) {
	e := Exam{Schedule: Schedule{ResultReleaseDate: "2025-06-01"}} // blank time -> 00:00
	release := at(t, "2025-06-01", "00:00")

	before, err := Released(e, release.Add(-time.Second), tz)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before {
		t.Fatal("23:59:59 the night before must not be released")
	}

	atRelease, err := Released(e, release, tz)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !atRelease {
		t.Fatal("exactly at the release moment results are visible")
	}
}

func TestReleasedWithExplicitTime(t *testing.T) {
	e := Exam{Schedule: Schedule{ResultReleaseDate: "2025-06-01", ResultReleaseTime: "14:30"}}
	if ok, _ := Released(e, at(t, "2025-06-01", "14:29"), tz); ok {
		t.Fatal("a minute early must not be released")
	}
	if ok, _ := Released(e, at(t, "2025-06-01", "14:30"), tz); !ok {
		t.Fatal("at 14:30 results are visible")
	}
}

func TestReleasedBadDate(t *testing.T) {
	e := Exam{Schedule: Schedule{ResultReleaseDate: "June 1, 2025"}}
	if _, err := Released(e, time.Now(), tz); !IsFormat(err) {
		t.Fatalf("want FormatError, got %v", err)
	}
}
