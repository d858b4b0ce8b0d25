// Package clock supplies the authoritative exam-time clock. The whole
// service commits to one fixed UTC offset so that every stored date and
// time-of-day string compares unambiguously, regardless of where the
// process or the student happens to run.
package clock

import (
	"fmt"
	"time"
)

// NowFunc returns the current instant. Services accept one so tests can
// pin the clock to a known moment.
type NowFunc func() time.Time

// Fixed is a clock bound to a single fixed-offset zone.
type Fixed struct {
	loc *time.Location
	now NowFunc
}

// NewFixed returns a clock at the given offset east of UTC, backed by
// the system time.
func NewFixed(offsetMinutes int) *Fixed {
	return NewFixedAt(offsetMinutes, time.Now)
}

// NewFixedAt is NewFixed with an injected time source.
func NewFixedAt(offsetMinutes int, now NowFunc) *Fixed {
	if now == nil {
		now = time.Now
	}
	return &Fixed{loc: zone(offsetMinutes), now: now}
}

// Now returns the current time converted into the fixed zone.
func (f *Fixed) Now() time.Time {
	return f.now().In(f.loc)
}

// Location returns the fixed zone, for parsing stored date/time strings.
func (f *Fixed) Location() *time.Location {
	return f.loc
}

func zone(offsetMinutes int) *time.Location {
	sign := "+"
	m := offsetMinutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, m/60, m%60)
	return time.FixedZone(name, offsetMinutes*60)
}
