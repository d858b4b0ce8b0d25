package exam

import "time"

// AccessStatus classifies whether a student may enter an exam right now.
type AccessStatus string

const (
	AccessNotFound     AccessStatus = "not_found"
	AccessNotPublished AccessStatus = "not_published"
	AccessBeforeStart  AccessStatus = "before_start"
	AccessActive       AccessStatus = "active"
	AccessEnded        AccessStatus = "ended"

	// AccessSubmitted is overlaid by callers that know a submission
	// already exists; the gate itself classifies timing only.
	AccessSubmitted AccessStatus = "submitted"
)

// AccessCheck is the boundary shape of an access query.
type AccessCheck struct {
	CanAccess             bool         `json:"can_access"`
	Status                AccessStatus `json:"status"`
	TimeUntilStartSeconds *int64       `json:"time_until_start_seconds"`
	TimeRemainingSeconds  *int64       `json:"time_remaining_seconds"`
}

// CheckAccess classifies entry for the exam at now. A nil exam means
// the id did not resolve. Evaluated fresh on every call: the seconds
// fields are plain subtraction against now, never cached, and the
// status only ever moves before_start -> active -> ended as now grows.
func CheckAccess(e *Exam, now time.Time, loc *time.Location, grace time.Duration) (AccessCheck, error) {
	if e == nil {
		return AccessCheck{Status: AccessNotFound}, nil
	}
	if e.Status != StatusPublished {
		return AccessCheck{Status: AccessNotPublished}, nil
	}
	w, err := ComputeWindow(*e, loc, grace)
	if err != nil {
		return AccessCheck{}, err
	}
	switch {
	case now.Before(w.Start):
		until := int64(w.Start.Sub(now) / time.Second)
		return AccessCheck{Status: AccessBeforeStart, TimeUntilStartSeconds: &until}, nil
	case now.After(w.HardEnd):
		return AccessCheck{Status: AccessEnded}, nil
	default:
		// start <= now <= hard end, both bounds inclusive
		remaining := int64(w.HardEnd.Sub(now) / time.Second)
		return AccessCheck{CanAccess: true, Status: AccessActive, TimeRemainingSeconds: &remaining}, nil
	}
}
