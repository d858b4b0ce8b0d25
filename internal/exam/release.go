package exam

import "time"

// Released reports whether students may see their own results at now.
// No configured release date keeps results hidden: a missing field must
// never leak scores. A blank release time means midnight. Released iff
// now >= release.
func Released(e Exam, now time.Time, loc *time.Location) (bool, error) {
	if !e.HasReleaseDate() {
		return false, nil
	}
	release, err := ParseDateTime(e.ResultReleaseDate, e.ResultReleaseTime, loc, "result release")
	if err != nil {
		return false, err
	}
	return !now.Before(release), nil
}
