package clock

import "time"

// Clock allows deterministic time behavior in tests; the quota cutoff makes
// settlement outcomes time-dependent.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
