package domain

import "time"

// Daily quota rules for agent deposit commissions.
const (
	// QuotaThreshold is the cumulative deposit volume that unlocks the
	// bonus commission tier for the rest of the day.
	QuotaThreshold int64 = 500_000
	// QuotaCutoffHour is the local hour (24h clock) before which the
	// threshold must be reached for the bonus to apply.
	QuotaCutoffHour = 19
)

// QuotaDateLayout formats the calendar-day key of a quota row.
const QuotaDateLayout = "2006-01-02"

// DailyAgentQuota accumulates the deposit volume an agent has processed on
// one calendar day. QuotaReachedBeforeCutoff is sticky: once earned, the
// bonus tier holds for the whole day even if later deposits are reversed.
type DailyAgentQuota struct {
	AgentID                  string
	Date                     string
	AccumulatedVolume        int64
	QuotaReachedBeforeCutoff bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Accumulate adds a deposit to the day's volume and evaluates the bonus
// tier. It returns true exactly once per day: on the deposit that first
// pushes the volume to the threshold before the cutoff.
func (q *DailyAgentQuota) Accumulate(amount int64, at time.Time) (justReached bool) {
	q.AccumulatedVolume += amount

	if !q.QuotaReachedBeforeCutoff &&
		q.AccumulatedVolume >= QuotaThreshold &&
		at.Hour() < QuotaCutoffHour {
		q.QuotaReachedBeforeCutoff = true
		return true
	}

	return false
}
