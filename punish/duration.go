package punish

import "time"

// ComputeEndAt maps a tier's length encoding to a concrete expiry instant.
// nil or -1 mean no expiry. Zero is valid and means "expires immediately".
// Day arithmetic is calendar-based (AddDate), so a 30-day punishment ends on
// the same wall-clock time 30 calendar days later even across DST changes.
func ComputeEndAt(startAt time.Time, lengthDays *int64) *time.Time {
	if lengthDays == nil || *lengthDays == -1 {
		return nil
	}
	end := startAt.AddDate(0, 0, int(*lengthDays))
	return &end
}
