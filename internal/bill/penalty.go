package bill

import "time"

// PenaltyPerDay is the flat surcharge added for each whole day a bill is
// overdue, in whole rupees.
const PenaltyPerDay = 10

// ComputePenalty returns the overdue penalty for a bill and the total
// payable as of the given date. The penalty is zero when asOf is on or
// before the due date, and grows by PenaltyPerDay for every whole day
// after it. Every caller that quotes or applies a penalty must go through
// this function.
func ComputePenalty(amountDue float64, dueDate, asOf time.Time) (int64, float64) {
	days := daysOverdue(dueDate, asOf)
	penalty := int64(days) * PenaltyPerDay
	return penalty, amountDue + float64(penalty)
}

// daysOverdue counts whole calendar days between the due date and asOf,
// comparing dates only so the time of day never changes the result.
func daysOverdue(dueDate, asOf time.Time) int {
	due := toDate(dueDate)
	cur := toDate(asOf)
	if !cur.After(due) {
		return 0
	}
	return int(cur.Sub(due).Hours() / 24)
}

func toDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
