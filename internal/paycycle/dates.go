package paycycle

import "time"

// Date builds a midnight-UTC calendar date. Out-of-range days normalize the
// same way time.Date does (Feb 30 becomes Mar 1 or 2).
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates a time to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// payDateInMonth returns the pay date for a specific-date rule in the given
// month: the pay day itself, or the last day of the month when the month is
// too short (day 31 in April pays on the 30th).
func payDateInMonth(year int, month time.Month, payDay int) time.Time {
	lastDay := Date(year, month+1, 0)
	if payDay > lastDay.Day() {
		return lastDay
	}
	return Date(year, month, payDay)
}

// LastWorkingDay returns the last Mon-Fri day of the given month.
// Saturday rolls back to Friday, Sunday rolls back to Friday.
func LastWorkingDay(year int, month time.Month) time.Time {
	d := Date(year, month+1, 0)
	return ToWorkingDay(d)
}

// ToWorkingDay shifts a weekend date back to the preceding Friday and leaves
// weekdays untouched.
func ToWorkingDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Sunday:
		return d.AddDate(0, 0, -2)
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	default:
		return d
	}
}

// CycleStartDate computes the start of the cycle that contains today.
//
//   - specific_date: the working-day-adjusted pay day of this month, or of
//     last month when this month's pay day is still ahead.
//   - last_working_day: the day after the previous month's last working day.
//   - every_4_weeks: the anchor date.
func CycleStartDate(cfg CycleConfig, today time.Time) time.Time {
	today = Midnight(today)

	if cfg.Rule == RuleEvery4Weeks && cfg.Anchor != nil {
		return Midnight(*cfg.Anchor)
	}

	if cfg.Rule == RuleSpecificDate && cfg.PayDay > 0 {
		thisMonth := ToWorkingDay(payDateInMonth(today.Year(), today.Month(), cfg.PayDay))
		if thisMonth.After(today) {
			return ToWorkingDay(payDateInMonth(today.Year(), today.Month()-1, cfg.PayDay))
		}
		return thisMonth
	}

	if cfg.Rule == RuleLastWorkingDay {
		return LastWorkingDay(today.Year(), today.Month()-1).AddDate(0, 0, 1)
	}

	return today
}

// CycleEndDate computes the end of the cycle starting at start.
//
//   - every_4_weeks: start + 27 days (a 28-day cycle, end inclusive).
//   - last_working_day: the last working day of start's month, or of the next
//     month when start falls after it (a cycle starting Jan 31 after an
//     LWD of Jan 30 spans into February).
//   - specific_date: the last working day before next month's pay day.
func CycleEndDate(cfg CycleConfig, start time.Time) time.Time {
	start = Midnight(start)

	switch cfg.Rule {
	case RuleEvery4Weeks:
		return start.AddDate(0, 0, 27)

	case RuleLastWorkingDay:
		lwd := LastWorkingDay(start.Year(), start.Month())
		if !lwd.Before(start) {
			return lwd
		}
		return LastWorkingDay(start.Year(), start.Month()+1)

	case RuleSpecificDate:
		if cfg.PayDay > 0 {
			// End on the last working day before the next observed pay day.
			// When the working-day shift pulls that boundary before start
			// (pay day 1 across a weekend month end), the cycle runs through
			// to the following month's boundary instead.
			for m := start.Month() + 1; ; m++ {
				nextPay := ToWorkingDay(payDateInMonth(start.Year(), m, cfg.PayDay))
				end := ToWorkingDay(nextPay.AddDate(0, 0, -1))
				if !end.Before(start) {
					return end
				}
			}
		}
	}

	// Caller contract violation: fall back to the day before the first of
	// next month, matching the reference behavior for unknown rules.
	return Date(start.Year(), start.Month()+1, 1).AddDate(0, 0, -1)
}

// NextCycleDates computes the [start, end] of the cycle immediately following
// a cycle that ended on prevEnd. The next start is always prevEnd + 1 day.
func NextCycleDates(cfg CycleConfig, prevEnd time.Time) (start, end time.Time) {
	start = Midnight(prevEnd).AddDate(0, 0, 1)
	return start, CycleEndDate(cfg, start)
}

// PaymentDatesInRange expands a recurrence rule into every pay date falling
// inside [start, end] inclusive. A weekly-or-4-weekly earner inside a monthly
// cycle can land more than one date; callers must not assume one event per
// cycle.
func PaymentDatesInRange(cfg CycleConfig, start, end time.Time) []time.Time {
	start = Midnight(start)
	end = Midnight(end)
	if end.Before(start) {
		return nil
	}

	var dates []time.Time
	switch cfg.Rule {
	case RuleEvery4Weeks:
		if cfg.Anchor == nil {
			return nil
		}
		d := Midnight(*cfg.Anchor)
		// Rewind or advance in 28-day strides to the first date >= start.
		for d.Before(start) {
			d = d.AddDate(0, 0, 28)
		}
		for !d.AddDate(0, 0, -28).Before(start) {
			d = d.AddDate(0, 0, -28)
		}
		for !d.After(end) {
			dates = append(dates, d)
			d = d.AddDate(0, 0, 28)
		}

	case RuleLastWorkingDay:
		dates = monthlyDatesInRange(start, end, func(y int, m time.Month) time.Time {
			return LastWorkingDay(y, m)
		})

	case RuleSpecificDate:
		if cfg.PayDay <= 0 {
			return nil
		}
		dates = monthlyDatesInRange(start, end, func(y int, m time.Month) time.Time {
			return ToWorkingDay(payDateInMonth(y, m, cfg.PayDay))
		})
	}
	return dates
}

// monthlyDatesInRange collects one candidate date per month and keeps those
// inside [start, end]. It scans from the month before start through the month
// after end because the working-day shift can move a date across a month
// boundary (Sep 1 on a Sunday pays on Aug 30).
func monthlyDatesInRange(start, end time.Time, dateIn func(int, time.Month) time.Time) []time.Time {
	var dates []time.Time
	y, m := start.Year(), start.Month()-1
	last := Date(end.Year(), end.Month()+1, 1)
	for !Date(y, m, 1).After(last) {
		d := dateIn(y, m)
		if !d.Before(start) && !d.After(end) {
			dates = append(dates, d)
		}
		m++
	}
	return dates
}
