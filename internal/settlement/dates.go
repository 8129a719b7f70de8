// Package settlement provides business-day and settlement-day arithmetic.
//
// Only Saturdays and Sundays are treated as non-business days. Market holiday
// calendars are not modeled.
package settlement

import "time"

// SettlementLadderDays is the width of the settlement ladder (SD0..SD4).
const SettlementLadderDays = 5

// IsBusinessDay reports whether t falls on a weekday.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AddBusinessDays steps one calendar day at a time in the direction of n until
// |n| business days have been traversed. n == 0 returns date unchanged.
func AddBusinessDays(date time.Time, n int) time.Time {
	if n == 0 {
		return date
	}

	step := 1
	remaining := n
	if n < 0 {
		step = -1
		remaining = -n
	}

	result := date
	for remaining > 0 {
		result = result.AddDate(0, 0, step)
		if IsBusinessDay(result) {
			remaining--
		}
	}
	return result
}

// CalculateSettlementDate returns tradeDate moved forward by settlementDays business days.
func CalculateSettlementDate(tradeDate time.Time, settlementDays int) time.Time {
	return AddBusinessDays(tradeDate, settlementDays)
}

// BusinessDaysBetween counts the business days in (from, to] by calendar date.
// It returns a negative count when to is before from.
func BusinessDaysBetween(from, to time.Time) int {
	start := dateOnly(from)
	end := dateOnly(to)

	if end.Before(start) {
		return -BusinessDaysBetween(to, from)
	}

	count := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// CalculateSettlementDay returns the settlement ladder bucket (0..4) of date
// relative to businessDate, or -1 when date is outside the ladder window.
func CalculateSettlementDay(businessDate, date time.Time) int {
	start := dateOnly(businessDate)
	end := dateOnly(date)

	if end.Before(start) {
		return -1
	}
	// Four business days never span more than eight calendar days.
	if end.Sub(start) > 10*24*time.Hour {
		return -1
	}

	days := BusinessDaysBetween(start, end)
	if days < 0 || days >= SettlementLadderDays {
		return -1
	}
	return days
}

// dateOnly drops the clock component, keeping the calendar date as seen in t's location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
