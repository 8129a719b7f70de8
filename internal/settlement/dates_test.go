package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2024-01-05 is a Friday.
var (
	friday    = day(2024, time.January, 5)
	saturday  = day(2024, time.January, 6)
	monday    = day(2024, time.January, 8)
	wednesday = day(2024, time.January, 10)
)

func TestAddBusinessDays_FridayPlusOneIsMonday(t *testing.T) {
	assert.Equal(t, monday, AddBusinessDays(friday, 1))
}

func TestAddBusinessDays_MondayMinusOneIsFriday(t *testing.T) {
	assert.Equal(t, friday, AddBusinessDays(monday, -1))
}

func TestAddBusinessDays_ZeroReturnsInput(t *testing.T) {
	assert.Equal(t, saturday, AddBusinessDays(saturday, 0))
}

func TestAddBusinessDays_SpansWeekends(t *testing.T) {
	assert.Equal(t, day(2024, time.January, 15), AddBusinessDays(wednesday, 3))
	assert.Equal(t, day(2024, time.January, 19), AddBusinessDays(friday, 10))
	assert.Equal(t, day(2024, time.January, 3), AddBusinessDays(monday, -3))
}

func TestAddBusinessDays_PreservesClock(t *testing.T) {
	ts := time.Date(2024, time.January, 5, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.January, 8, 14, 30, 0, 0, time.UTC), AddBusinessDays(ts, 1))
}

func TestCalculateSettlementDate(t *testing.T) {
	assert.Equal(t, day(2024, time.January, 12), CalculateSettlementDate(wednesday, 2))
	assert.Equal(t, day(2024, time.January, 9), CalculateSettlementDate(friday, 2))
}

func TestCalculateSettlementDay(t *testing.T) {
	tests := []struct {
		name         string
		businessDate time.Time
		date         time.Time
		expected     int
	}{
		{"same day", monday, monday, 0},
		{"monday to wednesday", monday, wednesday, 2},
		{"friday to monday", friday, monday, 1},
		{"friday to thursday", friday, day(2024, time.January, 11), 4},
		{"friday to next friday", friday, day(2024, time.January, 12), -1},
		{"before business date", wednesday, monday, -1},
		{"weekend after friday", friday, saturday, 0},
		{"far future", monday, day(2024, time.March, 1), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateSettlementDay(tt.businessDate, tt.date))
		})
	}
}

func TestCalculateSettlementDay_IgnoresClock(t *testing.T) {
	businessDate := time.Date(2024, time.January, 8, 23, 0, 0, 0, time.UTC)
	date := time.Date(2024, time.January, 9, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, CalculateSettlementDay(businessDate, date))
}

func TestBusinessDaysBetween(t *testing.T) {
	assert.Equal(t, 2, BusinessDaysBetween(monday, wednesday))
	assert.Equal(t, -2, BusinessDaysBetween(wednesday, monday))
	assert.Equal(t, 0, BusinessDaysBetween(friday, day(2024, time.January, 7)))
}
