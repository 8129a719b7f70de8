package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIsBeforeMarketCutoff_Japan(t *testing.T) {
	calendar := NewCalendar(nil)

	// 05:00 UTC is 14:00 in Tokyo, cutoff is 15:00.
	before := calendar.WithClock(fixedClock(time.Date(2024, time.January, 10, 5, 0, 0, 0, time.UTC)))
	assert.True(t, before.IsBeforeMarketCutoff("JP"))

	// 06:00 UTC is 15:00 in Tokyo.
	after := calendar.WithClock(fixedClock(time.Date(2024, time.January, 10, 6, 0, 0, 0, time.UTC)))
	assert.False(t, after.IsBeforeMarketCutoff("jp"))
}

func TestIsBeforeMarketCutoff_TaiwanUsesLocalZone(t *testing.T) {
	calendar := NewCalendar(nil)

	// 04:30 UTC is 12:30 in Taipei, cutoff is 13:00.
	assert.True(t, calendar.WithClock(fixedClock(time.Date(2024, time.January, 10, 4, 30, 0, 0, time.UTC))).IsBeforeMarketCutoff("TW"))
	assert.False(t, calendar.WithClock(fixedClock(time.Date(2024, time.January, 10, 5, 0, 0, 0, time.UTC))).IsBeforeMarketCutoff("TW"))
}

func TestIsBeforeMarketCutoff_Override(t *testing.T) {
	calendar := NewCalendar(map[string]int{"jp": 10}).
		WithClock(fixedClock(time.Date(2024, time.January, 10, 2, 0, 0, 0, time.UTC))) // 11:00 Tokyo

	assert.False(t, calendar.IsBeforeMarketCutoff("JP"))
	assert.Equal(t, 10, calendar.Market("JP").CutoffHour)
}

func TestCalculateMarketSettlementDate_JapanAfterCutoffAddsDay(t *testing.T) {
	tradeDate := wednesday

	beforeCutoff := NewCalendar(nil).WithClock(fixedClock(time.Date(2024, time.January, 10, 5, 0, 0, 0, time.UTC)))
	assert.Equal(t, day(2024, time.January, 12), beforeCutoff.CalculateMarketSettlementDate(tradeDate, "JP"))

	afterCutoff := NewCalendar(nil).WithClock(fixedClock(time.Date(2024, time.January, 10, 7, 0, 0, 0, time.UTC)))
	assert.Equal(t, day(2024, time.January, 15), afterCutoff.CalculateMarketSettlementDate(tradeDate, "JP"))
}

func TestCalculateMarketSettlementDate_OtherMarketsIgnoreCutoff(t *testing.T) {
	calendar := NewCalendar(nil).WithClock(fixedClock(time.Date(2024, time.January, 10, 23, 0, 0, 0, time.UTC)))

	assert.Equal(t, day(2024, time.January, 12), calendar.CalculateMarketSettlementDate(wednesday, "US"))
	assert.Equal(t, day(2024, time.January, 12), calendar.CalculateMarketSettlementDate(wednesday, "TW"))
}

func TestMarket_UnknownFallsBackToDefaults(t *testing.T) {
	calendar := NewCalendar(nil)

	market := calendar.Market("zz")

	assert.Equal(t, "ZZ", market.Code)
	assert.Equal(t, time.Local, market.Location)
	assert.Equal(t, DefaultSettlementDays, market.SettlementDays)
	assert.Equal(t, DefaultCutoffHour, market.CutoffHour)
	assert.Equal(t, day(2024, time.January, 9), calendar.CalculateMarketSettlementDate(friday, "ZZ"))
}

func TestToday_UsesMarketZone(t *testing.T) {
	// 2024-01-10 20:00 UTC is already 2024-01-11 in Tokyo.
	calendar := NewCalendar(nil).WithClock(fixedClock(time.Date(2024, time.January, 10, 20, 0, 0, 0, time.UTC)))

	today := calendar.Today("JP")

	assert.Equal(t, 11, today.Day())
	assert.Equal(t, 0, today.Hour())
}

func TestDateIn_ConvertsToMarketZone(t *testing.T) {
	calendar := NewCalendar(nil)
	ts := time.Date(2024, time.January, 10, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, 9, calendar.DateIn(ts, "US").Day())
	assert.Equal(t, 10, calendar.DateIn(ts, "JP").Day())
}
