package utils

import (
	"testing"
	"time"

	"market-buzz/src/models"

	"github.com/stretchr/testify/assert"
)

func TestMICForSymbol(t *testing.T) {
	assert.Equal(t, "xnys", MICForSymbol("^GSPC"))
	assert.Equal(t, "xnys", MICForSymbol("AAPL"))
	assert.Equal(t, "xlon", MICForSymbol("VOD.L"))
	assert.Equal(t, "xtks", MICForSymbol("7203.T"))
	assert.Equal(t, "xtks", MICForSymbol("^n225"))
	assert.Equal(t, "xnys", MICForSymbol("BRK.B"))
}

func TestGetCalendar_SharedPerExchange(t *testing.T) {
	assert.Same(t, GetCalendar("^GSPC"), GetCalendar("AAPL"))
}

func TestTradingCalendar_Weekends(t *testing.T) {
	cal := GetCalendar("^GSPC")

	assert.True(t, cal.IsTradingCalendarDay(models.MCalendarDay{Year: 2024, Month: time.June, Day: 10}))
	assert.False(t, cal.IsTradingCalendarDay(models.MCalendarDay{Year: 2024, Month: time.June, Day: 8}))
	assert.False(t, cal.IsTradingCalendarDay(models.MCalendarDay{Year: 2024, Month: time.June, Day: 9}))
}

func TestMarketScheduler_AnyMarketOpen(t *testing.T) {
	ms := NewMarketScheduler([]string{"^GSPC", "^IXIC"}, nil)

	// Monday 11:00 New York
	ms.now = func() time.Time { return time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC) }
	assert.True(t, ms.AnyMarketOpen())

	// Saturday
	ms.now = func() time.Time { return time.Date(2024, 6, 8, 15, 0, 0, 0, time.UTC) }
	assert.False(t, ms.AnyMarketOpen())

	empty := NewMarketScheduler(nil, nil)
	assert.False(t, empty.AnyMarketOpen())
}

func TestMarketScheduler_IsTradingDay(t *testing.T) {
	ms := NewMarketScheduler([]string{"^GSPC"}, nil)

	assert.True(t, ms.IsTradingDay("^GSPC", models.MCalendarDay{Year: 2024, Month: time.June, Day: 11}))
	assert.False(t, ms.IsTradingDay("VOD.L", models.MCalendarDay{Year: 2024, Month: time.June, Day: 9}))
}

func TestMarketScheduler_SessionDay(t *testing.T) {
	ms := NewMarketScheduler([]string{"^AXJO", "^GSPC"}, nil)

	// Monday 10:00 Sydney is Sunday 23:00 UTC
	ts := time.Date(2024, time.January, 7, 23, 0, 0, 0, time.UTC).Unix()
	monday := models.MCalendarDay{Year: 2024, Month: time.January, Day: 8}
	assert.Equal(t, monday, ms.SessionDay("^AXJO", ts))
	assert.True(t, ms.IsTradingDay("^AXJO", monday))
	assert.False(t, ms.IsTradingDay("^AXJO", models.DayOfUnix(ts)))

	// Monday 09:30 New York stays on the UTC date
	ts = time.Date(2024, time.January, 8, 14, 30, 0, 0, time.UTC).Unix()
	assert.Equal(t, monday, ms.SessionDay("^GSPC", ts))
}
