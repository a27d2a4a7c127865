package utils

import (
	"strings"
	"sync"
	"time"

	"market-buzz/src/models"

	"github.com/scmhub/calendar"
)

// defaultMIC is NYSE; indices such as ^GSPC and ^IXIC carry no suffix.
const defaultMIC = "xnys"

// suffixMICs maps Yahoo ticker suffixes to ISO 10383 MIC codes understood by
// scmhub/calendar.
var suffixMICs = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".BR": "xbru",
	".MI": "xmil",
	".MC": "xmad",
	".ST": "xsto",
	".CO": "xcse",
	".HE": "xhel",
	".VI": "xwbo",
	".SW": "xswx",
	".TO": "xtse",
	".V":  "xtsx",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".TW": "xtai",
	".SS": "xshg",
	".SZ": "xshe",
}

// indexMICs covers the common non-US index tickers, which have no suffix.
var indexMICs = map[string]string{
	"^FTSE":   "xlon",
	"^FCHI":   "xpar",
	"^GDAXI":  "xfra",
	"^N225":   "xtks",
	"^HSI":    "xhkg",
	"^AXJO":   "xasx",
	"^KS11":   "xkrx",
	"^GSPTSE": "xtse",
}

var (
	calendarsMu sync.Mutex
	calendars   = make(map[string]*TradingCalendar)
)

// TradingCalendar calculates trading days using scmhub/calendar.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// MICForSymbol resolves the exchange of a Yahoo symbol.
func MICForSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if mic, ok := indexMICs[symbol]; ok {
		return mic
	}

	if dot := strings.LastIndex(symbol, "."); dot > 0 {
		if mic, ok := suffixMICs[symbol[dot:]]; ok {
			return mic
		}
	}
	return defaultMIC
}

// -----------------------------------------------------------------------------

// GetCalendar returns the shared calendar of the symbol's exchange.
func GetCalendar(symbol string) *TradingCalendar {
	mic := MICForSymbol(symbol)

	calendarsMu.Lock()
	defer calendarsMu.Unlock()

	if tc, ok := calendars[mic]; ok {
		return tc
	}

	tc := loadCalendar(mic)
	calendars[mic] = tc
	return tc
}

// -----------------------------------------------------------------------------

func loadCalendar(mic string) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar(defaultMIC)
	}

	if cal == nil {
		// Simple fallback: Mon-Fri 09:30-16:00 New York time
		nyLoc, err := time.LoadLocation("America/New_York")
		if err != nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	// Normalize to timezone if available
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	// Library handles IsHoliday / IsBusinessDay
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsTradingCalendarDay checks the day as seen in the exchange's own timezone.
func (tc *TradingCalendar) IsTradingCalendarDay(day models.MCalendarDay) bool {
	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	return tc.IsTradingDay(time.Date(day.Year, day.Month, day.Day, 12, 0, 0, 0, loc))
}

// -----------------------------------------------------------------------------

// SessionDay is the exchange-local date of a unix timestamp. Yahoo stamps
// daily bars at the local open, which is the previous UTC day east of UTC.
func (tc *TradingCalendar) SessionDay(timestamp int64) models.MCalendarDay {
	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := time.Unix(timestamp, 0).In(loc).Date()
	return models.MCalendarDay{Year: y, Month: m, Day: d}
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	// Normalize to timezone if available
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 NY Time
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}
