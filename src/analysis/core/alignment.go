package core

import (
	"sort"

	"market-buzz/src/models"
)

// AlignedSeries holds two series restricted to their common days, ascending.
// All three slices always have the same length.
type AlignedSeries struct {
	Volatility []float64
	Popularity []float64
	Dates      []models.MCalendarDay
}

// Len returns the number of aligned days.
func (a AlignedSeries) Len() int {
	return len(a.Dates)
}

// -----------------------------------------------------------------------------

// AlignSeries intersects the two series by calendar day. Days present in only
// one series are dropped. If a series repeats a day, the later point wins.
func AlignSeries(volatility []models.MVolatilityPoint, popularity []models.MPopularityPoint) AlignedSeries {
	out := AlignedSeries{
		Volatility: []float64{},
		Popularity: []float64{},
		Dates:      []models.MCalendarDay{},
	}
	if len(volatility) == 0 || len(popularity) == 0 {
		return out
	}

	volByDay := make(map[models.MCalendarDay]float64, len(volatility))
	for _, p := range volatility {
		volByDay[p.Date] = p.Volatility
	}

	popByDay := make(map[models.MCalendarDay]float64, len(popularity))
	for _, p := range popularity {
		popByDay[p.Date] = p.Popularity
	}

	for day := range volByDay {
		if _, ok := popByDay[day]; ok {
			out.Dates = append(out.Dates, day)
		}
	}

	sort.Slice(out.Dates, func(i, j int) bool {
		return out.Dates[i].Before(out.Dates[j])
	})

	out.Volatility = make([]float64, len(out.Dates))
	out.Popularity = make([]float64, len(out.Dates))
	for i, day := range out.Dates {
		out.Volatility[i] = volByDay[day]
		out.Popularity[i] = popByDay[day]
	}

	return out
}
