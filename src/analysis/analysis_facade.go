package analysis

import (
	"sort"

	"market-buzz/src/analysis/core"
	"market-buzz/src/logger"
	"market-buzz/src/models"
)

// TradingDayFilter knows the exchange calendar of a symbol. SessionDay maps a
// bar timestamp onto the exchange-local date of its session, and IsTradingDay
// reports whether the exchange was open on such a date.
// utils.MarketScheduler satisfies it.
type TradingDayFilter interface {
	SessionDay(symbol string, timestamp int64) models.MCalendarDay
	IsTradingDay(symbol string, day models.MCalendarDay) bool
}

// -----------------------------------------------------------------------------

type AnalysisFacade struct {
	Config   *models.MConfig
	Calendar TradingDayFilter // Optional, nil keeps every day
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, calendar TradingDayFilter, log *logger.Logger) *AnalysisFacade {
	if log == nil {
		log = logger.NewLogger(cfg, "Analysis")
	}
	return &AnalysisFacade{
		Config:   cfg,
		Calendar: calendar,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// BuildVolatilitySeries turns daily bars into one volatility point per
// trading day, ascending. Bars with a non-positive close are ignored and the
// last bar of a day wins. With a calendar, bars are dated by their session
// in the exchange's timezone; without one, by their UTC day.
func (a *AnalysisFacade) BuildVolatilitySeries(symbol string, bars []models.MPriceBar) []models.MVolatilityPoint {
	valid := make([]models.MPriceBar, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		valid = append(valid, b)
	}

	// Sort by timestamp so that "last of the day" means latest
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp < valid[j].Timestamp
	})

	dayOf := func(b models.MPriceBar) models.MCalendarDay { return models.DayOfUnix(b.Timestamp) }
	if a.Calendar != nil {
		dayOf = func(b models.MPriceBar) models.MCalendarDay { return a.Calendar.SessionDay(symbol, b.Timestamp) }
	}
	buckets := BucketBy(valid, dayOf)

	daily := make([]models.MPriceBar, 0, len(buckets))
	days := make([]models.MCalendarDay, 0, len(buckets))
	dropped := 0
	for _, bucket := range buckets {
		if a.Calendar != nil && !a.Calendar.IsTradingDay(symbol, bucket.Day) {
			dropped++
			continue
		}
		daily = append(daily, bucket.Items[len(bucket.Items)-1])
		days = append(days, bucket.Day)
	}
	if dropped > 0 {
		a.Logger.Debug("%s: dropped %d bars on non-trading days", symbol, dropped)
	}

	volumes := make([]float64, len(daily))
	for i, b := range daily {
		volumes[i] = b.Volume
	}
	meanVolume, _ := core.CalculateMeanStd(volumes)

	points := make([]models.MVolatilityPoint, 0, len(daily))
	for i, b := range daily {
		reference := b.Open
		if i > 0 {
			reference = daily[i-1].Close
		}

		change := core.CalculateChangePercent(b.Close, reference)
		dayRange := core.CalculateRangePercent(b.High, b.Low, b.Open)

		points = append(points, models.MVolatilityPoint{
			Date:        days[i],
			Volatility:  core.CalculateVolatility(change, dayRange),
			DailyChange: change,
			DayRange:    dayRange,
			VolumeSpike: core.CalculateVolumeSpike(b.Volume, meanVolume),
		})
	}

	return points
}

// -----------------------------------------------------------------------------

// BuildPopularitySeries aggregates posts per UTC day of creation, ascending.
func (a *AnalysisFacade) BuildPopularitySeries(posts []models.MSocialPost) []models.MPopularityPoint {
	buckets := BucketByDay(posts, func(p models.MSocialPost) int64 { return p.CreatedUTC })

	points := make([]models.MPopularityPoint, 0, len(buckets))
	for _, bucket := range buckets {
		var engagement float64
		var scoreSum, comments int
		for _, p := range bucket.Items {
			engagement += p.Engagement()
			scoreSum += p.Score
			comments += p.NumComments
		}

		if engagement < 0 {
			engagement = 0
		}

		points = append(points, models.MPopularityPoint{
			Date:          bucket.Day,
			Popularity:    engagement,
			Posts:         len(bucket.Items),
			AvgScore:      float64(scoreSum) / float64(len(bucket.Items)),
			TotalComments: comments,
		})
	}

	return points
}

// -----------------------------------------------------------------------------

// Estimator returns the p-value estimator selected by configuration.
func (a *AnalysisFacade) Estimator() core.PValueEstimator {
	if a.Config != nil && a.Config.Significance == models.SignificanceExact {
		return core.StudentTPValue
	}
	return core.EstimatePValue
}

// -----------------------------------------------------------------------------

// Correlate summarises the relation between the two series.
func (a *AnalysisFacade) Correlate(volatility []models.MVolatilityPoint, popularity []models.MPopularityPoint) (models.MCorrelationResult, error) {
	return core.ComputeCorrelation(volatility, popularity, a.Estimator())
}
