package core

import (
	"math/rand"
	"testing"
	"time"

	"market-buzz/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) models.MCalendarDay {
	d, err := models.ParseCalendarDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func vol(date string, v float64) models.MVolatilityPoint {
	return models.MVolatilityPoint{Date: day(date), Volatility: v}
}

func pop(date string, p float64) models.MPopularityPoint {
	return models.MPopularityPoint{Date: day(date), Popularity: p, Posts: 1}
}

func TestAlignSeries_Intersection(t *testing.T) {
	v := []models.MVolatilityPoint{
		vol("2024-01-03", 3),
		vol("2024-01-01", 1),
		vol("2024-01-02", 2),
		vol("2024-01-05", 5),
	}
	p := []models.MPopularityPoint{
		pop("2024-01-02", 20),
		pop("2024-01-04", 40),
		pop("2024-01-03", 30),
		pop("2024-01-01", 10),
	}

	aligned := AlignSeries(v, p)

	require.Equal(t, 3, aligned.Len())
	assert.Equal(t, []models.MCalendarDay{day("2024-01-01"), day("2024-01-02"), day("2024-01-03")}, aligned.Dates)
	assert.Equal(t, []float64{1, 2, 3}, aligned.Volatility)
	assert.Equal(t, []float64{10, 20, 30}, aligned.Popularity)
}

func TestAlignSeries_EmptyInputs(t *testing.T) {
	cases := []struct {
		name string
		v    []models.MVolatilityPoint
		p    []models.MPopularityPoint
	}{
		{"both nil", nil, nil},
		{"volatility empty", []models.MVolatilityPoint{}, []models.MPopularityPoint{pop("2024-01-01", 1)}},
		{"popularity nil", []models.MVolatilityPoint{vol("2024-01-01", 1)}, nil},
		{"disjoint", []models.MVolatilityPoint{vol("2024-01-01", 1)}, []models.MPopularityPoint{pop("2024-01-02", 1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			aligned := AlignSeries(tc.v, tc.p)
			assert.NotNil(t, aligned.Dates)
			assert.Empty(t, aligned.Dates)
			assert.Empty(t, aligned.Volatility)
			assert.Empty(t, aligned.Popularity)
		})
	}
}

func TestAlignSeries_DuplicateDayLastWins(t *testing.T) {
	v := []models.MVolatilityPoint{vol("2024-02-01", 1), vol("2024-02-01", 9)}
	p := []models.MPopularityPoint{pop("2024-02-01", 5)}

	aligned := AlignSeries(v, p)

	require.Equal(t, 1, aligned.Len())
	assert.Equal(t, 9.0, aligned.Volatility[0])
}

func TestAlignSeries_IgnoresTimeOfDay(t *testing.T) {
	morning := models.DayOf(time.Date(2024, 3, 10, 0, 30, 0, 0, time.UTC))
	evening := models.DayOf(time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC))

	aligned := AlignSeries(
		[]models.MVolatilityPoint{{Date: morning, Volatility: 1.5}},
		[]models.MPopularityPoint{{Date: evening, Popularity: 12}},
	)

	require.Equal(t, 1, aligned.Len())
	assert.Equal(t, "2024-03-10", aligned.Dates[0].String())
}

func TestAlignSeries_LengthInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		var v []models.MVolatilityPoint
		var p []models.MPopularityPoint
		vDays := map[models.MCalendarDay]bool{}
		pDays := map[models.MCalendarDay]bool{}

		for j := 0; j < rng.Intn(30); j++ {
			d := models.DayOf(start.AddDate(0, 0, rng.Intn(60)))
			v = append(v, models.MVolatilityPoint{Date: d, Volatility: rng.Float64()})
			vDays[d] = true
		}
		for j := 0; j < rng.Intn(30); j++ {
			d := models.DayOf(start.AddDate(0, 0, rng.Intn(60)))
			p = append(p, models.MPopularityPoint{Date: d, Popularity: rng.Float64() * 100})
			pDays[d] = true
		}

		aligned := AlignSeries(v, p)

		require.Equal(t, len(aligned.Dates), len(aligned.Volatility))
		require.Equal(t, len(aligned.Dates), len(aligned.Popularity))

		seen := map[models.MCalendarDay]bool{}
		for k, d := range aligned.Dates {
			assert.True(t, vDays[d])
			assert.True(t, pDays[d])
			assert.False(t, seen[d], "duplicate day %s", d)
			seen[d] = true
			if k > 0 {
				assert.True(t, aligned.Dates[k-1].Before(d))
			}
		}
	}
}
