package core

import "market-buzz/src/models"

// ComputeCorrelation aligns the two series by day and summarises their
// Pearson correlation. An empty alignment short-circuits to a zero result
// with p-value 1. A nil estimator falls back to EstimatePValue.
func ComputeCorrelation(
	volatility []models.MVolatilityPoint,
	popularity []models.MPopularityPoint,
	estimator PValueEstimator,
) (models.MCorrelationResult, error) {
	if estimator == nil {
		estimator = EstimatePValue
	}

	aligned := AlignSeries(volatility, popularity)
	n := aligned.Len()
	if n == 0 {
		return models.MCorrelationResult{
			Coefficient: 0,
			Strength:    models.StrengthVeryWeak,
			PValue:      1,
			SampleSize:  0,
		}, nil
	}

	coefficient, err := CalculateCorrelation(aligned.Volatility, aligned.Popularity)
	if err != nil {
		return models.MCorrelationResult{}, err
	}

	return models.MCorrelationResult{
		Coefficient: coefficient,
		Strength:    ClassifyStrength(coefficient),
		PValue:      estimator(coefficient, n),
		SampleSize:  n,
	}, nil
}
