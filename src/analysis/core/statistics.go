package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks a caller contract violation, such as correlating two
// sequences of different lengths.
var ErrInvalidInput = errors.New("invalid input")

// -----------------------------------------------------------------------------

// CalculateMeanStd computes mean and population standard deviation.
func CalculateMeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) == 1 {
		return mean, 0
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)))
	return mean, std
}

// -----------------------------------------------------------------------------

// CalculateCorrelation computes the Pearson product-moment coefficient of x
// and y. Empty and single-point inputs, as well as inputs where either side
// has zero variance, yield 0. The result is clamped into [-1, 1].
func CalculateCorrelation(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: length mismatch %d != %d", ErrInvalidInput, len(x), len(y))
	}
	if len(x) < 2 {
		return 0, nil
	}

	meanX, _ := CalculateMeanStd(x)
	meanY, _ := CalculateMeanStd(y)

	// Deviations are scaled by their largest magnitude so that squaring
	// neither overflows nor underflows at extreme input scales.
	maxDX, maxDY := 0.0, 0.0
	for i := range x {
		maxDX = math.Max(maxDX, math.Abs(x[i]-meanX))
		maxDY = math.Max(maxDY, math.Abs(y[i]-meanY))
	}

	// Zero variance on either side
	if maxDX == 0 || maxDY == 0 {
		return 0, nil
	}

	sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0
	for i := range x {
		dx := (x[i] - meanX) / maxDX
		dy := (y[i] - meanY) / maxDY
		sumXY += dx * dy
		sumX2 += dx * dx
		sumY2 += dy * dy
	}

	result := sumXY / (math.Sqrt(sumX2) * math.Sqrt(sumY2))
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, nil
	}

	return clamp(result, -1, 1), nil
}

// -----------------------------------------------------------------------------

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
