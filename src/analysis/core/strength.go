package core

import (
	"math"

	"market-buzz/src/models"
)

// ClassifyStrength maps |coefficient| onto a strength label.
func ClassifyStrength(coefficient float64) string {
	abs := math.Abs(coefficient)
	switch {
	case abs >= 0.7:
		return models.StrengthStrong
	case abs >= 0.4:
		return models.StrengthModerate
	case abs >= 0.2:
		return models.StrengthWeak
	default:
		return models.StrengthVeryWeak
	}
}
