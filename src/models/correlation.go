package models

// Strength labels for a correlation coefficient.
const (
	StrengthStrong   = "Strong"
	StrengthModerate = "Moderate"
	StrengthWeak     = "Weak"
	StrengthVeryWeak = "Very Weak"
)

// MCorrelationResult is the summary of one correlation computation.
type MCorrelationResult struct {
	Coefficient float64 `json:"coefficient"`
	Strength    string  `json:"strength"`
	PValue      float64 `json:"p_value"`
	SampleSize  int     `json:"sample_size"`
}
