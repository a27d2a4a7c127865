package core

import "math"

// PValueEstimator returns a two-tailed p-value for coefficient r over n samples.
type PValueEstimator func(r float64, n int) float64

// -----------------------------------------------------------------------------

// tStatistic returns r*sqrt((n-2)/(1-r^2)).
func tStatistic(r float64, n int) float64 {
	return r * math.Sqrt(float64(n-2)/(1-r*r))
}

// -----------------------------------------------------------------------------

// EstimatePValue is a coarse two-tailed significance estimate. It buckets the
// t statistic against the 1%, 5% and 10% critical values of the normal
// distribution and falls back to 1-|t|/3 below those. It is meant for
// indicative display only; use StudentTPValue when accuracy matters.
func EstimatePValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}

	t := math.Abs(tStatistic(r, n))
	switch {
	case t > 2.576:
		return 0.01
	case t > 1.96:
		return 0.05
	case t > 1.645:
		return 0.10
	}
	return clamp(1-t/3, 0, 1)
}

// -----------------------------------------------------------------------------

// StudentTPValue is the exact two-tailed p-value of the t statistic with n-2
// degrees of freedom, computed from the regularised incomplete beta function.
func StudentTPValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}

	t := tStatistic(r, n)
	df := float64(n - 2)
	p := regularizedIncompleteBeta(df/2, 0.5, df/(df+t*t))
	if math.IsNaN(p) {
		return 1
	}
	return clamp(p, 0, 1)
}

// -----------------------------------------------------------------------------

func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lgab, _ := math.Lgamma(a + b)
	lga, _ := math.Lgamma(a)
	lgb, _ := math.Lgamma(b)
	front := math.Exp(a*math.Log(x) + b*math.Log(1-x) + lgab - lga - lgb)

	// The continued fraction converges quickly only on this side of the mean.
	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(a, b, x) / a
	}
	return 1 - front*betaContinuedFraction(b, a, 1-x)/b
}

// -----------------------------------------------------------------------------

// betaContinuedFraction evaluates the incomplete beta continued fraction with
// the modified Lentz method.
func betaContinuedFraction(a, b, x float64) float64 {
	const (
		maxIterations = 300
		epsilon       = 3e-14
		tiny          = 1e-300
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIterations; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < epsilon {
			break
		}
	}
	return h
}
