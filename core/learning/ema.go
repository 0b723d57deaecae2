// Package learning folds reported meeting outcomes back into the pattern
// store and promotes sufficiently confident inferred preferences.
package learning

// EMA parameters. A bucket with no prior observation starts at PriorRate so
// the first observation moves the estimate symmetrically from 0.5.
const (
	DefaultAlpha = 0.2
	PriorRate    = 0.5
)

// EMA is the online update rule for a per-bucket acceptance rate:
// rate*(1-alpha) + observed*alpha. Kept as a pure function so the learning
// rule is testable independent of storage.
func EMA(oldRate, observed, alpha float64) float64 {
	return oldRate*(1-alpha) + observed*alpha
}
