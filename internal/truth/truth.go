// Package truth implements the minimal truth-value calculus consumed by the
// attention core: expectation, revision and the first-order syllogisms used by
// the default rule evaluator.
package truth

import (
	"fmt"

	"cognerd/internal/fuzzy"
)

// Horizon is the evidential horizon k used to convert between weight and confidence.
const Horizon = 1.0

// Value is a (frequency, confidence) pair.
type Value struct {
	Frequency  float64 `json:"frequency" yaml:"frequency"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// New returns a clamped truth value. Frequency is bounded to [0, 1] and
// confidence to [0, 0.9999].
func New(frequency, confidence float64) Value {
	f := frequency
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return Value{Frequency: f, Confidence: fuzzy.Clamp(confidence)}
}

// Expectation is c * (f - 0.5) + 0.5.
func (v Value) Expectation() float64 {
	return v.Confidence*(v.Frequency-0.5) + 0.5
}

// ExpDifAbs is the absolute difference between two expectations.
func (v Value) ExpDifAbs(other Value) float64 {
	d := v.Expectation() - other.Expectation()
	if d < 0 {
		return -d
	}
	return d
}

// Equal compares at the two-decimal resolution truth values are reported in.
func (v Value) Equal(other Value) bool {
	return v.String() == other.String()
}

func (v Value) String() string {
	return fmt.Sprintf("%%%.2f;%.2f%%", v.Frequency, v.Confidence)
}

// C2W converts confidence to evidential weight.
func C2W(c float64) float64 {
	return Horizon * c / (1 - c)
}

// W2C converts evidential weight to confidence.
func W2C(w float64) float64 {
	return w / (w + Horizon)
}
