// Package fuzzy holds the extended boolean operators shared by the budget and
// truth calculi. All inputs are expected in [0, 1].
package fuzzy

import "math"

// Max is the largest value a budget or confidence factor may hold.
// Keeping factors strictly below 1 avoids division by zero in w2c/c2w and
// keeps or() from saturating.
const Max = 0.9999

// Or returns 1 - Π(1 - x).
func Or(xs ...float64) float64 {
	product := 1.0
	for _, x := range xs {
		product *= 1 - x
	}
	return 1 - product
}

// And returns Π x.
func And(xs ...float64) float64 {
	product := 1.0
	for _, x := range xs {
		product *= x
	}
	return product
}

// AveAri is the arithmetic mean.
func AveAri(xs ...float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// AveGeo is the geometric mean.
func AveGeo(xs ...float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	product := 1.0
	for _, x := range xs {
		product *= x
	}
	return math.Pow(product, 1.0/float64(len(xs)))
}

// Clamp bounds x to [0, Max]. NaN collapses to 0.
func Clamp(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > Max {
		return Max
	}
	return x
}
