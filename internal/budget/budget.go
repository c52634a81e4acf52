// Package budget implements the (priority, durability, quality) triple that
// drives every admission, eviction and scheduling decision in the reasoner.
package budget

import (
	"fmt"

	"cognerd/internal/fuzzy"
)

// Threshold is the minimum Summary a budget needs to be worth processing.
const Threshold = 0.01

// Value is a budget triple. Each factor stays within [0, fuzzy.Max].
// The zero Value is a valid, fully dormant budget.
type Value struct {
	priority   float64
	durability float64
	quality    float64
}

// New returns a clamped budget.
func New(priority, durability, quality float64) Value {
	return Value{
		priority:   fuzzy.Clamp(priority),
		durability: fuzzy.Clamp(durability),
		quality:    fuzzy.Clamp(quality),
	}
}

// Default is the budget given to items created without one, such as new concepts.
func Default() Value {
	return New(0.01, 0.01, 0.01)
}

func (v Value) Priority() float64   { return v.priority }
func (v Value) Durability() float64 { return v.durability }
func (v Value) Quality() float64    { return v.quality }

func (v *Value) SetPriority(p float64)   { v.priority = fuzzy.Clamp(p) }
func (v *Value) SetDurability(d float64) { v.durability = fuzzy.Clamp(d) }
func (v *Value) SetQuality(q float64)    { v.quality = fuzzy.Clamp(q) }

// IncPriority moves priority toward 1 by or(p, x).
func (v *Value) IncPriority(x float64) { v.SetPriority(fuzzy.Or(v.priority, x)) }

// DecPriority moves priority toward 0 by and(p, x).
func (v *Value) DecPriority(x float64) { v.SetPriority(fuzzy.And(v.priority, x)) }

func (v *Value) IncDurability(x float64) { v.SetDurability(fuzzy.Or(v.durability, x)) }
func (v *Value) DecDurability(x float64) { v.SetDurability(fuzzy.And(v.durability, x)) }
func (v *Value) IncQuality(x float64)    { v.SetQuality(fuzzy.Or(v.quality, x)) }
func (v *Value) DecQuality(x float64)    { v.SetQuality(fuzzy.And(v.quality, x)) }

// Merge folds other into v: priority becomes or(p, other.p), durability and
// quality take the pairwise maximum.
func (v *Value) Merge(other Value) {
	v.SetPriority(fuzzy.Or(v.priority, other.priority))
	if other.durability > v.durability {
		v.durability = other.durability
	}
	if other.quality > v.quality {
		v.quality = other.quality
	}
}

// Summary is the geometric mean of the three factors.
func (v Value) Summary() float64 {
	return fuzzy.AveGeo(v.priority, v.durability, v.quality)
}

// AboveThreshold reports whether Summary reaches Threshold.
func (v Value) AboveThreshold() bool {
	return v.Summary() >= Threshold
}

func (v Value) String() string {
	return fmt.Sprintf("$%.2f;%.2f;%.2f$", v.priority, v.durability, v.quality)
}
