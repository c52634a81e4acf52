package budget

import (
	"math"

	"cognerd/internal/fuzzy"
	"cognerd/internal/truth"
)

// Forget decays priority toward the quality floor q*relativeThreshold.
// forgetRate is the number of reuses over which one full decay is spread;
// higher durability slows the decay.
func Forget(v *Value, forgetRate, relativeThreshold float64) {
	floor := v.quality * relativeThreshold
	p := v.priority - floor
	if p > 0 && forgetRate > 0 {
		floor += p * math.Pow(v.durability, 1.0/(forgetRate*p))
	}
	if floor > v.priority {
		floor = v.priority
	}
	v.SetPriority(floor)
}

// Activate raises a concept budget with an incoming task budget. quality is the
// concept's own recomputed quality, never the incoming one.
func Activate(v *Value, incoming Value, quality float64) {
	oldPriority := v.priority
	priority := fuzzy.Or(oldPriority, incoming.priority)
	durability := fuzzy.AveAri(v.durability, incoming.durability)
	if priority > 0 {
		w := oldPriority / priority
		durability = w*v.durability + (1-w)*incoming.durability
	}
	v.SetPriority(priority)
	v.SetDurability(durability)
	v.SetQuality(quality)
}

// DistributeAmongLinks splits a budget among n links: priority / sqrt(n).
func DistributeAmongLinks(v Value, n int) Value {
	if n <= 0 {
		return v
	}
	return New(v.priority/math.Sqrt(float64(n)), v.durability, v.quality)
}

// TruthToQuality maps a judgment's truth to a budget quality. Strong negative
// evidence is still worth something.
func TruthToQuality(t truth.Value) float64 {
	exp := t.Expectation()
	return math.Max(exp, (1-exp)*0.75)
}

// RankBelief orders beliefs by confidence and originality (shorter evidential bases rank higher).
func RankBelief(confidence float64, baseLength int) float64 {
	originality := 1.0 / float64(baseLength+1)
	return fuzzy.Or(confidence, originality)
}

// Revise computes the budget of a revision conclusion and discounts the task
// that triggered it by how little the revision changed its expectation.
func Revise(task *Value, taskTruth, beliefTruth, revised truth.Value) Value {
	difT := revised.ExpDifAbs(taskTruth)
	task.DecPriority(1 - difT)
	task.DecDurability(1 - difT)
	dif := revised.Confidence - math.Max(taskTruth.Confidence, beliefTruth.Confidence)
	if dif < 0 {
		dif = 0
	}
	return New(
		fuzzy.Or(dif, task.priority),
		fuzzy.AveAri(dif, task.durability),
		TruthToQuality(revised),
	)
}

// SolutionEval adjusts the budget of a task that received a better solution.
// For questions it returns the budget of the activated answer task; for
// judgments it only rewards the task and returns ok=false.
func SolutionEval(task *Value, solutionQuality float64, taskIsJudgment bool, solution truth.Value) (Value, bool) {
	if taskIsJudgment {
		task.IncPriority(solutionQuality)
		return Value{}, false
	}
	taskPriority := task.priority
	out := New(fuzzy.Or(taskPriority, solutionQuality), task.durability, TruthToQuality(solution))
	task.SetPriority(math.Min(1-solutionQuality, taskPriority))
	return out, true
}

// Infer derives the budget of a conclusion from the link that produced it.
// When a belief link took part, its budget is rewarded in place and its
// priority/durability join the result.
func Infer(quality float64, complexity int, link Value, beliefLink *Value, beliefActivation float64) Value {
	if complexity < 1 {
		complexity = 1
	}
	priority := link.priority
	durability := link.durability / float64(complexity)
	q := quality / float64(complexity)
	if beliefLink != nil {
		priority = fuzzy.Or(priority, beliefLink.priority)
		durability = fuzzy.And(durability, beliefLink.durability)
		beliefLink.IncPriority(fuzzy.Or(q, beliefActivation))
		beliefLink.IncDurability(q)
	}
	return New(priority, durability, q)
}

// Forward is Infer for a conclusion whose complexity does not discount it.
func Forward(t truth.Value, link Value, beliefLink *Value, beliefActivation float64) Value {
	return Infer(TruthToQuality(t), 1, link, beliefLink, beliefActivation)
}
