package memory

import (
	"cognerd/internal/budget"
	"cognerd/internal/entity"
	"cognerd/internal/term"
	"cognerd/internal/truth"
)

// Premise is what a firing concept hands to the rule evaluator.
type Premise struct {
	Task *entity.Task
	// Belief is the first belief of the term link's target that can be
	// combined with Task; nil when there is none.
	Belief   *entity.Sentence
	TaskLink *entity.TaskLink
	// TermLink is nil for structural transforms.
	TermLink *entity.TermLink
	// BeliefActivation is the priority of the term link target's concept.
	BeliefActivation float64
	Time             int64
}

// Conclusion is a candidate task produced by an evaluator.
type Conclusion struct {
	Content term.Term
	// Truth is nil for questions.
	Truth  *truth.Value
	Budget budget.Value
	// SinglePremise conclusions derive their stamp from the task (or belief)
	// alone and are dropped when they would undo the task's own derivation.
	SinglePremise bool
	// Punctuation overrides the task's punctuation for single-premise
	// conclusions; zero keeps it.
	Punctuation entity.Punctuation
	// NoRevision marks the derived judgment as not revisable.
	NoRevision bool
}

// Evaluator produces conclusions from premises. Reason handles a task link
// paired with a term link; Transform handles a task link that reaches a
// component only through structural transformation.
type Evaluator interface {
	Reason(p Premise) []Conclusion
	Transform(p Premise) []Conclusion
}

type noEvaluator struct{}

func (noEvaluator) Reason(Premise) []Conclusion    { return nil }
func (noEvaluator) Transform(Premise) []Conclusion { return nil }
