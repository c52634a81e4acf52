package entity

import (
	"cognerd/internal/budget"
	"cognerd/internal/term"
)

// ParentRef records what a derived task came from without keeping the
// parent task alive.
type ParentRef struct {
	Content     term.Term
	Punctuation Punctuation
	// Content of the parent's own parent; nil when the parent was input.
	Grandparent term.Term
}

// Task is a sentence with a budget, queued for processing.
type Task struct {
	sentence     Sentence
	budget       budget.Value
	parent       *ParentRef
	parentBelief *Sentence
	bestSolution *Sentence
}

// NewInputTask creates a task that came from outside the system.
func NewInputTask(s Sentence, b budget.Value) *Task {
	return &Task{sentence: s, budget: b}
}

// NewDerivedTask creates a task derived from parent and, for double-premise
// conclusions, belief.
func NewDerivedTask(s Sentence, b budget.Value, parent *Task, belief *Sentence) *Task {
	t := &Task{sentence: s, budget: b}
	if parent != nil {
		t.parent = &ParentRef{
			Content:     parent.sentence.Content,
			Punctuation: parent.sentence.Punctuation,
		}
		if parent.parent != nil {
			t.parent.Grandparent = parent.parent.Content
		}
	}
	if belief != nil {
		pb := *belief
		t.parentBelief = &pb
	}
	return t
}

func (t *Task) Key() string             { return t.sentence.Key() }
func (t *Task) Budget() *budget.Value   { return &t.budget }
func (t *Task) Sentence() Sentence      { return t.sentence }
func (t *Task) Content() term.Term      { return t.sentence.Content }
func (t *Task) Parent() *ParentRef      { return t.parent }
func (t *Task) ParentBelief() *Sentence { return t.parentBelief }

// IsInput reports whether the task has no parent.
func (t *Task) IsInput() bool { return t.parent == nil }

// BestSolution is the best answer found so far for a question task.
func (t *Task) BestSolution() *Sentence { return t.bestSolution }

// SetBestSolution records a better answer.
func (t *Task) SetBestSolution(s Sentence) { t.bestSolution = &s }

func (t *Task) String() string {
	return t.budget.String() + " " + t.sentence.String()
}
