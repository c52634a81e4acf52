// Package entity holds the data the attention core moves around: sentences,
// tasks, and the task and term links stored in concept bags.
package entity

import (
	"fmt"

	"cognerd/internal/budget"
	"cognerd/internal/stamp"
	"cognerd/internal/term"
	"cognerd/internal/truth"
)

// Punctuation distinguishes judgments from questions.
type Punctuation byte

const (
	Judgment Punctuation = '.'
	Question Punctuation = '?'
)

func (p Punctuation) String() string { return string(p) }

// Valid reports whether p is a supported punctuation.
func (p Punctuation) Valid() bool { return p == Judgment || p == Question }

// Sentence is a term with punctuation, truth (judgments only) and stamp.
type Sentence struct {
	Content     term.Term
	Punctuation Punctuation
	Truth       truth.Value
	Stamp       stamp.Stamp
	Revisible   bool
}

// NewJudgment builds a revisible judgment.
func NewJudgment(content term.Term, t truth.Value, s stamp.Stamp) Sentence {
	return Sentence{Content: content, Punctuation: Judgment, Truth: t, Stamp: s, Revisible: true}
}

// NewQuestion builds a question.
func NewQuestion(content term.Term, s stamp.Stamp) Sentence {
	return Sentence{Content: content, Punctuation: Question, Stamp: s, Revisible: true}
}

func (s Sentence) IsJudgment() bool { return s.Punctuation == Judgment }
func (s Sentence) IsQuestion() bool { return s.Punctuation == Question }

// Key is content, punctuation and (for judgments) truth. Tasks with the same
// key are merged by bags.
func (s Sentence) Key() string {
	if s.IsJudgment() {
		return s.Content.Name() + string(s.Punctuation) + " " + s.Truth.String()
	}
	return s.Content.Name() + string(s.Punctuation)
}

// EquivalentTo is content, punctuation, truth and stamp equality.
func (s Sentence) EquivalentTo(other Sentence) bool {
	if !term.Equal(s.Content, other.Content) || s.Punctuation != other.Punctuation {
		return false
	}
	if s.IsJudgment() && !s.Truth.Equal(other.Truth) {
		return false
	}
	return s.Stamp.Equal(other.Stamp)
}

// Rank orders beliefs in a concept's table: confident beliefs with short
// evidential bases first.
func (s Sentence) Rank() float64 {
	return budget.RankBelief(s.Truth.Confidence, s.Stamp.Len())
}

func (s Sentence) String() string {
	return fmt.Sprintf("%s %s", s.Key(), s.Stamp)
}
