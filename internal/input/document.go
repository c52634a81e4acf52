// Package input reads task documents and feeds them to the engine.
//
// A task document is YAML:
//
//	tasks:
//	  - term: {op: "-->", args: [robin, bird]}
//	    truth: {frequency: 1, confidence: 0.9}
//	  - term: {op: "-->", args: [robin, animal]}
//	    punctuation: "?"
//
// Terms are either plain atom names or {op, args} mappings, nested freely.
// Omitted truth and budget fields take the configured defaults.
package input

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cognerd/internal/budget"
	"cognerd/internal/config"
	"cognerd/internal/entity"
	"cognerd/internal/stamp"
	"cognerd/internal/term"
	"cognerd/internal/truth"
)

// ErrNoTasks is returned for a document without tasks.
var ErrNoTasks = errors.New("document has no tasks")

// Document is the on-disk form of a batch of tasks.
type Document struct {
	Tasks []TaskSpec `yaml:"tasks"`
}

// TaskSpec is one task as written by the user.
type TaskSpec struct {
	Term        TermSpec    `yaml:"term"`
	Punctuation string      `yaml:"punctuation,omitempty"`
	Truth       *TruthSpec  `yaml:"truth,omitempty"`
	Budget      *BudgetSpec `yaml:"budget,omitempty"`
}

// TruthSpec leaves confidence optional.
type TruthSpec struct {
	Frequency  float64  `yaml:"frequency"`
	Confidence *float64 `yaml:"confidence,omitempty"`
}

// BudgetSpec leaves every field optional.
type BudgetSpec struct {
	Priority   *float64 `yaml:"priority,omitempty"`
	Durability *float64 `yaml:"durability,omitempty"`
	Quality    *float64 `yaml:"quality,omitempty"`
}

// TermSpec is an atom name or an operator applied to arguments.
type TermSpec struct {
	Atom string     `yaml:"-"`
	Op   string     `yaml:"op,omitempty"`
	Args []TermSpec `yaml:"args,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (t *TermSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = TermSpec{Atom: node.Value}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Op   string     `yaml:"op"`
			Args []TermSpec `yaml:"args"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*t = TermSpec{Op: raw.Op, Args: raw.Args}
		return nil
	}
	return fmt.Errorf("line %d: term must be a name or {op, args}", node.Line)
}

// MarshalYAML writes atoms as scalars.
func (t TermSpec) MarshalYAML() (interface{}, error) {
	if t.Op == "" {
		return t.Atom, nil
	}
	return struct {
		Op   string     `yaml:"op"`
		Args []TermSpec `yaml:"args"`
	}{t.Op, t.Args}, nil
}

// Build converts the document form into a term.
func (t TermSpec) Build() (term.Term, error) {
	if t.Op == "" {
		a, err := term.NewAtom(t.Atom)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	op, err := term.ParseOperator(t.Op)
	if err != nil {
		return nil, err
	}
	args := make([]term.Term, len(t.Args))
	for i, a := range t.Args {
		built, err := a.Build()
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i+1, t.Op, err)
		}
		args[i] = built
	}
	c, err := term.NewCompound(op, args...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Entry is a resolved task waiting for a stamp. Stamps are assigned when the
// engine admits the entry so that serials follow admission order.
type Entry struct {
	Content     term.Term
	Punctuation entity.Punctuation
	// Truth is nil for questions.
	Truth  *truth.Value
	Budget budget.Value
}

// Task stamps the entry with a fresh serial at time now.
func (e Entry) Task(serials *stamp.Serials, now int64) *entity.Task {
	st := stamp.NewInput(serials, now)
	var s entity.Sentence
	if e.Punctuation == entity.Question || e.Truth == nil {
		s = entity.NewQuestion(e.Content, st)
	} else {
		s = entity.NewJudgment(e.Content, *e.Truth, st)
	}
	return entity.NewInputTask(s, e.Budget)
}

func (e Entry) String() string {
	if e.Truth != nil {
		return fmt.Sprintf("%s %s%s %s", e.Budget, e.Content.Name(), e.Punctuation, e.Truth)
	}
	return fmt.Sprintf("%s %s%s", e.Budget, e.Content.Name(), e.Punctuation)
}

// Resolver applies configured defaults to task specs.
type Resolver struct {
	cfg config.ReasonerConfig
}

// NewResolver creates a resolver using cfg's input defaults.
func NewResolver(cfg config.ReasonerConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve builds the entry for one task.
func (r *Resolver) Resolve(spec TaskSpec) (Entry, error) {
	content, err := spec.Term.Build()
	if err != nil {
		return Entry{}, fmt.Errorf("invalid term: %w", err)
	}

	punct := entity.Judgment
	if spec.Punctuation != "" {
		if len(spec.Punctuation) != 1 || !entity.Punctuation(spec.Punctuation[0]).Valid() {
			return Entry{}, fmt.Errorf("invalid punctuation %q", spec.Punctuation)
		}
		punct = entity.Punctuation(spec.Punctuation[0])
	}

	e := Entry{Content: content, Punctuation: punct}
	var priority, durability, quality float64
	if punct == entity.Judgment {
		tv := truth.New(1, r.cfg.JudgmentConfidence)
		if spec.Truth != nil {
			conf := r.cfg.JudgmentConfidence
			if spec.Truth.Confidence != nil {
				conf = *spec.Truth.Confidence
			}
			if spec.Truth.Frequency < 0 || spec.Truth.Frequency > 1 || conf < 0 || conf > 1 {
				return Entry{}, fmt.Errorf("truth out of range: %g;%g", spec.Truth.Frequency, conf)
			}
			tv = truth.New(spec.Truth.Frequency, conf)
		}
		e.Truth = &tv
		priority, durability, quality = r.cfg.JudgmentPriority, r.cfg.JudgmentDurability, budget.TruthToQuality(tv)
	} else {
		if spec.Truth != nil {
			return Entry{}, fmt.Errorf("question %s cannot carry truth", content.Name())
		}
		priority, durability, quality = r.cfg.QuestionPriority, r.cfg.QuestionDurability, 1
	}

	if b := spec.Budget; b != nil {
		for _, f := range []struct {
			v   *float64
			dst *float64
		}{{b.Priority, &priority}, {b.Durability, &durability}, {b.Quality, &quality}} {
			if f.v == nil {
				continue
			}
			if *f.v < 0 || *f.v > 1 {
				return Entry{}, fmt.Errorf("budget out of range: %g", *f.v)
			}
			*f.dst = *f.v
		}
	}
	e.Budget = budget.New(priority, durability, quality)
	return e, nil
}

// Parse decodes a YAML document and resolves every task in it.
func (r *Resolver) Parse(data []byte) ([]Entry, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse task document: %w", err)
	}
	if len(doc.Tasks) == 0 {
		return nil, ErrNoTasks
	}
	entries := make([]Entry, 0, len(doc.Tasks))
	for i, spec := range doc.Tasks {
		e, err := r.Resolve(spec)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseFile reads and parses the document at path.
func (r *Resolver) ParseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task document: %w", err)
	}
	entries, err := r.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
