// Package rules is the default inference evaluator. First-order syllogisms
// on inheritance statements are written in Mangle and evaluated once per
// premise against a throwaway fact store.
package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"cognerd/internal/budget"
	"cognerd/internal/logging"
	"cognerd/internal/memory"
	"cognerd/internal/term"
	"cognerd/internal/truth"
)

//go:embed syllogism.mg
var syllogismProgram string

const (
	predTask       = "task_inheritance"
	predBelief     = "belief_inheritance"
	predConclusion = "conclusion"
)

// Rule names as they appear in the program.
const (
	RuleDeduction = "/deduction"
	RuleAbduction = "/abduction"
	RuleInduction = "/induction"
)

var conclusionSym = ast.PredicateSym{Symbol: predConclusion, Arity: 4}

// Evaluator implements memory.Evaluator.
type Evaluator struct {
	mu          sync.Mutex
	programInfo *analysis.ProgramInfo
	fired       map[string]int
}

var _ memory.Evaluator = (*Evaluator)(nil)

// New parses and analyzes the syllogism program.
func New() (*Evaluator, error) {
	return NewFromSource(syllogismProgram)
}

// NewFromSource builds an evaluator from an alternative program. The program
// must define conclusion/4 over task_inheritance/2 and belief_inheritance/2.
func NewFromSource(source string) (*Evaluator, error) {
	unit, err := parse.Unit(bytes.NewReader([]byte(source)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule program: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze rule program: %w", err)
	}
	return &Evaluator{programInfo: programInfo, fired: make(map[string]int)}, nil
}

// Fired returns how many conclusions each rule has produced.
func (e *Evaluator) Fired() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]int, len(e.fired))
	for k, v := range e.fired {
		out[k] = v
	}
	return out
}

type derivation struct {
	rule      string
	subject   string
	predicate string
	taskMajor bool
}

// Reason derives inheritance conclusions when the task and its belief are
// both judgments on inheritance statements sharing exactly one term.
func (e *Evaluator) Reason(p memory.Premise) []memory.Conclusion {
	if p.Belief == nil || p.TaskLink == nil {
		return nil
	}
	task := p.Task.Sentence()
	if !task.IsJudgment() || !p.Belief.IsJudgment() {
		return nil
	}
	ts, ok := inheritance(task.Content)
	if !ok {
		return nil
	}
	bs, ok := inheritance(p.Belief.Content)
	if !ok || term.Equal(ts, bs) {
		return nil
	}

	terms := map[string]term.Term{}
	for _, t := range []term.Term{ts.Subject(), ts.Predicate(), bs.Subject(), bs.Predicate()} {
		terms[t.Name()] = t
	}

	derivations, err := e.derive(ts, bs)
	if err != nil {
		logging.RulesError("evaluation failed for %s / %s: %v", ts.Name(), bs.Name(), err)
		return nil
	}

	var beliefLink *budget.Value
	if p.TermLink != nil {
		beliefLink = p.TermLink.Budget()
	}

	var out []memory.Conclusion
	for _, d := range derivations {
		if d.subject == d.predicate {
			continue
		}
		content, err := term.NewStatement(terms[d.subject], term.Inheritance, terms[d.predicate])
		if err != nil {
			logging.RulesError("bad conclusion <%s --> %s>: %v", d.subject, d.predicate, err)
			continue
		}
		first, second := p.Belief.Truth, task.Truth
		if d.taskMajor {
			first, second = task.Truth, p.Belief.Truth
		}
		tv := apply(d.rule, first, second)
		b := budget.Forward(tv, *p.TaskLink.Budget(), beliefLink, p.BeliefActivation)
		logging.RulesDebug("%s: %s %s from %s + %s", d.rule, content.Name(), tv, ts.Name(), bs.Name())
		out = append(out, memory.Conclusion{Content: content, Truth: &tv, Budget: b})

		e.mu.Lock()
		e.fired[d.rule]++
		e.mu.Unlock()
	}
	return out
}

// Transform has no structural rules.
func (e *Evaluator) Transform(memory.Premise) []memory.Conclusion { return nil }

func (e *Evaluator) derive(task, belief *term.Compound) ([]derivation, error) {
	store := factstore.NewSimpleInMemoryStore()
	store.Add(ast.NewAtom(predTask, ast.String(task.Subject().Name()), ast.String(task.Predicate().Name())))
	store.Add(ast.NewAtom(predBelief, ast.String(belief.Subject().Name()), ast.String(belief.Predicate().Name())))

	if _, err := mengine.EvalProgramWithStats(e.programInfo, store); err != nil {
		return nil, fmt.Errorf("failed to evaluate rule program: %w", err)
	}

	var out []derivation
	err := store.GetFacts(ast.NewQuery(conclusionSym), func(atom ast.Atom) error {
		args := make([]string, len(atom.Args))
		for i, arg := range atom.Args {
			c, ok := arg.(ast.Constant)
			if !ok {
				return fmt.Errorf("non-constant argument %v in %v", arg, atom)
			}
			args[i] = c.Symbol
		}
		out = append(out, derivation{
			rule:      args[0],
			subject:   args[1],
			predicate: args[2],
			taskMajor: args[3] == "/task",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.rule != b.rule {
			return a.rule < b.rule
		}
		if a.subject != b.subject {
			return a.subject < b.subject
		}
		if a.predicate != b.predicate {
			return a.predicate < b.predicate
		}
		return a.taskMajor && !b.taskMajor
	})
	return out, nil
}

func apply(rule string, first, second truth.Value) truth.Value {
	switch rule {
	case RuleDeduction:
		return truth.Deduction(first, second)
	case RuleAbduction:
		return truth.Abduction(first, second)
	default:
		return truth.Induction(first, second)
	}
}

func inheritance(t term.Term) (*term.Compound, bool) {
	c, ok := term.AsCompound(t)
	if !ok || c.Operator() != term.Inheritance {
		return nil, false
	}
	return c, true
}
