// Package term provides the term language the attention core routes on:
// constant atoms, variables and compounds built from a closed operator set.
// Terms are immutable and compared by name.
package term

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownOperator is returned for an unrecognised connector or copula symbol.
	ErrUnknownOperator = errors.New("unknown term operator")

	// ErrArity is returned when a compound is built with the wrong number of components.
	ErrArity = errors.New("wrong number of components")

	// ErrEmptyName is returned when an atom is created without a name.
	ErrEmptyName = errors.New("empty atom name")
)

// Term is anything that can name a concept.
type Term interface {
	// Name is the canonical text form, used as the concept key.
	Name() string
	// Complexity is the syntactic size of the term, always >= 1.
	Complexity() int
	// IsConstant is false when the term contains a variable; only constant
	// terms may own a concept.
	IsConstant() bool
}

// Equal compares two terms by name. A nil term equals only nil.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// Atom is a word or a variable.
type Atom struct {
	name string
}

// NewAtom creates an atom. Names starting with $, # or ? are variables.
func NewAtom(name string) (Atom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Atom{}, ErrEmptyName
	}
	return Atom{name: name}, nil
}

// MustAtom is NewAtom for literals known to be valid.
func MustAtom(name string) Atom {
	a, err := NewAtom(name)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Atom) Name() string    { return a.name }
func (a Atom) Complexity() int { return 1 }
func (a Atom) String() string  { return a.name }

// IsConstant is false for variables.
func (a Atom) IsConstant() bool { return !a.IsVariable() }

// IsVariable reports whether the atom is an independent, dependent or query variable.
func (a Atom) IsVariable() bool {
	if a.name == "" {
		return false
	}
	switch a.name[0] {
	case '$', '#', '?':
		return true
	}
	return false
}

// Compound is an operator applied to an ordered list of components.
type Compound struct {
	op         Operator
	components []Term
	name       string
	complexity int
	constant   bool
}

// NewCompound builds a compound, checking arity for the operator.
func NewCompound(op Operator, components ...Term) (*Compound, error) {
	if !op.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperator, op)
	}
	if err := op.checkArity(len(components)); err != nil {
		return nil, err
	}
	c := &Compound{
		op:         op,
		components: append([]Term(nil), components...),
		complexity: 1,
		constant:   true,
	}
	for _, t := range components {
		if t == nil {
			return nil, fmt.Errorf("%w: nil component in %s", ErrArity, op)
		}
		c.complexity += t.Complexity()
		if !t.IsConstant() {
			c.constant = false
		}
	}
	c.name = c.makeName()
	return c, nil
}

// NewStatement builds <subject copula predicate>.
func NewStatement(subject Term, copula Operator, predicate Term) (*Compound, error) {
	if !copula.IsStatement() {
		return nil, fmt.Errorf("%w: %s is not a copula", ErrUnknownOperator, copula)
	}
	return NewCompound(copula, subject, predicate)
}

// MustStatement is NewStatement for fixtures.
func MustStatement(subject Term, copula Operator, predicate Term) *Compound {
	c, err := NewStatement(subject, copula, predicate)
	if err != nil {
		panic(err)
	}
	return c
}

// MustCompound is NewCompound for fixtures.
func MustCompound(op Operator, components ...Term) *Compound {
	c, err := NewCompound(op, components...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Compound) Name() string       { return c.name }
func (c *Compound) Complexity() int    { return c.complexity }
func (c *Compound) IsConstant() bool   { return c.constant }
func (c *Compound) String() string     { return c.name }
func (c *Compound) Operator() Operator { return c.op }
func (c *Compound) Size() int          { return len(c.components) }

// ComponentAt returns the i-th component.
func (c *Compound) ComponentAt(i int) Term { return c.components[i] }

// Components returns a copy of the component list.
func (c *Compound) Components() []Term {
	return append([]Term(nil), c.components...)
}

// IsStatement reports whether the compound is built on a copula.
func (c *Compound) IsStatement() bool { return c.op.IsStatement() }

// Subject is the first component of a statement.
func (c *Compound) Subject() Term { return c.components[0] }

// Predicate is the second component of a statement.
func (c *Compound) Predicate() Term { return c.components[1] }

func (c *Compound) makeName() string {
	names := make([]string, len(c.components))
	for i, t := range c.components {
		names[i] = t.Name()
	}
	switch {
	case c.op.IsStatement():
		return "<" + names[0] + " " + c.op.Symbol() + " " + names[1] + ">"
	case c.op == SetExt:
		return "{" + strings.Join(names, ",") + "}"
	case c.op == SetInt:
		return "[" + strings.Join(names, ",") + "]"
	default:
		return "(" + c.op.Symbol() + "," + strings.Join(names, ",") + ")"
	}
}

// AsCompound returns t as a compound, if it is one.
func AsCompound(t Term) (*Compound, bool) {
	c, ok := t.(*Compound)
	return c, ok
}
