package entity

import (
	"strconv"
	"strings"

	"cognerd/internal/budget"
	"cognerd/internal/term"
)

// LinkKind says how the two ends of a link are structurally related.
type LinkKind int

const (
	// LinkSelf connects a concept to a task about its own term.
	LinkSelf LinkKind = iota
	// LinkComponent points from a compound to one of its components.
	LinkComponent
	// LinkCompound points from a component to a compound containing it.
	LinkCompound
	// LinkComponentStatement points from a statement to its subject or predicate.
	LinkComponentStatement
	// LinkCompoundStatement points from a subject or predicate to its statement.
	LinkCompoundStatement
	// LinkComponentCondition points from a conditional statement into its condition.
	LinkComponentCondition
	// LinkCompoundCondition points from a condition component to the conditional.
	LinkCompoundCondition
	// LinkTransform marks a component reachable only by structural transformation.
	LinkTransform
)

var linkKindNames = [...]string{
	LinkSelf:               "self",
	LinkComponent:          "component",
	LinkCompound:           "compound",
	LinkComponentStatement: "component-statement",
	LinkCompoundStatement:  "compound-statement",
	LinkComponentCondition: "component-condition",
	LinkCompoundCondition:  "compound-condition",
	LinkTransform:          "transform",
}

func (k LinkKind) String() string {
	if k >= 0 && int(k) < len(linkKindNames) {
		return linkKindNames[k]
	}
	return "link(" + strconv.Itoa(int(k)) + ")"
}

// TowardComponent reports whether the link points at a part of its owner's term.
func (k LinkKind) TowardComponent() bool {
	switch k {
	case LinkComponent, LinkComponentStatement, LinkComponentCondition:
		return true
	}
	return false
}

// Inverse maps a compound-side kind to its component-side counterpart.
// Other kinds are returned unchanged.
func (k LinkKind) Inverse() LinkKind {
	switch k {
	case LinkCompound:
		return LinkComponent
	case LinkCompoundStatement:
		return LinkComponentStatement
	case LinkCompoundCondition:
		return LinkComponentCondition
	}
	return k
}

// linkKey renders kind and path: "@(T1-1-2)_" toward a component,
// "_@(T2-1-2)" toward a compound.
func linkKey(kind LinkKind, indices []int) string {
	var sb strings.Builder
	if kind.TowardComponent() {
		sb.WriteString("@(")
	} else {
		sb.WriteString("_@(")
	}
	sb.WriteString("T")
	sb.WriteString(strconv.Itoa(int(kind)))
	for _, i := range indices {
		sb.WriteString("-")
		sb.WriteString(strconv.Itoa(i + 1))
	}
	if kind.TowardComponent() {
		sb.WriteString(")_")
	} else {
		sb.WriteString(")")
	}
	return sb.String()
}

// TermLink connects a concept to a related term.
type TermLink struct {
	target  term.Term
	kind    LinkKind
	indices []int
	budget  budget.Value
	key     string
}

// NewTermLink builds a link from a template. When the template's target is
// the link's own target the link points toward the component, so the kind
// is inverted.
func NewTermLink(target term.Term, tpl Template, b budget.Value) *TermLink {
	kind := tpl.Kind
	if term.Equal(tpl.Target, target) {
		kind = kind.Inverse()
	}
	l := &TermLink{
		target:  target,
		kind:    kind,
		indices: append([]int(nil), tpl.Indices...),
		budget:  b,
	}
	l.key = linkKey(kind, l.indices) + target.Name()
	return l
}

func (l *TermLink) Key() string           { return l.key }
func (l *TermLink) Budget() *budget.Value { return &l.budget }
func (l *TermLink) Target() term.Term     { return l.target }
func (l *TermLink) Kind() LinkKind        { return l.kind }

// Indices is the component path, outermost first.
func (l *TermLink) Indices() []int { return append([]int(nil), l.indices...) }

func (l *TermLink) String() string { return l.budget.String() + " " + l.key }
