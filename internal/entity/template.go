package entity

import "cognerd/internal/term"

// Template is the unbudgeted blueprint of a link from a compound term to
// one of its components.
type Template struct {
	Target  term.Term
	Kind    LinkKind
	Indices []int
}

// PrepareTemplates derives the component link templates of t once, when its
// concept is created. Atoms have none. Only constant components get
// templates. Components of products and images nested in t are reachable
// only by transformation.
func PrepareTemplates(t term.Term) []Template {
	c, ok := term.AsCompound(t)
	if !ok {
		return nil
	}
	kind := LinkCompound
	if c.IsStatement() {
		kind = LinkCompoundStatement
	}
	var out []Template
	prepareTemplates(c, kind, &out)
	return out
}

func prepareTemplates(c *term.Compound, kind LinkKind, out *[]Template) {
	add := func(target term.Term, k LinkKind, indices ...int) {
		*out = append(*out, Template{Target: target, Kind: k, Indices: indices})
	}
	transformIndices := func(indices ...int) []int {
		if kind == LinkCompoundCondition {
			return append([]int{0}, indices...)
		}
		return indices
	}

	for i := 0; i < c.Size(); i++ {
		t1 := c.ComponentAt(i)
		if t1.IsConstant() {
			add(t1, kind, i)
		}
		c1, ok := term.AsCompound(t1)
		if !ok {
			continue
		}
		conditional := c.Operator() == term.Equivalence || (c.Operator() == term.Implication && i == 0)
		if conditional && (c1.Operator() == term.Conjunction || c1.Operator() == term.Negation) {
			prepareTemplates(c1, LinkCompoundCondition, out)
			continue
		}
		for j := 0; j < c1.Size(); j++ {
			t2 := c1.ComponentAt(j)
			if t2.IsConstant() {
				if c1.Operator().IsRelational() {
					add(t2, LinkTransform, transformIndices(i, j)...)
				} else {
					add(t2, kind, i, j)
				}
			}
			c2, ok := term.AsCompound(t2)
			if !ok || !c2.Operator().IsRelational() {
				continue
			}
			for k := 0; k < c2.Size(); k++ {
				if t3 := c2.ComponentAt(k); t3.IsConstant() {
					add(t3, LinkTransform, transformIndices(i, j, k)...)
				}
			}
		}
	}
}
