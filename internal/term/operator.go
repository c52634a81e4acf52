package term

import "fmt"

// Operator is a copula or term connector.
type Operator int

const (
	Inheritance Operator = iota + 1
	Similarity
	Implication
	Equivalence
	Conjunction
	Disjunction
	Negation
	Product
	ImageExt
	ImageInt
	SetExt
	SetInt
	IntersectionExt
	IntersectionInt
	DifferenceExt
	DifferenceInt
)

var operatorSymbols = map[Operator]string{
	Inheritance:     "-->",
	Similarity:      "<->",
	Implication:     "==>",
	Equivalence:     "<=>",
	Conjunction:     "&&",
	Disjunction:     "||",
	Negation:        "--",
	Product:         "*",
	ImageExt:        "/",
	ImageInt:        `\`,
	SetExt:          "{}",
	SetInt:          "[]",
	IntersectionExt: "&",
	IntersectionInt: "|",
	DifferenceExt:   "-",
	DifferenceInt:   "~",
}

// ParseOperator maps a symbol such as "-->" or "&&" to its Operator.
func ParseOperator(symbol string) (Operator, error) {
	for op, s := range operatorSymbols {
		if s == symbol {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, symbol)
}

// Symbol is the canonical text of the operator.
func (o Operator) Symbol() string { return operatorSymbols[o] }

func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("operator(%d)", int(o))
}

func (o Operator) valid() bool {
	_, ok := operatorSymbols[o]
	return ok
}

// IsStatement is true for the four copulas.
func (o Operator) IsStatement() bool {
	return o >= Inheritance && o <= Equivalence
}

// IsImage is true for extensional and intensional images.
func (o Operator) IsImage() bool { return o == ImageExt || o == ImageInt }

// IsRelational is true for products and images, whose components can be
// reached by structural transformation.
func (o Operator) IsRelational() bool { return o == Product || o.IsImage() }

func (o Operator) checkArity(n int) error {
	switch {
	case o.IsStatement(), o == DifferenceExt, o == DifferenceInt:
		if n != 2 {
			return fmt.Errorf("%w: %s takes 2, got %d", ErrArity, o, n)
		}
	case o == Negation:
		if n != 1 {
			return fmt.Errorf("%w: %s takes 1, got %d", ErrArity, o, n)
		}
	case o.IsImage():
		if n < 2 {
			return fmt.Errorf("%w: %s takes at least 2, got %d", ErrArity, o, n)
		}
	default:
		if n < 1 {
			return fmt.Errorf("%w: %s takes at least 1, got %d", ErrArity, o, n)
		}
	}
	return nil
}
