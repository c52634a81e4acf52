package term

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementNameAndComplexity(t *testing.T) {
	s := MustStatement(MustAtom("robin"), Inheritance, MustAtom("bird"))
	assert.Equal(t, "<robin --> bird>", s.Name())
	assert.Equal(t, 3, s.Complexity())
	assert.True(t, s.IsConstant())
	assert.True(t, s.IsStatement())
	assert.Equal(t, "robin", s.Subject().Name())
	assert.Equal(t, "bird", s.Predicate().Name())
}

func TestCompoundNames(t *testing.T) {
	a, b := MustAtom("a"), MustAtom("b")
	assert.Equal(t, "(&&,a,b)", MustCompound(Conjunction, a, b).Name())
	assert.Equal(t, "{a,b}", MustCompound(SetExt, a, b).Name())
	assert.Equal(t, "[a]", MustCompound(SetInt, a).Name())
	assert.Equal(t, "(--,a)", MustCompound(Negation, a).Name())
	assert.Equal(t, "(*,a,b)", MustCompound(Product, a, b).Name())
}

func TestVariablesAreNotConstant(t *testing.T) {
	v := MustAtom("$x")
	assert.True(t, v.IsVariable())
	assert.False(t, v.IsConstant())
	s := MustStatement(v, Inheritance, MustAtom("bird"))
	assert.False(t, s.IsConstant())
}

func TestArityChecks(t *testing.T) {
	_, err := NewCompound(Inheritance, MustAtom("a"))
	assert.True(t, errors.Is(err, ErrArity))
	_, err = NewCompound(Negation, MustAtom("a"), MustAtom("b"))
	assert.True(t, errors.Is(err, ErrArity))
	_, err = NewCompound(Operator(99), MustAtom("a"))
	assert.True(t, errors.Is(err, ErrUnknownOperator))
	_, err = NewStatement(MustAtom("a"), Conjunction, MustAtom("b"))
	assert.True(t, errors.Is(err, ErrUnknownOperator))
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("==>")
	require.NoError(t, err)
	assert.Equal(t, Implication, op)
	_, err = ParseOperator("=/>")
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestEqual(t *testing.T) {
	a := MustStatement(MustAtom("a"), Inheritance, MustAtom("b"))
	b := MustStatement(MustAtom("a"), Inheritance, MustAtom("b"))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, MustAtom("a")))
	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))
}

func TestEmptyAtom(t *testing.T) {
	_, err := NewAtom("  ")
	assert.ErrorIs(t, err, ErrEmptyName)
}
