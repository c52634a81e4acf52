package stamp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialsLifecycle(t *testing.T) {
	s := NewSerials()
	assert.Equal(t, int64(1), s.Next())
	assert.Equal(t, int64(2), s.Next())
	assert.Equal(t, int64(2), s.Current())
	s.Reset()
	assert.Equal(t, int64(1), s.Next())
}

func TestNewInputUsesFreshSerial(t *testing.T) {
	s := NewSerials()
	a := NewInput(s, 3)
	b := NewInput(s, 4)
	assert.False(t, a.Overlaps(b))
	assert.Equal(t, int64(3), a.Creation())
	assert.Equal(t, 1, a.Len())
}

func TestMergeInterleaves(t *testing.T) {
	first := FromBase([]int64{1, 2, 3}, 0)
	second := FromBase([]int64{7, 8}, 0)
	merged, ok := Merge(first, second, 9, 8)
	require.True(t, ok)
	if diff := cmp.Diff([]int64{7, 1, 8, 2, 3}, merged.Base()); diff != "" {
		t.Errorf("merged base mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(9), merged.Creation())
}

func TestMergeTruncates(t *testing.T) {
	first := FromBase([]int64{1, 2, 3, 4, 5}, 0)
	second := FromBase([]int64{6, 7, 8, 9}, 0)
	merged, ok := Merge(first, second, 1, 4)
	require.True(t, ok)
	if diff := cmp.Diff([]int64{6, 1, 7, 2}, merged.Base()); diff != "" {
		t.Errorf("truncated base mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRejectsOverlap(t *testing.T) {
	a := FromBase([]int64{1, 2}, 0)
	b := FromBase([]int64{2, 5}, 0)
	_, ok := Merge(a, b, 1, 8)
	assert.False(t, ok)
}

func TestEqualIgnoresOrderAndTime(t *testing.T) {
	a := FromBase([]int64{1, 2}, 0)
	b := FromBase([]int64{2, 1}, 10)
	c := FromBase([]int64{1, 3}, 0)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestBaseIsCopied(t *testing.T) {
	a := FromBase([]int64{1, 2}, 0)
	base := a.Base()
	base[0] = 99
	assert.Equal(t, []int64{1, 2}, a.Base())
}
