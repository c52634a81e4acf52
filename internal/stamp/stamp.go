// Package stamp tracks evidential provenance: which input serials a sentence's
// evidence derives from, and when it was created.
package stamp

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Serials hands out evidential serial numbers. One counter is owned per
// memory; it is reset only when the whole system is reset.
type Serials struct {
	next atomic.Int64
}

// NewSerials returns a counter whose first serial is 1.
func NewSerials() *Serials {
	return &Serials{}
}

// Next returns a fresh serial.
func (s *Serials) Next() int64 {
	return s.next.Add(1)
}

// Current returns the last serial handed out.
func (s *Serials) Current() int64 {
	return s.next.Load()
}

// Reset restarts numbering at 1.
func (s *Serials) Reset() {
	s.next.Store(0)
}

// Stamp is an evidential base plus creation time. Stamps are immutable.
type Stamp struct {
	base     []int64
	creation int64
}

// NewInput creates the stamp of an input sentence with a fresh serial.
func NewInput(serials *Serials, time int64) Stamp {
	return Stamp{base: []int64{serials.Next()}, creation: time}
}

// FromBase builds a stamp from an explicit evidential base.
func FromBase(base []int64, time int64) Stamp {
	return Stamp{base: append([]int64(nil), base...), creation: time}
}

// Derive copies a stamp's base with a new creation time, for single-premise conclusions.
func Derive(parent Stamp, time int64) Stamp {
	return FromBase(parent.base, time)
}

// Base returns a copy of the evidential base.
func (s Stamp) Base() []int64 {
	return append([]int64(nil), s.base...)
}

// Len is the evidential base length.
func (s Stamp) Len() int { return len(s.base) }

// Creation is the cycle at which the stamp was made.
func (s Stamp) Creation() int64 { return s.creation }

// Overlaps reports whether two stamps share any serial.
func (s Stamp) Overlaps(other Stamp) bool {
	for _, a := range s.base {
		for _, b := range other.base {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Equal compares evidential bases as sets; creation time is ignored.
func (s Stamp) Equal(other Stamp) bool {
	return containsAll(s.base, other.base) && containsAll(other.base, s.base)
}

func containsAll(set, items []int64) bool {
	for _, x := range items {
		found := false
		for _, y := range set {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Merge combines two independent stamps for a double-premise conclusion.
// The longer base goes first and the bases are interleaved, truncated at
// maxLength. ok is false when the bases overlap, since evidence cannot be
// combined with itself.
func Merge(first, second Stamp, time int64, maxLength int) (Stamp, bool) {
	if first.Overlaps(second) {
		return Stamp{}, false
	}
	if second.Len() > first.Len() {
		first, second = second, first
	}
	length := first.Len() + second.Len()
	if maxLength > 0 && length > maxLength {
		length = maxLength
	}
	base := make([]int64, 0, length)
	i1, i2 := 0, 0
	for i2 < second.Len() && len(base) < length {
		base = append(base, second.base[i2])
		i2++
		if i1 < first.Len() && len(base) < length {
			base = append(base, first.base[i1])
			i1++
		}
	}
	for i1 < first.Len() && len(base) < length {
		base = append(base, first.base[i1])
		i1++
	}
	return Stamp{base: base, creation: time}, true
}

func (s Stamp) String() string {
	parts := make([]string, len(s.base))
	for i, n := range s.base {
		parts[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("{%d : %s}", s.creation, strings.Join(parts, ";"))
}
