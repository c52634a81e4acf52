// Package bag implements the bounded, level-partitioned priority container
// that schedules attention. Items are spread over levels by priority; TakeOut
// draws levels through a fixed cyclic distributor that favours high levels,
// and PutBack decays an item before re-admitting it.
package bag

import (
	"math"
	"slices"

	"cognerd/internal/budget"
	"cognerd/internal/logging"
)

// Item is anything a Bag can hold.
type Item interface {
	Key() string
	Budget() *budget.Value
}

const (
	DefaultLevels    = 100
	DefaultThreshold = 10

	// emptyAveragePriority is returned by AveragePriority for an empty bag.
	emptyAveragePriority = 0.01
)

// Config sizes a Bag. Zero fields take defaults.
type Config struct {
	Name       string // used in logs only
	Capacity   int
	Levels     int
	Threshold  int // levels below this draw one item per visit
	ForgetRate int // reuses over which PutBack applies one full decay
}

// Bag is a fixed-capacity priority container. It is not safe for concurrent use.
type Bag[T Item] struct {
	name       string
	capacity   int
	levels     int
	threshold  int
	forgetRate int

	names  map[string]int // key -> stored level
	table  [][]T          // per-level FIFO lists
	mass   int            // sum of (level+1) over stored items
	cursor int            // index into distributor
	order  []int

	currentLevel   int
	currentCounter int
}

// New creates an empty bag.
func New[T Item](cfg Config) *Bag[T] {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	if cfg.Levels <= 0 {
		cfg.Levels = DefaultLevels
	}
	if cfg.Threshold <= 0 || cfg.Threshold > cfg.Levels {
		cfg.Threshold = min(DefaultThreshold, cfg.Levels)
	}
	if cfg.ForgetRate <= 0 {
		cfg.ForgetRate = 1
	}
	b := &Bag[T]{
		name:       cfg.Name,
		capacity:   cfg.Capacity,
		levels:     cfg.Levels,
		threshold:  cfg.Threshold,
		forgetRate: cfg.ForgetRate,
		order:      distributor(cfg.Levels),
	}
	b.Clear()
	return b
}

// Clear empties the bag and rewinds the scheduling cursor.
func (b *Bag[T]) Clear() {
	b.names = make(map[string]int, b.capacity)
	b.table = make([][]T, b.levels)
	b.mass = 0
	b.cursor = b.capacity % len(b.order)
	b.currentLevel = b.levels - 1
	b.currentCounter = 0
}

func (b *Bag[T]) Size() int     { return len(b.names) }
func (b *Bag[T]) Capacity() int { return b.capacity }
func (b *Bag[T]) Levels() int   { return b.levels }
func (b *Bag[T]) Mass() int     { return b.mass }

// ForgetRate returns the decay rate PutBack uses.
func (b *Bag[T]) ForgetRate() int { return b.forgetRate }

// RelativeThreshold is threshold/levels, the quality fraction decay converges to.
func (b *Bag[T]) RelativeThreshold() float64 {
	return float64(b.threshold) / float64(b.levels)
}

// AveragePriority is mass/(size*levels) capped at 1, or a small positive
// floor when the bag is empty.
func (b *Bag[T]) AveragePriority() float64 {
	if len(b.names) == 0 {
		return emptyAveragePriority
	}
	f := float64(b.mass) / float64(len(b.names)*b.levels)
	return math.Min(f, 1)
}

// LevelOf maps a priority to a level: ceil(p*levels)-1 clamped to [0, levels-1].
func (b *Bag[T]) LevelOf(priority float64) int {
	l := int(math.Ceil(priority*float64(b.levels))) - 1
	return max(0, min(l, b.levels-1))
}

// Contains reports whether key is stored.
func (b *Bag[T]) Contains(key string) bool {
	_, ok := b.names[key]
	return ok
}

// Get returns the stored item for key without removing it. The item stays
// owned by the bag.
func (b *Bag[T]) Get(key string) (T, bool) {
	level, ok := b.names[key]
	if !ok {
		var zero T
		return zero, false
	}
	i := b.indexIn(level, key)
	return b.table[level][i], true
}

// Items returns the stored items from the highest level down, FIFO within a level.
func (b *Bag[T]) Items() []T {
	out := make([]T, 0, len(b.names))
	for level := b.levels - 1; level >= 0; level-- {
		out = append(out, b.table[level]...)
	}
	return out
}

// PutIn inserts item. A stored item with the same key is replaced and its
// budget merged into item's. At capacity, the first item of the lowest
// occupied level is evicted unless that level is above item's level, in which
// case item itself is rejected.
//
// out is the item that left the bag: the evicted item, or item itself when
// rejected. It is the zero value when nothing left. admitted reports whether
// item is now stored.
func (b *Bag[T]) PutIn(item T) (out T, admitted bool) {
	key := item.Key()
	if _, ok := b.names[key]; ok {
		old := b.remove(key)
		item.Budget().Merge(*old.Budget())
	}

	inLevel := b.LevelOf(item.Budget().Priority())
	if len(b.names) >= b.capacity {
		outLevel := 0
		for len(b.table[outLevel]) == 0 {
			outLevel++
		}
		if outLevel > inLevel {
			logging.BagDebug("%s: rejected %s at level %d (lowest occupied %d)", b.name, key, inLevel, outLevel)
			return item, false
		}
		out = b.removeFirst(outLevel)
		logging.BagDebug("%s: evicted %s from level %d for %s", b.name, out.Key(), outLevel, key)
	}
	b.insert(item, inLevel)
	return out, true
}

// PutBack decays item and re-admits it.
func (b *Bag[T]) PutBack(item T) (out T, admitted bool) {
	budget.Forget(item.Budget(), float64(b.forgetRate), b.RelativeThreshold())
	return b.PutIn(item)
}

// TakeOut removes an item chosen by the level distributor. Levels below the
// threshold yield one item per visit; levels at or above it are drained
// completely before the next level is chosen.
func (b *Bag[T]) TakeOut() (T, bool) {
	if len(b.names) == 0 {
		var zero T
		return zero, false
	}
	if len(b.table[b.currentLevel]) == 0 || b.currentCounter == 0 {
		b.currentLevel = b.nextLevel()
		for len(b.table[b.currentLevel]) == 0 {
			b.currentLevel = b.nextLevel()
		}
		if b.currentLevel < b.threshold {
			b.currentCounter = 1
		} else {
			b.currentCounter = len(b.table[b.currentLevel])
		}
	}
	item := b.removeFirst(b.currentLevel)
	b.currentCounter--
	return item, true
}

// PickOut removes the item stored under key.
func (b *Bag[T]) PickOut(key string) (T, bool) {
	if _, ok := b.names[key]; !ok {
		var zero T
		return zero, false
	}
	return b.remove(key), true
}

func (b *Bag[T]) nextLevel() int {
	level := b.order[b.cursor]
	b.cursor = (b.cursor + 1) % len(b.order)
	return level
}

func (b *Bag[T]) insert(item T, level int) {
	b.table[level] = append(b.table[level], item)
	b.names[item.Key()] = level
	b.mass += level + 1
}

func (b *Bag[T]) removeFirst(level int) T {
	item := b.table[level][0]
	var zero T
	b.table[level][0] = zero
	b.table[level] = b.table[level][1:]
	delete(b.names, item.Key())
	b.mass -= level + 1
	return item
}

func (b *Bag[T]) remove(key string) T {
	level := b.names[key]
	i := b.indexIn(level, key)
	item := b.table[level][i]
	b.table[level] = slices.Delete(b.table[level], i, i+1)
	delete(b.names, key)
	b.mass -= level + 1
	return item
}

func (b *Bag[T]) indexIn(level int, key string) int {
	return slices.IndexFunc(b.table[level], func(it T) bool { return it.Key() == key })
}
