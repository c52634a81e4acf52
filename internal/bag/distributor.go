package bag

import "sync"

var (
	distributors   = make(map[int][]int)
	distributorsMu sync.Mutex
)

// distributor returns the level-selection sequence for a level count.
// Level l appears l+1 times, spread as evenly as the stepping allows, so a
// cyclic walk visits higher levels proportionally more often. Sequences are
// shared between bags with the same level count.
func distributor(levels int) []int {
	distributorsMu.Lock()
	defer distributorsMu.Unlock()

	if d, ok := distributors[levels]; ok {
		return d
	}
	size := levels * (levels + 1) / 2
	order := make([]int, size)
	for i := range order {
		order[i] = -1
	}
	index := size
	for rank := levels; rank > 0; rank-- {
		for n := 0; n < rank; n++ {
			index = (size/rank + index) % size
			for order[index] >= 0 {
				index = (index + 1) % size
			}
			order[index] = rank - 1
		}
	}
	distributors[levels] = order
	return order
}
