// Package sequence reassigns unique sequential positions to an ordered set of
// rows without ever holding two rows at the same value.
package sequence

import (
	"errors"
	"sort"
)

// DefaultMaxValue is the upper bound of an unsigned 16-bit column.
const DefaultMaxValue = 65535

var (
	ErrPayloadMismatch = errors.New("sequence: ordering is not a permutation of the existing set")
	ErrTooMany         = errors.New("sequence: too many items for the value range")
	ErrNoFreeRange     = errors.New("sequence: no free temporary range below the maximum value")
)

// Assign persists value for id. It must reach the store before it returns,
// since uniqueness is checked per statement.
type Assign[K comparable] func(id K, value int) error

// Result describes what Apply wrote.
type Result[K comparable] struct {
	// Values maps each id to its final 1-based rank.
	Values map[K]int
	// Remap maps each previous positive value to the value that replaced it.
	Remap map[int]int
}

// Validate checks that ordered is exactly a permutation of the keys of current.
func Validate[K comparable](current map[K]int, ordered []K) error {
	if len(ordered) != len(current) {
		return ErrPayloadMismatch
	}
	seen := make(map[K]struct{}, len(ordered))
	for _, id := range ordered {
		if _, ok := current[id]; !ok {
			return ErrPayloadMismatch
		}
		if _, dup := seen[id]; dup {
			return ErrPayloadMismatch
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Apply gives every id in ordered its 1-based rank in two passes: first into a
// temporary range near the top of [1, maxValue] that no current value occupies,
// then down to the final ranks. Nothing is written when validation fails.
func Apply[K comparable](current map[K]int, ordered []K, maxValue int, assign Assign[K]) (Result[K], error) {
	if err := Validate(current, ordered); err != nil {
		return Result[K]{}, err
	}

	if maxValue-len(ordered) < 1 {
		return Result[K]{}, ErrTooMany
	}
	tempStart, err := freeBand(current, len(ordered), maxValue)
	if err != nil {
		return Result[K]{}, err
	}

	for i, id := range ordered {
		if err := assign(id, tempStart+i+1); err != nil {
			return Result[K]{}, err
		}
	}

	res := Result[K]{
		Values: make(map[K]int, len(ordered)),
		Remap:  make(map[int]int, len(ordered)),
	}
	for i, id := range ordered {
		final := i + 1
		if err := assign(id, final); err != nil {
			return Result[K]{}, err
		}
		res.Values[id] = final
		if old := current[id]; old > 0 {
			res.Remap[old] = final
		}
	}
	return res, nil
}

// freeBand returns the highest offset b >= 1 such that b+1..b+n holds none of
// the current values.
func freeBand[K comparable](current map[K]int, n, maxValue int) (int, error) {
	held := make([]int, 0, len(current))
	for _, v := range current {
		held = append(held, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(held)))

	top := maxValue
	for _, v := range held {
		if v > top {
			continue
		}
		if top-v >= n {
			break
		}
		top = v - 1
	}
	if top-n < 1 {
		return 0, ErrNoFreeRange
	}
	return top - n, nil
}
