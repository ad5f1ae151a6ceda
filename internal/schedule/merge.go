package schedule

import (
	"fmt"
	"sort"
)

// Merge folds candidate into an already merged, sorted slot list and returns
// a new list that is sorted by start with no two consecutive slots
// overlapping or touching. Adjacency merges: a selection ending at 10:00 and
// another starting at 10:00 become one block.
//
// The input list is not modified.
func Merge(existing []Timeslot, candidate Timeslot) ([]Timeslot, error) {
	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("merge candidate: %w", err)
	}

	all := make([]Timeslot, 0, len(existing)+1)
	all = append(all, existing...)
	all = append(all, candidate)
	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	merged := all[:1]
	for _, slot := range all[1:] {
		last := &merged[len(merged)-1]
		if slot.Start <= last.End {
			if slot.End > last.End {
				last.End = slot.End
			}
			continue
		}
		merged = append(merged, slot)
	}
	return merged, nil
}

// Remove deletes the single slot whose bounds equal target. A block that was
// produced by merging several selections is removed whole or not at all;
// Remove never re-splits. Removing a slot that is not present is a no-op.
func Remove(existing []Timeslot, target Timeslot) []Timeslot {
	out := make([]Timeslot, 0, len(existing))
	removed := false
	for _, slot := range existing {
		if !removed && slot.SameInterval(target) {
			removed = true
			continue
		}
		out = append(out, slot)
	}
	return out
}
