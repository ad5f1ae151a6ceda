package rooms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/room-finder/internal/schedule"
)

// FilterFree returns the rooms free for every window the query requests. A
// room qualifies when, on each queried day, none of its occupied slots
// strictly overlaps any requested window; a class ending exactly when a
// window begins is not a conflict.
//
// An empty query means no constraints: the whole directory comes back.
func FilterFree(directory []Room, query schedule.Query) ([]Room, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("free-room query: %w", err)
	}
	if query.Empty() {
		return directory, nil
	}

	out := make([]Room, 0, len(directory))
	for _, room := range directory {
		if freeFor(room, query) {
			out = append(out, room)
		}
	}
	return out, nil
}

func freeFor(room Room, query schedule.Query) bool {
	for day, windows := range query {
		if len(windows) == 0 {
			continue
		}
		occupied := room.Weekly.Day(day)
		for _, window := range windows {
			for _, busy := range occupied {
				if busy.Overlaps(window) {
					return false
				}
			}
		}
	}
	return true
}

// Search filters the directory by case-insensitive name substring and
// required attribute tags. Empty text matches every name; empty attrs
// requires nothing.
func Search(directory []Room, text string, attrs []string) []Room {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := make([]Room, 0, len(directory))
	for _, room := range directory {
		if needle != "" && !strings.Contains(strings.ToLower(room.Name), needle) {
			continue
		}
		if !hasAll(room, attrs) {
			continue
		}
		out = append(out, room)
	}
	return out
}

func hasAll(room Room, attrs []string) bool {
	for _, a := range attrs {
		if !room.HasAttribute(a) {
			return false
		}
	}
	return true
}

// SortByAvailability orders rooms free-longest first: free for the day,
// then free rooms by how late their next class starts, then occupied rooms
// by how soon they open up.
func SortByAvailability(directory []Room, d schedule.Weekday, now int) {
	rank := make(map[int64]int, len(directory))
	for _, room := range directory {
		rank[room.ID] = availabilityRank(room, d, now)
	}
	sort.SliceStable(directory, func(i, j int) bool {
		return rank[directory[i].ID] > rank[directory[j].ID]
	})
}

func availabilityRank(room Room, d schedule.Weekday, now int) int {
	a := schedule.FindNextOn(room.Weekly, d, now)
	switch {
	case a.FreeForDay():
		return schedule.MinutesPerDay * 2
	case a.Free:
		return *a.TransitionAt
	default:
		return -*a.TransitionAt
	}
}
