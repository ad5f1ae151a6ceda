package rooms

import (
	"sort"

	"github.com/example/room-finder/internal/schedule"
)

// Room is one directory entry: a physical room, its fixed weekly class
// schedule, and its attribute tags (projector, whiteboard, ...). Entries are
// loaded from the store and treated as read-only by the engines.
type Room struct {
	ID         int64
	Name       string
	Weekly     schedule.WeeklySchedule
	Attributes []string
}

// HasAttribute reports whether the room carries the given tag.
func (r Room) HasAttribute(attr string) bool {
	for _, a := range r.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// Names extracts the room names in directory order.
func Names(directory []Room) []string {
	out := make([]string, len(directory))
	for i, r := range directory {
		out[i] = r.Name
	}
	return out
}

// SortByName orders a directory alphabetically, the ordering the search
// pages present.
func SortByName(directory []Room) {
	sort.Slice(directory, func(i, j int) bool { return directory[i].Name < directory[j].Name })
}
