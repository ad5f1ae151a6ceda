// Package selection implements the drag-to-select gesture on the calendar
// grid. Grid rows map linearly to minutes; the gesture tracks a press, any
// number of moves, and a release, and hands the resulting timeslot to the
// query's merge operation.
package selection

import (
	"fmt"

	"github.com/example/room-finder/internal/schedule"
)

// Grid describes how calendar rows translate to clock time.
type Grid struct {
	// StepMinutes is the height of one row in minutes.
	StepMinutes int
	// DayStartHour is the hour row 0 begins at.
	DayStartHour int
	// MinRows is the minimum selection height: a bare click still produces
	// this many rows so the merge engine never sees a point.
	MinRows int
}

// DefaultGrid matches the calendar page: 15 minute rows from 7am, two rows
// minimum per selection.
var DefaultGrid = Grid{StepMinutes: 15, DayStartHour: 7, MinRows: 2}

// Minutes converts a row index to minutes since midnight.
func (g Grid) Minutes(row int) int {
	return g.DayStartHour*60 + row*g.StepMinutes
}

type state int

const (
	idle state = iota
	selecting
)

// Gesture is the Idle → Selecting → Idle machine behind one drag. It is
// driven by a single pointer, one gesture at a time.
type Gesture struct {
	grid  Grid
	state state

	day    schedule.Weekday
	hasDay bool

	startRow int
	endRow   int
}

func NewGesture(grid Grid) *Gesture {
	return &Gesture{grid: grid}
}

// SetDay arms the gesture with its target day. Until a day is chosen,
// presses are ignored rather than failing: the grid simply is not
// selectable yet.
func (g *Gesture) SetDay(day schedule.Weekday) {
	g.day = day
	g.hasDay = true
}

// ClearDay disables selection.
func (g *Gesture) ClearDay() {
	g.hasDay = false
	g.state = idle
}

// Selecting reports whether a drag is in flight.
func (g *Gesture) Selecting() bool {
	return g.state == selecting
}

// PointerDown starts a drag at the given row. The end tracks one minimum
// height below the press so a plain click selects a non-empty interval.
func (g *Gesture) PointerDown(row int) {
	if !g.hasDay || g.state != idle {
		return
	}
	g.state = selecting
	g.startRow = row
	g.endRow = row + g.grid.MinRows
}

// PointerMove drags the selection edge. The anchor row never moves.
func (g *Gesture) PointerMove(row int) {
	if g.state != selecting {
		return
	}
	g.endRow = row + g.grid.MinRows
}

// PointerUp finishes the drag and returns the selected timeslot. A
// backwards drag is flipped; a zero-width drag is dropped (ok=false), so
// degenerate slots never reach the merge engine.
func (g *Gesture) PointerUp() (schedule.Timeslot, bool, error) {
	if g.state != selecting {
		return schedule.Timeslot{}, false, nil
	}
	g.state = idle

	start, end := g.startRow, g.endRow
	if start > end {
		start, end = end, start
	}
	if start == end {
		return schedule.Timeslot{}, false, nil
	}

	slot, err := schedule.NewTimeslot(g.grid.Minutes(start), g.grid.Minutes(end))
	if err != nil {
		return schedule.Timeslot{}, false, fmt.Errorf("selection rows %d-%d: %w", start, end, err)
	}
	return slot, true, nil
}

// Select runs a whole press-drag-release sequence against the query for the
// gesture's day: the wire-level handlers hand over the press and release
// rows they saw and get the query updated with the merged slot.
func (g *Gesture) Select(q schedule.Query, pressRow, releaseRow int) (schedule.Timeslot, bool, error) {
	g.PointerDown(pressRow)
	if releaseRow != pressRow {
		g.PointerMove(releaseRow)
	}
	slot, ok, err := g.PointerUp()
	if err != nil || !ok {
		return schedule.Timeslot{}, false, err
	}
	if err := q.Add(g.day, slot); err != nil {
		return schedule.Timeslot{}, false, err
	}
	return slot, true, nil
}
