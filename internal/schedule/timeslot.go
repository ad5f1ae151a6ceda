package schedule

import (
	"encoding/json"
	"fmt"
)

// MinutesPerDay bounds the valid minute-of-day domain: [0, MinutesPerDay).
// A timeslot never crosses midnight.
const MinutesPerDay = 24 * 60

// Timeslot is a half-open interval [Start, End) in minutes since midnight.
// ClassName is the occupancy reason on a room's fixed schedule; it plays no
// part in the interval arithmetic.
type Timeslot struct {
	Start     int    `json:"start_time"`
	End       int    `json:"end_time"`
	ClassName string `json:"class_name,omitempty"`
}

// NewTimeslot validates the interval bounds. Construction boundaries
// (selection, parsers, ingest) go through here so the engines can assume
// well-formed input.
func NewTimeslot(start, end int) (Timeslot, error) {
	ts := Timeslot{Start: start, End: end}
	return ts, ts.Validate()
}

func (t Timeslot) Validate() error {
	if t.Start < 0 || t.End >= MinutesPerDay {
		return fmt.Errorf("timeslot [%d, %d) outside minute-of-day range", t.Start, t.End)
	}
	if t.Start >= t.End {
		return fmt.Errorf("timeslot [%d, %d) has non-positive length", t.Start, t.End)
	}
	return nil
}

// Overlaps is the strict half-open overlap test: touching endpoints do not
// conflict, so a class ending at 14:00 leaves the room free for a request
// starting at 14:00.
func (t Timeslot) Overlaps(o Timeslot) bool {
	return t.Start < o.End && o.Start < t.End
}

// SameInterval compares bounds only, ignoring ClassName.
func (t Timeslot) SameInterval(o Timeslot) bool {
	return t.Start == o.Start && t.End == o.End
}

// DaySchedule is the occupied slots for one day. Producers are not required
// to sort, merge, or de-duplicate; every consumer tolerates raw input.
type DaySchedule []Timeslot

// WeeklySchedule maps teaching days to their occupied slots. A missing day
// means the room has nothing scheduled that day.
type WeeklySchedule map[Weekday]DaySchedule

// Day returns the schedule for d, with missing days and weekends treated as
// empty rather than an error.
func (w WeeklySchedule) Day(d Weekday) DaySchedule {
	if d.Weekend() {
		return nil
	}
	return w[d]
}

// MarshalJSON renders the registrar wire shape: day symbols to slot lists.
// Teaching days always appear, empty or not, so calendar clients can render
// all five columns without probing.
func (w WeeklySchedule) MarshalJSON() ([]byte, error) {
	wire := make(map[string][]Timeslot, len(Weekdays))
	for _, day := range Weekdays {
		slots := w[day]
		if slots == nil {
			slots = DaySchedule{}
		}
		wire[day.String()] = slots
	}
	return json.Marshal(wire)
}

// UnmarshalJSON accepts the wire shape, dropping empty columns and
// tolerating the weekend sentinels as long as they carry nothing.
func (w *WeeklySchedule) UnmarshalJSON(b []byte) error {
	var wire map[string][]Timeslot
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	out := WeeklySchedule{}
	for sym, slots := range wire {
		day, err := ParseDay(sym)
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			continue
		}
		if day.Weekend() {
			return fmt.Errorf("day %s cannot carry slots", day)
		}
		out[day] = slots
	}
	*w = out
	return nil
}
