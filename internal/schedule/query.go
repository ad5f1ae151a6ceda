package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// Query is a user-built "must be free during these windows" request: per
// day, the desired free slots. A Query is kept merged at all times — no two
// slots on a day overlap or touch — because every mutation goes through Add.
type Query map[Weekday][]Timeslot

// Add merges slot into the day's window list, preserving the merged
// invariant. Weekend days take no windows.
func (q Query) Add(d Weekday, slot Timeslot) error {
	if d.Weekend() {
		return fmt.Errorf("day %s carries no schedule", d)
	}
	merged, err := Merge(q[d], slot)
	if err != nil {
		return err
	}
	q[d] = merged
	return nil
}

// Remove drops the window whose bounds equal slot, if present. A merged
// block is removed whole; see Remove.
func (q Query) Remove(d Weekday, slot Timeslot) {
	if existing, ok := q[d]; ok {
		q[d] = Remove(existing, slot)
	}
}

// Empty reports whether no day has any window. Filtering with an empty
// query returns the whole directory: no constraints means show everything.
func (q Query) Empty() bool {
	for _, slots := range q {
		if len(slots) > 0 {
			return false
		}
	}
	return true
}

// Validate checks every window; queries arriving over the wire go through
// here before they reach the filter.
func (q Query) Validate() error {
	for d, slots := range q {
		for _, slot := range slots {
			if err := slot.Validate(); err != nil {
				return fmt.Errorf("day %s: %w", d, err)
			}
		}
	}
	return nil
}

// MarshalJSON renders the wire shape the clients and redis use: day symbols
// to slot lists, e.g. {"M":[{"start_time":480,"end_time":540}]}.
func (q Query) MarshalJSON() ([]byte, error) {
	wire := make(map[string][]Timeslot, len(q))
	for day, slots := range q {
		wire[day.String()] = slots
	}
	return json.Marshal(wire)
}

// UnmarshalJSON accepts the wire shape. Unknown day symbols are errors;
// weekend symbols are tolerated only when empty (they exist as sentinel
// columns in some calendar payloads). Days with no windows are dropped.
func (q *Query) UnmarshalJSON(b []byte) error {
	var wire map[string][]Timeslot
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	out := Query{}
	for sym, slots := range wire {
		day, err := ParseDay(sym)
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			continue
		}
		if day.Weekend() {
			return fmt.Errorf("day %s cannot carry windows", day)
		}
		out[day] = slots
	}
	*q = out
	return nil
}

// FreeNowQuery builds the query behind the "free right now" search: the
// half-hour window containing now plus lead.
// On weekends it probes Monday 00:00–00:30, which no room has scheduled, so
// everything comes back free.
func FreeNowQuery(now time.Time, lead time.Duration) Query {
	q := Query{}

	day, ok := fromTimeWeekday(now.Weekday())
	if !ok {
		q[Monday] = []Timeslot{{Start: 0, End: 30}}
		return q
	}

	t := now.Add(lead)
	start := t.Hour() * 60
	if t.Minute() >= 30 {
		start += 30
	}
	if start+30 >= MinutesPerDay {
		start = MinutesPerDay - 31
	}
	q[day] = []Timeslot{{Start: start, End: start + 30}}
	return q
}

func fromTimeWeekday(d time.Weekday) (Weekday, bool) {
	switch d {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	default:
		return 0, false
	}
}
