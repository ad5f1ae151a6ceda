package schedule

// Availability is the result of asking "is this room free right now, and
// when does that change?".
type Availability struct {
	// Free reports whether the room is unoccupied at the queried minute.
	Free bool
	// TransitionAt is the minute of the next state change: the end of the
	// current busy block when occupied, or the start of the next class when
	// free. Nil means no further transitions today.
	TransitionAt *int
}

// FreeForDay reports whether nothing else happens today.
func (a Availability) FreeForDay() bool {
	return a.Free && a.TransitionAt == nil
}

// FindNext computes the room's state at now (minutes since midnight) for one
// day's occupied slots. Slots may arrive unsorted, overlapping, or
// duplicated.
//
// When a slot is in progress, the transition is the end of the whole chain
// of back-to-back classes starting from it, so consecutive sections read as
// one continuous busy block. The earliest-starting in-progress slot wins.
func FindNext(day DaySchedule, now int) Availability {
	if len(day) == 0 {
		return Availability{Free: true}
	}

	var current *Timeslot
	nextStart := -1
	for i := range day {
		slot := day[i]
		switch {
		case slot.End < now:
			// already finished
		case slot.Start <= now:
			if current == nil || slot.Start < current.Start {
				current = &day[i]
			}
		default:
			if nextStart == -1 || slot.Start < nextStart {
				nextStart = slot.Start
			}
		}
	}

	if current != nil {
		end := chainEnd(day, current.End)
		return Availability{Free: false, TransitionAt: &end}
	}
	if nextStart == -1 {
		return Availability{Free: true}
	}
	return Availability{Free: true, TransitionAt: &nextStart}
}

// chainEnd follows back-to-back slots: whenever some slot starts exactly at
// end, the busy block extends to that slot's end.
func chainEnd(day DaySchedule, end int) int {
	for {
		extended := false
		for _, slot := range day {
			if slot.Start == end && slot.End > end {
				end = slot.End
				extended = true
				break
			}
		}
		if !extended {
			return end
		}
	}
}

// FindNextOn is FindNext with the weekend rule applied: Saturday and Sunday
// report free for the day no matter what the schedule holds.
func FindNextOn(week WeeklySchedule, d Weekday, now int) Availability {
	if d.Weekend() {
		return Availability{Free: true}
	}
	return FindNext(week.Day(d), now)
}

// Label renders the availability as the user-facing string pair: a state and
// the "until"/"for the day" suffix.
func (a Availability) Label() string {
	switch {
	case a.FreeForDay():
		return "free for the day"
	case a.Free:
		return "free until " + FormatMinutes(*a.TransitionAt)
	default:
		return "class in session until " + FormatMinutes(*a.TransitionAt)
	}
}
