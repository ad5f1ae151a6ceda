package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Meridiem qualifies a clock hour. MeridiemNone means the text carried no
// am/pm marker.
type Meridiem int

const (
	MeridiemNone Meridiem = iota
	AM
	PM
)

// ToMinutes converts a clock reading to minutes since midnight.
//
// When no meridiem is given and the hour is 7 or less, PM is assumed: people
// asking for "a room from 3 to 5" almost always mean the afternoon. Genuine
// early-morning requests must pass AM explicitly.
func ToMinutes(hour, minute int, meridiem Meridiem) (int, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %d:%02d", hour, minute)
	}
	if meridiem == MeridiemNone && hour <= 7 {
		meridiem = PM
	}
	if meridiem == PM && hour < 12 {
		hour += 12
	}
	if meridiem == AM && hour == 12 {
		hour = 0
	}
	return hour*60 + minute, nil
}

// FormatMinutes renders minutes since midnight as a short clock label:
// "3pm", "3:05pm", "11:30am", "12pm". This is the one canonical formatter;
// every label in the system goes through it.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes >= MinutesPerDay {
		minutes = MinutesPerDay - 1
	}
	hours := minutes / 60
	mins := minutes % 60

	suffix := "am"
	if hours >= 12 {
		suffix = "pm"
	}
	if hours > 12 {
		hours -= 12
	}
	if hours == 0 {
		hours = 12
	}
	if mins == 0 {
		return fmt.Sprintf("%d%s", hours, suffix)
	}
	return fmt.Sprintf("%d:%02d%s", hours, mins, suffix)
}

// Rooms are searchable between 7am and 9pm; parsed ranges are clamped to
// this window.
const (
	serviceOpen  = 7 * 60
	serviceClose = 21 * 60
)

var timeRangeRe = regexp.MustCompile(`(?i)from\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*to\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

// ParseTimeRange extracts a "from X to Y" phrase from free text and returns
// the timeslot it names plus the text with the phrase removed. ok is false
// when the text carries no such phrase.
//
// Bare hours inherit the ToMinutes assume-PM heuristic. An end earlier than
// the start is read as the same day twelve hours on ("from 11 to 1" means
// 11am to 1pm). Both ends are clamped to the 7am–9pm service window.
func ParseTimeRange(text string) (slot Timeslot, cleaned string, ok bool, err error) {
	m := timeRangeRe.FindStringSubmatch(text)
	if m == nil {
		return Timeslot{}, text, false, nil
	}

	start, err := clockFromMatch(m[1], m[2], m[3])
	if err != nil {
		return Timeslot{}, text, false, err
	}
	end, err := clockFromMatch(m[4], m[5], m[6])
	if err != nil {
		return Timeslot{}, text, false, err
	}
	if end < start {
		end += 12 * 60
	}

	start = max(start, serviceOpen)
	end = min(end, serviceClose)

	slot, err = NewTimeslot(start, end)
	if err != nil {
		return Timeslot{}, text, false, fmt.Errorf("parse time range: %w", err)
	}
	slot.ClassName = "search"

	cleaned = strings.TrimSpace(strings.Replace(text, m[0], "", 1))
	return slot, cleaned, true, nil
}

func clockFromMatch(hourStr, minuteStr, meridiemStr string) (int, error) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, fmt.Errorf("invalid hour %q", hourStr)
	}
	minute := 0
	if minuteStr != "" {
		if minute, err = strconv.Atoi(minuteStr); err != nil {
			return 0, fmt.Errorf("invalid minute %q", minuteStr)
		}
	}
	meridiem := MeridiemNone
	switch strings.ToLower(meridiemStr) {
	case "am":
		meridiem = AM
	case "pm":
		meridiem = PM
	}
	return ToMinutes(hour, minute, meridiem)
}
