package schedule

import "fmt"

// Weekday is a closed enumeration of the calendar columns the registrar data
// uses. Saturday and Sunday exist only as sentinel columns: they never carry
// occupancy and are always reported free.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var daySymbols = [...]string{"M", "T", "W", "R", "F", "S", "H"}

// Weekdays lists the five teaching days in column order.
var Weekdays = [...]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return daySymbols[d]
}

// Weekend reports whether d carries no occupancy data.
func (d Weekday) Weekend() bool {
	return d == Saturday || d == Sunday
}

// ParseDay maps a registrar day symbol (M, T, W, R, F, S, H) to a Weekday.
func ParseDay(symbol string) (Weekday, error) {
	for i, s := range daySymbols {
		if s == symbol {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day symbol %q", symbol)
}
