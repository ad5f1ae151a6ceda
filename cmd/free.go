package cmd

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/room-finder/internal/rooms"
	"github.com/example/room-finder/internal/schedule"
)

func newFreeCmd() *cobra.Command {
	var (
		day  string
		text string
		from string
		to   string
	)

	c := &cobra.Command{
		Use:   "free",
		Short: "List rooms free during a time window",
		Long: `List rooms free during a time window.

The window comes either from --text ("from 3 to 5") or from --from/--to
clock times (H:MM, am/pm optional; a bare hour of 7 or less reads as PM).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := schedule.ParseDay(day)
			if err != nil {
				return err
			}

			var slot schedule.Timeslot
			switch {
			case text != "":
				parsed, _, ok, err := schedule.ParseTimeRange(text)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no \"from X to Y\" phrase in %q", text)
				}
				slot = parsed
			case from != "" && to != "":
				start, err := parseClockFlag(from)
				if err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				end, err := parseClockFlag(to)
				if err != nil {
					return fmt.Errorf("--to: %w", err)
				}
				if slot, err = schedule.NewTimeslot(start, end); err != nil {
					return err
				}
			default:
				return fmt.Errorf("either --text or both --from and --to are required")
			}

			query := schedule.Query{}
			if err := query.Add(d, slot); err != nil {
				return err
			}

			repo, cleanup, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			directory, err := repo.LoadDirectory(cmd.Context())
			if err != nil {
				return err
			}
			free, err := rooms.FilterFree(directory, query)
			if err != nil {
				return err
			}

			names := rooms.Names(free)
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(os.Stdout, name)
			}
			return nil
		},
	}

	c.Flags().StringVar(&day, "day", "M", "day symbol (M, T, W, R, F)")
	c.Flags().StringVar(&text, "text", "", `natural-language window, e.g. "from 3 to 5"`)
	c.Flags().StringVar(&from, "from", "", "window start (e.g. 3:00pm)")
	c.Flags().StringVar(&to, "to", "", "window end (e.g. 5:00pm)")
	return c
}

var clockFlagRe = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// parseClockFlag reads "3", "3:15", "3:15pm" style flag values.
func parseClockFlag(s string) (int, error) {
	m := clockFlagRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	meridiem := schedule.MeridiemNone
	switch strings.ToLower(m[3]) {
	case "am":
		meridiem = schedule.AM
	case "pm":
		meridiem = schedule.PM
	}
	return schedule.ToMinutes(hour, minute, meridiem)
}
