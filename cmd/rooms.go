package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/room-finder/internal/config"
	"github.com/example/room-finder/internal/db"
	"github.com/example/room-finder/internal/migrate"
	"github.com/example/room-finder/internal/rooms"
	"github.com/example/room-finder/internal/schedule"
	"github.com/example/room-finder/internal/store"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage the room directory",
	}
	cmd.AddCommand(newRoomsImportCmd())
	cmd.AddCommand(newRoomsListCmd())
	return cmd
}

// importedRoom is the JSON shape of one directory entry in an import file.
type importedRoom struct {
	Name       string                  `json:"name"`
	Attributes []string                `json:"attributes"`
	Weekly     schedule.WeeklySchedule `json:"weekly_schedule"`
}

func newRoomsImportCmd() *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "import",
		Short: "Bulk upsert rooms and schedules from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var entries []importedRoom
			if err := json.Unmarshal(b, &entries); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			repo, cleanup, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			for _, e := range entries {
				room := rooms.Room{Name: e.Name, Attributes: e.Attributes, Weekly: e.Weekly}
				if _, err := repo.Upsert(cmd.Context(), room); err != nil {
					return fmt.Errorf("upsert %q: %w", e.Name, err)
				}
			}
			fmt.Fprintf(os.Stdout, "imported %d rooms\n", len(entries))
			return nil
		},
	}

	c.Flags().StringVar(&file, "file", "", "path to a JSON array of rooms")
	_ = c.MarkFlagRequired("file")
	return c
}

func newRoomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List room names",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, cleanup, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			names, err := repo.ListNames(cmd.Context())
			if err != nil {
				return err
			}
			sorted := make([]string, 0, len(names))
			for _, name := range names {
				sorted = append(sorted, name)
			}
			sort.Strings(sorted)
			for _, name := range sorted {
				fmt.Fprintln(os.Stdout, name)
			}
			return nil
		},
	}
}

func openRepo(ctx context.Context) (*store.Repo, func(), error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	return store.NewRepo(d), d.Close, nil
}
