package store

import (
	"context"
	"fmt"

	"github.com/example/room-finder/internal/db"
	"github.com/example/room-finder/internal/rooms"
	"github.com/example/room-finder/internal/schedule"
)

// Repo reads and writes the room directory. Slots are stored exactly as
// ingested: the engines tolerate unsorted, overlapping, and duplicate rows,
// so no normalization happens on the way in or out.
type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

// LoadDirectory returns every room with its full weekly schedule, ordered
// by name.
func (r *Repo) LoadDirectory(ctx context.Context) ([]rooms.Room, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, attributes FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	var directory []rooms.Room
	byID := map[int64]int{}
	for rows.Next() {
		var room rooms.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Attributes); err != nil {
			return nil, err
		}
		room.Weekly = schedule.WeeklySchedule{}
		byID[room.ID] = len(directory)
		directory = append(directory, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slotRows, err := r.db.Query(ctx, `SELECT room_id, day, start_min, end_min, class_name FROM room_slots`)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	defer slotRows.Close()

	for slotRows.Next() {
		var roomID int64
		var daySym string
		var slot schedule.Timeslot
		if err := slotRows.Scan(&roomID, &daySym, &slot.Start, &slot.End, &slot.ClassName); err != nil {
			return nil, err
		}
		i, ok := byID[roomID]
		if !ok {
			continue
		}
		day, err := schedule.ParseDay(daySym)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", roomID, err)
		}
		directory[i].Weekly[day] = append(directory[i].Weekly[day], slot)
	}
	return directory, slotRows.Err()
}

// GetByID returns one room with its schedule.
func (r *Repo) GetByID(ctx context.Context, id int64) (rooms.Room, error) {
	var room rooms.Room
	err := r.db.QueryRow(ctx, `SELECT id, name, attributes FROM rooms WHERE id=$1`, id).
		Scan(&room.ID, &room.Name, &room.Attributes)
	if err != nil {
		return rooms.Room{}, db.WrapNotFound(err)
	}
	room.Weekly = schedule.WeeklySchedule{}

	rows, err := r.db.Query(ctx, `SELECT day, start_min, end_min, class_name FROM room_slots WHERE room_id=$1`, id)
	if err != nil {
		return rooms.Room{}, fmt.Errorf("load slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var daySym string
		var slot schedule.Timeslot
		if err := rows.Scan(&daySym, &slot.Start, &slot.End, &slot.ClassName); err != nil {
			return rooms.Room{}, err
		}
		day, err := schedule.ParseDay(daySym)
		if err != nil {
			return rooms.Room{}, fmt.Errorf("room %d: %w", id, err)
		}
		room.Weekly[day] = append(room.Weekly[day], slot)
	}
	return room, rows.Err()
}

// Upsert writes a room and replaces its schedule wholesale. Slot bounds are
// validated here, at the ingest boundary, so malformed intervals never make
// it into the store.
func (r *Repo) Upsert(ctx context.Context, room rooms.Room) (int64, error) {
	for day, slots := range room.Weekly {
		if day.Weekend() {
			return 0, fmt.Errorf("room %q: day %s cannot carry slots", room.Name, day)
		}
		for _, slot := range slots {
			if err := slot.Validate(); err != nil {
				return 0, fmt.Errorf("room %q day %s: %w", room.Name, day, err)
			}
		}
	}

	attrs := room.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO rooms(name, attributes) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET attributes = EXCLUDED.attributes, updated_at = now()
RETURNING id`, room.Name, attrs).Scan(&id)
	if err != nil {
		return 0, db.WrapNotFound(err)
	}

	if err := r.db.Exec(ctx, `DELETE FROM room_slots WHERE room_id=$1`, id); err != nil {
		return 0, err
	}
	for day, slots := range room.Weekly {
		for _, slot := range slots {
			if err := r.db.Exec(ctx, `
INSERT INTO room_slots(room_id, day, start_min, end_min, class_name) VALUES ($1,$2,$3,$4,$5)`,
				id, day.String(), slot.Start, slot.End, slot.ClassName); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}

// ListNames returns id → name for the whole directory.
func (r *Repo) ListNames(ctx context.Context) (map[int64]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}
