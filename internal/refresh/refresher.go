// Package refresh keeps an in-memory snapshot of the room directory so the
// filter and availability engines run against plain data, never the
// database. The snapshot is swapped atomically; readers always see a
// complete directory.
package refresh

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/example/room-finder/internal/rooms"
)

// Source is the piece of the store the refresher needs.
type Source interface {
	LoadDirectory(ctx context.Context) ([]rooms.Room, error)
}

type Refresher struct {
	Source   Source
	Interval time.Duration

	snapshot atomic.Pointer[[]rooms.Room]
}

// Directory returns the current snapshot. Nil until the first successful
// load.
func (r *Refresher) Directory() []rooms.Room {
	if p := r.snapshot.Load(); p != nil {
		return *p
	}
	return nil
}

// Load fetches the directory once and installs it.
func (r *Refresher) Load(ctx context.Context) error {
	dir, err := r.Source.LoadDirectory(ctx)
	if err != nil {
		return err
	}
	r.snapshot.Store(&dir)
	return nil
}

// Run reloads on a ticker until ctx is done. The first load happens
// immediately; a failed reload keeps the previous snapshot and is only
// logged.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Load(ctx); err != nil {
		log.Error().Err(err).Msg("initial directory load failed")
	}

	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := r.Load(ctx); err != nil {
				log.Error().Err(err).Msg("directory reload failed")
				continue
			}
			log.Debug().Int("rooms", len(r.Directory())).Msg("directory reloaded")
		}
	}
}
