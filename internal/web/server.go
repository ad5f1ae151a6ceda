package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/room-finder/internal/cache"
	"github.com/example/room-finder/internal/db"
	"github.com/example/room-finder/internal/rooms"
	"github.com/example/room-finder/internal/schedule"
	"github.com/example/room-finder/internal/selection"
	"github.com/example/room-finder/internal/session"
)

// RoomStore is the slice of the repository the handlers need.
type RoomStore interface {
	GetByID(ctx context.Context, id int64) (rooms.Room, error)
	ListNames(ctx context.Context) (map[int64]string, error)
	Upsert(ctx context.Context, room rooms.Room) (int64, error)
}

// DirectorySource supplies the in-memory directory snapshot.
type DirectorySource interface {
	Directory() []rooms.Room
}

type Server struct {
	Store     RoomStore
	Directory DirectorySource
	Cache     *cache.Cache
	Sessions  *session.Store

	Grid        selection.Grid
	FreeNowLead time.Duration

	// AdminTokenHash guards ingest; empty disables the endpoint.
	AdminTokenHash string

	// Now is the injected clock; tests pin it.
	Now func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: status < 400,
		Message: message,
		Data:    data,
	})
}

func respondErr(w http.ResponseWriter, err error, message string) {
	if db.IsNotFound(err) {
		respond(w, http.StatusNotFound, "not found", nil)
		return
	}
	log.Error().Err(err).Msg(message)
	respond(w, http.StatusInternalServerError, message, nil)
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /api/rooms", s.handleRoomNames)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleRoom)
	mux.HandleFunc("GET /api/rooms/{id}/availability", s.handleAvailability)
	mux.HandleFunc("POST /api/rooms/free", s.handleFreeRooms)
	mux.HandleFunc("GET /api/rooms/freenow", s.handleFreeNow)
	mux.HandleFunc("GET /api/search", s.handleSearch)

	mux.HandleFunc("GET /api/query", s.handleQueryGet)
	mux.HandleFunc("POST /api/query/select", s.handleQuerySelect)
	mux.HandleFunc("POST /api/query/remove", s.handleQueryRemove)
	mux.HandleFunc("POST /api/query/clear", s.handleQueryClear)

	mux.HandleFunc("POST /api/admin/rooms", s.handleAdminUpsert)

	return mux
}

func (s *Server) handleRoomNames(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var names map[int64]string
	if s.Cache != nil {
		if ok, err := s.Cache.Get(ctx, r.URL.Path, &names); err != nil {
			log.Warn().Err(err).Msg("cache read failed")
		} else if ok {
			respond(w, http.StatusOK, "All room names fetched", names)
			return
		}
	}

	names, err := s.Store.ListNames(ctx)
	if err != nil {
		respondErr(w, err, "Error fetching room names")
		return
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, r.URL.Path, names); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
	}
	respond(w, http.StatusOK, "All room names fetched", names)
}

type roomPayload struct {
	ID         int64                   `json:"id"`
	Name       string                  `json:"name"`
	Attributes []string                `json:"attributes"`
	Weekly     schedule.WeeklySchedule `json:"weekly_schedule"`
}

func toPayload(room rooms.Room) roomPayload {
	attrs := room.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	return roomPayload{
		ID:         room.ID,
		Name:       room.Name,
		Attributes: attrs,
		Weekly:     room.Weekly,
	}
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond(w, http.StatusBadRequest, "invalid room id", nil)
		return
	}

	room, err := s.Store.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, err, "Error fetching room")
		return
	}
	respond(w, http.StatusOK, "Room fetched", toPayload(room))
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond(w, http.StatusBadRequest, "invalid room id", nil)
		return
	}

	room, err := s.Store.GetByID(r.Context(), id)
	if err != nil {
		respondErr(w, err, "Error fetching room")
		return
	}

	now := s.now()
	day := weekdayOf(now)
	avail := schedule.FindNextOn(room.Weekly, day, now.Hour()*60+now.Minute())
	respond(w, http.StatusOK, "Availability computed", map[string]any{
		"free":          avail.Free,
		"transition_at": avail.TransitionAt,
		"label":         avail.Label(),
	})
}

func (s *Server) handleFreeRooms(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query schedule.Query `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, "invalid query payload: "+err.Error(), nil)
		return
	}

	free, err := rooms.FilterFree(s.Directory.Directory(), body.Query)
	if err != nil {
		respond(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	names := rooms.Names(free)
	sort.Strings(names)
	respond(w, http.StatusOK, "Rooms available during the specified periods", names)
}

func (s *Server) handleFreeNow(w http.ResponseWriter, r *http.Request) {
	query := schedule.FreeNowQuery(s.now(), s.FreeNowLead)
	free, err := rooms.FilterFree(s.Directory.Directory(), query)
	if err != nil {
		respondErr(w, err, "Error finding free rooms")
		return
	}

	now := s.now()
	result := append([]rooms.Room(nil), free...)
	rooms.SortByAvailability(result, weekdayOf(now), now.Hour()*60+now.Minute())
	respond(w, http.StatusOK, "Rooms free right now", rooms.Names(result))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	attrs := r.URL.Query()["attr"]

	slot, cleaned, hasRange, err := schedule.ParseTimeRange(text)
	if err != nil {
		respond(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	matched := rooms.Search(s.Directory.Directory(), cleaned, attrs)
	if hasRange {
		// a "from X to Y" phrase constrains today's schedule; weekends fall
		// back to Monday like the free-now probe
		day := weekdayOf(s.now())
		if day.Weekend() {
			day = schedule.Monday
		}
		query := schedule.Query{}
		if err := query.Add(day, slot); err != nil {
			respond(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		if matched, err = rooms.FilterFree(matched, query); err != nil {
			respond(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	names := rooms.Names(matched)
	sort.Strings(names)
	respond(w, http.StatusOK, "Search results", names)
}

func (s *Server) handleQueryGet(w http.ResponseWriter, r *http.Request) {
	_, q, ok := s.sessionQuery(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, "Current query", q)
}

func (s *Server) handleQuerySelect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Day        string `json:"day"`
		PressRow   int    `json:"press_row"`
		ReleaseRow int    `json:"release_row"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, "invalid selection payload", nil)
		return
	}
	day, err := schedule.ParseDay(body.Day)
	if err != nil {
		respond(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sid, q, ok := s.sessionQuery(w, r)
	if !ok {
		return
	}

	gesture := selection.NewGesture(s.Grid)
	if !day.Weekend() {
		gesture.SetDay(day)
	}
	slot, selected, err := gesture.Select(q, body.PressRow, body.ReleaseRow)
	if err != nil {
		respond(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if selected {
		if err := s.Sessions.SaveQuery(r.Context(), sid, q); err != nil {
			respondErr(w, err, "Error saving query")
			return
		}
	}
	respond(w, http.StatusOK, "Selection applied", map[string]any{
		"selected": selected,
		"slot":     slot,
		"query":    q,
	})
}

func (s *Server) handleQueryRemove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Day  string            `json:"day"`
		Slot schedule.Timeslot `json:"slot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, "invalid remove payload", nil)
		return
	}
	day, err := schedule.ParseDay(body.Day)
	if err != nil {
		respond(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sid, q, ok := s.sessionQuery(w, r)
	if !ok {
		return
	}
	q.Remove(day, body.Slot)
	if err := s.Sessions.SaveQuery(r.Context(), sid, q); err != nil {
		respondErr(w, err, "Error saving query")
		return
	}
	respond(w, http.StatusOK, "Window removed", q)
}

func (s *Server) handleQueryClear(w http.ResponseWriter, r *http.Request) {
	sid, _, ok := s.sessionQuery(w, r)
	if !ok {
		return
	}
	if err := s.Sessions.ClearQuery(r.Context(), sid); err != nil {
		respondErr(w, err, "Error clearing query")
		return
	}
	respond(w, http.StatusOK, "Query cleared", schedule.Query{})
}

func (s *Server) sessionQuery(w http.ResponseWriter, r *http.Request) (string, schedule.Query, bool) {
	sid, err := s.Sessions.Establish(w, r)
	if err != nil {
		respondErr(w, err, "Error establishing session")
		return "", nil, false
	}
	q, err := s.Sessions.Query(r.Context(), sid)
	if err != nil {
		respondErr(w, err, "Error loading query")
		return "", nil, false
	}
	return sid, q, true
}

type upsertPayload struct {
	Name       string                  `json:"name"`
	Attributes []string                `json:"attributes"`
	Weekly     schedule.WeeklySchedule `json:"weekly_schedule"`
}

func (s *Server) handleAdminUpsert(w http.ResponseWriter, r *http.Request) {
	if s.AdminTokenHash == "" {
		respond(w, http.StatusForbidden, "ingest disabled", nil)
		return
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || bcrypt.CompareHashAndPassword([]byte(s.AdminTokenHash), []byte(token)) != nil {
		respond(w, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	var body struct {
		Rooms []upsertPayload `json:"rooms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, "invalid rooms payload: "+err.Error(), nil)
		return
	}

	count := 0
	for _, p := range body.Rooms {
		if strings.TrimSpace(p.Name) == "" {
			respond(w, http.StatusBadRequest, "room name required", nil)
			return
		}
		room := rooms.Room{
			Name:       p.Name,
			Attributes: p.Attributes,
			Weekly:     p.Weekly,
		}
		if _, err := s.Store.Upsert(r.Context(), room); err != nil {
			respond(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		count++
	}

	if s.Cache != nil {
		if err := s.Cache.InvalidateAll(r.Context()); err != nil {
			log.Warn().Err(err).Msg("cache invalidation failed")
		}
	}
	respond(w, http.StatusOK, "Rooms upserted", map[string]int{"count": count})
}

func weekdayOf(t time.Time) schedule.Weekday {
	switch t.Weekday() {
	case time.Monday:
		return schedule.Monday
	case time.Tuesday:
		return schedule.Tuesday
	case time.Wednesday:
		return schedule.Wednesday
	case time.Thursday:
		return schedule.Thursday
	case time.Friday:
		return schedule.Friday
	case time.Saturday:
		return schedule.Saturday
	default:
		return schedule.Sunday
	}
}

// Start serves h until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("listening")
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
