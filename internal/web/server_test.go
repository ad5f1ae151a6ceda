package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/example/room-finder/internal/db"
	"github.com/example/room-finder/internal/rooms"
	"github.com/example/room-finder/internal/schedule"
	"github.com/example/room-finder/internal/selection"
)

type stubStore struct {
	rooms map[int64]rooms.Room
}

func (s *stubStore) GetByID(_ context.Context, id int64) (rooms.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return rooms.Room{}, db.ErrNotFound
	}
	return room, nil
}

func (s *stubStore) ListNames(context.Context) (map[int64]string, error) {
	out := map[int64]string{}
	for id, room := range s.rooms {
		out[id] = room.Name
	}
	return out, nil
}

func (s *stubStore) Upsert(_ context.Context, room rooms.Room) (int64, error) {
	id := int64(len(s.rooms) + 1)
	room.ID = id
	s.rooms[id] = room
	return id, nil
}

type stubDirectory []rooms.Room

func (d stubDirectory) Directory() []rooms.Room { return d }

func testServer() (*Server, stubDirectory) {
	dir := stubDirectory{
		{
			ID:   1,
			Name: "Olin 107",
			Weekly: schedule.WeeklySchedule{
				schedule.Monday: {{Start: 480, End: 540, ClassName: "CS 101"}},
			},
			Attributes: []string{"projector"},
		},
		{
			ID:     2,
			Name:   "Sage 014",
			Weekly: schedule.WeeklySchedule{},
		},
	}
	store := &stubStore{rooms: map[int64]rooms.Room{1: dir[0], 2: dir[1]}}
	srv := &Server{
		Store:       store,
		Directory:   dir,
		Grid:        selection.DefaultGrid,
		FreeNowLead: 10 * time.Minute,
		// Monday 8:10am
		Now: func() time.Time { return time.Date(2026, 8, 31, 8, 10, 0, 0, time.UTC) },
	}
	return srv, dir
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: bad envelope: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec, env
}

func dataStrings(t *testing.T, env envelope) []string {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("remarshal data: %v", err)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("data is not a string list: %v", err)
	}
	return out
}

func TestHandleFreeRooms(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	rec, env := doJSON(t, h, http.MethodPost, "/api/rooms/free",
		`{"query":{"M":[{"start_time":500,"end_time":530}]}}`)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d, envelope %+v", rec.Code, env)
	}
	if got := dataStrings(t, env); !reflect.DeepEqual(got, []string{"Sage 014"}) {
		t.Fatalf("free rooms = %v", got)
	}
}

func TestHandleFreeRoomsTouchingEndpoint(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	_, env := doJSON(t, h, http.MethodPost, "/api/rooms/free",
		`{"query":{"M":[{"start_time":540,"end_time":600}]}}`)
	got := dataStrings(t, env)
	if !reflect.DeepEqual(got, []string{"Olin 107", "Sage 014"}) {
		t.Fatalf("touching endpoints should not conflict, got %v", got)
	}
}

func TestHandleFreeRoomsEmptyQuery(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	_, env := doJSON(t, h, http.MethodPost, "/api/rooms/free", `{"query":{}}`)
	got := dataStrings(t, env)
	if len(got) != 2 {
		t.Fatalf("empty query should return everything, got %v", got)
	}
}

func TestHandleFreeRoomsRejectsMalformed(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	rec, env := doJSON(t, h, http.MethodPost, "/api/rooms/free",
		`{"query":{"M":[{"start_time":600,"end_time":500}]}}`)
	if rec.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("malformed window should 400, got %d %+v", rec.Code, env)
	}
}

func TestHandleAvailability(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	// Monday 8:10, Olin 107 is mid-class until 9:00
	rec, env := doJSON(t, h, http.MethodGet, "/api/rooms/1/availability", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	data, _ := env.Data.(map[string]any)
	if free, _ := data["free"].(bool); free {
		t.Fatalf("expected occupied, got %+v", data)
	}
	if label, _ := data["label"].(string); label != "class in session until 9am" {
		t.Fatalf("label = %q", label)
	}

	rec, env = doJSON(t, h, http.MethodGet, "/api/rooms/2/availability", "")
	data, _ = env.Data.(map[string]any)
	if label, _ := data["label"].(string); label != "free for the day" {
		t.Fatalf("label = %q", label)
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/api/rooms/99/availability", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing room should 404, got %d", rec.Code)
	}
}

func TestHandleFreeNow(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	// 8:10 + 10 minute lead lands in the 8:00-8:30 row; Olin 107 is in class
	rec, env := doJSON(t, h, http.MethodGet, "/api/rooms/freenow", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	got := dataStrings(t, env)
	if !reflect.DeepEqual(got, []string{"Sage 014"}) {
		t.Fatalf("free now = %v", got)
	}
}

func TestHandleSearchWithTimePhrase(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	// "from 3 to 5" reads as afternoon; Olin 107 is free then
	_, env := doJSON(t, h, http.MethodGet, "/api/search?q=olin+from+3+to+5", "")
	got := dataStrings(t, env)
	if !reflect.DeepEqual(got, []string{"Olin 107"}) {
		t.Fatalf("search = %v", got)
	}

	// a bare 8 is above the assume-PM threshold, so this is the Monday
	// morning block Olin 107 spends in class
	_, env = doJSON(t, h, http.MethodGet, "/api/search?q=olin+from+8+to+9", "")
	if got := dataStrings(t, env); len(got) != 0 {
		t.Fatalf("Olin 107 has a Monday 8am class, got %v", got)
	}
}

func TestHandleSearchByAttribute(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	_, env := doJSON(t, h, http.MethodGet, "/api/search?attr=projector", "")
	got := dataStrings(t, env)
	if !reflect.DeepEqual(got, []string{"Olin 107"}) {
		t.Fatalf("attribute search = %v", got)
	}
}

func TestAdminUpsertDisabledWithoutHash(t *testing.T) {
	srv, _ := testServer()
	h := srv.Routes()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/admin/rooms", `{"rooms":[]}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("ingest should be disabled, got %d", rec.Code)
	}
}
