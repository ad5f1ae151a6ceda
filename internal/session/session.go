// Package session ties the interactive Query to a browser. The cookie holds
// only a securecookie-sealed session id; the query itself lives in redis
// under that id, so the cookie stays small and the query survives server
// restarts.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"

	"github.com/example/room-finder/internal/schedule"
)

const (
	cookieName = "roomfind_session"
	cookieAge  = 14 * 24 * time.Hour
)

type Store struct {
	sc  *securecookie.SecureCookie
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(cookieAge.Seconds()))
	return &Store{sc: sc, rdb: rdb, ttl: cookieAge}
}

// Establish returns the request's session id, minting and setting a cookie
// when none exists or the existing one does not decode.
func (s *Store) Establish(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := s.sessionID(r); ok {
		return id, nil
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	id := hex.EncodeToString(raw)

	encoded, err := s.sc.Encode(cookieName, id)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(cookieAge.Seconds()),
	})
	return id, nil
}

func (s *Store) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	var id string
	if err := s.sc.Decode(cookieName, c.Value, &id); err != nil {
		return "", false
	}
	return id, id != ""
}

func queryKey(id string) string { return "query:" + id }

// Query loads the session's current query. A missing key is a fresh, empty
// query, not an error.
func (s *Store) Query(ctx context.Context, id string) (schedule.Query, error) {
	b, err := s.rdb.Get(ctx, queryKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return schedule.Query{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session query: %w", err)
	}

	var q schedule.Query
	if err := json.Unmarshal(b, &q); err != nil {
		return nil, fmt.Errorf("session query decode: %w", err)
	}
	return q, nil
}

// SaveQuery persists the query, refreshing its TTL alongside the cookie's.
func (s *Store) SaveQuery(ctx context.Context, id string, q schedule.Query) error {
	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("session query encode: %w", err)
	}
	if err := s.rdb.Set(ctx, queryKey(id), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("session query save: %w", err)
	}
	return nil
}

// ClearQuery drops the session's query.
func (s *Store) ClearQuery(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, queryKey(id)).Err()
}
