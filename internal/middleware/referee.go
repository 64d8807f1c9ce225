package middleware

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
)

type ContextKey string

const RefereeKey ContextKey = "referee"

const (
	lastRefereeKey   = "referee:last"
	courtRefereeKeys = "referee:court:"
)

// RefereeSession remembers the referee names used from one console, per
// court, so the console can pre-fill them.
type RefereeSession struct {
	sessions *scs.SessionManager
}

func NewRefereeSession(sessions *scs.SessionManager) *RefereeSession {
	return &RefereeSession{sessions: sessions}
}

func (s *RefereeSession) Remember(ctx context.Context, court int, name string) {
	s.sessions.Put(ctx, courtRefereeKeys+strconv.Itoa(court), name)
	s.sessions.Put(ctx, lastRefereeKey, name)
}

type CourtReferee struct {
	Court   int    `json:"court"`
	Referee string `json:"referee"`
}

// Remembered returns the stored referees ordered by court.
func (s *RefereeSession) Remembered(ctx context.Context) []CourtReferee {
	out := make([]CourtReferee, 0)
	for _, key := range s.sessions.Keys(ctx) {
		raw, ok := strings.CutPrefix(key, courtRefereeKeys)
		if !ok {
			continue
		}
		court, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		out = append(out, CourtReferee{Court: court, Referee: s.sessions.GetString(ctx, key)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Court < out[j].Court })
	return out
}

// LoadReferee puts the last referee name used from this console into the
// request context.
func (s *RefereeSession) LoadReferee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := s.sessions.GetString(r.Context(), lastRefereeKey)
		if name == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), RefereeKey, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRefereeFromContext(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(RefereeKey).(string)
	return val, ok && val != ""
}
