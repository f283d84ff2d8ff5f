package app

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/klabast/wb-services/time-travel/internal/selection"
)

type session struct {
	selections *selection.Set
	lastSeen   time.Time
}

// SessionStore keeps one selection set per browser session, in memory only
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	maxAge   time.Duration
	now      func() time.Time
}

// NewSessionStore returns a store that forgets sessions idle for maxAge
func NewSessionStore(maxAge time.Duration, now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[uuid.UUID]*session),
		maxAge:   maxAge,
		now:      now,
	}
}

// Lookup returns the selection set of the request's session. Requests
// without a live session get an empty set that is not stored.
func (st *SessionStore) Lookup(r *http.Request) *selection.Set {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.session(r); ok {
		s.lastSeen = st.now()
		return s.selections
	}
	return selection.NewSet()
}

// Selections returns the selection set of the request's session, starting
// a new session (and setting its cookie) when there is none
func (st *SessionStore) Selections(w http.ResponseWriter, r *http.Request) (*selection.Set, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if s, ok := st.session(r); ok {
		s.lastSeen = now
		return s.selections, nil
	}

	st.prune(now)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	s := &session{selections: selection.NewSet(), lastSeen: now}
	st.sessions[id] = s

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int(st.maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s.selections, nil
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// session finds the live session named by the request cookie; caller must
// hold st.mu
func (st *SessionStore) session(r *http.Request) (*session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return nil, false
	}
	s, ok := st.sessions[id]
	return s, ok
}

// prune drops idle sessions; caller must hold st.mu
func (st *SessionStore) prune(now time.Time) {
	if st.maxAge <= 0 {
		return
	}
	for id, s := range st.sessions {
		if now.Sub(s.lastSeen) > st.maxAge {
			delete(st.sessions, id)
		}
	}
}
