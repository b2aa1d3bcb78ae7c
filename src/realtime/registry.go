package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is the subset of a websocket connection the registry needs. Kept
// minimal so tests can supply a fake.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Envelope is the wire frame for every outbound event.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Session is one live websocket for one user. A user may hold several
// sessions at once (multiple tabs, multiple devices).
type Session struct {
	ID     string
	UserID string

	conn Conn
	mu   sync.Mutex
}

func NewSession(userID string, conn Conn) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
	}
}

// Send writes one framed event to the session. Writes are serialized
// because fasthttp websocket connections do not allow concurrent writers.
func (s *Session) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(Envelope{Event: event, Data: payload})
}

func (s *Session) Close() error {
	return s.conn.Close()
}

// Registry tracks which users currently hold live sessions. It is process
// local; presence answers only cover sessions attached to this instance.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Session // userID -> sessionID -> session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]map[string]*Session)}
}

// Add registers a session and reports whether it is the user's first one,
// which is the moment the user transitions to online.
func (r *Registry) Add(session *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	userSessions, ok := r.sessions[session.UserID]
	if !ok {
		userSessions = make(map[string]*Session)
		r.sessions[session.UserID] = userSessions
	}
	userSessions[session.ID] = session
	return len(userSessions) == 1
}

// Remove drops a session and reports whether it was the user's last one,
// which is the moment the user transitions to offline.
func (r *Registry) Remove(session *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	userSessions, ok := r.sessions[session.UserID]
	if !ok {
		return false
	}
	if _, ok := userSessions[session.ID]; !ok {
		return false
	}
	delete(userSessions, session.ID)
	if len(userSessions) == 0 {
		delete(r.sessions, session.UserID)
		return true
	}
	return false
}

// SessionsFor returns a snapshot of the user's live sessions.
func (r *Registry) SessionsFor(userID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userSessions := r.sessions[userID]
	if len(userSessions) == 0 {
		return nil
	}
	out := make([]*Session, 0, len(userSessions))
	for _, s := range userSessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID]) > 0
}

// OnlineUsers returns the ids of every user with at least one session.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		out = append(out, userID)
	}
	return out
}
