package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/careernest/Backend-CareerNest/src/services"
)

// Hub fans events out to live sessions. It implements services.Delivery so
// the engines can push without knowing about websockets.
type Hub struct {
	registry *Registry
	logger   *zap.Logger

	mu    sync.RWMutex
	rooms map[string]map[*Session]struct{}
}

func NewHub(registry *Registry, logger *zap.Logger) *Hub {
	return &Hub{
		registry: registry,
		logger:   logger,
		rooms:    make(map[string]map[*Session]struct{}),
	}
}

// userRoom is the personal room every session joins on connect.
func userRoom(userID string) string {
	return "user:" + userID
}

// Register attaches a session. The session joins its personal room and, if
// it is the user's first, the rest of the world learns the user came online.
func (h *Hub) Register(session *Session) {
	first := h.registry.Add(session)
	h.JoinRoom(session, userRoom(session.UserID))

	h.logger.Info("socket connected",
		zap.String("userId", session.UserID),
		zap.String("sessionId", session.ID))

	if first {
		h.broadcastExcept(session.UserID, services.EventUserOnline, map[string]any{
			"userId": session.UserID,
		})
	}
}

// Unregister detaches a session from every room and, if it was the user's
// last, announces the user went offline.
func (h *Hub) Unregister(session *Session) {
	h.mu.Lock()
	for room, members := range h.rooms {
		delete(members, session)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	last := h.registry.Remove(session)

	h.logger.Info("socket disconnected",
		zap.String("userId", session.UserID),
		zap.String("sessionId", session.ID))

	if last {
		h.broadcastExcept(session.UserID, services.EventUserOffline, map[string]any{
			"userId": session.UserID,
		})
	}
}

func (h *Hub) JoinRoom(session *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[session] = struct{}{}
}

func (h *Hub) LeaveRoom(session *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, session)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// PushToUser delivers an event to every live session of a user. Nothing
// happens when the user is offline.
func (h *Hub) PushToUser(userID string, event string, payload any) {
	for _, session := range h.registry.SessionsFor(userID) {
		h.send(session, event, payload)
	}
}

// PushToRoom delivers an event to every session in a room.
func (h *Hub) PushToRoom(room string, event string, payload any) {
	h.mu.RLock()
	members := make([]*Session, 0, len(h.rooms[room]))
	for session := range h.rooms[room] {
		members = append(members, session)
	}
	h.mu.RUnlock()

	for _, session := range members {
		h.send(session, event, payload)
	}
}

func (h *Hub) IsOnline(userID string) bool {
	return h.registry.IsOnline(userID)
}

// broadcastExcept sends to every online user except the named one.
func (h *Hub) broadcastExcept(exceptUserID string, event string, payload any) {
	for _, userID := range h.registry.OnlineUsers() {
		if userID == exceptUserID {
			continue
		}
		h.PushToUser(userID, event, payload)
	}
}

func (h *Hub) send(session *Session, event string, payload any) {
	if err := session.Send(event, payload); err != nil {
		h.logger.Warn("socket write failed",
			zap.String("userId", session.UserID),
			zap.String("sessionId", session.ID),
			zap.String("event", event),
			zap.Error(err))
	}
}
