package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/careernest/Backend-CareerNest/src/apperr"
	"github.com/careernest/Backend-CareerNest/src/lib"
	"github.com/careernest/Backend-CareerNest/src/services"
)

// Inbound events accepted over the socket.
const (
	eventJoinConversation      = "join_conversation"
	eventLeaveConversation     = "leave_conversation"
	eventSendMessage           = "send_message"
	eventTypingStart           = "typing_start"
	eventTypingStop            = "typing_stop"
	eventMarkRead              = "mark_read"
	eventCheckOnline           = "check_online"
	eventSendConnectionRequest = "send_connection_request"
	eventAcceptConnection      = "accept_connection"
	eventGetUnreadCount        = "get_unread_count"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler owns the websocket endpoint: handshake auth, the per-session read
// loop and the dispatch of inbound events to the engines.
type Handler struct {
	hub           *Hub
	messages      *services.MessageService
	notifications *services.NotificationService
	jwtSecret     string
	logger        *zap.Logger
}

func NewHandler(hub *Hub, messages *services.MessageService, notifications *services.NotificationService, jwtSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		hub:           hub,
		messages:      messages,
		notifications: notifications,
		jwtSecret:     jwtSecret,
		logger:        logger,
	}
}

// Upgrade authenticates the handshake before the protocol switch. The token
// comes from the token query parameter or an Authorization bearer header.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		header := c.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Authentication token required",
		})
	}

	claims, err := lib.VerifyJWT(token, h.jwtSecret)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid or expired token",
		})
	}

	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid token payload",
		})
	}

	c.Locals("userId", userID)
	return c.Next()
}

// Serve returns the websocket handler running the session read loop.
func (h *Handler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userId").(string)
		if userID == "" {
			conn.Close()
			return
		}

		session := NewSession(userID, conn)
		h.hub.Register(session)
		defer h.hub.Unregister(session)

		for {
			var frame inboundFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			h.dispatch(session, frame)
		}
	})
}

func (h *Handler) dispatch(session *Session, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch frame.Event {
	case eventJoinConversation:
		var data struct {
			ConversationId string `json:"conversationId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.ConversationId == "" {
			return
		}
		h.hub.JoinRoom(session, "conversation:"+data.ConversationId)

	case eventLeaveConversation:
		var data struct {
			ConversationId string `json:"conversationId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.ConversationId == "" {
			return
		}
		h.hub.LeaveRoom(session, "conversation:"+data.ConversationId)

	case eventSendMessage:
		h.handleSendMessage(ctx, session, frame.Data)

	case eventTypingStart, eventTypingStop:
		var data struct {
			ReceiverId string `json:"receiverId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.ReceiverId == "" {
			return
		}
		h.hub.PushToUser(data.ReceiverId, services.EventUserTyping, map[string]any{
			"userId":   session.UserID,
			"isTyping": frame.Event == eventTypingStart,
		})

	case eventMarkRead:
		var data struct {
			MessageId string `json:"messageId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			return
		}
		userID, messageID, err := parseIDs(session.UserID, data.MessageId)
		if err != nil {
			return
		}
		if _, err := h.messages.MarkRead(ctx, userID, messageID); err != nil {
			h.logger.Debug("socket mark_read rejected",
				zap.String("userId", session.UserID), zap.Error(err))
		}

	case eventCheckOnline:
		var data struct {
			UserId string `json:"userId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.UserId == "" {
			return
		}
		h.reply(session, services.EventUserOnlineStatus, map[string]any{
			"userId":   data.UserId,
			"isOnline": h.hub.IsOnline(data.UserId),
		})

	case eventSendConnectionRequest:
		var data struct {
			ReceiverId string `json:"receiverId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.ReceiverId == "" {
			return
		}
		h.hub.PushToUser(data.ReceiverId, "connection_request", map[string]any{
			"senderId":  session.UserID,
			"timestamp": time.Now().UTC(),
		})

	case eventAcceptConnection:
		var data struct {
			SenderId string `json:"senderId"`
		}
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.SenderId == "" {
			return
		}
		h.hub.PushToUser(data.SenderId, "connection_accepted", map[string]any{
			"acceptedBy": session.UserID,
			"timestamp":  time.Now().UTC(),
		})

	case eventGetUnreadCount:
		userID, err := primitive.ObjectIDFromHex(session.UserID)
		if err != nil {
			return
		}
		count, err := h.notifications.UnreadCount(ctx, userID)
		if err != nil {
			h.logger.Warn("socket unread count failed",
				zap.String("userId", session.UserID), zap.Error(err))
			return
		}
		h.reply(session, "unread_count", map[string]any{"count": count})

	default:
		h.logger.Debug("unknown socket event",
			zap.String("userId", session.UserID), zap.String("event", frame.Event))
	}
}

func (h *Handler) handleSendMessage(ctx context.Context, session *Session, raw json.RawMessage) {
	var data struct {
		ReceiverId       string `json:"receiverId"`
		Text             string `json:"text"`
		AttachmentFileId string `json:"attachmentFileId"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		h.replyError(session, "Invalid message payload")
		return
	}

	senderID, receiverID, err := parseIDs(session.UserID, data.ReceiverId)
	if err != nil {
		h.replyError(session, "Invalid receiver id")
		return
	}

	var attachmentID primitive.ObjectID
	if data.AttachmentFileId != "" {
		attachmentID, err = primitive.ObjectIDFromHex(data.AttachmentFileId)
		if err != nil {
			h.replyError(session, "Invalid attachment id")
			return
		}
	}

	if _, err := h.messages.Send(ctx, senderID, receiverID, data.Text, attachmentID); err != nil {
		h.replyServiceError(session, err)
	}
}

func (h *Handler) reply(session *Session, event string, payload any) {
	if err := session.Send(event, payload); err != nil {
		h.logger.Warn("socket reply failed",
			zap.String("userId", session.UserID), zap.Error(err))
	}
}

func (h *Handler) replyError(session *Session, message string) {
	h.reply(session, "message_error", map[string]any{"message": message})
}

// replyServiceError mirrors the HTTP boundary's error rendering: known kinds
// expose message and code, anything else becomes an opaque server error.
func (h *Handler) replyServiceError(session *Session, err error) {
	if apperr.HTTPStatus(err) == fiber.StatusInternalServerError {
		h.logger.Error("socket send_message failed",
			zap.String("userId", session.UserID), zap.Error(err))
		h.replyError(session, "Server error")
		return
	}

	payload := map[string]any{"message": err.Error()}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Code != "" {
		payload["code"] = appErr.Code
	}
	h.reply(session, "message_error", payload)
}

func parseIDs(a, b string) (primitive.ObjectID, primitive.ObjectID, error) {
	first, err := primitive.ObjectIDFromHex(a)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	second, err := primitive.ObjectIDFromHex(b)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return first, second, nil
}
