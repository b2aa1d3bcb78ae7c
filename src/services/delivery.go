package services

// Delivery is the real-time push port. Engines call it after the durable
// write succeeds; if no session is connected the push is a silent no-op, so
// callers must never depend on delivery happening.
type Delivery interface {
	PushToUser(userID string, event string, payload any)
	PushToRoom(room string, event string, payload any)
	IsOnline(userID string) bool
}

// Outbound event names shared by the engines and the socket layer.
const (
	EventNewMessage       = "new_message"
	EventMessageSent      = "message_sent"
	EventMessageRead      = "message_read"
	EventMessagesRead     = "messages_read"
	EventMessageDeleted   = "message_deleted"
	EventUserTyping       = "user_typing"
	EventUserOnline       = "user_online"
	EventUserOffline      = "user_offline"
	EventUserOnlineStatus = "user_online_status"
	EventNotification     = "notification"
)

// NopDelivery satisfies Delivery and drops everything. Useful when the
// real-time layer is disabled.
type NopDelivery struct{}

func (NopDelivery) PushToUser(string, string, any) {}
func (NopDelivery) PushToRoom(string, string, any) {}
func (NopDelivery) IsOnline(string) bool           { return false }
