package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/careernest/Backend-CareerNest/src/apperr"
	"github.com/careernest/Backend-CareerNest/src/models"
	"github.com/careernest/Backend-CareerNest/src/repositories"
)

// MessageService implements the messaging engine. Every send is gated on an
// accepted connection; the durable write always happens before any push.
type MessageService struct {
	messages    repositories.MessageRepository
	connections repositories.ConnectionRepository
	users       repositories.UserRepository
	notifier    *NotificationService
	delivery    Delivery
	logger      *zap.Logger
}

func NewMessageService(
	messages repositories.MessageRepository,
	connections repositories.ConnectionRepository,
	users repositories.UserRepository,
	notifier *NotificationService,
	delivery Delivery,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messages:    messages,
		connections: connections,
		users:       users,
		notifier:    notifier,
		delivery:    delivery,
		logger:      logger,
	}
}

// LastMessage is the preview of the newest message in a conversation.
type LastMessage struct {
	Text      string             `json:"text"`
	SenderId  primitive.ObjectID `json:"senderId"`
	CreatedAt time.Time          `json:"createdAt"`
	IsRead    bool               `json:"isRead"`
}

// ConversationSummary is one row of the conversations listing: the
// counterpart, the newest message and how many are still unread.
type ConversationSummary struct {
	UserId       primitive.ObjectID `json:"userId"`
	User         models.UserDto     `json:"user"`
	LastMessage  *LastMessage       `json:"lastMessage"`
	UnreadCount  int64              `json:"unreadCount"`
	LastActivity *time.Time         `json:"lastActivity"`
}

// ConversationPage is a paginated conversations listing.
type ConversationPage struct {
	Conversations []ConversationSummary `json:"conversations"`
	Count         int                   `json:"count"`
	TotalCount    int                   `json:"totalCount"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	TotalPages    int                   `json:"totalPages"`
}

// MessagePage is a paginated message listing, newest first.
type MessagePage struct {
	Messages   []models.Message `json:"messages"`
	Count      int              `json:"count"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// Send persists a message to a connected user and mirrors it to live
// sessions: the receiver gets new_message, the sender's other devices get
// message_sent.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID primitive.ObjectID, text string, attachmentID primitive.ObjectID) (*models.Message, error) {
	if senderID == receiverID {
		return nil, apperr.New(apperr.KindSelfReference, "Cannot send message to yourself")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.KindValidation, "Message content is required")
	}
	if len(text) > models.MaxMessageLength {
		return nil, apperr.New(apperr.KindValidation, "Message content must not exceed 5000 characters")
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, apperr.New(apperr.KindNotFound, "Receiver not found")
	}

	if err := s.requireConnected(ctx, senderID, receiverID, "You must be connected to send messages"); err != nil {
		return nil, err
	}

	message, err := s.messages.Create(ctx, &models.Message{
		SenderId:         senderID,
		ReceiverId:       receiverID,
		Text:             text,
		AttachmentFileId: attachmentID,
		IsRead:           false,
	})
	if err != nil {
		return nil, err
	}

	s.recordMessageNotification(ctx, senderID, receiverID, message)

	s.delivery.PushToUser(receiverID.Hex(), EventNewMessage, map[string]any{"message": message})
	s.delivery.PushToUser(senderID.Hex(), EventMessageSent, map[string]any{"message": message})

	return message, nil
}

// Conversations derives one summary per connected counterpart: last message
// plus unread count, sorted by most recent activity. Pagination happens
// after the full in-memory sort, which is fine at this scale.
func (s *MessageService) Conversations(ctx context.Context, userID primitive.ObjectID, page, limit int) (*ConversationPage, error) {
	page, limit = normalizePage(page, limit, 20)

	connections, err := s.connections.ListByUser(ctx, userID, models.ConnectionStatusAccepted, 1, 1000)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(connections))
	for _, conn := range connections {
		otherID := conn.OtherParty(userID)

		other, err := s.users.GetByID(ctx, otherID)
		if err != nil {
			return nil, err
		}
		if other == nil {
			continue
		}

		last, err := s.messages.LastBetweenUsers(ctx, userID, otherID)
		if err != nil {
			return nil, err
		}

		unread, err := s.messages.CountUnreadFrom(ctx, userID, otherID)
		if err != nil {
			return nil, err
		}

		summary := ConversationSummary{
			UserId:      otherID,
			User:        other.Dto(),
			UnreadCount: unread,
		}
		if last != nil {
			summary.LastMessage = &LastMessage{
				Text:      last.Text,
				SenderId:  last.SenderId,
				CreatedAt: last.CreatedAt,
				IsRead:    last.IsRead,
			}
			createdAt := last.CreatedAt
			summary.LastActivity = &createdAt
		}
		summaries = append(summaries, summary)
	}

	// Most recent first; conversations without messages sink to the end.
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastActivity, summaries[j].LastActivity
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})

	total := len(summaries)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageItems := summaries[start:end]

	return &ConversationPage{
		Conversations: pageItems,
		Count:         len(pageItems),
		TotalCount:    total,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages(int64(total), limit),
	}, nil
}

// Thread returns a page of the conversation with another user, newest
// first. Fetching marks the caller's unread messages in the page as read
// and sends the counterpart a single batched messages_read receipt.
func (s *MessageService) Thread(ctx context.Context, userID, otherUserID primitive.ObjectID, page, limit int) (*MessagePage, error) {
	if err := s.requireConnected(ctx, userID, otherUserID, "You must be connected to view messages"); err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit, 50)

	messages, err := s.messages.ListBetweenUsers(ctx, userID, otherUserID, page, limit)
	if err != nil {
		return nil, err
	}

	var unreadIDs []primitive.ObjectID
	for i := range messages {
		if messages[i].ReceiverId == userID && !messages[i].IsRead {
			unreadIDs = append(unreadIDs, messages[i].Id)
			messages[i].IsRead = true
		}
	}

	if len(unreadIDs) > 0 {
		if _, err := s.messages.MarkManyRead(ctx, unreadIDs); err != nil {
			return nil, err
		}
		s.delivery.PushToUser(otherUserID.Hex(), EventMessagesRead, map[string]any{
			"messageIds": unreadIDs,
			"readBy":     userID.Hex(),
		})
	}

	totalCount, err := s.messages.CountBetweenUsers(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}

	return &MessagePage{
		Messages:   messages,
		Count:      len(messages),
		TotalCount: totalCount,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(totalCount, limit),
	}, nil
}

// MarkRead flips one message to read. Only the receiver may do it, and
// repeating it is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID primitive.ObjectID) (*models.Message, error) {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, apperr.New(apperr.KindNotFound, "Message not found")
	}
	if message.ReceiverId != userID {
		return nil, apperr.New(apperr.KindForbidden, "You are not authorized to mark this message as read")
	}
	if message.IsRead {
		return message, nil
	}

	updated, err := s.messages.MarkRead(ctx, messageID)
	if err != nil {
		return nil, err
	}

	s.delivery.PushToUser(message.SenderId.Hex(), EventMessageRead, map[string]any{
		"messageId": updated.Id,
		"readBy":    userID.Hex(),
		"readAt":    updated.UpdatedAt,
	})
	return updated, nil
}

// MarkAllRead flips every unread message from the given sender and sends one
// aggregated receipt.
func (s *MessageService) MarkAllRead(ctx context.Context, userID, senderID primitive.ObjectID) (int64, error) {
	if err := s.requireConnected(ctx, userID, senderID, "Not connected with this user"); err != nil {
		return 0, err
	}

	modified, err := s.messages.MarkAllRead(ctx, userID, senderID)
	if err != nil {
		return 0, err
	}

	if modified > 0 {
		s.delivery.PushToUser(senderID.Hex(), EventMessagesRead, map[string]any{
			"readBy":           userID.Hex(),
			"conversationWith": userID.Hex(),
		})
	}
	return modified, nil
}

// Delete removes a message. Only its sender may delete it.
func (s *MessageService) Delete(ctx context.Context, userID, messageID primitive.ObjectID) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return apperr.New(apperr.KindNotFound, "Message not found")
	}
	if message.SenderId != userID {
		return apperr.New(apperr.KindForbidden, "You can only delete your own messages")
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}

	s.delivery.PushToUser(message.ReceiverId.Hex(), EventMessageDeleted, map[string]any{
		"messageId":        messageID.Hex(),
		"conversationWith": userID.Hex(),
	})
	return nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.messages.CountUnread(ctx, userID)
}

// Search runs a content search over the caller's messages.
func (s *MessageService) Search(ctx context.Context, userID primitive.ObjectID, query string, page, limit int) (*MessagePage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.KindValidation, "Search text is required")
	}

	page, limit = normalizePage(page, limit, 20)

	messages, err := s.messages.Search(ctx, userID, query, page, limit)
	if err != nil {
		return nil, err
	}

	return &MessagePage{
		Messages: messages,
		Count:    len(messages),
		Page:     page,
		Limit:    limit,
	}, nil
}

func (s *MessageService) requireConnected(ctx context.Context, a, b primitive.ObjectID, message string) error {
	connection, err := s.connections.GetBetweenUsers(ctx, a, b)
	if err != nil {
		return err
	}
	if connection == nil || connection.Status != models.ConnectionStatusAccepted {
		return apperr.NewWithCode(apperr.KindForbidden, apperr.CodeNotConnected, message)
	}
	return nil
}

// recordMessageNotification is best-effort; a failed notification write
// never fails the send.
func (s *MessageService) recordMessageNotification(ctx context.Context, senderID, receiverID primitive.ObjectID, message *models.Message) {
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil || sender == nil {
		s.logger.Warn("skipping message notification, sender lookup failed",
			zap.String("senderId", senderID.Hex()), zap.Error(err))
		return
	}

	_, err = s.notifier.Record(ctx, receiverID, models.NotificationTypeNewMessage,
		"New Message", fmt.Sprintf("%s sent you a message", sender.Name), message.Id)
	if err != nil {
		s.logger.Warn("failed to record message notification",
			zap.String("userId", receiverID.Hex()), zap.Error(err))
	}
}
