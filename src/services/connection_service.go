package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/careernest/Backend-CareerNest/src/apperr"
	"github.com/careernest/Backend-CareerNest/src/models"
	"github.com/careernest/Backend-CareerNest/src/repositories"
)

// ConnectionService owns the connection request lifecycle. Messaging
// eligibility is decided here: only an accepted connection lets two users
// exchange messages.
type ConnectionService struct {
	connections repositories.ConnectionRepository
	users       repositories.UserRepository
	notifier    *NotificationService
	delivery    Delivery
	logger      *zap.Logger
}

func NewConnectionService(
	connections repositories.ConnectionRepository,
	users repositories.UserRepository,
	notifier *NotificationService,
	delivery Delivery,
	logger *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		users:       users,
		notifier:    notifier,
		delivery:    delivery,
		logger:      logger,
	}
}

// ConnectionEntry is a connection viewed from one side: User is always the
// counterpart of the caller.
type ConnectionEntry struct {
	Id        primitive.ObjectID      `json:"id"`
	User      models.UserDto          `json:"user"`
	Status    models.ConnectionStatus `json:"status"`
	Message   string                  `json:"message,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// ConnectionPage is a paginated listing of connection entries.
type ConnectionPage struct {
	Connections []ConnectionEntry `json:"connections"`
	Count       int64             `json:"count"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	TotalPages  int               `json:"totalPages"`
}

// ConnectionStats aggregates a user's connection records by status.
type ConnectionStats struct {
	Total    int64 `json:"total"`
	Accepted int64 `json:"accepted"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
	Blocked  int64 `json:"blocked"`
}

// Propose sends a connection request. A rejected record between the pair is
// revived in place rather than duplicated; when the proposer is the stored
// receiver the record's direction is flipped.
func (s *ConnectionService) Propose(ctx context.Context, senderID, receiverID primitive.ObjectID, message string) (*models.Connection, error) {
	if senderID == receiverID {
		return nil, apperr.New(apperr.KindSelfReference, "Cannot send connection request to yourself")
	}
	if len(message) > models.MaxConnectionMessageLength {
		return nil, apperr.New(apperr.KindValidation, "Message must not exceed 500 characters")
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, apperr.New(apperr.KindNotFound, "User not found")
	}

	existing, err := s.connections.GetBetweenUsers(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		switch existing.Status {
		case models.ConnectionStatusAccepted:
			return nil, apperr.New(apperr.KindAlreadyConnected, "You are already connected with this user")
		case models.ConnectionStatusPending:
			return nil, apperr.New(apperr.KindDuplicateRequest, "Connection request already sent")
		case models.ConnectionStatusBlocked:
			// Which side blocked is deliberately not disclosed.
			return nil, apperr.New(apperr.KindForbidden, "Cannot send connection request to this user")
		case models.ConnectionStatusRejected:
			revived, err := s.connections.Revive(ctx, existing.Id, senderID, receiverID, message)
			if err != nil {
				return nil, err
			}
			s.notifyConnection(ctx, receiverID, senderID, models.NotificationTypeConnectionRequest, revived)
			return revived, nil
		}
	}

	connection, err := s.connections.Create(ctx, &models.Connection{
		SenderId:   senderID,
		ReceiverId: receiverID,
		Status:     models.ConnectionStatusPending,
		Message:    message,
	})
	if err != nil {
		// The unique pair index lost us the race; report it as a duplicate.
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.New(apperr.KindDuplicateRequest, "Connection request already sent")
		}
		return nil, err
	}

	s.notifyConnection(ctx, receiverID, senderID, models.NotificationTypeConnectionRequest, connection)
	return connection, nil
}

// Accept transitions a pending request to accepted. Only the receiver may
// accept, and only while pending.
func (s *ConnectionService) Accept(ctx context.Context, userID, connectionID primitive.ObjectID) (*models.Connection, error) {
	connection, err := s.pendingFor(ctx, userID, connectionID, "accept")
	if err != nil {
		return nil, err
	}

	updated, err := s.connections.UpdateStatus(ctx, connectionID, models.ConnectionStatusAccepted)
	if err != nil {
		return nil, err
	}

	s.notifyConnection(ctx, connection.SenderId, userID, models.NotificationTypeConnectionAccept, updated)
	return updated, nil
}

// Reject transitions a pending request to rejected. No notification goes out.
func (s *ConnectionService) Reject(ctx context.Context, userID, connectionID primitive.ObjectID) (*models.Connection, error) {
	if _, err := s.pendingFor(ctx, userID, connectionID, "reject"); err != nil {
		return nil, err
	}

	return s.connections.UpdateStatus(ctx, connectionID, models.ConnectionStatusRejected)
}

func (s *ConnectionService) pendingFor(ctx context.Context, userID, connectionID primitive.ObjectID, action string) (*models.Connection, error) {
	connection, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if connection == nil {
		return nil, apperr.New(apperr.KindNotFound, "Connection request not found")
	}
	if connection.ReceiverId != userID {
		return nil, apperr.New(apperr.KindForbidden, fmt.Sprintf("You are not authorized to %s this connection request", action))
	}
	if connection.Status != models.ConnectionStatusPending {
		return nil, apperr.New(apperr.KindInvalidState, fmt.Sprintf("Cannot %s connection with status: %s", action, connection.Status))
	}
	return connection, nil
}

// Remove deletes an accepted connection entirely. Either party may do it.
func (s *ConnectionService) Remove(ctx context.Context, userID, connectionID primitive.ObjectID) error {
	connection, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if connection == nil {
		return apperr.New(apperr.KindNotFound, "Connection not found")
	}
	if !connection.Involves(userID) {
		return apperr.New(apperr.KindForbidden, "You are not authorized to remove this connection")
	}
	if connection.Status != models.ConnectionStatusAccepted {
		return apperr.New(apperr.KindInvalidState, "Can only remove accepted connections")
	}

	return s.connections.Delete(ctx, connection.Id)
}

// Block marks the pair blocked, overwriting any prior state. Blocking never
// changes the stored direction of an existing record.
func (s *ConnectionService) Block(ctx context.Context, userID, targetUserID primitive.ObjectID) (*models.Connection, error) {
	if userID == targetUserID {
		return nil, apperr.New(apperr.KindSelfReference, "Cannot block yourself")
	}

	existing, err := s.connections.GetBetweenUsers(ctx, userID, targetUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.connections.UpdateStatus(ctx, existing.Id, models.ConnectionStatusBlocked)
	}

	connection, err := s.connections.Create(ctx, &models.Connection{
		SenderId:   userID,
		ReceiverId: targetUserID,
		Status:     models.ConnectionStatusBlocked,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A record appeared concurrently; block it instead.
			existing, lookupErr := s.connections.GetBetweenUsers(ctx, userID, targetUserID)
			if lookupErr == nil && existing != nil {
				return s.connections.UpdateStatus(ctx, existing.Id, models.ConnectionStatusBlocked)
			}
		}
		return nil, err
	}
	return connection, nil
}

// Unblock deletes a blocked record. Only the user who blocked may unblock,
// and the prior relationship is not restored.
func (s *ConnectionService) Unblock(ctx context.Context, userID, connectionID primitive.ObjectID) error {
	connection, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if connection == nil {
		return apperr.New(apperr.KindNotFound, "Connection not found")
	}
	if connection.SenderId != userID {
		return apperr.New(apperr.KindForbidden, "You are not authorized to unblock this user")
	}
	if connection.Status != models.ConnectionStatusBlocked {
		return apperr.New(apperr.KindInvalidState, "User is not blocked")
	}

	return s.connections.Delete(ctx, connection.Id)
}

// ListConnections returns the caller's accepted connections with the
// counterpart user populated.
func (s *ConnectionService) ListConnections(ctx context.Context, userID primitive.ObjectID, page, limit int) (*ConnectionPage, error) {
	page, limit = normalizePage(page, limit, 50)

	connections, err := s.connections.ListByUser(ctx, userID, models.ConnectionStatusAccepted, page, limit)
	if err != nil {
		return nil, err
	}

	entries, err := s.entriesFor(ctx, userID, connections)
	if err != nil {
		return nil, err
	}

	count, err := s.connections.CountByUser(ctx, userID, models.ConnectionStatusAccepted)
	if err != nil {
		return nil, err
	}

	return &ConnectionPage{
		Connections: entries,
		Count:       count,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages(count, limit),
	}, nil
}

// ListPending returns requests waiting on the caller's decision.
func (s *ConnectionService) ListPending(ctx context.Context, userID primitive.ObjectID, page, limit int) (*ConnectionPage, error) {
	page, limit = normalizePage(page, limit, 20)

	connections, err := s.connections.ListByReceiver(ctx, userID, models.ConnectionStatusPending, page, limit)
	if err != nil {
		return nil, err
	}

	entries, err := s.entriesFor(ctx, userID, connections)
	if err != nil {
		return nil, err
	}

	count, err := s.connections.CountByReceiver(ctx, userID, models.ConnectionStatusPending)
	if err != nil {
		return nil, err
	}

	return &ConnectionPage{Connections: entries, Count: count, Page: page, Limit: limit, TotalPages: totalPages(count, limit)}, nil
}

// ListSent returns requests the caller has sent that are still pending.
func (s *ConnectionService) ListSent(ctx context.Context, userID primitive.ObjectID, page, limit int) (*ConnectionPage, error) {
	return s.listBySender(ctx, userID, models.ConnectionStatusPending, page, limit)
}

// ListBlocked returns the users the caller has blocked.
func (s *ConnectionService) ListBlocked(ctx context.Context, userID primitive.ObjectID, page, limit int) (*ConnectionPage, error) {
	return s.listBySender(ctx, userID, models.ConnectionStatusBlocked, page, limit)
}

func (s *ConnectionService) listBySender(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, page, limit int) (*ConnectionPage, error) {
	page, limit = normalizePage(page, limit, 20)

	connections, err := s.connections.ListBySender(ctx, userID, status, page, limit)
	if err != nil {
		return nil, err
	}

	entries, err := s.entriesFor(ctx, userID, connections)
	if err != nil {
		return nil, err
	}

	count, err := s.connections.CountBySender(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	return &ConnectionPage{Connections: entries, Count: count, Page: page, Limit: limit, TotalPages: totalPages(count, limit)}, nil
}

func (s *ConnectionService) entriesFor(ctx context.Context, userID primitive.ObjectID, connections []models.Connection) ([]ConnectionEntry, error) {
	entries := make([]ConnectionEntry, 0, len(connections))
	for _, conn := range connections {
		other, err := s.users.GetByID(ctx, conn.OtherParty(userID))
		if err != nil {
			return nil, err
		}
		if other == nil {
			// The counterpart account is gone; skip the row.
			continue
		}
		entries = append(entries, ConnectionEntry{
			Id:        conn.Id,
			User:      other.Dto(),
			Status:    conn.Status,
			Message:   conn.Message,
			CreatedAt: conn.CreatedAt,
			UpdatedAt: conn.UpdatedAt,
		})
	}
	return entries, nil
}

// Stats aggregates the caller's connection records by status.
func (s *ConnectionService) Stats(ctx context.Context, userID primitive.ObjectID) (*ConnectionStats, error) {
	byStatus, err := s.connections.StatsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &ConnectionStats{
		Accepted: byStatus[models.ConnectionStatusAccepted],
		Pending:  byStatus[models.ConnectionStatusPending],
		Rejected: byStatus[models.ConnectionStatusRejected],
		Blocked:  byStatus[models.ConnectionStatusBlocked],
	}
	stats.Total = stats.Accepted
	return stats, nil
}

// IsConnected reports whether an accepted connection exists for the pair.
// The messaging engine uses this as its send gate.
func (s *ConnectionService) IsConnected(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	connection, err := s.connections.GetBetweenUsers(ctx, a, b)
	if err != nil {
		return false, err
	}
	return connection != nil && connection.Status == models.ConnectionStatusAccepted, nil
}

// notifyConnection records a notification for a connection event and mirrors
// it to any live session. Failures here never fail the primary operation.
func (s *ConnectionService) notifyConnection(ctx context.Context, recipientID, actorID primitive.ObjectID, typ models.NotificationType, connection *models.Connection) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil || actor == nil {
		s.logger.Warn("skipping connection notification, actor lookup failed",
			zap.String("actorId", actorID.Hex()), zap.Error(err))
		return
	}

	var title, message string
	switch typ {
	case models.NotificationTypeConnectionRequest:
		title = "New Connection Request"
		message = fmt.Sprintf("%s sent you a connection request", actor.Name)
	case models.NotificationTypeConnectionAccept:
		title = "Connection Accepted"
		message = fmt.Sprintf("%s accepted your connection request", actor.Name)
	}

	notification, err := s.notifier.Record(ctx, recipientID, typ, title, message, connection.Id)
	if err != nil {
		s.logger.Warn("failed to record connection notification",
			zap.String("userId", recipientID.Hex()), zap.Error(err))
		return
	}

	s.delivery.PushToUser(recipientID.Hex(), EventNotification, map[string]any{
		"type":         typ,
		"notification": notification,
		"connection":   connection,
	})
}
