package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/careernest/Backend-CareerNest/src/apperr"
	"github.com/careernest/Backend-CareerNest/src/models"
	"github.com/careernest/Backend-CareerNest/src/repositories"
)

// NotificationService records and manages per-user notifications. It never
// pushes in real time itself; callers decide whether to push the record it
// returns.
type NotificationService struct {
	notifications repositories.NotificationRepository
	logger        *zap.Logger
}

func NewNotificationService(notifications repositories.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// NotificationPage is a paginated notification listing.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Count         int                   `json:"count"`
	TotalCount    int64                 `json:"totalCount"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	TotalPages    int                   `json:"totalPages"`
}

// NotificationStats aggregates counts per notification type.
type NotificationStats struct {
	Total  int64                             `json:"total"`
	Unread int64                             `json:"unread"`
	ByType map[models.NotificationType]Stats `json:"byType"`
}

type Stats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// Record creates a notification. Validation stops at required fields; it is
// the caller's job to decide whether the event merits one.
func (s *NotificationService) Record(ctx context.Context, userID primitive.ObjectID, typ models.NotificationType, title, message string, relatedID primitive.ObjectID) (*models.Notification, error) {
	if userID.IsZero() {
		return nil, apperr.New(apperr.KindValidation, "Notification recipient is required")
	}
	if typ == "" {
		return nil, apperr.New(apperr.KindValidation, "Notification type is required")
	}

	notification := &models.Notification{
		UserId:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedId: relatedID,
		IsRead:    false,
	}

	return s.notifications.Create(ctx, notification)
}

func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, filter repositories.NotificationFilter, page, limit int) (*NotificationPage, error) {
	page, limit = normalizePage(page, limit, 20)

	notifications, err := s.notifications.ListByUser(ctx, userID, filter, page, limit)
	if err != nil {
		return nil, err
	}

	totalCount, err := s.notifications.CountByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &NotificationPage{
		Notifications: notifications,
		Count:         len(notifications),
		TotalCount:    totalCount,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages(totalCount, limit),
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

// MarkRead flips a notification to read. Idempotent for already-read ones.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) (*models.Notification, error) {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, apperr.New(apperr.KindNotFound, "Notification not found")
	}
	if notification.UserId != userID {
		return nil, apperr.New(apperr.KindForbidden, "You are not authorized to update this notification")
	}
	if notification.IsRead {
		return notification, nil
	}

	return s.notifications.MarkRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return apperr.New(apperr.KindNotFound, "Notification not found")
	}
	if notification.UserId != userID {
		return apperr.New(apperr.KindForbidden, "You are not authorized to delete this notification")
	}

	return s.notifications.Delete(ctx, notificationID)
}

func (s *NotificationService) DeleteAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.DeleteRead(ctx, userID)
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notifications.DeleteAll(ctx, userID)
}

func (s *NotificationService) Stats(ctx context.Context, userID primitive.ObjectID) (*NotificationStats, error) {
	rows, err := s.notifications.StatsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &NotificationStats{ByType: make(map[models.NotificationType]Stats, len(rows))}
	for _, row := range rows {
		stats.ByType[row.Type] = Stats{Total: row.Total, Unread: row.Unread}
		stats.Total += row.Total
		stats.Unread += row.Unread
	}
	return stats, nil
}

// PurgeOldRead removes read notifications older than the retention window.
// Called from the maintenance job, never from request paths.
func (s *NotificationService) PurgeOldRead(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	deleted, err := s.notifications.DeleteOldRead(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("purged old notifications", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func totalPages(count int64, limit int) int {
	if limit < 1 {
		return 0
	}
	return int((count + int64(limit) - 1) / int64(limit))
}
