package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/careernest/Backend-CareerNest/src/services"
)

// NotificationCleanupJob periodically purges read notifications older than
// the retention window.
type NotificationCleanupJob struct {
	notifications *services.NotificationService
	retentionDays int
	interval      time.Duration
	logger        *zap.Logger

	done chan struct{}
}

func NewNotificationCleanupJob(notifications *services.NotificationService, retentionDays int, interval time.Duration, logger *zap.Logger) *NotificationCleanupJob {
	return &NotificationCleanupJob{
		notifications: notifications,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger,
		done:          make(chan struct{}),
	}
}

// Start runs the cleanup loop in its own goroutine until Stop is called.
// One pass runs immediately so a long-stopped instance catches up on boot.
func (j *NotificationCleanupJob) Start() {
	go func() {
		j.runOnce()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.runOnce()
			case <-j.done:
				return
			}
		}
	}()
}

func (j *NotificationCleanupJob) Stop() {
	close(j.done)
}

func (j *NotificationCleanupJob) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := j.notifications.PurgeOldRead(ctx, j.retentionDays); err != nil {
		j.logger.Error("notification cleanup failed", zap.Error(err))
	}
}
