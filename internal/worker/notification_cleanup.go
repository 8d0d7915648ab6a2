package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/medassist/assistant-api/internal/repository"
	"github.com/medassist/assistant-api/pkg/logger"
)

// NotificationCleanupWorker prunes read notifications past the
// retention window so the inbox table stays bounded.
type NotificationCleanupWorker struct {
	repo            repository.NotificationRepository
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
}

func NewNotificationCleanupWorker(repo repository.NotificationRepository, retentionDays int, cleanupInterval time.Duration, logger *logger.Logger) *NotificationCleanupWorker {
	return &NotificationCleanupWorker{
		repo:            repo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          logger,
	}
}

func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error(err, "notification cleanup failed")
			}
		}
	}
}

func (w *NotificationCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete read notifications: %w", err)
	}

	if rows > 0 {
		w.logger.Info(fmt.Sprintf("cleaned up %d read notifications older than %s", rows, cutoff.Format(time.RFC3339)))
	}
	return nil
}
