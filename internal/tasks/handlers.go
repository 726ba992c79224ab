package tasks

import (
	"context"
	"time"

	"leadcrm/internal/models"
	"leadcrm/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		db:     db,
		logger: logger.New("task_handler"),
	}
}

// HandleReservationExpiry moves overdue holds to EXPIRED.
func (h *TaskHandler) HandleReservationExpiry(ctx context.Context, t *asynq.Task) error {
	result := h.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("status = ? AND expires_at < ? AND is_deleted = false",
			models.ReservationStatusHold, time.Now()).
		Update("status", models.ReservationStatusExpired)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		h.logger.Info("expired %d overdue reservations", result.RowsAffected)
	}
	return nil
}

// HandleAuthTransactionPurge removes long-expired sessions so the
// token revocation lookup stays small.
func (h *TaskHandler) HandleAuthTransactionPurge(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().Add(-AuthTransactionRetention)
	result := h.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.AuthTransaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		h.logger.Info("purged %d stale auth transactions", result.RowsAffected)
	}
	return nil
}

// HandleActivityLogRetention trims the audit trail past the retention
// window.
func (h *TaskHandler) HandleActivityLogRetention(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().Add(-ActivityLogRetention)
	result := h.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		h.logger.Info("trimmed %d activity log entries", result.RowsAffected)
	}
	return nil
}
