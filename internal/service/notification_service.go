package service

import (
	"context"

	"go.uber.org/zap"
)

// Notifier is told about requests that were just completed so the owner can
// be contacted out of band.
type Notifier interface {
	RequestCompleted(ctx context.Context, requestID int64, ownerID *int64)
}

// NotificationService is the shipped Notifier. Outbound email is disabled;
// the call is only logged.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger}
}

func (n *NotificationService) RequestCompleted(_ context.Context, requestID int64, ownerID *int64) {
	fields := []zap.Field{zap.Int64("request_id", requestID)}
	if ownerID != nil {
		fields = append(fields, zap.Int64("owner_id", *ownerID))
	}
	n.logger.Debug("email notifications are disabled; skipping completion notice", fields...)
}
