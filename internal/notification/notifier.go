// Package notification delivers user-facing notifications. Delivery is
// best-effort everywhere it is consumed; callers log and ignore failures.
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/tipstream/harvester/pkg/logging"
)

// Service records disconnect notifications for delivery. Transport to the
// notification pipeline lives outside this repository; this implementation
// writes the event to the structured log stream the pipeline tails.
type Service struct {
	logger *zap.Logger
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		logger: logging.GetLogger().With(zap.String("component", "notification")),
	}
}

// NotifyDisconnected tells the previous owner of a link that the account was
// claimed by someone else
func (s *Service) NotifyDisconnected(ctx context.Context, linkID, newOwnerID string) error {
	s.logger.Info("Social media disconnected",
		zap.String("link_id", linkID),
		zap.String("new_owner", newOwnerID))
	return nil
}
