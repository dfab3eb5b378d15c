package service

import (
	"context"

	"github.com/hirein/engine/internal/domain/model"
	"github.com/hirein/engine/pkg/logger"
	"github.com/hirein/engine/pkg/metrics"
)

// Notification kinds dispatched on lifecycle transitions.
const (
	NotifyScheduled   = "interview.scheduled"
	NotifyInvited     = "interview.invited"
	NotifyConfirmed   = "interview.confirmed"
	NotifyRescheduled = "interview.rescheduled"
	NotifyCancelled   = "interview.cancelled"
	NotifyCompleted   = "interview.completed"
)

// Notifier delivers candidate-facing notifications. Delivery is
// fire-and-forget: a failed notification never rolls back the transition
// that triggered it.
type Notifier interface {
	Notify(ctx context.Context, kind string, iv model.Interview) error
}

// LogNotifier is the default Notifier: it only logs the dispatch.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates the default notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logger.Get().Named("notifier")}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(ctx context.Context, kind string, iv model.Interview) error {
	n.logger.Info(ctx, "notification dispatched",
		logger.String("kind", kind),
		logger.String("interviewID", iv.ID),
		logger.String("candidateID", iv.CandidateID),
	)
	return nil
}

// notify dispatches asynchronously and records failures without propagating.
func (s *Service) notify(ctx context.Context, kind string, iv model.Interview) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.Notify(context.WithoutCancel(ctx), kind, iv); err != nil {
			metrics.RecordNotificationError()
			s.logger.Warn(ctx, "notification failed",
				logger.String("kind", kind),
				logger.String("interviewID", iv.ID),
				logger.Error(err),
			)
		}
	}()
}
