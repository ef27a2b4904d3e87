package effects

import (
	"context"
	"errors"

	"ride-share/internal/domain/notification"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

// Fanout raises every notification on all sinks and joins their errors.
type Fanout []ports.NotificationSink

func (f Fanout) Raise(ctx context.Context, n notification.Notification) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Raise(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes notifications to the structured log. Used when no broker is configured.
type LogSink struct {
	Logger *logger.Logger
}

func (s LogSink) Raise(ctx context.Context, n notification.Notification) error {
	s.Logger.Info(ctx, "notification_raised", n.Title, map[string]any{
		"recipient": n.Recipient,
		"type":      n.Type,
		"resource":  n.Resource,
	})
	return nil
}
