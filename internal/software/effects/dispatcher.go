package effects

import (
	"context"
	"errors"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/notification"
	"ride-share/internal/general/logger"
	"ride-share/internal/general/observability"
	"ride-share/internal/ports"
)

// Dispatcher sends the notifications derived from committed transitions. Delivery is best
// effort: failures are logged and counted, never returned to the operation that committed.
type Dispatcher struct {
	sink   ports.NotificationSink
	logger *logger.Logger
}

// NewDispatcher creates a Dispatcher over sink.
func NewDispatcher(sink ports.NotificationSink, log *logger.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, logger: log}
}

// Raise must be called only after the unit of work that produced transitions committed.
func (d *Dispatcher) Raise(ctx context.Context, transitions []*event.Transition) {
	for _, tr := range transitions {
		observability.TransitionsTotal.WithLabelValues(tr.Type.String()).Inc()

		for _, n := range Derive(tr) {
			if err := d.send(ctx, n); err != nil {
				observability.NotificationFailuresTotal.WithLabelValues(n.Type.String()).Inc()
				d.logger.Error(ctx, "notification_raise_failed", "Failed to raise notification", err, map[string]any{
					"recipient":  n.Recipient,
					"type":       n.Type,
					"transition": tr.Type,
					"ride_id":    tr.RideID,
					"booking_id": tr.BookingID,
				})
				continue
			}
			observability.NotificationsSentTotal.WithLabelValues(n.Type.String()).Inc()
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, n notification.Notification) (err error) {
	if err := n.Validate(); err != nil {
		return err
	}
	// recover sink panics
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("notification sink panicked")
		}
	}()
	return d.sink.Raise(ctx, n)
}

var _ ports.Effects = (*Dispatcher)(nil)
