// Package effects turns committed state transitions into user notifications.
package effects

import (
	"fmt"
	"slices"
	"time"

	"ride-share/internal/domain/event"
	"ride-share/internal/domain/notification"
)

// Derive maps one transition to the notifications it causes. It is pure: no I/O, no clock.
// Ride-level transitions carry no booking and are audit-only; every notification is
// addressed through a booking.
func Derive(tr *event.Transition) []notification.Notification {
	if tr == nil || tr.BookingID == "" {
		return nil
	}
	return slices.DeleteFunc(derive(tr), func(n notification.Notification) bool {
		return n.Recipient == ""
	})
}

func derive(tr *event.Transition) []notification.Notification {
	bookingRef := notification.Resource{Kind: "booking", ID: tr.BookingID}
	at := tr.OccurredAt

	switch tr.Type {
	case event.BookingRequested:
		return one(tr.DriverID, notification.TypeBookingRequest, "New booking request",
			fmt.Sprintf("A passenger requested %s on your ride.", seatsText(tr.Seats)), bookingRef, at)

	case event.BookingApproved:
		return one(tr.PassengerID, notification.TypeBookingApproved, "Booking approved",
			"Your booking was approved by the driver.", bookingRef, at)

	case event.BookingRejected:
		return one(tr.PassengerID, notification.TypeBookingRejected, "Booking rejected",
			"Your booking was rejected by the driver.", bookingRef, at)

	case event.BookingCancelled:
		msg := "A booking on your ride was cancelled."
		if tr.Reason != "" {
			msg = fmt.Sprintf("A booking on your ride was cancelled: %s", tr.Reason)
		}
		var out []notification.Notification
		for _, to := range cancellationAudience(tr) {
			out = append(out, build(to, notification.TypeBookingCancelled, "Booking cancelled", msg, bookingRef, at))
		}
		return out

	case event.RideUpdated:
		return one(tr.PassengerID, notification.TypeSystemNotification, "Ride updated",
			"The driver changed the details of your ride. Please review the new schedule.",
			notification.Resource{Kind: "ride", ID: tr.RideID}, at)

	case event.RideStarted:
		return one(tr.PassengerID, notification.TypeRideStarted, "Ride started",
			"Your ride has started.", bookingRef, at)

	case event.RideCompleted:
		return []notification.Notification{
			build(tr.PassengerID, notification.TypeRideCompleted, "Ride completed",
				"Your ride is complete. Please rate your driver.", bookingRef, at),
			build(tr.DriverID, notification.TypeRideCompleted, "Ride completed",
				"The ride is complete. Please rate your passenger.", bookingRef, at),
		}

	case event.RatingSubmitted:
		return one(tr.RateeID, notification.TypeNewRating, "New rating",
			"You received a new rating.", notification.Resource{Kind: "rating", ID: tr.RatingID}, at)

	default:
		return nil
	}
}

// cancellationAudience is the counterparty of the actor, or both parties when the actor is
// neither of them (an admin or the system).
func cancellationAudience(tr *event.Transition) []string {
	switch tr.ActorID {
	case tr.PassengerID:
		return []string{tr.DriverID}
	case tr.DriverID:
		return []string{tr.PassengerID}
	default:
		return []string{tr.PassengerID, tr.DriverID}
	}
}

func one(to string, t notification.Type, title, msg string, ref notification.Resource, at time.Time) []notification.Notification {
	return []notification.Notification{build(to, t, title, msg, ref, at)}
}

func build(to string, t notification.Type, title, msg string, ref notification.Resource, at time.Time) notification.Notification {
	return notification.Notification{
		Recipient: to,
		Type:      t,
		Title:     title,
		Message:   msg,
		Resource:  ref,
		CreatedAt: at,
	}
}

func seatsText(n int) string {
	if n == 1 {
		return "1 seat"
	}
	return fmt.Sprintf("%d seats", n)
}
