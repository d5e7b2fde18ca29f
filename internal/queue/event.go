// Package queue defines the reservation events exchanged over the message
// broker, the publisher used by the web handlers and the consumer that
// keeps an append-only log of them.
package queue

import (
	"time"

	"github.com/iliyamo/school-booking/internal/model"
)

// Actions carried by ReservationEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ReservationEvent is published after a reservation write succeeds.  It
// contains enough information for downstream consumers to log or notify
// without querying the primary database.  Deleted events only carry the id.
type ReservationEvent struct {
	Action          string `json:"action"`
	ReservationID   uint64 `json:"reservation_id"`
	Role            string `json:"role,omitempty"`
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
	Space           string `json:"space,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	OccurredAt      string `json:"occurred_at"`
}

// NewReservationEvent builds an event for res stamped with at.
func NewReservationEvent(action string, res model.Reservation, at time.Time) ReservationEvent {
	ev := ReservationEvent{
		Action:        action,
		ReservationID: res.ID,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
	if action != ActionDeleted {
		ev.Role = res.Role
		ev.Date = res.Date
		ev.Time = res.Time
		ev.Space = res.Space
		ev.DurationMinutes = res.DurationMinutes
	}
	return ev
}
