// Package booking holds the booking status state machine.
package booking

import (
	"errors"
	"time"

	"salonbook/internal/models"
)

// ErrInvalidTransition is returned for any disallowed status change,
// including every attempt to leave a terminal state.
var ErrInvalidTransition = errors.New("invalid booking status transition")

// Actor identifies who is requesting a status change.
type Actor string

const (
	ActorClient   Actor = "client"
	ActorProvider Actor = "provider"
)

// transitions maps from-status to the set of reachable statuses and the
// actors allowed to trigger each edge. Terminal states have no entries.
var transitions = map[string]map[string][]Actor{
	models.StatusPending: {
		models.StatusConfirmed: {ActorProvider},
		models.StatusCancelled: {ActorClient, ActorProvider},
	},
	models.StatusConfirmed: {
		models.StatusCompleted: {ActorProvider},
		models.StatusCancelled: {ActorClient, ActorProvider},
	},
}

// CanTransition reports whether actor may move a booking from one status
// to another.
func CanTransition(from, to string, actor Actor) bool {
	actors, ok := transitions[from][to]
	if !ok {
		return false
	}
	for _, a := range actors {
		if a == actor {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition can ever leave the status.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Transition applies a status change in place, bumping UpdatedAt, or
// returns ErrInvalidTransition without touching the booking.
func Transition(b *models.Booking, to string, actor Actor) error {
	if !CanTransition(b.Status, to, actor) {
		return ErrInvalidTransition
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

// Statuses lists every known booking status.
func Statuses() []string {
	return []string{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusCancelled,
		models.StatusCompleted,
	}
}
