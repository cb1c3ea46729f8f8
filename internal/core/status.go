package core

import (
	"fmt"

	"stockx-backend-go/internal/models"
)

// statusTransitions lists the moves an admin action may make.
var statusTransitions = map[models.Status]map[models.Status]struct{}{
	models.StatusPending: {
		models.StatusApproved: {},
		models.StatusRejected: {},
	},
	models.StatusApproved: {
		models.StatusSuspended: {},
	},
	models.StatusSuspended: {
		models.StatusApproved: {},
	},
}

// CanTransition reports whether from -> to is an allowed lifecycle move.
func CanTransition(from, to models.Status) bool {
	next, ok := statusTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// ValidateTransition returns ErrInvalidTransition for disallowed moves.
func ValidateTransition(from, to models.Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
