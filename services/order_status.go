package services

import (
	"slices"
	"tableside_server/lib"
	"tableside_server/structs/tables"
)

// strictTransitions only allows the next step of the progression or a cancel
var strictTransitions = map[tables.OrderStatus][]tables.OrderStatus{
	tables.OrderStatusPending: {
		tables.OrderStatusPreparing,
		tables.OrderStatusCancelled,
	},
	tables.OrderStatusPreparing: {
		tables.OrderStatusReady,
		tables.OrderStatusCancelled,
	},
	tables.OrderStatusReady: {
		tables.OrderStatusServed,
		tables.OrderStatusCancelled,
	},
	tables.OrderStatusServed: {
		tables.OrderStatusCompleted,
		tables.OrderStatusCancelled,
	},
	tables.OrderStatusCompleted: {},
	tables.OrderStatusCancelled: {},
}

// permissiveTransitions lets staff jump between any statuses, backwards
// included, as long as the order is not terminal yet.
var permissiveTransitions = func() map[tables.OrderStatus][]tables.OrderStatus {
	all := append(slices.Clone(tables.OrderStatusProgression), tables.OrderStatusCancelled)
	out := make(map[tables.OrderStatus][]tables.OrderStatus, len(all))
	for _, from := range all {
		if from.IsTerminal() {
			out[from] = []tables.OrderStatus{}
			continue
		}
		for _, to := range all {
			if to != from {
				out[from] = append(out[from], to)
			}
		}
	}
	return out
}()

// ValidateTransition returns a *lib.TransitionError when the move is not allowed
func ValidateTransition(current, next tables.OrderStatus, strict bool) error {
	transitions := permissiveTransitions
	if strict {
		transitions = strictTransitions
	}

	allowedNextStates, exists := transitions[current]
	if !exists || !slices.Contains(allowedNextStates, next) {
		return &lib.TransitionError{From: string(current), To: string(next)}
	}

	return nil
}

// NextStatus returns the status a single "advance" action moves to. Terminal
// statuses have no next status.
func NextStatus(current tables.OrderStatus) (tables.OrderStatus, bool) {
	idx := slices.Index(tables.OrderStatusProgression, current)
	if idx < 0 || idx == len(tables.OrderStatusProgression)-1 {
		return "", false
	}
	return tables.OrderStatusProgression[idx+1], true
}
