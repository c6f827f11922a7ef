package booking

import "hotel-booking-backend/internal/model"

var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusApproved, model.StatusCancelled, model.StatusCompleted},
	model.StatusApproved:  {model.StatusCancelled, model.StatusCompleted},
	model.StatusCancelled: nil,
	model.StatusCompleted: nil,
}

// AllowedTransitions returns the modelled next states of from. Cancelled and
// completed are terminal.
func AllowedTransitions(from model.BookingStatus) []model.BookingStatus {
	next := transitions[from]
	out := make([]model.BookingStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
// Admins are not bound by it; see Transition.
func CanTransition(from, to model.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s model.BookingStatus) bool {
	return len(transitions[s]) == 0
}

// IsRevenueEligible reports whether a booking in status s counts toward
// revenue and occupancy.
func IsRevenueEligible(s model.BookingStatus) bool {
	switch s {
	case model.StatusConfirmed, model.StatusApproved, model.StatusCompleted:
		return true
	}
	return false
}

// guestCancellable are the states a booking owner may cancel from.
func guestCancellable(s model.BookingStatus) bool {
	return s == model.StatusPending || s == model.StatusConfirmed
}

// TransitionsFor returns the statuses actor may move b to next. Guests only
// ever see cancellation; admins see the lifecycle graph.
func TransitionsFor(b model.Booking, actor Actor) []model.BookingStatus {
	if actor.IsAdmin() {
		return AllowedTransitions(b.Status)
	}
	if actor.Owns(b.UserID) && guestCancellable(b.Status) {
		return []model.BookingStatus{model.StatusCancelled}
	}
	return []model.BookingStatus{}
}
