package store

import (
	"time"

	"github.com/google/uuid"

	"hotel-booking-backend/internal/model"
)

// BookingFilter narrows ListBookings. Zero values mean "no filter".
type BookingFilter struct {
	UserID      uuid.UUID
	RoomID      uuid.UUID
	Status      *model.BookingStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	// StayFrom and StayTo keep bookings whose stay intersects [StayFrom, StayTo].
	StayFrom *time.Time
	StayTo   *time.Time
	Limit    int
	Offset   int
}

// CreateOptions controls CreateBooking.
type CreateOptions struct {
	// PreventOverlap rejects a booking whose stay overlaps a non-cancelled
	// booking of the same room.
	PreventOverlap bool
}
