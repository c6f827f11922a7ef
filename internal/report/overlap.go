package report

import (
	"math"
	"time"

	"github.com/google/uuid"

	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/model"
)

// Occupies reports whether b's stay intersects the window [start, end].
// The stay is half-open: a guest checking out at 00:00 of a day does not
// occupy that day.
func Occupies(b model.Booking, start, end time.Time) bool {
	return !b.CheckIn.After(end) && b.CheckOut.After(start)
}

// StaysOverlap reports whether the half-open stays [aIn, aOut) and
// [bIn, bOut) share any instant. Back-to-back stays do not overlap.
func StaysOverlap(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// OccupiedRooms returns the distinct ids of rooms in inventory occupied during
// [start, end]. Bookings that are not revenue eligible, or reference a room
// outside inventory, are ignored.
func OccupiedRooms(bookings []model.Booking, inventory map[uuid.UUID]model.Room, start, end time.Time) map[uuid.UUID]struct{} {
	occupied := make(map[uuid.UUID]struct{})
	for _, b := range bookings {
		if !booking.IsRevenueEligible(b.Status) {
			continue
		}
		if _, ok := inventory[b.RoomID]; !ok {
			continue
		}
		if Occupies(b, start, end) {
			occupied[b.RoomID] = struct{}{}
		}
	}
	return occupied
}

// OccupancyRate is round(100 * occupied / total), 0 when there are no rooms,
// and never outside [0, 100].
func OccupancyRate(occupied, total int) int {
	if total <= 0 || occupied <= 0 {
		return 0
	}
	rate := int(math.Round(100 * float64(occupied) / float64(total)))
	if rate > 100 {
		return 100
	}
	return rate
}
