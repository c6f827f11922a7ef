package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/model"
)

// Params are the caller-supplied fields of a new booking.
type Params struct {
	UserID     uuid.UUID
	RoomID     uuid.UUID
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	TotalPrice float64
}

// Validate checks the interval and amount invariants.
func (p Params) Validate() error {
	fields := make(map[string]string)
	if p.UserID == uuid.Nil {
		fields["userId"] = "This field is required"
	}
	if p.RoomID == uuid.Nil {
		fields["roomId"] = "This field is required"
	}
	if p.CheckIn.IsZero() {
		fields["checkIn"] = "This field is required"
	}
	if p.CheckOut.IsZero() {
		fields["checkOut"] = "This field is required"
	} else if !p.CheckIn.IsZero() && !p.CheckOut.After(p.CheckIn) {
		fields["checkOut"] = "Check-out must be after check-in"
	}
	if p.Guests < 1 {
		fields["guests"] = "Value must be at least 1"
	}
	if p.TotalPrice < 0 {
		fields["totalPrice"] = "Value must be at least 0"
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid booking", fields)
	}
	return nil
}

// Overrides let an admin create a booking directly in a given state.
type Overrides struct {
	Status        *model.BookingStatus
	PaymentStatus *model.PaymentStatus
}

// New builds a pending booking from the guest-facing flow.
func New(p Params, now time.Time) (model.Booking, error) {
	if err := p.Validate(); err != nil {
		return model.Booking{}, err
	}
	now = now.UTC()
	return model.Booking{
		ID:            uuid.New(),
		UserID:        p.UserID,
		RoomID:        p.RoomID,
		CheckIn:       p.CheckIn.UTC(),
		CheckOut:      p.CheckOut.UTC(),
		Guests:        p.Guests,
		TotalPrice:    p.TotalPrice,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Create builds a booking on behalf of actor. Guests may only book for
// themselves and always start pending; admins may book for any user and
// choose the initial status and payment status.
func Create(p Params, actor Actor, o Overrides, now time.Time) (model.Booking, error) {
	if !actor.IsAdmin() {
		if p.UserID != uuid.Nil && !actor.Owns(p.UserID) {
			return model.Booking{}, apperr.Forbidden("cannot create a booking for another user")
		}
		if (o.Status != nil && *o.Status != model.StatusPending) ||
			(o.PaymentStatus != nil && *o.PaymentStatus != model.PaymentPending) {
			return model.Booking{}, apperr.Forbidden("only administrators can set the initial status")
		}
		p.UserID = actor.UserID
	}

	b, err := New(p, now)
	if err != nil {
		return model.Booking{}, err
	}
	if o.Status != nil {
		if !o.Status.Valid() {
			return model.Booking{}, invalidStatus("status", string(*o.Status))
		}
		b.Status = *o.Status
	}
	if o.PaymentStatus != nil {
		if !o.PaymentStatus.Valid() {
			return model.Booking{}, invalidStatus("paymentStatus", string(*o.PaymentStatus))
		}
		b.PaymentStatus = *o.PaymentStatus
	}
	return b, nil
}

// Transition moves b to status to on behalf of actor.
//
// A non-admin must own the booking and may only cancel it from pending or
// confirmed. Admins may set any status. Requesting the current status is a
// no-op: b is untouched, UpdatedAt included, and the returned event is nil.
func Transition(b *model.Booking, actor Actor, to model.BookingStatus, now time.Time) (*model.BookingStatusEvent, error) {
	if !to.Valid() {
		return nil, invalidStatus("status", string(to))
	}
	if !actor.IsAdmin() {
		if !actor.Owns(b.UserID) {
			return nil, apperr.Forbidden("booking belongs to another user")
		}
		if to != model.StatusCancelled || !guestCancellable(b.Status) {
			return nil, apperr.Forbidden(fmt.Sprintf("cannot change booking from %s to %s", b.Status, to))
		}
	}
	if b.Status == to {
		return nil, nil
	}

	now = now.UTC()
	event := &model.BookingStatusEvent{
		BookingID: b.ID,
		Field:     "status",
		From:      string(b.Status),
		To:        string(to),
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		CreatedAt: now,
	}
	b.Status = to
	b.UpdatedAt = laterOf(b.UpdatedAt, now)
	return event, nil
}

// SetPaymentStatus updates the payment axis. Only admins may do this; the
// same value is a no-op.
func SetPaymentStatus(b *model.Booking, actor Actor, to model.PaymentStatus, now time.Time) (*model.BookingStatusEvent, error) {
	if !to.Valid() {
		return nil, invalidStatus("paymentStatus", string(to))
	}
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("only administrators can change the payment status")
	}
	if b.PaymentStatus == to {
		return nil, nil
	}

	now = now.UTC()
	event := &model.BookingStatusEvent{
		BookingID: b.ID,
		Field:     "payment_status",
		From:      string(b.PaymentStatus),
		To:        string(to),
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		CreatedAt: now,
	}
	b.PaymentStatus = to
	b.UpdatedAt = laterOf(b.UpdatedAt, now)
	return event, nil
}

// CanView reports whether actor may read b.
func CanView(b model.Booking, actor Actor) bool {
	return actor.IsAdmin() || actor.Owns(b.UserID)
}

// UpdatedAt never moves backwards, even if the caller's clock does.
func laterOf(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Millisecond)
}

func invalidStatus(field, value string) error {
	return apperr.Validation("invalid status", map[string]string{
		field: fmt.Sprintf("Unknown value %q", value),
	})
}
