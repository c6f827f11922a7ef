package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the primary lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusApproved  BookingStatus = "approved"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusApproved, StatusCancelled, StatusCompleted}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// PaymentStatus is tracked independently of BookingStatus.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid || p == PaymentFailed
}

// Booking is a guest's stay in one room. CheckIn/CheckOut form the half-open
// stay interval [CheckIn, CheckOut).
type Booking struct {
	ID            uuid.UUID     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        uuid.UUID     `gorm:"type:varchar(36);index;not null" json:"userId"`
	RoomID        uuid.UUID     `gorm:"type:varchar(36);index;not null" json:"roomId"`
	CheckIn       time.Time     `gorm:"not null" json:"checkIn"`
	CheckOut      time.Time     `gorm:"not null" json:"checkOut"`
	Guests        int           `gorm:"not null" json:"guests"`
	TotalPrice    float64       `gorm:"not null;default:0" json:"totalPrice"`
	Status        BookingStatus `gorm:"size:16;index;not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:16;not null" json:"paymentStatus"`
	CreatedAt     time.Time     `gorm:"index;not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

// BookingStatusEvent is an append-only audit row written for every status or
// payment status change.
type BookingStatusEvent struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID uuid.UUID `gorm:"type:varchar(36);index;not null" json:"bookingId"`
	Field     string    `gorm:"size:16;not null" json:"field"` // "status" or "payment_status"
	From      string    `gorm:"size:16" json:"from"`
	To        string    `gorm:"size:16;not null" json:"to"`
	ActorID   uuid.UUID `gorm:"type:varchar(36)" json:"actorId"`
	ActorRole string    `gorm:"size:16" json:"actorRole"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" json:"createdAt"`
}
