package model

import (
	"time"

	"github.com/google/uuid"

	"hotel-booking-backend/internal/parse"
)

// Room is the inventory unit referenced by bookings. It is maintained by the
// room catalogue and consumed read-only by the booking and report code.
type Room struct {
	ID            uuid.UUID      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name          string         `gorm:"size:128;not null" json:"name"`
	Category      string         `gorm:"size:128" json:"category"`
	Type          parse.RoomType `gorm:"size:32;index" json:"type"`
	PricePerNight float64        `gorm:"not null;default:0" json:"pricePerNight"`
	Capacity      int            `gorm:"not null;default:1" json:"capacity"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// RoomType returns the explicit type, falling back to the legacy name/category
// classification for rows written before the column existed.
func (r Room) RoomType() parse.RoomType {
	return parse.RoomTypeOf(r.Type, r.Name, r.Category)
}
