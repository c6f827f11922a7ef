package model

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription holds the information for a browser push subscription
// owned by one user.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey;size:512" json:"endpoint"`
	UserID    uuid.UUID `gorm:"type:varchar(36);index;not null" json:"userId"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
