package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/report"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateBooking(ctx context.Context, b *model.Booking, opts CreateOptions) error
	GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	UpdateBooking(ctx context.Context, b *model.Booking, events ...model.BookingStatusEvent) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error)
	ListBookingEvents(ctx context.Context, bookingID uuid.UUID) ([]model.BookingStatusEvent, error)
	ListStaysEndedBefore(ctx context.Context, t time.Time) ([]model.Booking, error)

	GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	UpsertRoom(ctx context.Context, room *model.Room) error

	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, userID uuid.UUID, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
	SubscriptionsForUser(ctx context.Context, userID uuid.UUID) ([]model.PushSubscription, error)

	Ping(ctx context.Context) error
	Close() error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// wrap maps driver errors onto the domain taxonomy. Errors that already carry
// a kind pass through unchanged.
func wrap(op, notFound string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Storage(op, err)
}

// CreateBooking inserts b. With PreventOverlap the room's live bookings are
// checked inside a serializable transaction before the insert.
func (s *gormStore) CreateBooking(ctx context.Context, b *model.Booking, opts CreateOptions) error {
	if !opts.PreventOverlap {
		return wrap("create booking", "", s.db.WithContext(ctx).Create(b).Error)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []model.Booking
		if err := tx.Where("room_id = ? AND status <> ?", b.RoomID, model.StatusCancelled).
			Find(&existing).Error; err != nil {
			return err
		}
		for _, other := range existing {
			if report.StaysOverlap(b.CheckIn, b.CheckOut, other.CheckIn, other.CheckOut) {
				return apperr.Conflict("room is already booked for the requested dates")
			}
		}
		return tx.Create(b).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	return wrap("create booking", "", err)
}

func (s *gormStore) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, wrap("get booking", "booking not found", err)
	}
	return &b, nil
}

// UpdateBooking persists the lifecycle fields of b and appends events in the
// same transaction. Concurrent updates are last-writer-wins.
func (s *gormStore) UpdateBooking(ctx context.Context, b *model.Booking, events ...model.BookingStatusEvent) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Booking{}).Where("id = ?", b.ID).Updates(map[string]any{
			"status":         b.Status,
			"payment_status": b.PaymentStatus,
			"updated_at":     b.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Some drivers report zero rows when no column value changed.
			if err := tx.Select("id").First(&model.Booking{}, "id = ?", b.ID).Error; err != nil {
				return err
			}
		}
		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return fmt.Errorf("append status events: %w", err)
			}
		}
		return nil
	})
	return wrap("update booking", "booking not found", err)
}

func (s *gormStore) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&model.BookingStatusEvent{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Booking{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrap("delete booking", "booking not found", err)
}

// ListBookings returns matching bookings, newest first. Instants are compared
// in UTC, the zone bookings are stored in.
func (s *gormStore) ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	q := s.db.WithContext(ctx).Model(&model.Booking{})
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.RoomID != uuid.Nil {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", f.CreatedFrom.UTC())
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", f.CreatedTo.UTC())
	}
	if f.StayFrom != nil {
		q = q.Where("check_out > ?", f.StayFrom.UTC())
	}
	if f.StayTo != nil {
		q = q.Where("check_in <= ?", f.StayTo.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var bookings []model.Booking
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, wrap("list bookings", "", err)
	}
	return bookings, nil
}

func (s *gormStore) ListBookingEvents(ctx context.Context, bookingID uuid.UUID) ([]model.BookingStatusEvent, error) {
	var events []model.BookingStatusEvent
	if err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, wrap("list booking events", "", err)
	}
	return events, nil
}

// ListStaysEndedBefore returns confirmed or approved bookings whose check-out
// is at or before t.
func (s *gormStore) ListStaysEndedBefore(ctx context.Context, t time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Where("status IN ? AND check_out <= ?", []model.BookingStatus{model.StatusConfirmed, model.StatusApproved}, t.UTC()).
		Order("check_out ASC").
		Find(&bookings).Error; err != nil {
		return nil, wrap("list finished stays", "", err)
	}
	return bookings, nil
}

func (s *gormStore) GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, wrap("get room", "room not found", err)
	}
	return &room, nil
}

func (s *gormStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rooms).Error; err != nil {
		return nil, wrap("list rooms", "", err)
	}
	return rooms, nil
}

func (s *gormStore) UpsertRoom(ctx context.Context, room *model.Room) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "category", "type", "price_per_night", "capacity", "updated_at"}),
	}).Create(room).Error
	return wrap("upsert room", "", err)
}

func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
	return wrap("save subscription", "", err)
}

func (s *gormStore) GetSubscription(ctx context.Context, userID uuid.UUID, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).
		First(&sub, "endpoint = ? AND user_id = ?", endpoint, userID).Error; err != nil {
		return nil, wrap("get subscription", "subscription not found", err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error {
	res := s.db.WithContext(ctx).
		Where("endpoint = ? AND user_id = ?", endpoint, userID).
		Delete(&model.PushSubscription{})
	if res.Error != nil {
		return wrap("delete subscription", "", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("subscription not found")
	}
	return nil
}

// DeleteSubscriptionByEndpoint removes an expired subscription regardless of owner.
func (s *gormStore) DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error {
	err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error
	return wrap("delete subscription", "", err)
}

func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID uuid.UUID) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, wrap("list subscriptions", "", err)
	}
	return subs, nil
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("ping", "", err)
	}
	return wrap("ping", "", sqlDB.PingContext(ctx))
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
