package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gormDB.AutoMigrate(&model.Room{}, &model.Booking{}, &model.BookingStatusEvent{}, &model.PushSubscription{}))
	return NewGormStore(gormDB)
}

func newStay(roomID uuid.UUID, in, out time.Time) *model.Booking {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return &model.Booking{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		RoomID:        roomID,
		CheckIn:       in,
		CheckOut:      out,
		Guests:        1,
		TotalPrice:    100,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func day(d int) time.Time { return time.Date(2024, 1, d, 14, 0, 0, 0, time.UTC) }

func TestSQLiteStore_BookingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	b := newStay(uuid.New(), day(10), day(15))

	require.NoError(t, s.CreateBooking(ctx, b, CreateOptions{}))

	got, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.UserID, got.UserID)
	assert.True(t, b.CheckIn.Equal(got.CheckIn))
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt), "creation time is owned by the caller")

	b.Status = model.StatusCancelled
	b.UpdatedAt = b.UpdatedAt.Add(time.Hour)
	event := model.BookingStatusEvent{BookingID: b.ID, Field: "status", From: "pending", To: "cancelled", CreatedAt: b.UpdatedAt}
	require.NoError(t, s.UpdateBooking(ctx, b, event))

	got, err = s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.Equal(t, 100.0, got.TotalPrice, "cancelling keeps the price")

	events, err := s.ListBookingEvents(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "cancelled", events[0].To)

	require.NoError(t, s.DeleteBooking(ctx, b.ID))
	_, err = s.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBooking(ctx, b.ID), apperr.ErrNotFound)

	events, err = s.ListBookingEvents(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSQLiteStore_OverlapGuard(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	room := uuid.New()

	first := newStay(room, day(10), day(15))
	require.NoError(t, s.CreateBooking(ctx, first, CreateOptions{PreventOverlap: true}))

	testCases := []struct {
		name    string
		booking *model.Booking
		wantErr bool
	}{
		{name: "overlapping stay", booking: newStay(room, day(12), day(18)), wantErr: true},
		{name: "back-to-back stay", booking: newStay(room, day(15), day(17))},
		{name: "different room", booking: newStay(uuid.New(), day(11), day(12))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.CreateBooking(ctx, tc.booking, CreateOptions{PreventOverlap: true})
			if tc.wantErr {
				assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("cancelled bookings free the room", func(t *testing.T) {
		first.Status = model.StatusCancelled
		first.UpdatedAt = first.UpdatedAt.Add(time.Minute)
		require.NoError(t, s.UpdateBooking(ctx, first))
		assert.NoError(t, s.CreateBooking(ctx, newStay(room, day(11), day(13)), CreateOptions{PreventOverlap: true}))
	})

	t.Run("guard disabled allows double booking", func(t *testing.T) {
		assert.NoError(t, s.CreateBooking(ctx, newStay(room, day(11), day(13)), CreateOptions{}))
	})
}

func TestSQLiteStore_ListStaysEndedBefore(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	room := uuid.New()

	ended := newStay(room, day(1), day(3))
	ended.Status = model.StatusApproved
	ongoing := newStay(room, day(4), day(9))
	ongoing.Status = model.StatusConfirmed
	pending := newStay(room, day(1), day(2))
	for _, b := range []*model.Booking{ended, ongoing, pending} {
		require.NoError(t, s.CreateBooking(ctx, b, CreateOptions{}))
	}

	stays, err := s.ListStaysEndedBefore(ctx, day(5))
	require.NoError(t, err)
	require.Len(t, stays, 1)
	assert.Equal(t, ended.ID, stays[0].ID)
}

func TestSQLiteStore_Rooms(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	room := &model.Room{ID: uuid.New(), Name: "Ocean 12", Type: parse.RoomTypeDeluxe, PricePerNight: 120, Capacity: 2}
	require.NoError(t, s.UpsertRoom(ctx, room))

	room.PricePerNight = 140
	require.NoError(t, s.UpsertRoom(ctx, room))

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 140.0, rooms[0].PricePerNight)
	assert.Equal(t, parse.RoomTypeDeluxe, rooms[0].RoomType())

	_, err = s.GetRoom(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSQLiteStore_Subscriptions(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	owner, stranger := uuid.New(), uuid.New()

	sub := &model.PushSubscription{Endpoint: "https://push.example/1", UserID: owner, P256DH: "key", Auth: "auth", CreatedAt: time.Now()}
	require.NoError(t, s.SaveSubscription(ctx, sub))

	sub.Auth = "rotated"
	require.NoError(t, s.SaveSubscription(ctx, sub))

	subs, err := s.SubscriptionsForUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "rotated", subs[0].Auth)

	_, err = s.GetSubscription(ctx, stranger, sub.Endpoint)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.DeleteSubscription(ctx, stranger, sub.Endpoint), apperr.ErrNotFound)

	require.NoError(t, s.DeleteSubscriptionByEndpoint(ctx, sub.Endpoint))
	subs, err = s.SubscriptionsForUser(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, subs)

	assert.NoError(t, s.Ping(ctx))
}
