package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/mw"
	"hotel-booking-backend/internal/notification"
	"hotel-booking-backend/internal/store"
)

// Notifier receives booking status changes for delivery to the owner.
type Notifier interface {
	Dispatch(job notification.StatusChange) bool
}

// Options tune handler behaviour.
type Options struct {
	PreventOverlap bool
	Location       *time.Location // report and date-only input timezone
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	webpush  *webpush.Options
	notifier Notifier
	opts     Options
	now      func() time.Time
}

// NewHandler creates a new API handler. notifier may be nil.
func NewHandler(s store.Store, webpushOptions *webpush.Options, notifier Notifier, opts Options) *Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Handler{
		store:    s,
		webpush:  webpushOptions,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

// actor returns the authenticated caller or aborts with 403.
func (h *Handler) actor(c *gin.Context) (booking.Actor, bool) {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		respondError(c, apperr.Forbidden("authentication required"))
		return booking.Actor{}, false
	}
	return actor, true
}

// notify tells the booking owner about each recorded change.
func (h *Handler) notify(b model.Booking, events []model.BookingStatusEvent) {
	if h.notifier == nil {
		return
	}
	for _, e := range events {
		h.notifier.Dispatch(notification.StatusChange{
			BookingID: b.ID,
			UserID:    b.UserID,
			Field:     e.Field,
			From:      e.From,
			To:        e.To,
		})
	}
}
