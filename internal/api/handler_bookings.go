package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/report"
	"hotel-booking-backend/internal/store"
)

// createBookingRequest accepts both the current field names and the legacy
// aliases still sent by older clients.
type createBookingRequest struct {
	UserID         string   `json:"userId" binding:"omitempty,uuid"`
	RoomID         string   `json:"roomId"`
	Room           string   `json:"room"`
	CheckIn        string   `json:"checkIn"`
	CheckInDate    string   `json:"checkInDate"`
	CheckOut       string   `json:"checkOut"`
	CheckOutDate   string   `json:"checkOutDate"`
	Guests         *int     `json:"guests" binding:"omitempty,min=1"`
	NumberOfGuests *int     `json:"numberOfGuests" binding:"omitempty,min=1"`
	TotalPrice     *float64 `json:"totalPrice" binding:"omitempty,min=0"`
	TotalAmount    *float64 `json:"totalAmount" binding:"omitempty,min=0"`
	Status         *string  `json:"status" binding:"omitempty,booking_status"`
	PaymentStatus  *string  `json:"paymentStatus" binding:"omitempty,payment_status"`
}

type updateBookingRequest struct {
	Status        *string `json:"status" binding:"omitempty,booking_status"`
	PaymentStatus *string `json:"paymentStatus" binding:"omitempty,payment_status"`
}

// bookingResponse is a booking plus what the caller may do with it next.
type bookingResponse struct {
	model.Booking
	AllowedTransitions []model.BookingStatus     `json:"allowedTransitions"`
	History            []model.BookingStatusEvent `json:"history,omitempty"`
}

func (h *Handler) present(b model.Booking, actor booking.Actor) bookingResponse {
	return bookingResponse{Booking: b, AllowedTransitions: booking.TransitionsFor(b, actor)}
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	params, err := h.bookingParams(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	var overrides booking.Overrides
	if req.Status != nil {
		s := model.BookingStatus(strings.ToLower(*req.Status))
		overrides.Status = &s
	}
	if req.PaymentStatus != nil {
		p := model.PaymentStatus(strings.ToLower(*req.PaymentStatus))
		overrides.PaymentStatus = &p
	}

	b, err := booking.Create(params, actor, overrides, h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.CreateBooking(c.Request.Context(), &b, store.CreateOptions{PreventOverlap: h.opts.PreventOverlap}); err != nil {
		respondError(c, err)
		return
	}

	requestLogger(c).Info().
		Str("booking_id", b.ID.String()).
		Str("room_id", b.RoomID.String()).
		Str("status", string(b.Status)).
		Msg("booking created")
	c.JSON(http.StatusCreated, h.present(b, actor))
}

// bookingParams resolves aliases, parses dates and prices the stay from the
// room rate when no total was given.
func (h *Handler) bookingParams(c *gin.Context, req createBookingRequest) (booking.Params, error) {
	var p booking.Params
	fields := make(map[string]string)

	if req.UserID != "" {
		p.UserID = uuid.MustParse(req.UserID)
	}

	if raw := firstNonEmpty(req.RoomID, req.Room); raw == "" {
		fields["roomId"] = "This field is required"
	} else if id, err := uuid.Parse(raw); err != nil {
		fields["roomId"] = "Must be a valid UUID"
	} else {
		p.RoomID = id
	}

	loc := h.opts.Location
	if raw := firstNonEmpty(req.CheckIn, req.CheckInDate); raw == "" {
		fields["checkIn"] = "This field is required"
	} else if t, err := parseInstant(raw, loc, false); err != nil {
		fields["checkIn"] = "Must be RFC3339 or YYYY-MM-DD"
	} else {
		p.CheckIn = t
	}
	if raw := firstNonEmpty(req.CheckOut, req.CheckOutDate); raw == "" {
		fields["checkOut"] = "This field is required"
	} else if t, err := parseInstant(raw, loc, false); err != nil {
		fields["checkOut"] = "Must be RFC3339 or YYYY-MM-DD"
	} else {
		p.CheckOut = t
	}

	switch {
	case req.Guests != nil:
		p.Guests = *req.Guests
	case req.NumberOfGuests != nil:
		p.Guests = *req.NumberOfGuests
	default:
		p.Guests = 1
	}

	if len(fields) > 0 {
		return p, apperr.Validation("invalid booking", fields)
	}

	room, err := h.store.GetRoom(c.Request.Context(), p.RoomID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return p, apperr.Validation("invalid booking", map[string]string{"roomId": "Room does not exist"})
		}
		return p, err
	}
	if room.Capacity > 0 && p.Guests > room.Capacity {
		return p, apperr.Validation("invalid booking", map[string]string{
			"guests": "Value must be at most " + strconv.Itoa(room.Capacity),
		})
	}

	switch {
	case req.TotalPrice != nil:
		p.TotalPrice = *req.TotalPrice
	case req.TotalAmount != nil:
		p.TotalPrice = *req.TotalAmount
	default:
		p.TotalPrice = float64(nights(p)) * room.PricePerNight
	}
	return p, nil
}

// nights is the number of started 24h periods in the stay, at least one.
func nights(p booking.Params) int {
	n := int(math.Ceil(p.CheckOut.Sub(p.CheckIn).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

// ListBookings handles GET /api/bookings. Guests only ever see their own.
func (h *Handler) ListBookings(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var f store.BookingFilter
	status, err := report.ParseStatusFilter(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	f.Status = status

	if raw := c.Query("userId"); raw != "" {
		if f.UserID, err = parseUUID("userId", raw); err != nil {
			respondError(c, err)
			return
		}
	}
	if raw := c.Query("roomId"); raw != "" {
		if f.RoomID, err = parseUUID("roomId", raw); err != nil {
			respondError(c, err)
			return
		}
	}
	if !actor.IsAdmin() {
		if f.UserID != uuid.Nil && f.UserID != actor.UserID {
			respondError(c, apperr.Forbidden("cannot list another user's bookings"))
			return
		}
		f.UserID = actor.UserID
	}

	if f.Limit, err = pagingParam("limit", c.Query("limit")); err != nil {
		respondError(c, err)
		return
	}
	if f.Offset, err = pagingParam("offset", c.Query("offset")); err != nil {
		respondError(c, err)
		return
	}

	bookings, err := h.store.ListBookings(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = h.present(b, actor)
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": len(out)})
}

// pagingParam parses a non-negative integer query value; empty means 0.
func pagingParam(field, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, apperr.Validation("invalid paging", map[string]string{field: "Must be a non-negative integer"})
	}
	return n, nil
}

// loadVisible fetches a booking the caller is allowed to see.
func (h *Handler) loadVisible(c *gin.Context, actor booking.Actor) (*model.Booking, bool) {
	id, err := parseUUID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	b, err := h.store.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !booking.CanView(*b, actor) {
		respondError(c, apperr.Forbidden("booking belongs to another user"))
		return nil, false
	}
	return b, true
}

// GetBooking handles GET /api/bookings/:id.
func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	b, ok := h.loadVisible(c, actor)
	if !ok {
		return
	}

	history, err := h.store.ListBookingEvents(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := h.present(*b, actor)
	resp.History = history
	c.JSON(http.StatusOK, resp)
}

// UpdateBooking handles PATCH /api/bookings/:id.
func (h *Handler) UpdateBooking(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	if req.Status == nil && req.PaymentStatus == nil {
		respondError(c, apperr.Validation("nothing to update", map[string]string{
			"status": "Provide status or paymentStatus",
		}))
		return
	}

	b, ok := h.loadVisible(c, actor)
	if !ok {
		return
	}

	now := h.now()
	var events []model.BookingStatusEvent
	if req.Status != nil {
		event, err := booking.Transition(b, actor, model.BookingStatus(strings.ToLower(*req.Status)), now)
		if err != nil {
			respondError(c, err)
			return
		}
		if event != nil {
			events = append(events, *event)
		}
	}
	if req.PaymentStatus != nil {
		event, err := booking.SetPaymentStatus(b, actor, model.PaymentStatus(strings.ToLower(*req.PaymentStatus)), now)
		if err != nil {
			respondError(c, err)
			return
		}
		if event != nil {
			events = append(events, *event)
		}
	}

	if len(events) > 0 {
		if err := h.store.UpdateBooking(c.Request.Context(), b, events...); err != nil {
			respondError(c, err)
			return
		}
		h.notify(*b, events)
		requestLogger(c).Info().
			Str("booking_id", b.ID.String()).
			Int("changes", len(events)).
			Msg("booking updated")
	}

	c.JSON(http.StatusOK, h.present(*b, actor))
}

// DeleteBooking handles DELETE /api/bookings/:id. Admin only.
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := parseUUID("id", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteBooking(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
