package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/parse"
	"hotel-booking-backend/internal/report"
	"hotel-booking-backend/internal/store"
)

// reportQuery parses the shared report parameters. A date-only "to" covers
// the whole day but custom granularity is still measured to the date.
func (h *Handler) reportQuery(c *gin.Context) (report.Query, error) {
	loc := h.opts.Location
	q := report.Query{Now: h.now().In(loc)}

	period, err := report.ParsePeriod(c.Query("period"))
	if err != nil {
		return q, err
	}
	q.Period = period

	if q.From, err = optionalInstant("from", c.Query("from"), loc, false); err != nil {
		return q, err
	}
	if q.To, err = optionalInstant("to", c.Query("to"), loc, true); err != nil {
		return q, err
	}
	q.ToIsDate = q.To != nil && isDate(c.Query("to"))
	if q.Status, err = report.ParseStatusFilter(c.Query("status")); err != nil {
		return q, err
	}
	return q, nil
}

func wantsCSV(c *gin.Context) (bool, error) {
	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "json":
		return false, nil
	case "csv":
		return true, nil
	default:
		return false, apperr.Validation("invalid format", map[string]string{"format": "Must be json or csv"})
	}
}

// writeCSV renders into a buffer first so a failure still yields a clean error response.
func (h *Handler) writeCSV(c *gin.Context, kind report.Kind, render func(buf *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.Filename(kind, h.now().In(h.opts.Location))+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// BookingsReport handles GET /api/reports/bookings. Guests are restricted to
// their own bookings; admins may pass userId.
func (h *Handler) BookingsReport(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	csv, err := wantsCSV(c)
	if err != nil {
		respondError(c, err)
		return
	}
	q, err := h.reportQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if q.UserID, err = reportUser(c, actor); err != nil {
		respondError(c, err)
		return
	}

	rng, _, err := q.Window()
	if err != nil {
		respondError(c, err)
		return
	}
	bookings, err := h.store.ListBookings(c.Request.Context(), store.BookingFilter{
		UserID:      q.UserID,
		Status:      q.Status,
		CreatedFrom: &rng.From,
		CreatedTo:   &rng.To,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	rep, err := report.BookingCount(q, bookings)
	if err != nil {
		respondError(c, err)
		return
	}
	if csv {
		h.writeCSV(c, report.KindBookings, func(buf *bytes.Buffer) error { return report.WriteBookingCountCSV(buf, rep) })
		return
	}
	c.JSON(http.StatusOK, rep)
}

func reportUser(c *gin.Context, actor booking.Actor) (uuid.UUID, error) {
	raw := c.Query("userId")
	if !actor.IsAdmin() {
		if raw != "" && raw != actor.UserID.String() {
			return uuid.Nil, apperr.Forbidden("cannot report on another user's bookings")
		}
		return actor.UserID, nil
	}
	if raw == "" {
		return uuid.Nil, nil
	}
	return parseUUID("userId", raw)
}

// RevenueReport handles GET /api/reports/revenue. Admin only.
func (h *Handler) RevenueReport(c *gin.Context) {
	csv, err := wantsCSV(c)
	if err != nil {
		respondError(c, err)
		return
	}
	q, err := h.reportQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rng, _, err := q.Window()
	if err != nil {
		respondError(c, err)
		return
	}

	bookings, err := h.store.ListBookings(c.Request.Context(), store.BookingFilter{
		Status:      q.Status,
		CreatedFrom: &rng.From,
		CreatedTo:   &rng.To,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	rep, err := report.Revenue(q, bookings)
	if err != nil {
		respondError(c, err)
		return
	}
	if csv {
		h.writeCSV(c, report.KindRevenue, func(buf *bytes.Buffer) error { return report.WriteRevenueCSV(buf, rep) })
		return
	}
	c.JSON(http.StatusOK, rep)
}

// OccupancyReport handles GET /api/reports/occupancy. Admin only.
func (h *Handler) OccupancyReport(c *gin.Context) {
	csv, err := wantsCSV(c)
	if err != nil {
		respondError(c, err)
		return
	}
	q, err := h.reportQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if raw := c.Query("roomType"); raw != "" && !strings.EqualFold(raw, "all") {
		t, err := parse.ParseRoomType(raw)
		if err != nil {
			respondError(c, apperr.Validation("invalid room type", map[string]string{
				"roomType": "Must be standard, deluxe, executive, family or other",
			}))
			return
		}
		q.RoomType = t
	}

	_, span, err := q.Window()
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	bookings, err := h.store.ListBookings(ctx, store.BookingFilter{
		Status:   q.Status,
		StayFrom: &span.From,
		StayTo:   &span.To,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	rooms, err := h.store.ListRooms(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	rep, err := report.Occupancy(q, bookings, rooms)
	if err != nil {
		respondError(c, err)
		return
	}
	if csv {
		h.writeCSV(c, report.KindOccupancy, func(buf *bytes.Buffer) error { return report.WriteOccupancyCSV(buf, rep) })
		return
	}
	c.JSON(http.StatusOK, rep)
}

// ExportBookings handles GET /api/reports/bookings/export: one CSV row per
// booking created in the range. Admin only.
func (h *Handler) ExportBookings(c *gin.Context) {
	q, err := h.reportQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rng, _, err := q.Window()
	if err != nil {
		respondError(c, err)
		return
	}

	bookings, err := h.store.ListBookings(c.Request.Context(), store.BookingFilter{
		Status:      q.Status,
		CreatedFrom: &rng.From,
		CreatedTo:   &rng.To,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.writeCSV(c, report.KindBookingList, func(buf *bytes.Buffer) error {
		return report.WriteBookingsCSV(buf, bookings, h.opts.Location)
	})
}
