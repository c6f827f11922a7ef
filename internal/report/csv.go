package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
)

// KindBookingList is the CSV export of raw bookings, one row per booking.
const KindBookingList Kind = "booking-list"

// Filename returns "<kind>-report-<YYYY-MM-DD>.csv" for the day of now.
func Filename(kind Kind, now time.Time) string {
	return fmt.Sprintf("%s-report-%s.csv", kind, now.Format("2006-01-02"))
}

// csvWriter writes comma-separated rows with every field double-quoted.
type csvWriter struct {
	w   *bufio.Writer
	err error
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{w: bufio.NewWriter(w)}
}

func (c *csvWriter) row(fields ...string) {
	if c.err != nil {
		return
	}
	for i, f := range fields {
		if i > 0 {
			if c.err = c.w.WriteByte(','); c.err != nil {
				return
			}
		}
		if _, c.err = c.w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); c.err != nil {
			return
		}
	}
	_, c.err = c.w.WriteString("\r\n")
}

func (c *csvWriter) flush() error {
	if c.err != nil {
		return c.err
	}
	return c.w.Flush()
}

func itoa(n int) string { return strconv.Itoa(n) }

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// WriteBookingCountCSV writes one row per bucket.
func WriteBookingCountCSV(w io.Writer, rep *BookingCountReport) error {
	c := newCSVWriter(w)
	c.row("Period", "Count", "Pending", "Confirmed", "Approved", "Cancelled", "Completed")
	for _, r := range rep.Data {
		s := r.StatusBreakdown
		c.row(r.Label, itoa(r.Count), itoa(s.Pending), itoa(s.Confirmed), itoa(s.Approved), itoa(s.Cancelled), itoa(s.Completed))
	}
	return c.flush()
}

// WriteRevenueCSV writes one row per bucket.
func WriteRevenueCSV(w io.Writer, rep *RevenueReport) error {
	c := newCSVWriter(w)
	c.row("Period", "Revenue", "Bookings")
	for _, r := range rep.Data {
		c.row(r.Label, money(r.Revenue), itoa(r.BookingCount))
	}
	return c.flush()
}

// WriteOccupancyCSV writes one row per bucket, with a column per room type.
func WriteOccupancyCSV(w io.Writer, rep *OccupancyReport) error {
	c := newCSVWriter(w)
	header := []string{"Period", "Occupied Rooms", "Total Rooms", "Occupancy Rate"}
	for _, t := range parse.RoomTypes {
		header = append(header, string(t))
	}
	c.row(header...)
	for _, r := range rep.Data {
		fields := []string{r.Label, itoa(r.OccupiedRooms), itoa(r.TotalRooms), itoa(r.OccupancyRate) + "%"}
		for _, t := range parse.RoomTypes {
			fields = append(fields, itoa(r.RoomTypeBreakdown[t]))
		}
		c.row(fields...)
	}
	return c.flush()
}

// WriteBookingsCSV writes one row per booking. Instants are rendered in loc.
func WriteBookingsCSV(w io.Writer, bookings []model.Booking, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	c := newCSVWriter(w)
	c.row("ID", "User ID", "Room ID", "Check In", "Check Out", "Guests", "Total Price", "Status", "Payment Status", "Created At")
	for _, b := range bookings {
		c.row(
			b.ID.String(),
			b.UserID.String(),
			b.RoomID.String(),
			b.CheckIn.In(loc).Format(time.RFC3339),
			b.CheckOut.In(loc).Format(time.RFC3339),
			itoa(b.Guests),
			money(b.TotalPrice),
			string(b.Status),
			string(b.PaymentStatus),
			b.CreatedAt.In(loc).Format(time.RFC3339),
		)
	}
	return c.flush()
}
