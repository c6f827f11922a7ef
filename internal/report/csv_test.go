package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
)

func csvLines(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	out := buf.String()
	require.True(t, strings.HasSuffix(out, "\r\n"))
	return strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 7, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, "revenue-report-2024-03-07.csv", Filename(KindRevenue, now))
	assert.Equal(t, "booking-list-report-2024-03-07.csv", Filename(KindBookingList, now))
}

func TestWriteRevenueCSV(t *testing.T) {
	rep := &RevenueReport{Data: []RevenueRow{
		{Bucket: Bucket{Label: "1/1"}, Revenue: 500, BookingCount: 1},
		{Bucket: Bucket{Label: "1/2"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteRevenueCSV(&buf, rep))

	assert.Equal(t, []string{
		`"Period","Revenue","Bookings"`,
		`"1/1","500.00","1"`,
		`"1/2","0.00","0"`,
	}, csvLines(t, &buf))
}

func TestWriteBookingCountCSV(t *testing.T) {
	rep := &BookingCountReport{Data: []BookingCountRow{
		{Bucket: Bucket{Label: "9:00"}, Count: 3, StatusBreakdown: StatusBreakdown{Pending: 2, Completed: 1}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteBookingCountCSV(&buf, rep))

	lines := csvLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, `"Period","Count","Pending","Confirmed","Approved","Cancelled","Completed"`, lines[0])
	assert.Equal(t, `"9:00","3","2","0","0","0","1"`, lines[1])
}

func TestWriteOccupancyCSV(t *testing.T) {
	breakdown := map[parse.RoomType]int{parse.RoomTypeDeluxe: 1}
	rep := &OccupancyReport{Data: []OccupancyRow{
		{Bucket: Bucket{Label: "Jan 2024"}, OccupiedRooms: 1, TotalRooms: 3, OccupancyRate: 33, RoomTypeBreakdown: breakdown},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteOccupancyCSV(&buf, rep))

	lines := csvLines(t, &buf)
	assert.Equal(t, `"Period","Occupied Rooms","Total Rooms","Occupancy Rate","standard","deluxe","executive","family","other"`, lines[0])
	assert.Equal(t, `"Jan 2024","1","3","33%","0","1","0","0","0"`, lines[1])
}

func TestWriteBookingsCSV(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	b := model.Booking{
		ID:            uuid.MustParse("0b9f2f5c-6d7e-4a4f-9a55-4a3b2d1c0e9f"),
		UserID:        uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"),
		RoomID:        uuid.MustParse("cccccccc-0000-0000-0000-000000000003"),
		CheckIn:       time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		Guests:        2,
		TotalPrice:    499.5,
		Status:        model.StatusConfirmed,
		PaymentStatus: model.PaymentPaid,
		CreatedAt:     time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBookingsCSV(&buf, []model.Booking{b}, loc))

	lines := csvLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, `"0b9f2f5c-6d7e-4a4f-9a55-4a3b2d1c0e9f","aaaaaaaa-0000-0000-0000-000000000001",`+
		`"cccccccc-0000-0000-0000-000000000003","2024-01-10T14:00:00+02:00","2024-01-15T11:00:00+02:00",`+
		`"2","499.50","confirmed","paid","2024-01-01T10:30:00+02:00"`, lines[1])
}

func TestCSVEscapesQuotes(t *testing.T) {
	var buf bytes.Buffer
	c := newCSVWriter(&buf)
	c.row(`say "hi"`, "a,b")
	require.NoError(t, c.flush())

	assert.Equal(t, "\"say \"\"hi\"\"\",\"a,b\"\r\n", buf.String())
}
