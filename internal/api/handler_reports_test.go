package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
)

type bucketJSON struct {
	Label             string                 `json:"label"`
	Start             time.Time              `json:"start"`
	End               time.Time              `json:"end"`
	Count             int                    `json:"count"`
	Revenue           float64                `json:"revenue"`
	BookingCount      int                    `json:"bookingCount"`
	OccupiedRooms     int                    `json:"occupiedRooms"`
	TotalRooms        int                    `json:"totalRooms"`
	OccupancyRate     int                    `json:"occupancyRate"`
	RoomTypeBreakdown map[parse.RoomType]int `json:"roomTypeBreakdown"`
	StatusBreakdown   map[string]int         `json:"statusBreakdown"`
}

type reportJSON struct {
	Period        string       `json:"period"`
	Granularity   string       `json:"granularity"`
	From          time.Time    `json:"from"`
	To            time.Time    `json:"to"`
	Data          []bucketJSON `json:"data"`
	TotalBookings int          `json:"totalBookings"`
	TotalRevenue  float64      `json:"totalRevenue"`
	TotalRooms    int          `json:"totalRooms"`
}

const january = "period=custom&from=2024-01-01&to=2024-01-31"

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

// seedJanuary stores one approved five-night stay in roomA plus a few
// bookings that only matter to the booking-count report.
func seedJanuary(t *testing.T, env *testEnv) {
	t.Helper()
	env.seedBooking(t, guestID, roomA, model.StatusApproved, 500, day(1).Add(10*time.Hour), day(10), day(15))
	env.seedBooking(t, guestID, roomB, model.StatusPending, 160, day(5), day(20), day(22))
	env.seedBooking(t, otherID, roomB, model.StatusCancelled, 80, day(5), day(12), day(13))
}

func TestRevenueReport_January(t *testing.T) {
	env := newTestEnv(t)
	seedJanuary(t, env)

	w := env.do(t, http.MethodGet, "/api/reports/revenue?"+january, env.admin(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rep := decode[reportJSON](t, w)
	assert.Equal(t, "custom", rep.Period)
	assert.Equal(t, "day", rep.Granularity)
	require.Len(t, rep.Data, 31)
	assert.Equal(t, "1/1", rep.Data[0].Label)
	assert.Equal(t, 500.0, rep.Data[0].Revenue)
	assert.Equal(t, 1, rep.Data[0].BookingCount)
	assert.Equal(t, 0.0, rep.Data[4].Revenue, "pending and cancelled bookings earn nothing")
	assert.Equal(t, 500.0, rep.TotalRevenue)
	assert.Equal(t, 1, rep.TotalBookings)
}

func TestOccupancyReport_January(t *testing.T) {
	env := newTestEnv(t)
	seedJanuary(t, env)

	w := env.do(t, http.MethodGet, "/api/reports/occupancy?"+january, env.admin(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rep := decode[reportJSON](t, w)
	require.Len(t, rep.Data, 31)
	assert.Equal(t, 2, rep.TotalRooms)

	for d := 10; d <= 14; d++ {
		row := rep.Data[d-1]
		assert.Equal(t, 50, row.OccupancyRate, row.Label)
		assert.Equal(t, 1, row.OccupiedRooms, row.Label)
		assert.Equal(t, 1, row.RoomTypeBreakdown[parse.RoomTypeDeluxe], row.Label)
	}
	assert.Equal(t, 0, rep.Data[14].OccupancyRate, "check-out day is free")
	assert.Equal(t, 0, rep.Data[8].OccupancyRate)
	assert.Equal(t, 0, rep.Data[19].OccupancyRate, "pending stays do not occupy")

	w = env.do(t, http.MethodGet, "/api/reports/occupancy?"+january+"&roomType=standard", env.admin(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rep = decode[reportJSON](t, w)
	assert.Equal(t, 1, rep.TotalRooms)
	assert.Equal(t, 0, rep.Data[9].OccupancyRate)

	w = env.do(t, http.MethodGet, "/api/reports/occupancy?"+january+"&roomType=penthouse", env.admin(t), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingsReport_Scoping(t *testing.T) {
	env := newTestEnv(t)
	seedJanuary(t, env)

	testCases := []struct {
		name       string
		token      string
		query      string
		wantStatus int
		wantTotal  int
	}{
		{name: "guest sees own", token: env.guest(t), query: january, wantStatus: http.StatusOK, wantTotal: 2},
		{name: "guest passes own id", token: env.guest(t), query: january + "&userId=" + guestID.String(), wantStatus: http.StatusOK, wantTotal: 2},
		{name: "guest asks for another user", token: env.guest(t), query: january + "&userId=" + otherID.String(), wantStatus: http.StatusForbidden},
		{name: "admin sees all", token: env.admin(t), query: january, wantStatus: http.StatusOK, wantTotal: 3},
		{name: "admin filters by user", token: env.admin(t), query: january + "&userId=" + otherID.String(), wantStatus: http.StatusOK, wantTotal: 1},
		{name: "admin filters by status", token: env.admin(t), query: january + "&status=pending", wantStatus: http.StatusOK, wantTotal: 1},
		{name: "status all", token: env.admin(t), query: january + "&status=all", wantStatus: http.StatusOK, wantTotal: 3},
		{name: "unknown status", token: env.admin(t), query: january + "&status=archived", wantStatus: http.StatusBadRequest},
		{name: "unknown period", token: env.admin(t), query: "period=decade", wantStatus: http.StatusBadRequest},
		{name: "custom without from", token: env.admin(t), query: "period=custom&to=2024-01-31", wantStatus: http.StatusBadRequest},
		{name: "from after to", token: env.admin(t), query: "period=custom&from=2024-02-01&to=2024-01-01", wantStatus: http.StatusBadRequest},
		{name: "unknown format", token: env.admin(t), query: january + "&format=xml", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/reports/bookings?"+tc.query, tc.token, nil)
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			if tc.wantStatus != http.StatusOK {
				assert.NotEmpty(t, decode[errorResponse](t, w).Error.Code)
				return
			}
			rep := decode[reportJSON](t, w)
			assert.Equal(t, tc.wantTotal, rep.TotalBookings)

			sum := 0
			for _, row := range rep.Data {
				sum += row.Count
			}
			assert.Equal(t, rep.TotalBookings, sum)
		})
	}
}

func TestBookingsReport_DefaultPeriod(t *testing.T) {
	env := newTestEnv(t)
	seedJanuary(t, env)

	w := env.do(t, http.MethodGet, "/api/reports/bookings", env.admin(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rep := decode[reportJSON](t, w)
	assert.Equal(t, "month", rep.Period)
	assert.Equal(t, "day", rep.Granularity)
	assert.Len(t, rep.Data, 20, "January 1st through the 20th")
	assert.True(t, rep.To.Equal(fixedNow))
	assert.Equal(t, 1, rep.Data[4].StatusBreakdown["pending"])
	assert.Equal(t, 1, rep.Data[4].StatusBreakdown["cancelled"])
	assert.Contains(t, rep.Data[0].StatusBreakdown, "completed")
}

func TestReports_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/reports/revenue", "/api/reports/occupancy", "/api/reports/bookings/export"} {
		w := env.do(t, http.MethodGet, path, env.guest(t), nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestRevenueReport_CSV(t *testing.T) {
	env := newTestEnv(t)
	seedJanuary(t, env)

	w := env.do(t, http.MethodGet, "/api/reports/revenue?"+january+"&format=csv", env.admin(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="revenue-report-2024-01-20.csv"`, w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 32)
	assert.Equal(t, `"Period","Revenue","Bookings"`, lines[0])
	assert.Equal(t, `"1/1","500.00","1"`, lines[1])
	assert.Equal(t, `"1/2","0.00","0"`, lines[2])
}

func TestOccupancyReport_CSV(t *testing.T) {
	env := newTestEnv(t)
	seedJanuary(t, env)

	w := env.do(t, http.MethodGet, "/api/reports/occupancy?"+january+"&format=csv", env.admin(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 32)
	assert.True(t, strings.HasPrefix(lines[0], `"Period","Occupied Rooms","Total Rooms","Occupancy Rate"`))
	assert.True(t, strings.HasPrefix(lines[10], `"1/10","1","2","50%"`), lines[10])
}

func TestExportBookings(t *testing.T) {
	env := newTestEnv(t)
	seedJanuary(t, env)

	w := env.do(t, http.MethodGet, "/api/reports/bookings/export?"+january+"&status=approved", env.admin(t), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "booking-list-report-2024-01-20.csv")

	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `"ID","User ID","Room ID"`))
	assert.Contains(t, lines[1], `"2024-01-10T00:00:00Z","2024-01-15T00:00:00Z","1","500.00","approved"`)
}

func TestReports_CustomThresholdsWithDateOnlyTo(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		query       string
		granularity string
		buckets     int
	}{
		{query: "period=custom&from=2024-01-01&to=2024-01-02", granularity: "hour", buckets: 48},
		{query: "period=custom&from=2024-01-01&to=2024-02-01", granularity: "day", buckets: 32},
		{query: "period=custom&from=2024-01-01&to=2024-02-02", granularity: "month", buckets: 2},
		{query: "period=custom&from=2024-01-01T00:00:00Z&to=2024-01-02T23:59:59Z", granularity: "day", buckets: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			for _, path := range []string{"/api/reports/bookings", "/api/reports/revenue", "/api/reports/occupancy"} {
				w := env.do(t, http.MethodGet, path+"?"+tc.query, env.admin(t), nil)
				require.Equal(t, http.StatusOK, w.Code, w.Body.String())

				rep := decode[reportJSON](t, w)
				assert.Equal(t, tc.granularity, rep.Granularity, path)
				assert.Len(t, rep.Data, tc.buckets, path)
			}
		})
	}
}
