package report

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
)

// Kind names a report shape. It is also the CSV filename prefix.
type Kind string

const (
	KindBookings  Kind = "bookings"
	KindRevenue   Kind = "revenue"
	KindOccupancy Kind = "occupancy"
)

// Query is a validated report request.
type Query struct {
	Period   Period
	From     *time.Time
	To       *time.Time
	// ToIsDate marks a To that the caller sent as a bare date and that was
	// widened to the end of that day. Custom granularity is measured to the
	// date itself, not to its last millisecond.
	ToIsDate bool
	Status   *model.BookingStatus // nil means all statuses
	UserID   uuid.UUID            // bookings report only; Nil means every user
	RoomType parse.RoomType       // occupancy report only; empty means every type
	Now      time.Time
}

// ParseStatusFilter maps the status query parameter to a filter. Empty and
// "all" mean no filter.
func ParseStatusFilter(raw string) (*model.BookingStatus, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "all" {
		return nil, nil
	}
	status := model.BookingStatus(s)
	if !status.Valid() {
		return nil, apperr.Validation("invalid status", map[string]string{
			"status": "Must be all, pending, confirmed, approved, cancelled or completed",
		})
	}
	return &status, nil
}

// Meta describes the window a report covers.
type Meta struct {
	Kind        Kind        `json:"kind"`
	Period      Period      `json:"period"`
	Granularity Granularity `json:"granularity"`
	From        time.Time   `json:"from"`
	To          time.Time   `json:"to"`
}

// plan resolves the range, granularity and buckets shared by every report.
func (q Query) plan(kind Kind) (Meta, Range, []Bucket, error) {
	r, g, err := q.resolve()
	if err != nil {
		return Meta{}, Range{}, nil, err
	}
	if n := BucketCount(g, r.From, r.To); n > MaxBuckets {
		return Meta{}, Range{}, nil, apperr.Validation("range too large", map[string]string{
			"from": "Range produces too many buckets for the selected period",
		})
	}
	meta := Meta{Kind: kind, Period: q.Period, Granularity: g, From: r.From, To: r.To}
	return meta, r, GenerateBuckets(g, r.From, r.To), nil
}

// resolve returns the effective range and its granularity.
func (q Query) resolve() (Range, Granularity, error) {
	r, err := ResolveRange(q.Period, q.From, q.To, q.Now)
	if err != nil {
		return Range{}, "", err
	}
	gTo := r.To
	if q.ToIsDate && q.To != nil {
		gTo = truncate(Daily, r.To)
		if gTo.Before(r.From) {
			gTo = r.From
		}
	}
	g, err := ResolveGranularity(q.Period, r.From, gTo)
	if err != nil {
		return Range{}, "", err
	}
	return r, g, nil
}

// Window resolves the report range and the span its buckets cover. The span
// starts at or before the range and ends at or after it because buckets are
// whole hours, days or months.
func (q Query) Window() (rng, span Range, err error) {
	rng, g, err := q.resolve()
	if err != nil {
		return Range{}, Range{}, err
	}
	loc := rng.To.Location()
	span = Range{
		From: truncate(g, rng.From.In(loc)),
		To:   advance(g, truncate(g, rng.To)).Add(-time.Millisecond),
	}
	return rng, span, nil
}

func (q Query) statusMatches(s model.BookingStatus) bool {
	return q.Status == nil || *q.Status == s
}

// StatusBreakdown counts bookings per status. Every key is always present.
type StatusBreakdown struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Approved  int `json:"approved"`
	Cancelled int `json:"cancelled"`
	Completed int `json:"completed"`
}

func (s *StatusBreakdown) add(status model.BookingStatus) {
	switch status {
	case model.StatusPending:
		s.Pending++
	case model.StatusConfirmed:
		s.Confirmed++
	case model.StatusApproved:
		s.Approved++
	case model.StatusCancelled:
		s.Cancelled++
	case model.StatusCompleted:
		s.Completed++
	}
}

// BookingCountRow is one bucket of a booking-count report.
type BookingCountRow struct {
	Bucket
	Count           int             `json:"count"`
	StatusBreakdown StatusBreakdown `json:"statusBreakdown"`
}

type BookingCountReport struct {
	Meta
	Data          []BookingCountRow `json:"data"`
	TotalBookings int               `json:"totalBookings"`
}

// BookingCount buckets bookings by creation time, with a per-status
// breakdown. Filters: user, status and creation time within the range.
func BookingCount(q Query, bookings []model.Booking) (*BookingCountReport, error) {
	meta, r, buckets, err := q.plan(KindBookings)
	if err != nil {
		return nil, err
	}

	rows := make([]BookingCountRow, len(buckets))
	for i, b := range buckets {
		rows[i].Bucket = b
	}

	total := 0
	for _, b := range bookings {
		if q.UserID != uuid.Nil && b.UserID != q.UserID {
			continue
		}
		if !q.statusMatches(b.Status) || !r.Contains(b.CreatedAt) {
			continue
		}
		total++
		if i := IndexOf(buckets, b.CreatedAt); i >= 0 {
			rows[i].Count++
			rows[i].StatusBreakdown.add(b.Status)
		}
	}

	return &BookingCountReport{Meta: meta, Data: rows, TotalBookings: total}, nil
}

// RevenueRow is one bucket of a revenue report.
type RevenueRow struct {
	Bucket
	Revenue      float64 `json:"revenue"`
	BookingCount int     `json:"bookingCount"`
}

type RevenueReport struct {
	Meta
	Data          []RevenueRow `json:"data"`
	TotalRevenue  float64      `json:"totalRevenue"`
	TotalBookings int          `json:"totalBookings"`
}

// Revenue sums TotalPrice of revenue-eligible bookings by creation time.
func Revenue(q Query, bookings []model.Booking) (*RevenueReport, error) {
	meta, r, buckets, err := q.plan(KindRevenue)
	if err != nil {
		return nil, err
	}

	rows := make([]RevenueRow, len(buckets))
	for i, b := range buckets {
		rows[i].Bucket = b
	}

	rep := &RevenueReport{Meta: meta}
	for _, b := range bookings {
		if !booking.IsRevenueEligible(b.Status) || !q.statusMatches(b.Status) {
			continue
		}
		if !r.Contains(b.CreatedAt) {
			continue
		}
		rep.TotalRevenue += b.TotalPrice
		rep.TotalBookings++
		if i := IndexOf(buckets, b.CreatedAt); i >= 0 {
			rows[i].Revenue += b.TotalPrice
			rows[i].BookingCount++
		}
	}

	for i := range rows {
		rows[i].Revenue = roundMoney(rows[i].Revenue)
	}
	rep.TotalRevenue = roundMoney(rep.TotalRevenue)
	rep.Data = rows
	return rep, nil
}

// OccupancyRow is one bucket of an occupancy report.
type OccupancyRow struct {
	Bucket
	OccupiedRooms     int                    `json:"occupiedRooms"`
	TotalRooms        int                    `json:"totalRooms"`
	OccupancyRate     int                    `json:"occupancyRate"`
	RoomTypeBreakdown map[parse.RoomType]int `json:"roomTypeBreakdown"`
}

type OccupancyReport struct {
	Meta
	RoomType   parse.RoomType `json:"roomType,omitempty"`
	Data       []OccupancyRow `json:"data"`
	TotalRooms int            `json:"totalRooms"`
}

// Occupancy computes, per bucket, the distinct rooms occupied by any
// revenue-eligible booking whose stay overlaps the bucket, regardless of when
// the booking was created.
func Occupancy(q Query, bookings []model.Booking, rooms []model.Room) (*OccupancyReport, error) {
	meta, _, buckets, err := q.plan(KindOccupancy)
	if err != nil {
		return nil, err
	}

	inventory := make(map[uuid.UUID]model.Room, len(rooms))
	for _, room := range rooms {
		if q.RoomType != "" && room.RoomType() != q.RoomType {
			continue
		}
		inventory[room.ID] = room
	}

	candidates := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if booking.IsRevenueEligible(b.Status) && q.statusMatches(b.Status) {
			candidates = append(candidates, b)
		}
	}

	rows := make([]OccupancyRow, len(buckets))
	for i, bucket := range buckets {
		occupied := OccupiedRooms(candidates, inventory, bucket.Start, bucket.End)

		breakdown := make(map[parse.RoomType]int, len(parse.RoomTypes))
		for _, t := range parse.RoomTypes {
			breakdown[t] = 0
		}
		for id := range occupied {
			breakdown[inventory[id].RoomType()]++
		}

		rows[i] = OccupancyRow{
			Bucket:            bucket,
			OccupiedRooms:     len(occupied),
			TotalRooms:        len(inventory),
			OccupancyRate:     OccupancyRate(len(occupied), len(inventory)),
			RoomTypeBreakdown: breakdown,
		}
	}

	return &OccupancyReport{Meta: meta, RoomType: q.RoomType, Data: rows, TotalRooms: len(inventory)}, nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
