package report

import (
	"fmt"
	"sort"
	"time"

	"hotel-booking-backend/internal/apperr"
)

// MaxBuckets bounds the size of a single report.
const MaxBuckets = 5000

// Range is an effective, inclusive report window.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ResolveRange computes the effective window of a report. to defaults to now;
// from defaults to the start of the period that ends at to, in to's location:
// today from midnight, week from midnight six days earlier, month from the
// 1st, year from January 1st. Custom requires both ends.
func ResolveRange(p Period, from, to *time.Time, now time.Time) (Range, error) {
	if p == PeriodCustom && (from == nil || to == nil) {
		fields := map[string]string{}
		if from == nil {
			fields["from"] = "This field is required for a custom period"
		}
		if to == nil {
			fields["to"] = "This field is required for a custom period"
		}
		return Range{}, apperr.Validation("invalid range", fields)
	}

	end := now
	if to != nil {
		end = *to
	}
	loc := end.Location()
	y, m, d := end.Date()

	var start time.Time
	switch p {
	case PeriodToday:
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	case PeriodWeek:
		start = time.Date(y, m, d-6, 0, 0, 0, 0, loc)
	case PeriodMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case PeriodCustom:
	default:
		return Range{}, fmt.Errorf("unknown period %q", p)
	}
	if from != nil {
		start = from.In(loc)
	}

	if start.After(end) {
		return Range{}, apperr.Validation("invalid range", map[string]string{"from": "Must not be after to"})
	}
	return Range{From: start, To: end}, nil
}

// Contains reports whether t lies inside r, both ends inclusive.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Bucket is one labelled time window of a report. End is the last
// millisecond of the window; the next bucket starts at End+1ms.
type Bucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls in the bucket. Sub-millisecond instants
// after End still belong to it, so consecutive buckets tile the time line.
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End.Add(time.Millisecond))
}

// GenerateBuckets returns the ascending, contiguous buckets of size g from
// the bucket holding from through the bucket holding to. Boundaries are
// computed in to's location. The result depends only on the arguments.
func GenerateBuckets(g Granularity, from, to time.Time) []Bucket {
	loc := to.Location()
	from = from.In(loc)
	if from.After(to) {
		return nil
	}

	last := truncate(g, to)
	var buckets []Bucket
	for cur := truncate(g, from); !cur.After(last); {
		next := advance(g, cur)
		buckets = append(buckets, Bucket{
			Label: label(g, cur),
			Start: cur,
			End:   next.Add(-time.Millisecond),
		})
		cur = next
	}
	return buckets
}

// BucketCount is the number of buckets GenerateBuckets returns for the same
// arguments, computed without building them.
func BucketCount(g Granularity, from, to time.Time) int {
	loc := to.Location()
	from = from.In(loc)
	if from.After(to) {
		return 0
	}
	a, b := truncate(g, from), truncate(g, to)
	switch g {
	case Hourly:
		return int(b.Sub(a)/time.Hour) + 1
	case Daily:
		// Calendar days, immune to DST-shortened days.
		ay, am, ad := a.Date()
		by, bm, bd := b.Date()
		da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
		db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
		return int(db.Sub(da)/(24*time.Hour)) + 1
	default:
		return (b.Year()-a.Year())*12 + int(b.Month()-a.Month()) + 1
	}
}

// IndexOf returns the index of the bucket containing t, or -1.
func IndexOf(buckets []Bucket, t time.Time) int {
	i := sort.Search(len(buckets), func(i int) bool {
		return t.Before(buckets[i].End.Add(time.Millisecond))
	})
	if i < len(buckets) && buckets[i].Contains(t) {
		return i
	}
	return -1
}

func truncate(g Granularity, t time.Time) time.Time {
	y, m, d := t.Date()
	switch g {
	case Hourly:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
	case Daily:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	}
}

func advance(g Granularity, t time.Time) time.Time {
	switch g {
	case Hourly:
		return t.Add(time.Hour)
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	}
}

func label(g Granularity, t time.Time) string {
	switch g {
	case Hourly:
		return fmt.Sprintf("%d:00", t.Hour())
	case Daily:
		return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
	default:
		return t.Format("Jan 2006")
	}
}
