package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"hotel-booking-backend/internal/apperr"
)

// Period is the report window keyword supplied by the client.
type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

// DefaultPeriod is used when the client sends none.
const DefaultPeriod = PeriodMonth

// ParsePeriod validates a period keyword. An empty string yields DefaultPeriod.
func ParsePeriod(raw string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case "":
		return DefaultPeriod, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom:
		return p, nil
	}
	return "", apperr.Validation("invalid period", map[string]string{
		"period": "Must be one of: today, week, month, year, custom",
	})
}

// Granularity is the bucket size of a report.
type Granularity string

const (
	Hourly  Granularity = "hour"
	Daily   Granularity = "day"
	Monthly Granularity = "month"
)

// Custom ranges up to this many (ceiled) days use hourly buckets, up to
// maxDailyDays daily buckets, monthly beyond.
const (
	maxHourlyDays = 1
	maxDailyDays  = 31
)

// ResolveGranularity picks the bucket size for a report. Fixed periods map
// directly; custom derives it from the span between from and to. Every report
// kind goes through this function.
func ResolveGranularity(p Period, from, to time.Time) (Granularity, error) {
	switch p {
	case PeriodToday:
		return Hourly, nil
	case PeriodWeek, PeriodMonth:
		return Daily, nil
	case PeriodYear:
		return Monthly, nil
	case PeriodCustom:
		if to.Before(from) {
			return "", apperr.Validation("invalid range", map[string]string{"from": "Must not be after to"})
		}
		switch days := DaysDiff(from, to); {
		case days <= maxHourlyDays:
			return Hourly, nil
		case days <= maxDailyDays:
			return Daily, nil
		default:
			return Monthly, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", p)
}

// DaysDiff is ceil((to - from) / 24h).
func DaysDiff(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
