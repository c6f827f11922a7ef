package api

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"hotel-booking-backend/internal/apperr"
)

const dateLayout = "2006-01-02"

// parseInstant accepts RFC3339 or a bare YYYY-MM-DD date in loc. For a bare
// date, endOfDay selects 23:59:59.999 instead of midnight.
func parseInstant(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), nil
	}
	d, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return d, nil
}

// isDate reports whether raw is a bare YYYY-MM-DD date.
func isDate(raw string) bool {
	_, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	return err == nil
}

// optionalInstant parses a query value; empty means nil.
func optionalInstant(field, raw string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseInstant(raw, loc, endOfDay)
	if err != nil {
		return nil, apperr.Validation("invalid date", map[string]string{field: "Must be RFC3339 or YYYY-MM-DD"})
	}
	return &t, nil
}

func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid id", map[string]string{field: "Must be a valid UUID"})
	}
	return id, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
