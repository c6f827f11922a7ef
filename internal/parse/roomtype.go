package parse

import (
	"fmt"
	"regexp"
	"strings"
)

// RoomType is the typed room category used by the occupancy breakdown.
type RoomType string

const (
	RoomTypeStandard  RoomType = "standard"
	RoomTypeDeluxe    RoomType = "deluxe"
	RoomTypeExecutive RoomType = "executive"
	RoomTypeFamily    RoomType = "family"
	RoomTypeOther     RoomType = "other"
)

// RoomTypes lists every type in breakdown order.
var RoomTypes = []RoomType{RoomTypeStandard, RoomTypeDeluxe, RoomTypeExecutive, RoomTypeFamily, RoomTypeOther}

// Legacy rooms carry their type only inside a free-text name such as
// "Deluxe King (Sea view)". First match wins, in this order.
var legacyTypeRes = []struct {
	re  *regexp.Regexp
	typ RoomType
}{
	{regexp.MustCompile(`(?i)standard`), RoomTypeStandard},
	{regexp.MustCompile(`(?i)deluxe`), RoomTypeDeluxe},
	{regexp.MustCompile(`(?i)executive`), RoomTypeExecutive},
	{regexp.MustCompile(`(?i)family`), RoomTypeFamily},
}

// ClassifyRoomName infers a RoomType from free text. Unmatched names are
// RoomTypeOther.
func ClassifyRoomName(raw string) RoomType {
	s := strings.TrimSpace(raw)
	for _, l := range legacyTypeRes {
		if l.re.MatchString(s) {
			return l.typ
		}
	}
	return RoomTypeOther
}

// ParseRoomType parses an explicit type value as sent by clients.
func ParseRoomType(raw string) (RoomType, error) {
	s := RoomType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range RoomTypes {
		if s == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown room type: %q", raw)
}

// RoomTypeOf returns explicit when it is a known type, otherwise classifies
// the legacy text fields in order.
func RoomTypeOf(explicit RoomType, legacy ...string) RoomType {
	if t, err := ParseRoomType(string(explicit)); err == nil {
		return t
	}
	for _, text := range legacy {
		if t := ClassifyRoomName(text); t != RoomTypeOther {
			return t
		}
	}
	return RoomTypeOther
}
