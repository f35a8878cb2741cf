package serialize

import (
	"strconv"
	"strings"
)

// DetectionFlags gates which trials GuessType attempts, mirroring the
// effective specification's per-type "*_detection" flags (spec.md §3).
type DetectionFlags struct {
	UUID      bool
	Datetime  bool
	Date      bool
	Time      bool
	Timedelta bool
	Geo       bool
	Numeric   bool
	Text      bool
	Bool      bool
}

// DefaultDetectionFlags enables every trial, matching a freshly
// bootstrapped field with no persisted detection overrides.
func DefaultDetectionFlags() DetectionFlags {
	return DetectionFlags{true, true, true, true, true, true, true, true, true}
}

// textMinLength and the whitespace rule below implement spec.md §4.1's
// "text (if contains whitespace or length >= 128)" trial.
const textMinLength = 128

var ewktTags = []string{
	"POINT", "MULTIPOINT", "CIRCLE", "MULTICIRCLE", "CONVEX", "MULTICONVEX",
	"POLYGON", "MULTIPOLYGON", "CHULL", "MULTICHULL",
	"GEOMETRYCOLLECTION", "GEOMETRYINTERSECTION",
}

// LooksLikeEWKT performs the cheap grammar sniff GuessType uses to pick
// the geo trial; it does not validate full EWKT grammar (that is
// internal/geo's job — see internal/geo's Parse).
func LooksLikeEWKT(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "SRID=") {
		if idx := strings.IndexByte(s, ';'); idx >= 0 {
			s = s[idx+1:]
		}
	}
	for _, tag := range ewktTags {
		if strings.HasPrefix(s, tag) {
			return true
		}
	}
	return false
}

// GuessType infers the concrete type of a free-text value, trying in this
// fixed order: uuid, datetime, date, time, timedelta, ewkt-geo, positive,
// integer, float, text, keyword — so a non-negative integer string
// guesses positive and a negative one integer. Each trial is gated by
// the corresponding detection flag.
func GuessType(value string, flags DetectionFlags) FieldType {
	if flags.UUID && IsValidUUID(value) {
		return FieldUUID
	}
	if flags.Datetime {
		if _, err := ParseDatetime(value); err == nil && strings.ContainsAny(value, "Tt ") {
			return FieldDatetime
		}
	}
	if flags.Date {
		if _, err := ParseDate(value); err == nil {
			return FieldDate
		}
	}
	if flags.Time {
		if _, err := ParseTimeOfDay(value); err == nil {
			return FieldTime
		}
	}
	if flags.Timedelta {
		if looksLikeTimedelta(value) {
			if _, err := ParseTimedelta(value); err == nil {
				return FieldTimedelta
			}
		}
	}
	if flags.Geo && LooksLikeEWKT(value) {
		return FieldGeo
	}
	if flags.Numeric {
		if _, err := strconv.ParseUint(value, 10, 64); err == nil {
			return FieldPositive
		}
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			return FieldInteger
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return FieldFloat
		}
	}
	if flags.Text && (strings.ContainsAny(value, " \t\n") || len(value) >= textMinLength) {
		return FieldText
	}
	return FieldKeyword
}

// looksLikeTimedelta avoids classifying plain numeric strings (already
// handled by the numeric trial) or date-like strings as timedeltas; Go
// duration suffixes (h/m/s) or a leading sign plus those suffixes are
// the signal.
func looksLikeTimedelta(s string) bool {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	return trimmed != "" && strings.ContainsAny(trimmed, "hms") && !strings.ContainsAny(trimmed, "-/:")
}
