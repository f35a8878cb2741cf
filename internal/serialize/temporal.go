package serialize

import (
	"strconv"
	"strings"
	"time"

	"docindex/internal/xerrors"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseDate parses a calendar date (no time-of-day) in UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, xerrors.New(xerrors.OutOfRange, "date: cannot parse %q", s)
}

// ParseDatetime parses a full timestamp in UTC.
func ParseDatetime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, xerrors.New(xerrors.OutOfRange, "datetime: cannot parse %q", s)
}

// SerialiseDate encodes a calendar date as seconds since epoch at
// midnight UTC, via the shared sortable float encoding.
func SerialiseDate(t time.Time) []byte {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return SortableSerialise(float64(midnight.Unix()))
}

// SerialiseDatetime encodes a full timestamp as fractional seconds since
// epoch, via the shared sortable float encoding.
func SerialiseDatetime(t time.Time) []byte {
	secs := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return SortableSerialise(secs)
}

// DeserialiseDatetime reverses SerialiseDatetime.
func DeserialiseDatetime(data []byte) (time.Time, error) {
	secs, err := SortableDeserialise(data)
	if err != nil {
		return time.Time{}, err
	}
	whole := int64(secs)
	frac := secs - float64(whole)
	return time.Unix(whole, int64(frac*1e9)).UTC(), nil
}

// DeserialiseDate reverses SerialiseDate, returning the midnight instant.
func DeserialiseDate(data []byte) (time.Time, error) {
	return DeserialiseDatetime(data)
}

// ParseTimeOfDay parses "HH:MM:SS[.fff]" into seconds-of-day, validating
// the 0 <= t < 86400 range from spec.md §4.1.
func ParseTimeOfDay(s string) (float64, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, xerrors.New(xerrors.OutOfRange, "time: expected HH:MM:SS, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, xerrors.Wrap(xerrors.OutOfRange, err, "time: bad hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, xerrors.Wrap(xerrors.OutOfRange, err, "time: bad minute in %q", s)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, xerrors.Wrap(xerrors.OutOfRange, err, "time: bad second in %q", s)
	}
	total := float64(h*3600+m*60) + sec
	if total < 0 || total >= 86400 {
		return 0, xerrors.New(xerrors.OutOfRange, "time: %q out of range [0, 86400)", s)
	}
	return total, nil
}

// SerialiseTime encodes seconds-of-day (0 <= t < 86400) via the shared
// sortable float encoding, rejecting out-of-range values.
func SerialiseTime(secondsOfDay float64) ([]byte, error) {
	if secondsOfDay < 0 || secondsOfDay >= 86400 {
		return nil, xerrors.New(xerrors.OutOfRange, "time: %v out of range [0, 86400)", secondsOfDay)
	}
	return SortableSerialise(secondsOfDay), nil
}

// DeserialiseTime reverses SerialiseTime.
func DeserialiseTime(data []byte) (float64, error) {
	return SortableDeserialise(data)
}

// SerialiseTimedelta encodes signed seconds via the shared sortable
// float encoding; any finite value is valid.
func SerialiseTimedelta(seconds float64) []byte {
	return SortableSerialise(seconds)
}

// DeserialiseTimedelta reverses SerialiseTimedelta.
func DeserialiseTimedelta(data []byte) (float64, error) {
	return SortableDeserialise(data)
}

// ParseTimedelta parses a signed duration in seconds, accepting either a
// bare number of seconds or a Go duration string ("1h2m3s").
func ParseTimedelta(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, xerrors.Wrap(xerrors.OutOfRange, err, "timedelta: cannot parse %q", s)
	}
	return d.Seconds(), nil
}
