// Package bucket generates the accuracy-bucketed terms C3 emits for
// indexable numeric-like values (spec.md §4.3), grounded on
// original_source's serialise.cc accuracy tables.
package bucket

import (
	"fmt"
	"time"

	"docindex/internal/geo"
	"docindex/internal/serialize"
)

// DefaultNumeric is the default numeric accuracy bucket widths.
var DefaultNumeric = []uint64{100, 1000, 10000, 100000, 1000000, 100000000}

// DateUnit names a calendar truncation unit for date/datetime accuracy.
type DateUnit string

const (
	Hour   DateUnit = "hour"
	Day    DateUnit = "day"
	Month  DateUnit = "month"
	Year   DateUnit = "year"
	Decade DateUnit = "decade"
	Century DateUnit = "century"
)

// DefaultDate is the default date/datetime accuracy bucket sequence.
var DefaultDate = []DateUnit{Hour, Day, Month, Year, Decade, Century}

// TimeUnit names a sub-day truncation unit for time/timedelta accuracy.
type TimeUnit string

const (
	Minute TimeUnit = "minute"
	TimeHour TimeUnit = "hour"
)

// DefaultTime is the default time/timedelta accuracy bucket sequence.
var DefaultTime = []TimeUnit{Minute, TimeHour}

// DefaultGeo is the default HTM-level accuracy bucket sequence.
var DefaultGeo = []int{3, 5, 8, 10, 12, 15}

// AccPrefix derives the per-accuracy term prefix from a field prefix and
// bucket label: prefix || "~" || label. Spec.md §4.3 names the
// acc_prefix array without pinning its exact construction; this
// separator-joined form keeps prefixes lexically distinct per bucket
// while remaining trivially reversible for diagnostics.
func AccPrefix(prefix, label string) string {
	return prefix + "~" + label
}

// NumericTerms emits one bucket term per width in widths for integer n:
// acc_prefix || encode(floor(n/w)*w), per spec.md §4.3.
func NumericTerms(prefix string, n int64, widths []uint64) []string {
	terms := make([]string, 0, len(widths))
	for _, w := range widths {
		if w == 0 {
			continue
		}
		bucketed := floorDiv(n, int64(w)) * int64(w)
		label := fmt.Sprintf("%d", w)
		terms = append(terms, AccPrefix(prefix, label)+string(serialize.SerialiseInteger(bucketed)))
	}
	return terms
}

func floorDiv(n, w int64) int64 {
	q := n / w
	if (n%w != 0) && ((n < 0) != (w < 0)) {
		q--
	}
	return q
}

// DateTerms emits one bucket term per unit in units for a timestamp,
// truncating t to each calendar unit boundary before re-encoding.
func DateTerms(prefix string, t time.Time, units []DateUnit) []string {
	terms := make([]string, 0, len(units))
	for _, u := range units {
		truncated := truncateDate(t, u)
		terms = append(terms, AccPrefix(prefix, string(u))+string(serialize.SerialiseDatetime(truncated)))
	}
	return terms
}

func truncateDate(t time.Time, unit DateUnit) time.Time {
	t = t.UTC()
	switch unit {
	case Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case Day:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	case Decade:
		return time.Date((t.Year()/10)*10, 1, 1, 0, 0, 0, 0, time.UTC)
	case Century:
		return time.Date((t.Year()/100)*100, 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// TimeTerms emits one bucket term per unit in units for a seconds-of-day
// (or signed timedelta-seconds) value.
func TimeTerms(prefix string, secondsOfDay float64, units []TimeUnit) []string {
	terms := make([]string, 0, len(units))
	for _, u := range units {
		var width float64
		switch u {
		case Minute:
			width = 60
		case TimeHour:
			width = 3600
		}
		bucketed := float64(int64(secondsOfDay/width)) * width
		terms = append(terms, AccPrefix(prefix, string(u))+string(serialize.SortableSerialise(bucketed)))
	}
	return terms
}

// GeoTerms emits, for each HTM level in levels, one term per distinct
// ancestor cell id that any range in ranges (computed at currentLevel)
// descends from — the "HTM ancestor cell id at the requested level for
// each range element" spec.md §4.3 describes.
func GeoTerms(prefix string, ranges []geo.Range, currentLevel int, levels []int) []string {
	var terms []string
	for _, level := range levels {
		if level > currentLevel {
			continue
		}
		shift := uint(2 * (currentLevel - level))
		seen := make(map[uint64]bool)
		for _, r := range ranges {
			start := r.Start >> shift
			end := r.End >> shift
			for id := start; id <= end; id++ {
				if seen[id] {
					continue
				}
				seen[id] = true
				terms = append(terms, AccPrefix(prefix, fmt.Sprintf("htm%d", level))+string(serialize.SerialisePositive(id)))
			}
		}
	}
	return terms
}

// NumericTermsFieldAndGlobal implements spec.md §4.3's single-pass
// optimization: when fieldAccuracy equals globalAccuracy, both prefixes'
// terms are derived from one bucketing pass over the shared widths
// (computing floor(n/w)*w once per width) instead of bucketing n twice.
// When the accuracy sets differ, it falls back to one pass per set.
func NumericTermsFieldAndGlobal(fieldPrefix, globalPrefix string, n int64, fieldAccuracy, globalAccuracy []uint64) []string {
	if equalUint64(fieldAccuracy, globalAccuracy) {
		terms := make([]string, 0, 2*len(fieldAccuracy))
		for _, w := range fieldAccuracy {
			if w == 0 {
				continue
			}
			encoded := string(serialize.SerialiseInteger(floorDiv(n, int64(w)) * int64(w)))
			label := fmt.Sprintf("%d", w)
			terms = append(terms, AccPrefix(fieldPrefix, label)+encoded)
			if fieldPrefix != globalPrefix {
				terms = append(terms, AccPrefix(globalPrefix, label)+encoded)
			}
		}
		return terms
	}
	terms := NumericTerms(fieldPrefix, n, fieldAccuracy)
	if fieldPrefix != globalPrefix {
		terms = append(terms, NumericTerms(globalPrefix, n, globalAccuracy)...)
	}
	return terms
}

func equalUint64(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
