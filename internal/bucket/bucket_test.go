package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docindex/internal/geo"
)

func TestNumericTermsCount(t *testing.T) {
	terms := NumericTerms("N", 12345, DefaultNumeric)
	assert.Len(t, terms, len(DefaultNumeric))
}

func TestNumericTermsBucketing(t *testing.T) {
	terms := NumericTerms("N", 12345, []uint64{100})
	require.Len(t, terms, 1)
	assert.Contains(t, terms[0], "N~100")
}

func TestFloorDivNegative(t *testing.T) {
	assert.Equal(t, int64(-13), floorDiv(-1234, 100))
	assert.Equal(t, int64(12), floorDiv(1234, 100))
}

func TestDateTermsTruncation(t *testing.T) {
	ts := time.Date(2024, 7, 15, 13, 45, 30, 0, time.UTC)
	terms := DateTerms("D", ts, DefaultDate)
	assert.Len(t, terms, len(DefaultDate))
}

func TestTruncateDateUnits(t *testing.T) {
	ts := time.Date(2024, 7, 15, 13, 45, 30, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 7, 15, 13, 0, 0, 0, time.UTC), truncateDate(ts, Hour))
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), truncateDate(ts, Day))
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), truncateDate(ts, Month))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), truncateDate(ts, Year))
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), truncateDate(ts, Decade))
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), truncateDate(ts, Century))
}

func TestTimeTermsCount(t *testing.T) {
	terms := TimeTerms("T", 3725, DefaultTime)
	assert.Len(t, terms, len(DefaultTime))
}

func TestGeoTermsDeduplicates(t *testing.T) {
	ranges := []geo.Range{{Start: 0, End: 15}}
	terms := GeoTerms("G", ranges, 4, []int{2})
	assert.Len(t, terms, 1)
}

func TestGeoTermsSkipsLevelsAboveCurrent(t *testing.T) {
	ranges := []geo.Range{{Start: 0, End: 3}}
	terms := GeoTerms("G", ranges, 2, []int{5})
	assert.Empty(t, terms)
}

func TestNumericTermsFieldAndGlobalSharedAccuracy(t *testing.T) {
	terms := NumericTermsFieldAndGlobal("F", "G", 555, []uint64{100}, []uint64{100})
	require.Len(t, terms, 2)
}

func TestNumericTermsFieldAndGlobalDifferentAccuracy(t *testing.T) {
	terms := NumericTermsFieldAndGlobal("F", "G", 555, []uint64{100}, []uint64{1000})
	assert.Len(t, terms, 2)
}

func TestNumericTermsFieldAndGlobalSamePrefix(t *testing.T) {
	terms := NumericTermsFieldAndGlobal("F", "F", 555, []uint64{100}, []uint64{100})
	assert.Len(t, terms, 1)
}
