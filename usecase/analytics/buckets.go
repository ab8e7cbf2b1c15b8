package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/auktia/backend/domain"
)

// Granularity is the bucket width of a time series.
type Granularity string

const (
	GranHour  Granularity = "hour"
	GranDay   Granularity = "day"
	GranWeek  Granularity = "week"
	GranMonth Granularity = "month"
)

// Bucket is one point of a time series.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Bucketize groups events into fixed-width time buckets and returns them in
// ascending chronological order. Every event maps to exactly one bucket.
// Labels round-trip through ParseLabel for all four granularities, which is
// what the ordering is derived from.
func Bucketize(events []domain.AnalyticsEvent, gran Granularity) []Bucket {
	counts := make(map[string]int)
	for _, ev := range events {
		counts[Label(ev.Time(), gran)]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for label, count := range counts {
		buckets = append(buckets, Bucket{Label: label, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		ti, _ := ParseLabel(buckets[i].Label, gran)
		tj, _ := ParseLabel(buckets[j].Label, gran)
		return ti.Before(tj)
	})
	return buckets
}

// Label formats the bucket label for a timestamp. Weeks use ISO-8601
// numbering: week 1 is the week containing the year's first Thursday.
func Label(t time.Time, gran Granularity) string {
	t = t.UTC()
	switch gran {
	case GranHour:
		return t.Format("2006-01-02 15") + ":00"
	case GranWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// ParseLabel converts a bucket label back to the bucket's start time (UTC).
func ParseLabel(label string, gran Granularity) (time.Time, error) {
	switch gran {
	case GranHour:
		return time.Parse("2006-01-02 15:04", label)
	case GranWeek:
		return parseISOWeek(label)
	case GranMonth:
		return time.Parse("2006-01", label)
	default:
		return time.Parse("2006-01-02", label)
	}
}

// parseISOWeek resolves "YYYY-Www" to the Monday starting that ISO week.
func parseISOWeek(label string) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(label, "%d-W%d", &year, &week); err != nil {
		return time.Time{}, fmt.Errorf("invalid week label %q: %w", label, err)
	}
	// January 4 is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, -(weekday - 1))
	return week1Monday.AddDate(0, 0, (week-1)*7), nil
}

// PreviousRange returns the immediately preceding period of identical
// duration, used for period-over-period comparison.
func PreviousRange(from, to int64) (int64, int64) {
	duration := to - from
	return from - duration, from
}

// AutoGranularity picks a bucket width for an arbitrary custom range:
// up to two days of span get hourly buckets, up to sixty days daily, and
// anything longer monthly.
func AutoGranularity(from, to int64) Granularity {
	span := time.Duration(to-from) * time.Millisecond
	switch {
	case span <= 48*time.Hour:
		return GranHour
	case span <= 60*24*time.Hour:
		return GranDay
	default:
		return GranMonth
	}
}

// NamedRange identifies a predefined reporting period.
type NamedRange string

const (
	RangeToday NamedRange = "today"
	RangeWeek  NamedRange = "week" // last 7 days inclusive of today
	RangeMonth NamedRange = "month"
	RangeYear  NamedRange = "year"
)

// ResolveRange expands a named range relative to now and returns its bounds
// (ms since epoch) and fixed granularity.
func ResolveRange(name NamedRange, now time.Time) (int64, int64, Granularity) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch name {
	case RangeToday:
		return dayStart.UnixMilli(), now.UnixMilli(), GranHour
	case RangeWeek:
		return dayStart.AddDate(0, 0, -6).UnixMilli(), now.UnixMilli(), GranDay
	case RangeMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return monthStart.UnixMilli(), now.UnixMilli(), GranDay
	case RangeYear:
		yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return yearStart.UnixMilli(), now.UnixMilli(), GranMonth
	default:
		return 0, now.UnixMilli(), AutoGranularity(0, now.UnixMilli())
	}
}
