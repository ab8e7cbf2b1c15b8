package analytics

import (
	"sort"

	"github.com/auktia/backend/domain"
)

// TopLimit caps every breakdown.
const TopLimit = 8

// TopEntry is one row of a dimension breakdown.
type TopEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TopSections breaks section_view events down by the sectionId payload
// field: descending by count, capped at TopLimit, ties broken by first-seen
// order.
func TopSections(events []domain.AnalyticsEvent) []TopEntry {
	return topBy(events, domain.EventSectionView, func(ev domain.AnalyticsEvent) string {
		return ev.Field("sectionId")
	})
}

// TopRegistrations breaks registration_submit events down by title, falling
// back to the auction identifier when no title was recorded.
func TopRegistrations(events []domain.AnalyticsEvent) []TopEntry {
	return topBy(events, domain.EventRegistration, func(ev domain.AnalyticsEvent) string {
		if title := ev.Field("title"); title != "" {
			return title
		}
		return ev.Field("auctionId")
	})
}

func topBy(events []domain.AnalyticsEvent, t domain.EventType, key func(domain.AnalyticsEvent) string) []TopEntry {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, ev := range events {
		if ev.Type != t {
			continue
		}
		k := key(ev)
		if k == "" {
			continue
		}
		if _, ok := counts[k]; !ok {
			firstSeen[k] = order
			order++
		}
		counts[k]++
	}

	entries := make([]TopEntry, 0, len(counts))
	for k, c := range counts {
		entries = append(entries, TopEntry{Key: k, Count: c})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return firstSeen[entries[i].Key] < firstSeen[entries[j].Key]
	})
	if len(entries) > TopLimit {
		entries = entries[:TopLimit]
	}
	return entries
}
