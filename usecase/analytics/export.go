package analytics

import (
	"encoding/csv"
	"strings"
	"time"

	"github.com/auktia/backend/domain"
)

var csvHeader = []string{"id", "type", "timestamp", "payload"}

// ExportCSV renders one row per raw event: id, type, ISO timestamp and the
// JSON-encoded payload. Fields containing commas, quotes or newlines are
// quoted with embedded quotes doubled (RFC 4180).
func ExportCSV(events []domain.AnalyticsEvent) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(csvHeader)
	for _, ev := range events {
		_ = w.Write([]string{
			ev.ID,
			string(ev.Type),
			ev.Time().Format(time.RFC3339),
			string(ev.Payload),
		})
	}
	w.Flush()
	return sb.String()
}

// ExportTypeCSV is the drill-down export: the same row shape, restricted to
// a single event type.
func ExportTypeCSV(events []domain.AnalyticsEvent, t domain.EventType) string {
	filtered := make([]domain.AnalyticsEvent, 0, len(events))
	for _, ev := range events {
		if ev.Type == t {
			filtered = append(filtered, ev)
		}
	}
	return ExportCSV(filtered)
}
