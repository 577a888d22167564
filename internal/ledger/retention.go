package ledger

import (
	"time"
)

// DefaultWindow is how long a provider photo stays excluded after use
const DefaultWindow = 7 * 24 * time.Hour

// RecentIDs returns the photo IDs used within the default window
func RecentIDs(records []UsageRecord, now time.Time) map[string]struct{} {
	return RecentIDsWithin(records, now, DefaultWindow)
}

// RecentIDsWithin returns the photo IDs whose records lie in [now-window, now]
func RecentIDsWithin(records []UsageRecord, now time.Time, window time.Duration) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, r := range records {
		if r.UsedAt.Within(now, window) {
			ids[r.PhotoID] = struct{}{}
		}
	}
	return ids
}

// Prune returns the records inside the default window, preserving order
func Prune(records []UsageRecord, now time.Time) []UsageRecord {
	return PruneWithin(records, now, DefaultWindow)
}

// PruneWithin returns the records inside [now-window, now], preserving order.
// The input slice is not modified.
func PruneWithin(records []UsageRecord, now time.Time, window time.Duration) []UsageRecord {
	kept := make([]UsageRecord, 0, len(records))
	for _, r := range records {
		if r.UsedAt.Within(now, window) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Append returns a new slice with rec added at the end
func Append(records []UsageRecord, rec UsageRecord) []UsageRecord {
	out := make([]UsageRecord, 0, len(records)+1)
	out = append(out, records...)
	return append(out, rec)
}

// Stats summarizes a ledger at a point in time
type Stats struct {
	Total     int        `json:"total"`
	Recent    int        `json:"recent"`
	Expired   int        `json:"expired"`
	Invalid   int        `json:"invalid"`
	Provider  int        `json:"provider"`
	Generated int        `json:"generated"`
	Oldest    *time.Time `json:"oldest,omitempty"`
	Newest    *time.Time `json:"newest,omitempty"`
}

// Summarize computes Stats for records relative to now
func Summarize(records []UsageRecord, now time.Time, window time.Duration) Stats {
	var s Stats
	for _, r := range records {
		s.Total++
		if r.IsGenerated() {
			s.Generated++
		} else {
			s.Provider++
		}

		if !r.UsedAt.Valid {
			s.Invalid++
			continue
		}
		if r.UsedAt.Within(now, window) {
			s.Recent++
		} else {
			s.Expired++
		}

		t := r.UsedAt.Time
		if s.Oldest == nil || t.Before(*s.Oldest) {
			s.Oldest = &t
		}
		if s.Newest == nil || t.After(*s.Newest) {
			s.Newest = &t
		}
	}
	return s
}
