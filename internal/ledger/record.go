package ledger

import (
	"encoding/json"
	"strings"
	"time"
)

// GeneratedPrefix marks photo IDs that were synthesized locally rather than
// fetched from the image provider.
const GeneratedPrefix = "generated-"

// UsageRecord is one entry in the ledger
type UsageRecord struct {
	PhotoID string    `json:"photo_id"`
	UsedAt  Timestamp `json:"used_at"`
	Path    string    `json:"path"`
	Post    string    `json:"post"`
}

// NewRecord builds a record stamped with the given time
func NewRecord(photoID, path, post string, usedAt time.Time) UsageRecord {
	return UsageRecord{
		PhotoID: photoID,
		UsedAt:  At(usedAt),
		Path:    path,
		Post:    post,
	}
}

// IsGenerated reports whether the record refers to a fallback image
func (r UsageRecord) IsGenerated() bool {
	return strings.HasPrefix(r.PhotoID, GeneratedPrefix)
}

// Timestamp is a point in time that tolerates malformed input.
//
// Unmarshalling never fails: a value that is not RFC 3339 is kept verbatim in
// Raw with Valid set to false.
type Timestamp struct {
	Time  time.Time
	Raw   string
	Valid bool
}

// At returns a valid Timestamp for t
func At(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC(), Valid: true}
}

// ParseTimestamp parses s, returning an invalid Timestamp on failure
func ParseTimestamp(s string) Timestamp {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return Timestamp{Raw: s}
	}
	return Timestamp{Time: t.UTC(), Valid: true}
}

// String returns the RFC 3339 form, or the raw input for invalid values
func (ts Timestamp) String() string {
	if !ts.Valid {
		return ts.Raw
	}
	return ts.Time.Format(time.RFC3339Nano)
}

// MarshalJSON implements json.Marshaler
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Numbers, nulls and objects are all treated as malformed.
		*ts = Timestamp{Raw: string(data)}
		return nil
	}
	*ts = ParseTimestamp(s)
	return nil
}

// Within reports whether ts lies in [now-window, now]
func (ts Timestamp) Within(now time.Time, window time.Duration) bool {
	if !ts.Valid {
		return false
	}
	cutoff := now.Add(-window)
	return !ts.Time.Before(cutoff) && !ts.Time.After(now)
}
