package domain

import (
	"errors"
	"fmt"
	"time"
)

// scheduledAtLayout is the wall-clock format accepted on CreateBatchCommand.ScheduledAt.
const scheduledAtLayout = "2006-01-02 15:04:05"

// ErrInvalidScheduledAt marks a scheduled_at value that failed to parse —
// caller input, not a downstream fault. Handlers use errors.Is against this
// to tell a 400 apart from a 500.
var ErrInvalidScheduledAt = errors.New("domain: invalid scheduled_at")

// ParseScheduledAt normalises the Ingester's scheduled_at input. An absent or
// empty string means "now, in UTC" — the batch is immediate. A non-empty
// string is parsed as LOCAL wall-clock time and converted to UTC.
//
// This local-time interpretation is a known cross-timezone hazard (see
// SPEC_FULL.md's design notes) but is preserved deliberately: changing it would silently shift
// every caller's scheduled sends by the server's UTC offset.
func ParseScheduledAt(raw string) (t time.Time, immediate bool, err error) {
	if raw == "" {
		return time.Now().UTC(), true, nil
	}
	naive, err := time.ParseInLocation(scheduledAtLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %q: %w", ErrInvalidScheduledAt, raw, err)
	}
	return naive.UTC(), false, nil
}
