// Package trial computes whether an account is inside its trial window.
package trial

import (
	"time"

	"github.com/agendahof/accessgate/domain/access"
)

// DefaultTrialPeriod is the trial length applied when no explicit trial-end
// metadata is available.
const DefaultTrialPeriod = 7 * 24 * time.Hour

// Trial-end metadata originates from an external system whose format has
// changed historically. The strict layout came first; the plain layout is
// what newer writers emit.
const (
	layoutStrict  = "2006-01-02T15:04:05.000Z07:00" // RFC 3339 with fractional seconds
	layoutLenient = time.RFC3339
)

// End resolves the trial end for an account. Metadata wins when it parses;
// a malformed or absent value degrades to createdAt + DefaultTrialPeriod
// rather than denying access outright.
// This is a PURE function.
func End(createdAt time.Time, metadata string) time.Time {
	if metadata != "" {
		if ts, err := time.Parse(layoutStrict, metadata); err == nil {
			return ts
		}
		if ts, err := time.Parse(layoutLenient, metadata); err == nil {
			return ts
		}
	}
	return createdAt.Add(DefaultTrialPeriod)
}

// Evaluate returns the in-trial state when the reference time is on or
// before the trial end (inclusive boundary), and the no-access sentinel
// otherwise.
// This is a PURE function.
func Evaluate(createdAt time.Time, metadata string, now time.Time) access.State {
	end := End(createdAt, metadata)
	if !now.After(end) {
		return access.InTrial(end)
	}
	return access.NoAccess()
}
