// Package period resolves leaderboard keys and period boundaries.
//
// A regular leaderboard runs on half-month windows: days 1-15 ("early") and
// day 16 through end of month ("late"). Writers and readers both derive the
// key from (kind, reference time), so the derivation must be deterministic
// and evaluated in one fixed game-wide zone, never the host's local zone.
package period

import (
	"fmt"
	"strings"
	"time"
)

// DefaultZone is the game-wide zone used when none is configured.
const DefaultZone = "Asia/Tokyo"

// Day-of-month boundary between the early and late halves.
const earlyLastDay = 15

// Kind names a regular leaderboard metric, e.g. "spark" or "craft".
// It is embedded verbatim (lowercased) in the store key.
type Kind string

// Regular ranking kinds.
const (
	KindSpark   Kind = "spark"
	KindCraft   Kind = "craft"
	KindExtract Kind = "extract"
	KindWinRate Kind = "win_rate"
)

// Calendar computes keys and period boundaries in a fixed zone.
type Calendar struct {
	loc *time.Location
}

// New loads the named IANA zone and returns a Calendar bound to it.
func New(zone string) (*Calendar, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownZone, zone, err)
	}
	return &Calendar{loc: loc}, nil
}

// Location returns the calendar's zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// RegularKey resolves the sorted-set key and the comparison end date for a
// regular leaderboard. current=true resolves the half-month window holding
// now; current=false resolves the immediately preceding window (early maps
// to the previous month's late half, with year rollover at January).
func (c *Calendar) RegularKey(kind Kind, current bool, now time.Time) (string, time.Time) {
	local := now.In(c.loc)
	year, month, day := local.Date()
	early := day <= earlyLastDay

	if !current {
		if early {
			// Previous window is the late half of the previous month.
			month--
			if month < time.January {
				month = time.December
				year--
			}
			early = false
		} else {
			early = true
		}
	}

	half := "late"
	end := endOfMonth(year, month, c.loc)
	if early {
		half = "early"
		end = time.Date(year, month, earlyLastDay, 23, 59, 59, 0, c.loc)
	}

	key := fmt.Sprintf("regular_%s_%04d%02d_%s", strings.ToLower(string(kind)), year, int(month), half)
	return key, end
}

// EventKey derives the sorted-set key for a bespoke campaign leaderboard.
// Event leaderboards carry their own end date, so only the key is resolved.
func (c *Calendar) EventKey(eventID, action string) string {
	return strings.ToLower(fmt.Sprintf("event_%s_%s", eventID, action))
}

// PeriodStart returns the first instant of the half-month window that closes
// at periodEnd. Used by batch restoration tooling, not the live write path.
func (c *Calendar) PeriodStart(periodEnd time.Time) time.Time {
	local := periodEnd.In(c.loc)
	year, month, day := local.Date()
	if day == earlyLastDay {
		return time.Date(year, month, 1, 0, 0, 0, 0, c.loc)
	}
	return time.Date(year, month, earlyLastDay+1, 0, 0, 0, 0, c.loc)
}

// endOfMonth is the last second of the month in loc. time.Date normalizes
// month overflow, so December rolls into January of the next year.
func endOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, loc).Add(-time.Second)
}
