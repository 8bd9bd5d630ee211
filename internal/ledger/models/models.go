// Package models defines the ledger's record types: chambers, seats,
// time-scoped person-to-seat assignments, person mandates, and per-sitting
// session days. All values are read-only snapshots for the duration of a
// validation run.
package models

import (
	"fmt"
	"strconv"
	"time"
)

// Chamber identifies a sub-legislature. The bicameral era (before 1971) has
// the first and second chambers; the unified chamber replaces both from 1971.
type Chamber string

const (
	ChamberFirst   Chamber = "fk"
	ChamberSecond  Chamber = "ak"
	ChamberUnified Chamber = "ek"
)

// Capacity returns the highest valid seat number for the chamber.
func (c Chamber) Capacity() int {
	switch c {
	case ChamberFirst:
		return 151
	case ChamberSecond:
		return 233
	case ChamberUnified:
		return 350
	}
	return 0
}

// Valid reports whether c is a known chamber token.
func (c Chamber) Valid() bool {
	return c == ChamberFirst || c == ChamberSecond || c == ChamberUnified
}

// ParseChamber validates a raw chamber token from an input table.
func ParseChamber(s string) (Chamber, error) {
	c := Chamber(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown chamber %q", s)
	}
	return c, nil
}

// unifiedChamberFrom is the first parliament year of the unicameral era.
const unifiedChamberFrom = 1971

// Period is a session-year token scoping assignments: either a single year
// ("1900") or a biennium ("197576"). Periods are independent validation units.
type Period struct {
	Token string
	// Year is the first calendar year the token covers, used for ordering
	// and era classification.
	Year     int
	Biennium bool
}

// ParsePeriod parses a 4-digit year or 6-digit biennium token.
func ParsePeriod(token string) (Period, error) {
	switch len(token) {
	case 4:
		y, err := strconv.Atoi(token)
		if err != nil {
			return Period{}, fmt.Errorf("malformed period token %q", token)
		}
		return Period{Token: token, Year: y}, nil
	case 6:
		y, err := strconv.Atoi(token[:4])
		if err != nil {
			return Period{}, fmt.Errorf("malformed period token %q", token)
		}
		if _, err := strconv.Atoi(token[4:]); err != nil {
			return Period{}, fmt.Errorf("malformed period token %q", token)
		}
		return Period{Token: token, Year: y, Biennium: true}, nil
	}
	return Period{}, fmt.Errorf("malformed period token %q", token)
}

// Unicameral reports whether the period falls in the unified-chamber era.
func (p Period) Unicameral() bool {
	return p.Year >= unifiedChamberFrom
}

// Chambers returns the chambers active during the period.
func (p Period) Chambers() []Chamber {
	if p.Unicameral() {
		return []Chamber{ChamberUnified}
	}
	return []Chamber{ChamberFirst, ChamberSecond}
}

// Before orders periods by first year, then token, for stable output.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Token < other.Token
}

// DateLayout is the wire format for all ledger dates.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date value. The empty string is not a valid date;
// callers treat it as absent before parsing.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Seat is a numbered position within a chamber, defined once from static
// reference data.
type Seat struct {
	ChairID    string
	Chamber    Chamber
	SeatNumber int
}

// Assignment maps a person to a seat for one period. Start and End are raw
// ISO date strings; empty means the boundary is unknown and must be resolved
// through the fallback chain. PersonID may be empty for an explicitly vacant
// seat row.
type Assignment struct {
	ChairID  string
	PersonID string
	Period   Period
	Start    string
	End      string
}

// Vacant reports whether the row records an unoccupied seat.
func (a Assignment) Vacant() bool {
	return a.PersonID == ""
}

// PersonMandate is a person's broader membership-validity window for a
// period, independent of any specific seat. Used only as a fallback date
// source.
type PersonMandate struct {
	PersonID string
	Period   Period
	Start    string
	End      string
}

// SessionDay is one known sitting of a chamber within a period. The envelope
// over all sitting rows is the final fallback date source.
type SessionDay struct {
	Period  Period
	Chamber Chamber
	Start   string
	End     string
}

// ResolvedInterval is an assignment with concrete, non-null boundaries.
type ResolvedInterval struct {
	ChairID  string
	PersonID string
	Chamber  Chamber
	Period   Period
	Start    time.Time
	End      time.Time
}
