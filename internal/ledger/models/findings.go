package models

// ConflictKind distinguishes the two structural corruptions the detector
// looks for.
type ConflictKind string

const (
	// KindSeatShared flags one chair occupied by two persons at once.
	KindSeatShared ConflictKind = "seat-shared-by-two-persons"
	// KindPersonInTwoSeats flags one person occupying two chairs at once.
	KindPersonInTwoSeats ConflictKind = "person-in-two-seats"
)

// Conflict is a detected overlap within one period. EntityID is the grouping
// key at fault (chair id or person id). Evidence holds the adjacent interval
// pair whose gap closed; Group holds every deduplicated contributing row.
// ChamberMismatch marks the hard rule: a person grouped across two chambers
// is a conflict regardless of date math, in which case GapDays is zero.
type Conflict struct {
	Kind            ConflictKind
	Period          Period
	EntityID        string
	GapDays         int
	ChamberMismatch bool
	Evidence        [2]ResolvedInterval
	Group           []ResolvedInterval
}

// RangeViolationKind classifies seat-range findings.
type RangeViolationKind string

const (
	// RangeOutOfRange is a seat used beyond the chamber capacity, or an
	// unknown chair id, without an exclusion-rule exemption.
	RangeOutOfRange RangeViolationKind = "out-of-range"
	// RangeMissing is a seat expected for the period that never appears.
	RangeMissing RangeViolationKind = "missing"
	// RangeWrongEra is a bicameral chair used in a unicameral period or
	// vice versa.
	RangeWrongEra RangeViolationKind = "wrong-era"
)

// RangeViolation records one capacity, coverage, or era finding.
type RangeViolation struct {
	Kind    RangeViolationKind
	Period  Period
	ChairID string
}

// RowErrorKind classifies rows excluded from overlap math.
type RowErrorKind string

const (
	// RowErrorResolution means no fallback tier could supply a boundary.
	RowErrorResolution RowErrorKind = "resolution"
	// RowErrorDateParse means a date value was present but malformed.
	RowErrorDateParse RowErrorKind = "date-parse"
	// RowErrorPeriodParse means the row's period token was malformed, so the
	// row could not be scoped to any period.
	RowErrorPeriodParse RowErrorKind = "period-parse"
)

// RowError reports a row that could not enter conflict detection. Rows with
// errors are reported, never silently dropped.
type RowError struct {
	Kind     RowErrorKind
	Period   Period
	ChairID  string
	PersonID string
	Field    string
	Reason   string
}
