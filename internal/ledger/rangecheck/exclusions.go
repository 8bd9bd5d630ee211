package rangecheck

import "hemicycle/internal/ledger/models"

// ExclusionRule scopes a seat's existence to a window of parliament years.
// Outside its window the seat is removed from the expected set for coverage,
// and any use of a withdrawn seat is an out-of-range finding.
type ExclusionRule struct {
	Chamber    models.Chamber
	SeatNumber int
	// ActiveFrom is the first parliament year the seat exists; zero means it
	// existed from the start of its chamber.
	ActiveFrom int
	// RetiredFrom is the first parliament year the seat is withdrawn; zero
	// means it was never withdrawn.
	RetiredFrom int
}

// DefaultExclusions encodes the historical seat-range changes: the first
// chamber gained seat 151 in 1958, the second chamber grew from 230 to 233
// seats between 1959 and 1965, and the unified chamber shrank from 350 to 349
// seats with the 1976/77 session, withdrawing seat 350.
func DefaultExclusions() []ExclusionRule {
	return []ExclusionRule{
		{Chamber: models.ChamberFirst, SeatNumber: 151, ActiveFrom: 1958},
		{Chamber: models.ChamberSecond, SeatNumber: 231, ActiveFrom: 1959},
		{Chamber: models.ChamberSecond, SeatNumber: 232, ActiveFrom: 1961},
		{Chamber: models.ChamberSecond, SeatNumber: 233, ActiveFrom: 1965},
		{Chamber: models.ChamberUnified, SeatNumber: 350, RetiredFrom: 1976},
	}
}

type ruleKey struct {
	chamber models.Chamber
	number  int
}

type ruleSet map[ruleKey]ExclusionRule

func indexRules(rules []ExclusionRule) ruleSet {
	set := make(ruleSet, len(rules))
	for _, r := range rules {
		set[ruleKey{chamber: r.Chamber, number: r.SeatNumber}] = r
	}
	return set
}

// inactive reports whether the rule places the period outside the seat's
// existence window.
func (r ExclusionRule) inactive(period models.Period) bool {
	if r.ActiveFrom > 0 && period.Year < r.ActiveFrom {
		return true
	}
	return r.RetiredFrom > 0 && period.Year >= r.RetiredFrom
}

// excluded reports whether the seat does not exist in the period under some
// rule; excluded seats are not expected for coverage.
func (s ruleSet) excluded(seat models.Seat, period models.Period) bool {
	rule, ok := s[ruleKey{chamber: seat.Chamber, number: seat.SeatNumber}]
	return ok && rule.inactive(period)
}

// retired reports whether the seat has been withdrawn by the period; using a
// withdrawn seat is an out-of-range finding.
func (s ruleSet) retired(seat models.Seat, period models.Period) bool {
	rule, ok := s[ruleKey{chamber: seat.Chamber, number: seat.SeatNumber}]
	return ok && rule.RetiredFrom > 0 && period.Year >= rule.RetiredFrom
}

// exempt reports whether a rule vouches for the seat's number in this period;
// such seats are not capacity violations while active.
func (s ruleSet) exempt(seat models.Seat, period models.Period) bool {
	rule, ok := s[ruleKey{chamber: seat.Chamber, number: seat.SeatNumber}]
	return ok && !rule.inactive(period)
}
