// Package rangecheck verifies that the seats used in a period fall within
// the chamber's numeric capacity, belong to the period's chamber era, and
// that every seat expected for the period appears at least once. These are
// independent invariants; none implies a conflict.
package rangecheck

import (
	"sort"

	"hemicycle/internal/ledger/models"
	pstrings "hemicycle/pkg/platform/strings"
)

// Checker validates seat usage against the static seat table and the
// exclusion rules. Immutable after construction, safe for concurrent use.
type Checker struct {
	seats []models.Seat
	byID  map[string]models.Seat
	rules ruleSet
}

// New builds a checker. Pass DefaultExclusions() unless the caller supplies
// era rules of its own.
func New(seats []models.Seat, rules []ExclusionRule) *Checker {
	byID := make(map[string]models.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.ChairID] = seat
	}
	return &Checker{seats: seats, byID: byID, rules: indexRules(rules)}
}

// Check runs the capacity, era, and coverage checks for one period over its
// raw assignment rows (vacant rows count toward coverage). Findings come
// back ordered by chair id.
func (c *Checker) Check(period models.Period, assignments []models.Assignment) []models.RangeViolation {
	used := usedChairs(assignments)

	var violations []models.RangeViolation
	for _, chairID := range used {
		violations = append(violations, c.checkUsed(period, chairID)...)
	}
	violations = append(violations, c.checkCoverage(period, used)...)

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Kind != violations[j].Kind {
			return violations[i].Kind < violations[j].Kind
		}
		return violations[i].ChairID < violations[j].ChairID
	})
	return violations
}

func (c *Checker) checkUsed(period models.Period, chairID string) []models.RangeViolation {
	seat, ok := c.byID[chairID]
	if !ok {
		// A chair id with no seat-table entry cannot be range checked;
		// it is out of range by definition.
		return []models.RangeViolation{{Kind: models.RangeOutOfRange, Period: period, ChairID: chairID}}
	}

	var violations []models.RangeViolation
	overCapacity := seat.SeatNumber > seat.Chamber.Capacity() && !c.rules.exempt(seat, period)
	if overCapacity || c.rules.retired(seat, period) {
		violations = append(violations, models.RangeViolation{
			Kind:    models.RangeOutOfRange,
			Period:  period,
			ChairID: chairID,
		})
	}
	if wrongEra(seat.Chamber, period) {
		violations = append(violations, models.RangeViolation{
			Kind:    models.RangeWrongEra,
			Period:  period,
			ChairID: chairID,
		})
	}
	return violations
}

// checkCoverage flags seats expected for the period's chambers that never
// appear among its assignment rows, filled or vacant.
func (c *Checker) checkCoverage(period models.Period, used []string) []models.RangeViolation {
	usedSet := make(map[string]struct{}, len(used))
	for _, id := range used {
		usedSet[id] = struct{}{}
	}

	var violations []models.RangeViolation
	for _, seat := range c.seats {
		if !activeChamber(seat.Chamber, period) {
			continue
		}
		if seat.SeatNumber > seat.Chamber.Capacity() {
			continue
		}
		if c.rules.excluded(seat, period) {
			continue
		}
		if _, ok := usedSet[seat.ChairID]; !ok {
			violations = append(violations, models.RangeViolation{
				Kind:    models.RangeMissing,
				Period:  period,
				ChairID: seat.ChairID,
			})
		}
	}
	return violations
}

func wrongEra(chamber models.Chamber, period models.Period) bool {
	return !activeChamber(chamber, period)
}

func activeChamber(chamber models.Chamber, period models.Period) bool {
	if period.Unicameral() {
		return chamber == models.ChamberUnified
	}
	return chamber == models.ChamberFirst || chamber == models.ChamberSecond
}

func usedChairs(assignments []models.Assignment) []string {
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ChairID)
	}
	return pstrings.DedupeAndTrim(ids)
}
