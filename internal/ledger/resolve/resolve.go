// Package resolve turns assignments with missing or partial date boundaries
// into concrete intervals. Each boundary is resolved through an ordered chain
// of sources: the assignment row itself, the person's mandate window for the
// period, and finally the chamber's session envelope.
package resolve

import (
	"fmt"
	"time"

	"hemicycle/internal/ledger/models"
)

// EnvelopeKey scopes a session envelope to one chamber within one period.
type EnvelopeKey struct {
	Period  models.Period
	Chamber models.Chamber
}

// Envelope is the outer date bound of a period for a chamber: min(start) and
// max(end) over all known sitting rows. It is a conservative bound that never
// underestimates true presence.
type Envelope struct {
	Earliest time.Time
	Latest   time.Time
}

// BuildEnvelopes folds per-sitting rows into per-(period, chamber) envelopes.
// Sitting rows with malformed dates are reported and skipped; they cannot
// abort the run.
func BuildEnvelopes(days []models.SessionDay) (map[EnvelopeKey]Envelope, []models.RowError) {
	envelopes := make(map[EnvelopeKey]Envelope)
	var errs []models.RowError

	for _, day := range days {
		start, err := models.ParseDate(day.Start)
		if err != nil {
			errs = append(errs, sessionDayError(day, "start"))
			continue
		}
		end, err := models.ParseDate(day.End)
		if err != nil {
			errs = append(errs, sessionDayError(day, "end"))
			continue
		}

		key := EnvelopeKey{Period: day.Period, Chamber: day.Chamber}
		env, ok := envelopes[key]
		if !ok {
			envelopes[key] = Envelope{Earliest: start, Latest: end}
			continue
		}
		if start.Before(env.Earliest) {
			env.Earliest = start
		}
		if end.After(env.Latest) {
			env.Latest = end
		}
		envelopes[key] = env
	}
	return envelopes, errs
}

func sessionDayError(day models.SessionDay, field string) models.RowError {
	return models.RowError{
		Kind:   models.RowErrorDateParse,
		Period: day.Period,
		Field:  field,
		Reason: fmt.Sprintf("session day for chamber %s has malformed %s date", day.Chamber, field),
	}
}

type mandateKey struct {
	PersonID string
	Period   models.Period
}

// Resolver computes effective intervals for assignment rows. It is immutable
// after construction and safe for concurrent use.
type Resolver struct {
	chambers  map[string]models.Chamber
	mandates  map[mandateKey]models.PersonMandate
	envelopes map[EnvelopeKey]Envelope
}

// NewResolver indexes the lookup tables the fallback chain draws from.
func NewResolver(seats []models.Seat, mandates []models.PersonMandate, envelopes map[EnvelopeKey]Envelope) *Resolver {
	chambers := make(map[string]models.Chamber, len(seats))
	for _, seat := range seats {
		chambers[seat.ChairID] = seat.Chamber
	}
	byKey := make(map[mandateKey]models.PersonMandate, len(mandates))
	for _, m := range mandates {
		byKey[mandateKey{PersonID: m.PersonID, Period: m.Period}] = m
	}
	return &Resolver{chambers: chambers, mandates: byKey, envelopes: envelopes}
}

// boundary selects which side of the interval a strategy resolves.
type boundary int

const (
	boundStart boundary = iota
	boundEnd
)

func (b boundary) String() string {
	if b == boundEnd {
		return "end"
	}
	return "start"
}

// strategy is one tier of the fallback chain. It either declines (ok=false),
// yields a date, or fails on a malformed value.
type strategy func(a models.Assignment, chamber models.Chamber, b boundary) (time.Time, bool, error)

func (r *Resolver) chain() []strategy {
	return []strategy{r.fromAssignment, r.fromMandate, r.fromEnvelope}
}

func (r *Resolver) fromAssignment(a models.Assignment, _ models.Chamber, b boundary) (time.Time, bool, error) {
	return parseOptional(pick(a.Start, a.End, b))
}

func (r *Resolver) fromMandate(a models.Assignment, _ models.Chamber, b boundary) (time.Time, bool, error) {
	m, ok := r.mandates[mandateKey{PersonID: a.PersonID, Period: a.Period}]
	if !ok {
		return time.Time{}, false, nil
	}
	return parseOptional(pick(m.Start, m.End, b))
}

func (r *Resolver) fromEnvelope(a models.Assignment, chamber models.Chamber, b boundary) (time.Time, bool, error) {
	env, ok := r.envelopes[EnvelopeKey{Period: a.Period, Chamber: chamber}]
	if !ok {
		return time.Time{}, false, nil
	}
	if b == boundEnd {
		return env.Latest, true, nil
	}
	return env.Earliest, true, nil
}

func pick(start, end string, b boundary) string {
	if b == boundEnd {
		return end
	}
	return start
}

func parseOptional(raw string) (time.Time, bool, error) {
	if raw == "" {
		return time.Time{}, false, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return d, true, nil
}

// Resolve computes the effective interval for one assignment. A nil RowError
// means the interval is usable for conflict detection.
func (r *Resolver) Resolve(a models.Assignment) (models.ResolvedInterval, *models.RowError) {
	chamber, ok := r.chambers[a.ChairID]
	if !ok {
		return models.ResolvedInterval{}, &models.RowError{
			Kind:     models.RowErrorResolution,
			Period:   a.Period,
			ChairID:  a.ChairID,
			PersonID: a.PersonID,
			Reason:   "chair has no chamber entry in the seat table",
		}
	}

	interval := models.ResolvedInterval{
		ChairID:  a.ChairID,
		PersonID: a.PersonID,
		Chamber:  chamber,
		Period:   a.Period,
	}
	for _, b := range []boundary{boundStart, boundEnd} {
		date, rowErr := r.resolveBoundary(a, chamber, b)
		if rowErr != nil {
			return models.ResolvedInterval{}, rowErr
		}
		if b == boundEnd {
			interval.End = date
		} else {
			interval.Start = date
		}
	}
	return interval, nil
}

func (r *Resolver) resolveBoundary(a models.Assignment, chamber models.Chamber, b boundary) (time.Time, *models.RowError) {
	for _, try := range r.chain() {
		date, ok, err := try(a, chamber, b)
		if err != nil {
			return time.Time{}, &models.RowError{
				Kind:     models.RowErrorDateParse,
				Period:   a.Period,
				ChairID:  a.ChairID,
				PersonID: a.PersonID,
				Field:    b.String(),
				Reason:   fmt.Sprintf("malformed %s date: %v", b, err),
			}
		}
		if ok {
			return date, nil
		}
	}
	return time.Time{}, &models.RowError{
		Kind:     models.RowErrorResolution,
		Period:   a.Period,
		ChairID:  a.ChairID,
		PersonID: a.PersonID,
		Field:    b.String(),
		Reason:   fmt.Sprintf("no fallback tier could supply the %s boundary", b),
	}
}

// ResolveAll resolves every occupied assignment row. Vacant rows carry no
// person and cannot conflict; they only matter for coverage checks. Rows
// failing resolution are returned as errors, never dropped silently.
func (r *Resolver) ResolveAll(assignments []models.Assignment) ([]models.ResolvedInterval, []models.RowError) {
	intervals := make([]models.ResolvedInterval, 0, len(assignments))
	var errs []models.RowError
	for _, a := range assignments {
		if a.Vacant() {
			continue
		}
		interval, rowErr := r.Resolve(a)
		if rowErr != nil {
			errs = append(errs, *rowErr)
			continue
		}
		intervals = append(intervals, interval)
	}
	return intervals, errs
}
