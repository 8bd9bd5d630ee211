// Package report aggregates findings from all periods into one result. The
// report is the programmatic contract of a validation run: per-category
// counts plus a single pass/fail verdict, with evidence rows for every
// finding.
package report

import (
	"sort"
	"time"

	"hemicycle/internal/ledger/models"
)

// Report collects every finding of one validation run.
type Report struct {
	RunID       string                  `json:"run_id"`
	StartedAt   time.Time               `json:"started_at"`
	Duration    time.Duration           `json:"duration_ns"`
	Conflicts   []models.Conflict       `json:"conflicts"`
	OutOfRange  []models.RangeViolation `json:"out_of_range_seats"`
	Missing     []models.RangeViolation `json:"missing_seats"`
	RowErrors   []models.RowError       `json:"row_errors"`
	PeriodCount int                     `json:"period_count"`
}

// Counts is the per-category summary surfaced to callers and test harnesses.
type Counts struct {
	Conflicts  int `json:"conflicts"`
	OutOfRange int `json:"out_of_range_seats"`
	Missing    int `json:"missing_seats"`
	RowErrors  int `json:"row_errors"`
}

func (r *Report) Counts() Counts {
	return Counts{
		Conflicts:  len(r.Conflicts),
		OutOfRange: len(r.OutOfRange),
		Missing:    len(r.Missing),
		RowErrors:  len(r.RowErrors),
	}
}

// Pass reports whether the ledger is consistent: every category must be
// empty.
func (r *Report) Pass() bool {
	c := r.Counts()
	return c.Conflicts == 0 && c.OutOfRange == 0 && c.Missing == 0 && c.RowErrors == 0
}

// Merge appends another period's findings. Concatenation commutes, so the
// order periods finish in does not affect the normalized report.
func (r *Report) Merge(conflicts []models.Conflict, violations []models.RangeViolation, rowErrors []models.RowError) {
	r.Conflicts = append(r.Conflicts, conflicts...)
	for _, v := range violations {
		if v.Kind == models.RangeMissing {
			r.Missing = append(r.Missing, v)
		} else {
			r.OutOfRange = append(r.OutOfRange, v)
		}
	}
	r.RowErrors = append(r.RowErrors, rowErrors...)
}

// Normalize sorts every category by (period, entity) so output is stable
// regardless of scheduling.
func (r *Report) Normalize() {
	sort.Slice(r.Conflicts, func(i, j int) bool {
		a, b := r.Conflicts[i], r.Conflicts[j]
		if a.Period != b.Period {
			return a.Period.Before(b.Period)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.EntityID < b.EntityID
	})
	sortViolations(r.OutOfRange)
	sortViolations(r.Missing)
	sort.Slice(r.RowErrors, func(i, j int) bool {
		a, b := r.RowErrors[i], r.RowErrors[j]
		if a.Period != b.Period {
			return a.Period.Before(b.Period)
		}
		if a.ChairID != b.ChairID {
			return a.ChairID < b.ChairID
		}
		return a.PersonID < b.PersonID
	})
}

func sortViolations(violations []models.RangeViolation) {
	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Period != b.Period {
			return a.Period.Before(b.Period)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ChairID < b.ChairID
	})
}
