// Package partition groups resolved intervals and assignment rows by session
// period. Periods share no state, so each partition can be checked
// independently and in any order.
package partition

import (
	"sort"

	"hemicycle/internal/ledger/models"
)

// Intervals maps each period to the resolved intervals scoped to it.
func Intervals(intervals []models.ResolvedInterval) map[models.Period][]models.ResolvedInterval {
	out := make(map[models.Period][]models.ResolvedInterval)
	for _, iv := range intervals {
		out[iv.Period] = append(out[iv.Period], iv)
	}
	return out
}

// Assignments maps each period to its raw assignment rows, vacant rows
// included. Coverage checking needs the vacant rows that conflict detection
// discards.
func Assignments(assignments []models.Assignment) map[models.Period][]models.Assignment {
	out := make(map[models.Period][]models.Assignment)
	for _, a := range assignments {
		out[a.Period] = append(out[a.Period], a)
	}
	return out
}

// Periods returns the union of periods seen in either partition, in stable
// chronological order.
func Periods(byInterval map[models.Period][]models.ResolvedInterval, byAssignment map[models.Period][]models.Assignment) []models.Period {
	seen := make(map[models.Period]struct{}, len(byAssignment))
	var periods []models.Period
	for p := range byInterval {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			periods = append(periods, p)
		}
	}
	for p := range byAssignment {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			periods = append(periods, p)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}
