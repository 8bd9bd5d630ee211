// Package conflict detects double occupancy within one period: a chair held
// by two persons at once, and a person holding two chairs at once. Detection
// is a pure function over resolved intervals; callers decide what to do with
// the findings.
package conflict

import (
	"sort"
	"time"

	"hemicycle/internal/ledger/models"
)

// Detect runs both groupings over one period's intervals and returns every
// conflict found, ordered by entity id within each kind.
func Detect(period models.Period, intervals []models.ResolvedInterval) []models.Conflict {
	conflicts := detectGrouped(period, intervals, models.KindSeatShared)
	conflicts = append(conflicts, detectGrouped(period, intervals, models.KindPersonInTwoSeats)...)
	return conflicts
}

func groupKey(iv models.ResolvedInterval, kind models.ConflictKind) (primary, secondary string) {
	if kind == models.KindSeatShared {
		return iv.ChairID, iv.PersonID
	}
	return iv.PersonID, iv.ChairID
}

func detectGrouped(period models.Period, intervals []models.ResolvedInterval, kind models.ConflictKind) []models.Conflict {
	groups := make(map[string][]models.ResolvedInterval)
	for _, iv := range intervals {
		primary, _ := groupKey(iv, kind)
		groups[primary] = append(groups[primary], iv)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conflicts []models.Conflict
	for _, key := range keys {
		group := dedupe(groups[key])
		if len(group) < 2 {
			continue
		}
		// Consistent duplicate rows: one chair mapped to one person (or
		// one person to one chair) several times is not a conflict.
		if distinctSecondary(group, kind) < 2 {
			continue
		}
		if c, found := scanGroup(period, key, group, kind); found {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

// dedupe removes rows identical in (chair, person, start, end); contradictory
// duplicates survive and enter the overlap scan.
func dedupe(group []models.ResolvedInterval) []models.ResolvedInterval {
	type rowKey struct {
		chairID  string
		personID string
		start    int64
		end      int64
	}
	seen := make(map[rowKey]struct{}, len(group))
	out := make([]models.ResolvedInterval, 0, len(group))
	for _, iv := range group {
		k := rowKey{iv.ChairID, iv.PersonID, iv.Start.Unix(), iv.End.Unix()}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, iv)
	}
	return out
}

func distinctSecondary(group []models.ResolvedInterval, kind models.ConflictKind) int {
	seen := make(map[string]struct{}, len(group))
	for _, iv := range group {
		_, secondary := groupKey(iv, kind)
		seen[secondary] = struct{}{}
	}
	return len(seen)
}

// scanGroup sorts the group's intervals ascending by (start, end) and walks
// adjacent pairs. A non-positive gap in days means overlap. For the person
// grouping, a group spanning two chambers is a conflict regardless of date
// math: chamber membership is part of the seat identity.
func scanGroup(period models.Period, key string, group []models.ResolvedInterval, kind models.ConflictKind) (models.Conflict, bool) {
	if kind == models.KindPersonInTwoSeats {
		if other, mismatch := chamberMismatch(group); mismatch {
			return models.Conflict{
				Kind:            kind,
				Period:          period,
				EntityID:        key,
				ChamberMismatch: true,
				Evidence:        [2]models.ResolvedInterval{group[0], other},
				Group:           group,
			}, true
		}
	}

	sorted := append([]models.ResolvedInterval(nil), group...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	for i := 0; i < len(sorted)-1; i++ {
		gap := daysBetween(sorted[i].End, sorted[i+1].Start)
		if gap <= 0 {
			return models.Conflict{
				Kind:     kind,
				Period:   period,
				EntityID: key,
				GapDays:  gap,
				Evidence: [2]models.ResolvedInterval{sorted[i], sorted[i+1]},
				Group:    group,
			}, true
		}
	}
	return models.Conflict{}, false
}

func chamberMismatch(group []models.ResolvedInterval) (models.ResolvedInterval, bool) {
	for _, iv := range group[1:] {
		if iv.Chamber != group[0].Chamber {
			return iv, true
		}
	}
	return models.ResolvedInterval{}, false
}

// daysBetween is next.start minus current.end in whole days. Dates parse to
// midnight UTC, so the division is exact.
func daysBetween(end, nextStart time.Time) int {
	return int(nextStart.Sub(end).Hours() / 24)
}
