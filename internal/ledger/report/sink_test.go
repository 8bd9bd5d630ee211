package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemicycle/internal/ledger/models"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, "2026-08-30T12:00:00Z")
	require.NoError(t, err)
	return func() time.Time { return at }
}

func TestFileSinkWritesTimestampedSemicolonFile(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, WithClock(fixedClock(t)))

	err := sink.WriteTable("chair-missing", []string{"period", "kind", "chair_id"}, [][]string{
		{"1900", "missing", "f151"},
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "20260830-120000_chair-missing.csv")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"period", "kind", "chair_id"}, records[0])
	assert.Equal(t, []string{"1900", "missing", "f151"}, records[1])
}

func TestWriteDiagnostics(t *testing.T) {
	p, err := models.ParsePeriod("1951")
	require.NoError(t, err)
	start, _ := models.ParseDate("1950-01-01")
	end, _ := models.ParseDate("1951-06-30")

	r := &Report{
		Conflicts: []models.Conflict{{
			Kind:     models.KindSeatShared,
			Period:   p,
			EntityID: "A1",
			GapDays:  -180,
			Group: []models.ResolvedInterval{
				{ChairID: "A1", PersonID: "P1", Chamber: models.ChamberSecond, Period: p, Start: start, End: end},
			},
		}},
		Missing:   []models.RangeViolation{{Kind: models.RangeMissing, Period: p, ChairID: "f151"}},
		RowErrors: []models.RowError{{Kind: models.RowErrorResolution, Period: p, ChairID: "x", Reason: "no tier"}},
	}

	dir := t.TempDir()
	sink := NewFileSink(dir, WithClock(fixedClock(t)))
	require.NoError(t, WriteDiagnostics(r, sink, AllFlags()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "20260830-120000_conflicts.csv")
	assert.Contains(t, names, "20260830-120000_chair-missing.csv")
	assert.Contains(t, names, "20260830-120000_row-errors.csv")
	// No out-of-range findings, so no table.
	assert.NotContains(t, names, "20260830-120000_chair-out-of-range.csv")
}

func TestWriteDiagnosticsRespectsFlags(t *testing.T) {
	p, err := models.ParsePeriod("1951")
	require.NoError(t, err)
	r := &Report{
		Missing: []models.RangeViolation{{Kind: models.RangeMissing, Period: p, ChairID: "f151"}},
	}

	dir := t.TempDir()
	sink := NewFileSink(dir, WithClock(fixedClock(t)))
	require.NoError(t, WriteDiagnostics(r, sink, Flags{Conflicts: true}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
