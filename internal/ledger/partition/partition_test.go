package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemicycle/internal/ledger/models"
)

func period(t *testing.T, token string) models.Period {
	t.Helper()
	p, err := models.ParsePeriod(token)
	require.NoError(t, err)
	return p
}

func TestIntervals(t *testing.T) {
	p50 := period(t, "1950")
	p51 := period(t, "1951")
	in := []models.ResolvedInterval{
		{ChairID: "a1", PersonID: "p1", Period: p50},
		{ChairID: "a2", PersonID: "p2", Period: p51},
		{ChairID: "a3", PersonID: "p3", Period: p50},
	}

	got := Intervals(in)
	require.Len(t, got, 2)
	assert.Len(t, got[p50], 2)
	assert.Len(t, got[p51], 1)
}

func TestPeriodsOrderedAndInputOrderAgnostic(t *testing.T) {
	p80 := period(t, "1980")
	p7576 := period(t, "197576")
	p7677 := period(t, "197677")

	forward := Periods(
		Intervals([]models.ResolvedInterval{{Period: p80}, {Period: p7576}}),
		Assignments([]models.Assignment{{Period: p7677}}),
	)
	backward := Periods(
		Intervals([]models.ResolvedInterval{{Period: p7576}, {Period: p80}}),
		Assignments([]models.Assignment{{Period: p7677}}),
	)

	want := []models.Period{p7576, p7677, p80}
	assert.Equal(t, want, forward)
	assert.Equal(t, want, backward)
}

func TestAssignmentsKeepVacantRows(t *testing.T) {
	p := period(t, "1950")
	got := Assignments([]models.Assignment{
		{ChairID: "a1", PersonID: "p1", Period: p},
		{ChairID: "a2", Period: p},
	})
	require.Len(t, got[p], 2)
	assert.True(t, got[p][1].Vacant())
}
