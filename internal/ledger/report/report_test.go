package report

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

func TestReportPass(t *testing.T) {
	r := &Report{}
	assert.True(t, r.Pass())

	r.Merge(nil, []models.RangeViolation{{Kind: models.RangeMissing, ChairID: "f1"}}, nil)
	assert.False(t, r.Pass())
}

func TestMergeSplitsViolationCategories(t *testing.T) {
	p := period(t, "1950")
	r := &Report{}
	r.Merge(nil, []models.RangeViolation{
		{Kind: models.RangeMissing, Period: p, ChairID: "f1"},
		{Kind: models.RangeOutOfRange, Period: p, ChairID: "a240"},
		{Kind: models.RangeWrongEra, Period: p, ChairID: "e1"},
	}, nil)

	assert.Len(t, r.Missing, 1)
	// Wrong-era findings count toward the out-of-range category.
	assert.Len(t, r.OutOfRange, 2)

	counts := r.Counts()
	assert.Equal(t, 1, counts.Missing)
	assert.Equal(t, 2, counts.OutOfRange)
	assert.Equal(t, 0, counts.Conflicts)
}

func TestNormalizeOrdersByPeriodThenEntity(t *testing.T) {
	p50 := period(t, "1950")
	p49 := period(t, "1949")

	r := &Report{}
	r.Merge([]models.Conflict{
		{Kind: models.KindSeatShared, Period: p50, EntityID: "A2"},
		{Kind: models.KindSeatShared, Period: p49, EntityID: "A9"},
		{Kind: models.KindSeatShared, Period: p50, EntityID: "A1"},
	}, []models.RangeViolation{
		{Kind: models.RangeMissing, Period: p50, ChairID: "f2"},
		{Kind: models.RangeMissing, Period: p49, ChairID: "f1"},
	}, nil)
	r.Normalize()

	assert.Equal(t, "A9", r.Conflicts[0].EntityID)
	assert.Equal(t, "A1", r.Conflicts[1].EntityID)
	assert.Equal(t, "A2", r.Conflicts[2].EntityID)
	assert.Equal(t, "f1", r.Missing[0].ChairID)
}

func TestMergeOrderDoesNotChangeNormalizedReport(t *testing.T) {
	p50 := period(t, "1950")
	p51 := period(t, "1951")
	batchA := []models.Conflict{{Kind: models.KindSeatShared, Period: p50, EntityID: "A1"}}
	batchB := []models.Conflict{{Kind: models.KindSeatShared, Period: p51, EntityID: "A2"}}

	forward := &Report{}
	forward.Merge(batchA, nil, nil)
	forward.Merge(batchB, nil, nil)
	forward.Normalize()

	backward := &Report{}
	backward.Merge(batchB, nil, nil)
	backward.Merge(batchA, nil, nil)
	backward.Normalize()

	assert.Equal(t, forward.Conflicts, backward.Conflicts)
}
