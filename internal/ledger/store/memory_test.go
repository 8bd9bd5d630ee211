package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemicycle/internal/ledger/models"
	"hemicycle/internal/ledger/report"
	dErrors "hemicycle/pkg/domain-errors"
)

func TestMemorySourceCopiesOnRead(t *testing.T) {
	src := NewMemorySource().SetSeats([]models.Seat{
		{ChairID: "f1", Chamber: models.ChamberFirst, SeatNumber: 1},
	})

	seats, err := src.Seats(context.Background())
	require.NoError(t, err)
	require.Len(t, seats, 1)

	// Mutating the returned slice must not leak back into the source.
	seats[0].ChairID = "mutated"
	again, err := src.Seats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "f1", again[0].ChairID)
}

func TestMemorySourceConcurrentAccess(t *testing.T) {
	src := NewMemorySource()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			src.SetAssignments([]models.Assignment{{ChairID: "f1"}})
		}()
		go func() {
			defer wg.Done()
			_, _, _ = src.Assignments(context.Background())
		}()
	}
	wg.Wait()
}

func TestMemoryReportCache(t *testing.T) {
	cache := NewMemoryReportCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, &report.Report{RunID: "run-1"}))

	got, err := cache.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)

	_, err = cache.Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}
