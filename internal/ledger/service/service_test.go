package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hemicycle/internal/events"
	"hemicycle/internal/ledger/models"
	"hemicycle/internal/ledger/report"
	"hemicycle/internal/ledger/service/mocks"
	"hemicycle/internal/ledger/store"
	dErrors "hemicycle/pkg/domain-errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func period(t *testing.T, token string) models.Period {
	t.Helper()
	p, err := models.ParsePeriod(token)
	require.NoError(t, err)
	return p
}

// cleanSource models a tiny but fully consistent ledger: two first-chamber
// seats held sequentially, full session bounds, complete coverage.
func cleanSource(t *testing.T) *store.MemorySource {
	t.Helper()
	p := period(t, "1950")
	return store.NewMemorySource().
		SetSeats([]models.Seat{
			{ChairID: "f1", Chamber: models.ChamberFirst, SeatNumber: 1},
			{ChairID: "f2", Chamber: models.ChamberFirst, SeatNumber: 2},
			{ChairID: "a1", Chamber: models.ChamberSecond, SeatNumber: 1},
		}).
		SetAssignments([]models.Assignment{
			{ChairID: "f1", PersonID: "p1", Period: p, Start: "1950-01-10", End: "1950-03-31"},
			{ChairID: "f1", PersonID: "p2", Period: p, Start: "1950-04-02", End: "1950-06-01"},
			{ChairID: "f2", PersonID: "p3", Period: p},
			{ChairID: "a1", PersonID: "p4", Period: p},
		}).
		SetMandates([]models.PersonMandate{
			{PersonID: "p3", Period: p, Start: "1950-01-10", End: "1950-06-01"},
		}).
		SetSessionDays([]models.SessionDay{
			{Period: p, Chamber: models.ChamberFirst, Start: "1950-01-10", End: "1950-06-01"},
			{Period: p, Chamber: models.ChamberSecond, Start: "1950-01-10", End: "1950-06-01"},
		})
}

func TestRunCleanLedgerPasses(t *testing.T) {
	svc, err := New(cleanSource(t), WithLogger(testLogger()))
	require.NoError(t, err)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Pass())
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 1, rep.PeriodCount)
	assert.Equal(t, report.Counts{}, rep.Counts())
}

func TestRunDetectsSeatSharing(t *testing.T) {
	p := period(t, "1950")
	source := cleanSource(t)
	assignments, _, err := source.Assignments(context.Background())
	require.NoError(t, err)
	// Second occupant of f2 with an overlapping resolved window.
	source.SetAssignments(append(assignments, models.Assignment{
		ChairID: "f2", PersonID: "p9", Period: p, Start: "1950-02-01", End: "1950-05-01",
	}))

	svc, err := New(source, WithLogger(testLogger()))
	require.NoError(t, err)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Pass())
	require.NotEmpty(t, rep.Conflicts)
	assert.Equal(t, models.KindSeatShared, rep.Conflicts[0].Kind)
	assert.Equal(t, "f2", rep.Conflicts[0].EntityID)
}

func TestRunSurfacesRowErrorsWithoutAborting(t *testing.T) {
	p := period(t, "1950")
	source := cleanSource(t)
	assignments, _, err := source.Assignments(context.Background())
	require.NoError(t, err)
	source.SetAssignments(append(assignments,
		models.Assignment{ChairID: "unknown-chair", PersonID: "px", Period: p},
		models.Assignment{ChairID: "f1", PersonID: "py", Period: p, Start: "01.02.1950"},
	))

	svc, err := New(source, WithLogger(testLogger()))
	require.NoError(t, err)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Pass())
	require.Len(t, rep.RowErrors, 2)
	kinds := map[models.RowErrorKind]int{}
	for _, e := range rep.RowErrors {
		kinds[e.Kind]++
	}
	assert.Equal(t, 1, kinds[models.RowErrorResolution])
	assert.Equal(t, 1, kinds[models.RowErrorDateParse])
}

func TestRunSurfacesBadPeriodTokensFromLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("chairs.csv",
		"chair_id,chamber,chair_nr\n"+
			"f1,fk,1\n"+
			"a1,ak,1\n")
	write("chair_mp.csv",
		"chair_id,parliament_year,start,end,person_id\n"+
			"f1,1950,1950-01-10,1950-05-30,p1\n"+
			"a1,1950,1950-01-10,1950-05-30,p2\n"+
			"f1,19,,,p3\n")
	write("member_of_parliament.csv", "person_id,parliament_year,start,end\n")
	write("riksdag_year.csv",
		"parliament_year,chamber,start,end\n"+
			"1950,fk,1950-01-10,1950-05-30\n"+
			"1950,ak,1950-01-10,1950-05-30\n")

	svc, err := New(store.NewCSVSource(dir), WithLogger(testLogger()))
	require.NoError(t, err)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err, "a malformed period token must not abort the run")
	assert.False(t, rep.Pass())
	require.Len(t, rep.RowErrors, 1)
	assert.Equal(t, models.RowErrorPeriodParse, rep.RowErrors[0].Kind)
	assert.Equal(t, "p3", rep.RowErrors[0].PersonID)
}

func TestRunFailsFastOnMissingTable(t *testing.T) {
	source := store.NewCSVSource(t.TempDir())
	svc, err := New(source, WithLogger(testLogger()))
	require.NoError(t, err)

	_, err = svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))
}

func TestRunPublishesCompletionEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)

	var got events.RunCompleted
	publisher.EXPECT().
		PublishRunCompleted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event events.RunCompleted) error {
			got = event
			return nil
		})

	svc, err := New(cleanSource(t), WithLogger(testLogger()), WithPublisher(publisher))
	require.NoError(t, err)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, got.RunID)
	assert.True(t, got.Pass)
	assert.Equal(t, 0, got.Counts["conflicts"])
}

func TestRunCachesReportForGet(t *testing.T) {
	svc, err := New(cleanSource(t), WithLogger(testLogger()))
	require.NoError(t, err)

	ctx := context.Background()
	rep, err := svc.Run(ctx)
	require.NoError(t, err)

	cached, err := svc.Get(ctx, rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, cached.RunID)

	_, err = svc.Get(ctx, "no-such-run")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestRunWritesDiagnosticsOnlyOnFailure(t *testing.T) {
	dir := t.TempDir()
	sink := report.NewFileSink(dir)

	svc, err := New(cleanSource(t), WithLogger(testLogger()), WithDiagnosticsSink(sink, report.AllFlags()))
	require.NoError(t, err)

	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a passing run writes no evidence tables")
}

func TestRunParallelismIsDeterministic(t *testing.T) {
	// Many periods with one conflict each: any worker schedule must produce
	// the same normalized report.
	seats := []models.Seat{{ChairID: "f1", Chamber: models.ChamberFirst, SeatNumber: 1}}
	var assignments []models.Assignment
	for _, token := range []string{"1900", "1901", "1902", "1903", "1904", "1905"} {
		p := period(t, token)
		assignments = append(assignments,
			models.Assignment{ChairID: "f1", PersonID: "pa", Period: p, Start: "1900-01-01", End: "1900-06-30"},
			models.Assignment{ChairID: "f1", PersonID: "pb", Period: p, Start: "1900-03-01", End: "1900-09-30"},
		)
	}
	source := store.NewMemorySource().SetSeats(seats).SetAssignments(assignments)

	run := func(workers int) []models.Conflict {
		svc, err := New(source, WithLogger(testLogger()), WithWorkers(workers))
		require.NoError(t, err)
		rep, err := svc.Run(context.Background())
		require.NoError(t, err)
		return rep.Conflicts
	}

	assert.Equal(t, run(1), run(8))
}
