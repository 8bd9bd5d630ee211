// Package service orchestrates a validation run: load tables, resolve
// intervals, partition by period, run the detectors per period in parallel,
// and assemble the report. All I/O sits at the edges; the per-period work is
// pure computation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"hemicycle/internal/events"
	"hemicycle/internal/ledger/conflict"
	"hemicycle/internal/ledger/metrics"
	"hemicycle/internal/ledger/models"
	"hemicycle/internal/ledger/partition"
	"hemicycle/internal/ledger/rangecheck"
	"hemicycle/internal/ledger/report"
	"hemicycle/internal/ledger/resolve"
	"hemicycle/internal/ledger/store"
	dErrors "hemicycle/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Publisher

// Publisher notifies downstream consumers of completed runs.
type Publisher interface {
	PublishRunCompleted(ctx context.Context, event events.RunCompleted) error
}

const defaultWorkers = 4

// Service runs ledger validations.
type Service struct {
	source     store.RecordSource
	exclusions []rangecheck.ExclusionRule
	logger     *slog.Logger
	metrics    *metrics.Metrics
	publisher  Publisher
	cache      store.ReportCache
	sink       report.Sink
	sinkFlags  report.Flags
	tracer     trace.Tracer
	workers    int
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithReportCache(c store.ReportCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithDiagnosticsSink enables evidence-table output for the given
// categories.
func WithDiagnosticsSink(sink report.Sink, flags report.Flags) Option {
	return func(s *Service) {
		s.sink = sink
		s.sinkFlags = flags
	}
}

// WithExclusions overrides the historical seat-range rules.
func WithExclusions(rules []rangecheck.ExclusionRule) Option {
	return func(s *Service) { s.exclusions = rules }
}

// WithWorkers bounds per-period parallelism.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New constructs the validation service.
func New(source store.RecordSource, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("record source is required")
	}
	s := &Service{
		source:     source,
		exclusions: rangecheck.DefaultExclusions(),
		logger:     slog.Default(),
		cache:      store.NewMemoryReportCache(),
		tracer:     otel.Tracer("hemicycle/ledger"),
		workers:    defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type tables struct {
	seats       []models.Seat
	assignments []models.Assignment
	mandates    []models.PersonMandate
	sessionDays []models.SessionDay
	rowErrs     []models.RowError
}

// load fetches all four tables. A missing or unreadable table aborts the
// run; rows with an unparseable period token come back as row errors and
// surface in the report instead.
func (s *Service) load(ctx context.Context) (*tables, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.load")
	defer span.End()

	var (
		t    tables
		errs []models.RowError
		err  error
	)
	if t.seats, err = s.source.Seats(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load seats table")
	}
	if t.assignments, errs, err = s.source.Assignments(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load assignments table")
	}
	t.rowErrs = append(t.rowErrs, errs...)
	if t.mandates, errs, err = s.source.Mandates(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load mandates table")
	}
	t.rowErrs = append(t.rowErrs, errs...)
	if t.sessionDays, errs, err = s.source.SessionDays(ctx); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load session days table")
	}
	t.rowErrs = append(t.rowErrs, errs...)
	return &t, nil
}

// Run executes one full validation pass and returns the normalized report.
// Domain findings never fail the run; only a load failure does.
func (s *Service) Run(ctx context.Context) (*report.Report, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "ledger.validate")
	defer span.End()

	t, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	rep := &report.Report{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}
	span.SetAttributes(attribute.String("run_id", rep.RunID))

	_, resolveSpan := s.tracer.Start(ctx, "ledger.resolve")
	envelopes, envErrs := resolve.BuildEnvelopes(t.sessionDays)
	resolver := resolve.NewResolver(t.seats, t.mandates, envelopes)
	intervals, rowErrs := resolver.ResolveAll(t.assignments)
	resolveSpan.End()

	rep.Merge(nil, nil, t.rowErrs)
	rep.Merge(nil, nil, envErrs)
	rep.Merge(nil, nil, rowErrs)

	byInterval := partition.Intervals(intervals)
	byAssignment := partition.Assignments(t.assignments)
	periods := partition.Periods(byInterval, byAssignment)
	rep.PeriodCount = len(periods)

	checker := rangecheck.New(t.seats, s.exclusions)

	// Periods are independent: run them concurrently and merge by
	// concatenation. Normalize below restores deterministic order.
	_, detectSpan := s.tracer.Start(ctx, "ledger.detect")
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, p := range periods {
		p := p
		g.Go(func() error {
			conflicts := conflict.Detect(p, byInterval[p])
			violations := checker.Check(p, byAssignment[p])
			mu.Lock()
			rep.Merge(conflicts, violations, nil)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	detectSpan.End()

	rep.Normalize()
	rep.Duration = time.Since(started)

	counts := rep.Counts()
	if s.metrics != nil {
		s.metrics.ObserveRun(rep.Pass(), rep.Duration, counts.Conflicts, counts.OutOfRange, counts.Missing, counts.RowErrors)
	}

	if err := s.cache.Put(ctx, rep); err != nil {
		s.logger.WarnContext(ctx, "failed to cache report", "run_id", rep.RunID, "error", err)
	}

	if s.sink != nil && !rep.Pass() {
		if err := report.WriteDiagnostics(rep, s.sink, s.sinkFlags); err != nil {
			s.logger.WarnContext(ctx, "failed to write diagnostics", "run_id", rep.RunID, "error", err)
		}
	}

	if s.publisher != nil {
		event := events.RunCompleted{
			RunID: rep.RunID,
			Pass:  rep.Pass(),
			Counts: map[string]int{
				"conflicts":          counts.Conflicts,
				"out_of_range_seats": counts.OutOfRange,
				"missing_seats":      counts.Missing,
				"row_errors":         counts.RowErrors,
			},
			CompletedAt: started.Add(rep.Duration),
		}
		if err := s.publisher.PublishRunCompleted(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish run-completed event", "run_id", rep.RunID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "validation run completed",
		"run_id", rep.RunID,
		"pass", rep.Pass(),
		"periods", rep.PeriodCount,
		"conflicts", counts.Conflicts,
		"out_of_range_seats", counts.OutOfRange,
		"missing_seats", counts.Missing,
		"row_errors", counts.RowErrors,
		"duration_ms", rep.Duration.Milliseconds(),
	)
	return rep, nil
}

// Get returns a previously completed run's report.
func (s *Service) Get(ctx context.Context, runID string) (*report.Report, error) {
	return s.cache.Get(ctx, runID)
}
