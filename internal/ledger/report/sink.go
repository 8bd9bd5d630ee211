package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"hemicycle/internal/ledger/models"
)

// Sink receives one evidence table per finding category.
type Sink interface {
	WriteTable(name string, header []string, rows [][]string) error
}

// Flags selects which categories a sink receives.
type Flags struct {
	Conflicts bool
	Range     bool
	Errors    bool
}

// AllFlags enables every category.
func AllFlags() Flags {
	return Flags{Conflicts: true, Range: true, Errors: true}
}

// WriteDiagnostics emits the report's evidence tables to the sink. Empty
// categories are skipped.
func WriteDiagnostics(r *Report, sink Sink, flags Flags) error {
	if flags.Conflicts && len(r.Conflicts) > 0 {
		header := []string{"period", "kind", "entity_id", "gap_days", "chair_id", "person_id", "chamber", "start", "end"}
		var rows [][]string
		for _, c := range r.Conflicts {
			for _, iv := range c.Group {
				rows = append(rows, []string{
					c.Period.Token,
					string(c.Kind),
					c.EntityID,
					strconv.Itoa(c.GapDays),
					iv.ChairID,
					iv.PersonID,
					string(iv.Chamber),
					iv.Start.Format(models.DateLayout),
					iv.End.Format(models.DateLayout),
				})
			}
		}
		if err := sink.WriteTable("conflicts", header, rows); err != nil {
			return fmt.Errorf("write conflicts table: %w", err)
		}
	}

	if flags.Range {
		if err := writeViolations(sink, "chair-out-of-range", r.OutOfRange); err != nil {
			return err
		}
		if err := writeViolations(sink, "chair-missing", r.Missing); err != nil {
			return err
		}
	}

	if flags.Errors && len(r.RowErrors) > 0 {
		header := []string{"period", "kind", "chair_id", "person_id", "field", "reason"}
		rows := make([][]string, 0, len(r.RowErrors))
		for _, e := range r.RowErrors {
			rows = append(rows, []string{e.Period.Token, string(e.Kind), e.ChairID, e.PersonID, e.Field, e.Reason})
		}
		if err := sink.WriteTable("row-errors", header, rows); err != nil {
			return fmt.Errorf("write row-errors table: %w", err)
		}
	}
	return nil
}

func writeViolations(sink Sink, name string, violations []models.RangeViolation) error {
	if len(violations) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, []string{v.Period.Token, string(v.Kind), v.ChairID})
	}
	if err := sink.WriteTable(name, []string{"period", "kind", "chair_id"}, rows); err != nil {
		return fmt.Errorf("write %s table: %w", name, err)
	}
	return nil
}

// FileSink writes each table as a fresh semicolon-separated file named
// <timestamp>_<table>.csv. One file per run and table; no appends.
type FileSink struct {
	dir   string
	clock func() time.Time
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithClock overrides the timestamp source for tests.
func WithClock(clock func() time.Time) FileSinkOption {
	return func(s *FileSink) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewFileSink(dir string, opts ...FileSinkOption) *FileSink {
	s := &FileSink{dir: dir, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileSink) WriteTable(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create diagnostics dir: %w", err)
	}
	stamp := s.clock().Format("20060102-150405")
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", stamp, name))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create diagnostics file: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush diagnostics file: %w", err)
	}
	return f.Close()
}
