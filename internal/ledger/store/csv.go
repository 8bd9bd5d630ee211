package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"hemicycle/internal/ledger/models"
	dErrors "hemicycle/pkg/domain-errors"
)

// Table file names match the upstream corpus layout.
const (
	seatsFile       = "chairs.csv"
	assignmentsFile = "chair_mp.csv"
	mandatesFile    = "member_of_parliament.csv"
	sessionDaysFile = "riksdag_year.csv"
)

// CSVSource reads the input tables from comma-separated files in a single
// directory. Columns are located by header name, so column order in the
// files does not matter.
type CSVSource struct {
	dir string
}

func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

func (s *CSVSource) Seats(_ context.Context) ([]models.Seat, error) {
	rows, idx, err := s.read(seatsFile, "chair_id", "chamber", "chair_nr")
	if err != nil {
		return nil, err
	}
	seats := make([]models.Seat, 0, len(rows))
	for i, row := range rows {
		chamber, err := models.ParseChamber(row[idx["chamber"]])
		if err != nil {
			return nil, rowErr(seatsFile, i, err)
		}
		nr, err := strconv.Atoi(row[idx["chair_nr"]])
		if err != nil {
			return nil, rowErr(seatsFile, i, fmt.Errorf("chair_nr: %w", err))
		}
		seats = append(seats, models.Seat{
			ChairID:    row[idx["chair_id"]],
			Chamber:    chamber,
			SeatNumber: nr,
		})
	}
	return seats, nil
}

func (s *CSVSource) Assignments(_ context.Context) ([]models.Assignment, []models.RowError, error) {
	rows, idx, err := s.read(assignmentsFile, "chair_id", "person_id", "parliament_year", "start", "end")
	if err != nil {
		return nil, nil, err
	}
	assignments := make([]models.Assignment, 0, len(rows))
	var rowErrs []models.RowError
	for i, row := range rows {
		period, err := models.ParsePeriod(row[idx["parliament_year"]])
		if err != nil {
			rowErrs = append(rowErrs, models.RowError{
				Kind:     models.RowErrorPeriodParse,
				ChairID:  row[idx["chair_id"]],
				PersonID: row[idx["person_id"]],
				Field:    "parliament_year",
				Reason:   badPeriod(assignmentsFile, i, err),
			})
			continue
		}
		assignments = append(assignments, models.Assignment{
			ChairID:  row[idx["chair_id"]],
			PersonID: row[idx["person_id"]],
			Period:   period,
			Start:    row[idx["start"]],
			End:      row[idx["end"]],
		})
	}
	return assignments, rowErrs, nil
}

func (s *CSVSource) Mandates(_ context.Context) ([]models.PersonMandate, []models.RowError, error) {
	rows, idx, err := s.read(mandatesFile, "person_id", "parliament_year", "start", "end")
	if err != nil {
		return nil, nil, err
	}
	mandates := make([]models.PersonMandate, 0, len(rows))
	var rowErrs []models.RowError
	for i, row := range rows {
		period, err := models.ParsePeriod(row[idx["parliament_year"]])
		if err != nil {
			rowErrs = append(rowErrs, models.RowError{
				Kind:     models.RowErrorPeriodParse,
				PersonID: row[idx["person_id"]],
				Field:    "parliament_year",
				Reason:   badPeriod(mandatesFile, i, err),
			})
			continue
		}
		mandates = append(mandates, models.PersonMandate{
			PersonID: row[idx["person_id"]],
			Period:   period,
			Start:    row[idx["start"]],
			End:      row[idx["end"]],
		})
	}
	return mandates, rowErrs, nil
}

func (s *CSVSource) SessionDays(_ context.Context) ([]models.SessionDay, []models.RowError, error) {
	rows, idx, err := s.read(sessionDaysFile, "parliament_year", "chamber", "start", "end")
	if err != nil {
		return nil, nil, err
	}
	days := make([]models.SessionDay, 0, len(rows))
	var rowErrs []models.RowError
	for i, row := range rows {
		period, err := models.ParsePeriod(row[idx["parliament_year"]])
		if err != nil {
			rowErrs = append(rowErrs, models.RowError{
				Kind:   models.RowErrorPeriodParse,
				Field:  "parliament_year",
				Reason: badPeriod(sessionDaysFile, i, err),
			})
			continue
		}
		chamber, err := models.ParseChamber(row[idx["chamber"]])
		if err != nil {
			return nil, nil, rowErr(sessionDaysFile, i, err)
		}
		days = append(days, models.SessionDay{
			Period:  period,
			Chamber: chamber,
			Start:   row[idx["start"]],
			End:     row[idx["end"]],
		})
	}
	return days, rowErrs, nil
}

// read loads a table and returns its data rows plus a header-name index.
// A missing file or missing required column is a fatal load error.
func (s *CSVSource) read(name string, required ...string) ([][]string, map[string]int, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("required table %s not readable", name))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("parse table %s", name))
	}
	if len(records) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("table %s has no header", name))
	}

	idx := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		idx[col] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, nil, dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("table %s is missing column %s", name, col))
		}
	}
	return records[1:], idx, nil
}

func rowErr(table string, row int, err error) error {
	// +2 converts the zero-based data index to the file line number.
	return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("table %s line %d", table, row+2))
}

func badPeriod(table string, row int, err error) string {
	return fmt.Sprintf("table %s line %d: %v", table, row+2, err)
}
