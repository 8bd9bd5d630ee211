package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"hemicycle/internal/ledger/models"
	dErrors "hemicycle/pkg/domain-errors"
)

// PostgresSource reads the input tables from a Postgres mirror of the ledger.
// Nullable date columns come back as empty strings, matching the CSV source.
type PostgresSource struct {
	db *sql.DB
}

// OpenPostgres connects and pings so a bad DSN fails at startup, not on the
// first run.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "ping postgres")
	}
	return &PostgresSource{db: db}, nil
}

// NewPostgresSource wraps an existing connection pool.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}

func (s *PostgresSource) Seats(ctx context.Context) ([]models.Seat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chair_id, chamber, chair_nr FROM chairs`)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "query chairs")
	}
	defer rows.Close()

	var seats []models.Seat
	for rows.Next() {
		var (
			seat    models.Seat
			chamber string
		)
		if err := rows.Scan(&seat.ChairID, &chamber, &seat.SeatNumber); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan chairs row")
		}
		if seat.Chamber, err = models.ParseChamber(chamber); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "chairs row")
		}
		seats = append(seats, seat)
	}
	return seats, rowsErr(rows, "chairs")
}

func (s *PostgresSource) Assignments(ctx context.Context) ([]models.Assignment, []models.RowError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chair_id, COALESCE(person_id, ''), parliament_year,
		       COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
		       COALESCE(to_char(end_date, 'YYYY-MM-DD'), '')
		FROM chair_mp`)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "query chair_mp")
	}
	defer rows.Close()

	var (
		assignments []models.Assignment
		rowErrs     []models.RowError
	)
	for rows.Next() {
		var (
			a     models.Assignment
			token string
		)
		if err := rows.Scan(&a.ChairID, &a.PersonID, &token, &a.Start, &a.End); err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan chair_mp row")
		}
		if a.Period, err = models.ParsePeriod(token); err != nil {
			rowErrs = append(rowErrs, periodRowError("chair_mp", a.ChairID, a.PersonID, err))
			continue
		}
		assignments = append(assignments, a)
	}
	return assignments, rowErrs, rowsErr(rows, "chair_mp")
}

func (s *PostgresSource) Mandates(ctx context.Context) ([]models.PersonMandate, []models.RowError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, parliament_year,
		       COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
		       COALESCE(to_char(end_date, 'YYYY-MM-DD'), '')
		FROM member_of_parliament`)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "query member_of_parliament")
	}
	defer rows.Close()

	var (
		mandates []models.PersonMandate
		rowErrs  []models.RowError
	)
	for rows.Next() {
		var (
			m     models.PersonMandate
			token string
		)
		if err := rows.Scan(&m.PersonID, &token, &m.Start, &m.End); err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan member_of_parliament row")
		}
		if m.Period, err = models.ParsePeriod(token); err != nil {
			rowErrs = append(rowErrs, periodRowError("member_of_parliament", "", m.PersonID, err))
			continue
		}
		mandates = append(mandates, m)
	}
	return mandates, rowErrs, rowsErr(rows, "member_of_parliament")
}

func (s *PostgresSource) SessionDays(ctx context.Context) ([]models.SessionDay, []models.RowError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT parliament_year, chamber,
		       COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
		       COALESCE(to_char(end_date, 'YYYY-MM-DD'), '')
		FROM riksdag_year`)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "query riksdag_year")
	}
	defer rows.Close()

	var (
		days    []models.SessionDay
		rowErrs []models.RowError
	)
	for rows.Next() {
		var (
			d       models.SessionDay
			token   string
			chamber string
		)
		if err := rows.Scan(&token, &chamber, &d.Start, &d.End); err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scan riksdag_year row")
		}
		if d.Period, err = models.ParsePeriod(token); err != nil {
			rowErrs = append(rowErrs, periodRowError("riksdag_year", "", "", err))
			continue
		}
		if d.Chamber, err = models.ParseChamber(chamber); err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "riksdag_year row")
		}
		days = append(days, d)
	}
	return days, rowErrs, rowsErr(rows, "riksdag_year")
}

func periodRowError(table, chairID, personID string, err error) models.RowError {
	return models.RowError{
		Kind:     models.RowErrorPeriodParse,
		ChairID:  chairID,
		PersonID: personID,
		Field:    "parliament_year",
		Reason:   fmt.Sprintf("table %s: %v", table, err),
	}
}

func rowsErr(rows *sql.Rows, table string) error {
	if err := rows.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("iterate %s", table))
	}
	return nil
}
