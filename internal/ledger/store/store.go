// Package store supplies the four typed record sets the validator consumes.
// Implementations load from CSV files, Postgres, or memory; the validator
// only sees the RecordSource interface.
package store

import (
	"context"

	"hemicycle/internal/ledger/models"
)

// RecordSource loads the input tables. A missing or unreadable table is the
// only fatal condition in a validation run: no meaningful analysis can
// proceed without it. Individual rows with an unparseable period token are
// returned as RowErrors alongside the good rows, never silently dropped and
// never fatal. The seat table is static reference data and has no per-row
// error channel: if it is corrupt, every downstream check is meaningless.
type RecordSource interface {
	Seats(ctx context.Context) ([]models.Seat, error)
	Assignments(ctx context.Context) ([]models.Assignment, []models.RowError, error)
	Mandates(ctx context.Context) ([]models.PersonMandate, []models.RowError, error)
	SessionDays(ctx context.Context) ([]models.SessionDay, []models.RowError, error)
}
