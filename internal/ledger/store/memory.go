package store

import (
	"context"
	"sync"

	"hemicycle/internal/ledger/models"
)

// MemorySource is an in-memory RecordSource used in tests and as a seed
// fixture. Safe for concurrent reads.
type MemorySource struct {
	mu          sync.RWMutex
	seats       []models.Seat
	assignments []models.Assignment
	mandates    []models.PersonMandate
	sessionDays []models.SessionDay
}

func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

func (s *MemorySource) SetSeats(seats []models.Seat) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seats = seats
	return s
}

func (s *MemorySource) SetAssignments(assignments []models.Assignment) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = assignments
	return s
}

func (s *MemorySource) SetMandates(mandates []models.PersonMandate) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mandates = mandates
	return s
}

func (s *MemorySource) SetSessionDays(days []models.SessionDay) *MemorySource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionDays = days
	return s
}

func (s *MemorySource) Seats(_ context.Context) ([]models.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Seat(nil), s.seats...), nil
}

func (s *MemorySource) Assignments(_ context.Context) ([]models.Assignment, []models.RowError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Assignment(nil), s.assignments...), nil, nil
}

func (s *MemorySource) Mandates(_ context.Context) ([]models.PersonMandate, []models.RowError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PersonMandate(nil), s.mandates...), nil, nil
}

func (s *MemorySource) SessionDays(_ context.Context) ([]models.SessionDay, []models.RowError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SessionDay(nil), s.sessionDays...), nil, nil
}
