package handler

import (
	"time"

	"hemicycle/internal/ledger/report"
)

// RunResponse is the wire form of a validation report.
type RunResponse struct {
	RunID      string         `json:"run_id"`
	Pass       bool           `json:"pass"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Periods    int            `json:"periods"`
	Counts     report.Counts  `json:"counts"`
	Report     *report.Report `json:"report"`
}

// FromReport builds the response envelope around the full report.
func FromReport(r *report.Report) RunResponse {
	return RunResponse{
		RunID:      r.RunID,
		Pass:       r.Pass(),
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Periods:    r.PeriodCount,
		Counts:     r.Counts(),
		Report:     r,
	}
}
