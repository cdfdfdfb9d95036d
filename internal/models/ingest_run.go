package models

import "time"

type IngestStatus string

const (
	IngestCompleted IngestStatus = "completed"
	IngestFailed    IngestStatus = "failed"
)

// IngestSummary counts what happened to each message of one run.
type IngestSummary struct {
	Total            int                     `json:"total"`
	Recognized       int                     `json:"recognized"`
	Unrecognized     int                     `json:"unrecognized"`
	ExtractionFaults int                     `json:"extractionFaults"`
	Skipped          int                     `json:"skipped"`
	Inserted         int                     `json:"inserted"`
	ByType           map[TransactionType]int `json:"byType"`
}

type IngestRun struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	Status     IngestStatus  `json:"status"`
	Error      *string       `json:"error,omitempty"`
	Summary    IngestSummary `json:"summary"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}
