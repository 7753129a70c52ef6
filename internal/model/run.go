package model

import "time"

// RunSummary holds the terminal counters of a single crawl run.
type RunSummary struct {
	RunID           string        `json:"run_id"`
	StartedAt       time.Time     `json:"started_at"`
	Fetched         int           `json:"fetched"`
	IngestedOk      int           `json:"ingested_ok"`
	IngestedSkipped int           `json:"ingested_skipped"`
	IngestedFailed  int           `json:"ingested_failed"`
	Elapsed         time.Duration `json:"elapsed"`
}
