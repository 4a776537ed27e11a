package models

import "time"

// HealthEntry reports graph readiness. ImportMs is the duration of the latest store import.
type HealthEntry struct {
	Status      string `json:"status"`
	Ready       bool   `json:"ready"`
	Stops       int    `json:"stops"`
	Edges       int    `json:"edges"`
	Issues      int    `json:"issues"`
	LastUpdated int64  `json:"lastUpdated,omitempty"`
	ImportMs    int64  `json:"importMs"`
}

func NewHealthEntry(ready bool, stops, edges, issues int, lastUpdated time.Time, importRuntime time.Duration) HealthEntry {
	entry := HealthEntry{
		Status:   "ok",
		Ready:    ready,
		Stops:    stops,
		Edges:    edges,
		Issues:   issues,
		ImportMs: importRuntime.Milliseconds(),
	}
	if !ready {
		entry.Status = "unavailable"
	}
	if !lastUpdated.IsZero() {
		entry.LastUpdated = lastUpdated.UnixMilli()
	}
	return entry
}
