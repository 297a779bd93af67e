// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import "time"

// State is a phase of one loop iteration.
type State int

const (
	StateIdle State = iota
	StateCategoryResolved
	StateScanning
	StateSelecting
	StateAttempting
	StateAdvancing
	StateBackingOff
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCategoryResolved:
		return "category_resolved"
	case StateScanning:
		return "scanning"
	case StateSelecting:
		return "selecting"
	case StateAttempting:
		return "attempting"
	case StateAdvancing:
		return "advancing"
	case StateBackingOff:
		return "backing_off"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON status documents.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a point-in-time view of the loop for health and status reporting.
type Status struct {
	State         State     `json:"state"`
	Category      string    `json:"category,omitempty"`
	CatalogSize   int       `json:"catalog_size"`
	Unplayed      int       `json:"unplayed"`
	Played        int       `json:"played"`
	CurrentVideo  string    `json:"current_video,omitempty"`
	LastVideo     string    `json:"last_video,omitempty"`
	LastOutcome   string    `json:"last_outcome,omitempty"`
	LastReason    string    `json:"last_reason,omitempty"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
	Iterations    uint64    `json:"iterations"`
	Attempts      uint64    `json:"attempts"`
	FailedSweeps  int       `json:"failed_sweeps"`
	Resets        uint64    `json:"resets"`
	StartedAt     time.Time `json:"started_at,omitempty"`
}

// Report summarises a single Step, mainly for callers that drive the loop by hand.
type Report struct {
	Category    string
	Changed     bool
	CatalogSize int
	BackedOff   bool
	Reset       bool
	Candidates  []string
	Attempted   []string
	Played      string
}
