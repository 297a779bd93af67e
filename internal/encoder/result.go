// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package encoder

import (
	"time"

	"github.com/ManuGH/dayloop/internal/catalog"
)

// Outcome is the verdict of one playback attempt.
type Outcome int

const (
	Success Outcome = iota
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason explains a Failed outcome.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonKeyword  Reason = "keyword"
	ReasonStart    Reason = "start"
	ReasonBusy     Reason = "busy"
	ReasonCanceled Reason = "canceled"
)

// Result describes a finished attempt. ExitCode is informational only and
// never influences Outcome.
type Result struct {
	AttemptID string
	Video     catalog.Video
	Outcome   Outcome
	Reason    Reason
	Keyword   string
	Line      string
	ExitCode  int
	Err       error
	Started   time.Time
	Duration  time.Duration
	Tail      []string
}

// OK reports whether the attempt succeeded.
func (r Result) OK() bool {
	return r.Outcome == Success
}
