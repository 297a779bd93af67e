// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldAttemptID = "attempt_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldPID       = "pid"
	FieldExitCode  = "exit_code"

	// Scheduling fields
	FieldCategory    = "category"
	FieldOldCategory = "old_category"
	FieldOldState    = "old_state"
	FieldNewState    = "new_state"
	FieldCandidates  = "candidates"
	FieldCatalogSize = "catalog_size"

	// Diagnostic fields
	FieldKeyword = "keyword"
	FieldLine    = "line"

	// Path fields
	FieldPath = "path"
	FieldDir  = "dir"
)
