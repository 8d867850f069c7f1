package logs

import "errors"

// Error definitions for the logs view.
var (
	// ErrNoLogService indicates that no log service was provided.
	ErrNoLogService = errors.New("log service is required")

	// ErrNothingToExport indicates an export was requested with no results.
	ErrNothingToExport = errors.New("no logs to export")
)
