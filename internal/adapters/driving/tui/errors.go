package tui

import "errors"

// ErrMissingLogService is returned when the log service is not provided.
var ErrMissingLogService = errors.New("tui: log service is required")

// ErrMissingInferenceService is returned when the inference service is not provided.
var ErrMissingInferenceService = errors.New("tui: inference service is required")

// ErrMissingContextService is returned when the context service is not provided.
var ErrMissingContextService = errors.New("tui: context service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
