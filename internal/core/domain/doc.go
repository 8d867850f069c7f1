// Package domain defines the core business entities for agentops.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - LogRecord: A flat audit/inference log record from the backend
//   - Content: The tagged variant carried in a log record's payload
//   - Context: A versioned prompt context belonging to an agent
//   - InferenceTree: An agent invocation with its correlated inference calls
//   - ContextTree: Contexts grouped by intent, type and version
//   - ViewState: Expansion flags for tree nodes, kept apart from tree data
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
