// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The correlation and grouping transforms (ExtractAgentCode,
// BuildInferenceTree, BuildContextTree, SummarizeVersions) are pure
// functions over already-fetched data; the services wrap them with
// fetching, validation, logging and history recording.
package services
