// Package logging provides a minimal logging interface and adapters for the
// evaluation pipeline.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) the orchestrator and its collaborators use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - PipelineLogger with contextual cloning helpers (component, session)
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	orch := pipeline.New(deps, func(o *pipeline.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal so callers can plug in
// any structured logger.
package logging
