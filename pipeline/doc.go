// Package pipeline implements the meeting-evaluation orchestrator: the state
// machine that turns a finished recording session into a persisted evaluation
// record and triggers the downstream fan-out.
//
// A run moves a session pending -> processing -> evaluating -> completed,
// with a terminal error state reachable from any non-terminal state. The only
// two fatal outcomes are an empty transcript after the single bounded retry
// and a scorer failure; notes extraction, calendar sync and practice-scenario
// generation are best effort and logged only. Duplicate triggers are absorbed
// by a pre-flight existence check plus an insert-or-fetch-existing operation
// at the storage layer, so exactly one evaluation ever exists per session.
package pipeline
