// Package core provides the foundational domain types and service contracts
// used by the evaluation pipeline. It defines the core abstractions for:
//
//   - Sessions (the per-recording unit of work tracked from trigger to a
//     terminal state)
//   - Transcript segments (the ordered speech record of a finished call)
//   - Evaluations (the persisted, structured scoring output for one session)
//   - Call notes (optional extracted lead / deal facts attached to an
//     evaluation)
//   - Notifications and saved practice scenarios (fan-out records)
//   - Store and collaborator interfaces the orchestrator is wired against
//
// Implementations live in sibling packages: store/memory and store/sqlite for
// persistence, recording for transcript retrieval, scoring and notes for the
// LLM-backed services, simulation for practice-scenario generation, and
// pipeline for the orchestrator itself.
package core
