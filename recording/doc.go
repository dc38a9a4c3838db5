// Package recording implements the transcript retriever: a read-only client
// for the external call-recording provider plus a tolerant parser that maps
// provider-native segment payloads onto the canonical transcript shape.
//
// The retriever is deliberately forgiving. Provider or network errors are
// logged and reported as an empty transcript so the orchestrator can treat
// "not ready" and "failed to fetch" uniformly, and unrecognized segment
// shapes are dropped rather than failing the whole transcript.
package recording
