// Package memory provides volatile, process-local implementations of the
// core store interfaces. All stores are safe for concurrent access and copy
// data on save and retrieval to prevent external mutation of internal state.
// They are best suited for tests and single-process prototypes; production
// deployments use store/sqlite or their own durable implementations.
package memory
