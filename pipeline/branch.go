package pipeline

import "fmt"

// branchResult captures one isolated branch's outcome. Errors and recovered
// panics land in err instead of propagating into the orchestrator's control
// flow.
type branchResult[T any] struct {
	value T
	err   error
}

// runIsolated executes fn, converting a panic into an error on the result.
func runIsolated[T any](fn func() (T, error)) (res branchResult[T]) {
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("branch panic: %v", r)
		}
	}()
	res.value, res.err = fn()
	return res
}
