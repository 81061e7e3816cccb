// Package async provides utilities for parallel task execution.
//
// It contains generic helpers for running multiple operations concurrently
// and collecting errors. The reconciler uses it for the per-iteration
// reachability probes during recovery verification.
package async

import (
	"context"
	"fmt"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes multiple tasks in parallel and returns the first
// error encountered. All tasks are started concurrently, and the function
// waits for all to complete before returning.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	for _, task := range tasks {
		go func() {
			err := task.Func(ctx)
			resultChan <- result{name: task.Name, err: err}
		}()
	}

	var firstError error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil && firstError == nil {
			firstError = fmt.Errorf("task %s failed: %w", res.name, res.err)
		}
	}

	return firstError
}
