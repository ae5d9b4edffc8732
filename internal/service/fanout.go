package service

import (
	"context"
	"sync"
)

// writeOp is one independent persistence write inside a fan-out batch.
type writeOp struct {
	name string
	fn   func(context.Context) error
}

// opError pairs a failed op with its error.
type opError struct {
	Name string
	Err  error
}

// fanOut launches every write concurrently and waits for all of them.
// There is no ordering between the writes and no rollback: callers decide
// what a partial failure means for the operation's outcome.
func fanOut(ctx context.Context, ops []writeOp) []opError {
	if len(ops) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []opError

	for _, op := range ops {
		wg.Add(1)
		go func(op writeOp) {
			defer wg.Done()
			if err := op.fn(ctx); err != nil {
				mu.Lock()
				failures = append(failures, opError{Name: op.name, Err: err})
				mu.Unlock()
			}
		}(op)
	}
	wg.Wait()
	return failures
}
