package main

import (
	"fmt"
	"runtime"
)

// MaxWorkers caps --workers.
const MaxWorkers = 64

// validateWorkers checks that the worker count is within bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, MaxWorkers)
	}
	return nil
}

// resolvePoolSize determines the worker count.
// Priority: explicit flag > GOMAXPROCS (adjusted by automaxprocs for containers).
func resolvePoolSize(flagWorkers, jobs int) int {
	n := flagWorkers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > jobs {
		n = jobs
	}
	if n < 1 {
		return 1
	}
	return n
}
