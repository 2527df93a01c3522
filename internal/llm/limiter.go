package llm

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// CallLimiter caps the number of provider calls in flight across all
// debates. A single hung provider cannot exhaust the process; the
// per-call timeout in the orchestrator frees slots eventually.
type CallLimiter struct {
	sem *semaphore.Weighted
}

// NewCallLimiter creates a limiter allowing max concurrent calls.
// max <= 0 disables limiting.
func NewCallLimiter(max int64) *CallLimiter {
	if max <= 0 {
		return &CallLimiter{}
	}
	return &CallLimiter{sem: semaphore.NewWeighted(max)}
}

// Acquire blocks until a call slot is free or ctx is done.
func (l *CallLimiter) Acquire(ctx context.Context) error {
	if l.sem == nil {
		return nil
	}
	return l.sem.Acquire(ctx, 1)
}

// Release frees a slot acquired with Acquire.
func (l *CallLimiter) Release() {
	if l.sem != nil {
		l.sem.Release(1)
	}
}
