package queue

import (
	"context"
	"sync"
)

// MemoryAdapter is an in-process, non-durable Adapter backed by a single
// jobStore guarded by a mutex held for the whole of each WriteTx. Holding
// the mutex for the entire transaction is what gives a claim its
// atomicity: no other WriteTx call can observe a partially-claimed batch.
type MemoryAdapter struct {
	mu    sync.Mutex
	store *jobStore
}

// NewMemoryAdapter returns an Adapter that keeps all jobs in memory only.
// Jobs do not survive process restart.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{store: newJobStore()}
}

// WriteTx runs fn against a staged clone of the store under a single lock,
// committing the clone in place of the live store only if fn returns nil.
// A failing fn leaves the previously committed state untouched.
func (a *MemoryAdapter) WriteTx(_ context.Context, fn func(tx Tx) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	staged := a.store.clone()
	if err := fn(staged); err != nil {
		return err
	}
	a.store = staged
	return nil
}

// Close is a no-op; MemoryAdapter holds no external resources.
func (a *MemoryAdapter) Close() error {
	return nil
}
