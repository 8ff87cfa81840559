package queue

import (
	"context"
	"encoding/json"

	"github.com/taskqueue-go/jobqueue/assertion"
	"github.com/taskqueue-go/jobqueue/managers"
)

// Handler processes one job. ctx is cancelled when the job's timeout
// elapses (it is context.Background() for a job without a timeout and for
// lifecycle hooks), id is the job's ID, and payload is the job's
// still-encoded payload -- handlers decode it themselves.
type Handler func(ctx context.Context, id string, payload json.RawMessage) error

// WorkerOptions configures a registered worker.
type WorkerOptions struct {
	// Concurrency bounds how many jobs of this worker's name are
	// processed in parallel within one batch. Defaults to 1.
	Concurrency int

	// OnStart, OnSuccess, OnFailure, OnFailed and OnComplete are optional
	// fire-and-forget lifecycle hooks. Errors they return are logged and
	// never propagated.
	OnStart    Handler
	OnSuccess  Handler
	OnFailure  Handler
	OnFailed   Handler
	OnComplete Handler
}

type workerEntry struct {
	name    string
	handler Handler
	options WorkerOptions
}

// WorkerRegistry is a name -> (handler, options) lookup shared by every
// Queue constructed with WithRegistry(same registry). It is safe for
// concurrent use; registering or unregistering a worker has no ordering
// guarantee relative to in-flight job processing, since a handler already
// executing was snapshotted at dispatch time.
type WorkerRegistry struct {
	items managers.ItemManager[*workerEntry]
}

// NewWorkerRegistry returns an empty WorkerRegistry.
func NewWorkerRegistry() *WorkerRegistry {
	return &WorkerRegistry{items: managers.NewItemManager[*workerEntry]()}
}

// Register adds or replaces the worker handling jobs of the given name.
// name must be non-empty and handler must be non-nil, else
// ErrInvalidArgument. A negative Concurrency is also rejected; Concurrency
// == 0 defaults to 1.
func (r *WorkerRegistry) Register(name string, handler Handler, opts WorkerOptions) error {
	if assertion.Empty(name) || handler == nil {
		return ErrInvalidArgument
	}
	if err := validateWorkerOptions(opts); err != nil {
		return err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	r.items.Register(name, &workerEntry{name: name, handler: handler, options: opts})
	logger.InfoF("WorkerRegistry: registered worker %q concurrency=%d", name, opts.Concurrency)
	return nil
}

// Unregister removes the worker for name. Jobs of that name subsequently
// fail with ErrNoWorker; a handler already running to completion is
// unaffected.
func (r *WorkerRegistry) Unregister(name string) {
	r.items.Unregister(name)
	logger.InfoF("WorkerRegistry: unregistered worker %q", name)
}

// lookup returns the entry registered for name, or ErrNoWorker.
func (r *WorkerRegistry) lookup(name string) (*workerEntry, error) {
	entry := r.items.Get(name)
	if entry == nil {
		return nil, ErrNoWorker
	}
	return entry, nil
}

// ConcurrencyOf returns the registered concurrency for name, or
// ErrNoWorker if no worker is registered under that name.
func (r *WorkerRegistry) ConcurrencyOf(name string) (int, error) {
	entry, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	return entry.options.Concurrency, nil
}
