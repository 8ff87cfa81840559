package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/taskqueue-go/jobqueue/assertion"
	"github.com/taskqueue-go/jobqueue/errutils"
	"github.com/taskqueue-go/jobqueue/fnutils"
	"github.com/taskqueue-go/jobqueue/lifecycle"
)

// Unbounded is passed as maxJobs to Start to mean "no limit on jobs
// processed by this run". Passing 0 literally means "process zero jobs"
// (GetConcurrentJobs is called with a zero row limit and returns nothing).
const Unbounded = -1

// lifespanBuffer is the hard safety margin a job's timeout must leave
// before a bounded Start's deadline, to cover claim-transaction and
// commit-on-failure latency ahead of a host-enforced kill deadline.
const lifespanBuffer = 499 * time.Millisecond

// Option configures a Queue at construction time.
type Option func(*Queue)

// WithAdapter sets the persistence adapter a Queue stores jobs through.
// Defaults to an unshared MemoryAdapter.
func WithAdapter(adapter Adapter) Option {
	return func(q *Queue) { q.adapter = adapter }
}

// WithRegistry sets the WorkerRegistry a Queue dispatches jobs through.
// Pass the same registry to multiple Queues to share worker registration
// across them. Defaults to a fresh, unshared WorkerRegistry.
func WithRegistry(registry *WorkerRegistry) Option {
	return func(q *Queue) { q.registry = registry }
}

// WithIDGenerator overrides how new job IDs are minted. Defaults to
// DefaultIDGenerator (random version-4 UUIDs).
func WithIDGenerator(gen IDGenerator) Option {
	return func(q *Queue) { q.idGen = gen }
}

// Queue is a durable, priority-ordered, at-least-once job queue. It claims
// due jobs from its Adapter, dispatches them to handlers on its
// WorkerRegistry, and retries failures up to each job's configured
// attempt limit.
//
// A Queue's processing loop is single-threaded and cooperative: only one
// claim transaction is in flight at a time, and the next claim only runs
// after every handler in the current batch has settled.
type Queue struct {
	adapter  Adapter
	registry *WorkerRegistry
	idGen    IDGenerator

	mu        sync.Mutex
	running   bool
	startTime time.Time
	lifespan  time.Duration
	loopWG    sync.WaitGroup
}

// New returns a Queue configured by opts. With no options it uses an
// unshared in-memory adapter, an unshared worker registry, and UUID-based
// job IDs.
func New(opts ...Option) *Queue {
	q := &Queue{
		adapter:  NewMemoryAdapter(),
		registry: NewWorkerRegistry(),
		idGen:    DefaultIDGenerator(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// AddWorker registers handler under name on the Queue's WorkerRegistry.
func (q *Queue) AddWorker(name string, handler Handler, opts WorkerOptions) error {
	return q.registry.Register(name, handler, opts)
}

// RemoveWorker unregisters the worker for name.
func (q *Queue) RemoveWorker(name string) {
	q.registry.Unregister(name)
}

// CreateJob validates name and opts, inserts a new job row, and -- unless
// startQueue is false -- starts the processing loop if it is not already
// running. name must be non-empty; a negative timeout, attempts, or
// retryDelay in opts is rejected with ErrInvalidArgument.
func (q *Queue) CreateJob(name string, payload interface{}, opts []JobOption, startQueue bool) (*Job, error) {
	if assertion.Empty(name) {
		return nil, ErrInvalidArgument
	}

	params := newJobParams(opts)
	if err := validateJobParams(params); err != nil {
		return nil, err
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	data, err := jobData{Attempts: params.attempts}.encode()
	if err != nil {
		return nil, err
	}

	id, err := q.idGen.NewID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &Job{
		ID:            id,
		Name:          name,
		Payload:       string(payloadBytes),
		Data:          data,
		Priority:      params.priority,
		Active:        false,
		Timeout:       int(params.timeout.Milliseconds()),
		Created:       now,
		Failed:        nil,
		NextValidTime: now,
		RetryDelay:    int(params.retryDelay.Milliseconds()),
	}

	err = q.adapter.WriteTx(context.Background(), func(tx Tx) error {
		return tx.Insert(job)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoF("queue: created job %s name=%s priority=%d", job.ID, job.Name, job.Priority)

	if startQueue && !q.IsRunning() {
		q.Start(0, Unbounded)
	}

	return job, nil
}

// GetJobs returns every job row currently stored. consistent has no
// observable effect against the adapters provided by this package (both
// are always transactionally consistent); it exists so adapters backed by
// a store with weaker read isolation have a way to request a stronger read.
func (q *Queue) GetJobs(consistent bool) ([]*Job, error) {
	var jobs []*Job
	err := q.adapter.WriteTx(context.Background(), func(tx Tx) error {
		all, err := tx.Query(Predicate{}, nil, -1)
		jobs = all
		return err
	})
	return jobs, err
}

// GetConcurrentJobs performs one claim transaction: it selects the
// highest-priority, oldest eligible jobs sharing the name of the
// highest-priority eligible job (up to that name's registered
// concurrency), flips their Active flag, and returns them.
//
// jobsLimit bounds the candidate window considered before the
// name-specific batch is taken; pass Unbounded for no bound.
// lifespanRemaining encodes three states: zero means no lifespan
// constraint is in effect; negative means a lifespan is in effect and has
// already elapsed (GetConcurrentJobs returns immediately without touching
// the store); positive is the time left, used to exclude jobs whose
// timeout wouldn't fit within lifespanBuffer of that remaining time.
func (q *Queue) GetConcurrentJobs(jobsLimit int, lifespanRemaining time.Duration) ([]*Job, error) {
	if lifespanRemaining < 0 {
		return []*Job{}, nil
	}

	var claimed []*Job
	err := q.adapter.WriteTx(context.Background(), func(tx Tx) error {
		now := time.Now()
		active := false
		failed := false
		pred := Predicate{Active: &active, Failed: &failed, NextValidTimeAtOrBefore: &now}

		if lifespanRemaining > 0 {
			timeoutUpperMs := int(lifespanRemaining.Milliseconds()) - int(lifespanBuffer.Milliseconds())
			if timeoutUpperMs < 0 {
				timeoutUpperMs = 0
			}
			zero := 0
			pred.TimeoutGreaterThan = &zero
			pred.TimeoutLessThan = &timeoutUpperMs
		}

		sortKeys := []SortKey{
			{Field: SortPriority, Desc: true},
			{Field: SortCreated, Desc: false},
		}

		candidates, err := tx.Query(pred, sortKeys, jobsLimit)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		pivot := candidates[0]
		concurrency, err := q.registry.ConcurrencyOf(pivot.Name)
		if err != nil {
			// No worker registered: still claim the job so ProcessJob can
			// run it through the normal NoWorker failure path.
			concurrency = 1
		}

		namePred := pred
		pivotName := pivot.Name
		namePred.Name = &pivotName
		batchLimit := concurrency
		if jobsLimit >= 0 && jobsLimit < batchLimit {
			batchLimit = jobsLimit
		}
		batch, err := tx.Query(namePred, sortKeys, batchLimit)
		if err != nil {
			return err
		}

		for _, j := range batch {
			j.Active = true
			if err := tx.Update(j); err != nil {
				return err
			}
		}
		claimed = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		claimed = []*Job{}
	}
	return claimed, nil
}

// ProcessJob runs job's handler, recording the outcome in the store:
// success deletes the row, failure records the error and reschedules
// (or terminally fails) it. ProcessJob never returns the handler's error;
// every outcome is absorbed into store state, matching the at-least-once,
// never-propagate-from-the-loop contract. The error it does return is a
// store-level failure (e.g. the delete or update that records the outcome
// could not be committed) for the caller to aggregate and report.
func (q *Queue) ProcessJob(job *Job) error {
	id := job.ID
	name := job.Name
	payload := json.RawMessage(job.Payload)

	entry, lookupErr := q.registry.lookup(name)
	q.fireHook(entry, func(e *workerEntry) Handler { return e.options.OnStart }, id, payload, "onStart")

	var runErr error
	if lookupErr != nil {
		runErr = fmt.Errorf("no worker registered for job %q: %w", name, lookupErr)
	} else {
		runErr = q.runHandler(entry.handler, id, payload, time.Duration(job.Timeout)*time.Millisecond)
	}

	if runErr == nil {
		storeErr := q.completeJob(job)
		q.fireHook(entry, func(e *workerEntry) Handler { return e.options.OnSuccess }, id, payload, "onSuccess")
		q.fireHook(entry, func(e *workerEntry) Handler { return e.options.OnComplete }, id, payload, "onComplete")
		return storeErr
	}

	terminal, storeErr := q.failJob(job, runErr)
	q.fireHook(entry, func(e *workerEntry) Handler { return e.options.OnFailure }, id, payload, "onFailure")
	if terminal {
		q.fireHook(entry, func(e *workerEntry) Handler { return e.options.OnFailed }, id, payload, "onFailed")
		q.fireHook(entry, func(e *workerEntry) Handler { return e.options.OnComplete }, id, payload, "onComplete")
	}
	return storeErr
}

// runHandler executes handler, racing it against a timer when timeout > 0.
// The loser of that race is not cancelled; handler side effects that
// continue past a timeout are accepted, consistent with at-least-once.
func (q *Queue) runHandler(handler Handler, id string, payload json.RawMessage, timeout time.Duration) error {
	if timeout <= 0 {
		return wrapHandlerErr(handler(context.Background(), id, payload))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- handler(ctx, id, payload)
	}()

	select {
	case err := <-resultCh:
		return wrapHandlerErr(err)
	case <-ctx.Done():
		return &TimeoutError{ID: id, Ms: int(timeout.Milliseconds())}
	}
}

// wrapHandlerErr carries a handler's returned error as a HandlerFailureError
// so callers can distinguish "handler ran and failed" from a synthesized
// TimeoutError or NoWorker failure.
func wrapHandlerErr(err error) error {
	if err == nil {
		return nil
	}
	return &HandlerFailureError{Message: err.Error()}
}

// completeJob deletes job's row after a successful run.
func (q *Queue) completeJob(job *Job) error {
	err := q.adapter.WriteTx(context.Background(), func(tx Tx) error {
		return tx.Delete(job)
	})
	if err != nil {
		logger.ErrorF("queue: failed to delete completed job %s: %v", job.ID, err)
	}
	return err
}

// failJob records a failed attempt against job's row and reports whether
// the job has now exhausted its attempts (terminal failure).
func (q *Queue) failJob(job *Job, cause error) (bool, error) {
	terminal := false
	err := q.adapter.WriteTx(context.Background(), func(tx Tx) error {
		rows, err := tx.Query(Predicate{}, nil, -1)
		if err != nil {
			return err
		}
		var row *Job
		for _, r := range rows {
			if r.ID == job.ID {
				row = r
				break
			}
		}
		if row == nil {
			// Row already gone (e.g. flushed concurrently); nothing to record.
			return nil
		}

		data, err := decodeJobData(row.Data)
		if err != nil {
			return err
		}
		data.FailedAttempts++
		data.Errors = append(data.Errors, cause.Error())
		encoded, err := data.encode()
		if err != nil {
			return err
		}

		now := time.Now()
		row.Data = encoded
		row.Active = false
		row.NextValidTime = now.Add(time.Duration(row.RetryDelay) * time.Millisecond)
		if data.FailedAttempts >= data.Attempts {
			row.Failed = &now
			terminal = true
		}

		if updErr := tx.Update(row); updErr != nil {
			return updErr
		}

		if row.RetryDelay > 0 {
			q.scheduleDeferredRestart(time.Duration(row.RetryDelay) * time.Millisecond)
		}
		return nil
	})
	if err != nil {
		logger.ErrorF("queue: failed to record failure for job %s: %v", job.ID, err)
	}
	return terminal, err
}

// scheduleDeferredRestart arranges for the processing loop to be kicked
// again after delay, preserving whatever lifespan is active right now.
// The restart survives Stop(): the timer was armed before Stop cleared
// lifespan bookkeeping, and fires independently of it.
func (q *Queue) scheduleDeferredRestart(delay time.Duration) {
	q.mu.Lock()
	lifespan := q.lifespan
	q.mu.Unlock()

	go func() {
		err := fnutils.ExecuteAfterMs(func() {
			if !q.IsRunning() {
				q.Start(lifespan, Unbounded)
			}
		}, delay.Milliseconds())
		if err != nil {
			logger.ErrorF("queue: deferred restart scheduling failed: %v", err)
		}
	}()
}

// fireHook invokes the hook selected by pick on entry, if both entry and
// the hook are non-nil, in its own goroutine. Hook errors are logged and
// never propagate.
func (q *Queue) fireHook(entry *workerEntry, pick func(*workerEntry) Handler, id string, payload json.RawMessage, label string) {
	if entry == nil {
		return
	}
	h := pick(entry)
	if h == nil {
		return
	}
	go func() {
		if err := h(context.Background(), id, payload); err != nil {
			logger.ErrorF("queue: %s hook for job %s returned error: %v", label, id, err)
		}
	}()
}

// IsRunning reports whether the processing loop is currently active.
func (q *Queue) IsRunning() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Start begins the processing loop. It returns false immediately, without
// any side effect, if the loop is already running. Otherwise it marks the
// queue running, starts a fresh lifespan clock for this invocation, and
// runs the claim/process loop in the background until lifespan expires,
// maxJobs jobs have been processed, or Stop is called.
//
// lifespan == 0 means no wall-clock bound. maxJobs == Unbounded means no
// cap on jobs processed; maxJobs == 0 processes none (GetConcurrentJobs is
// called with a zero row limit).
func (q *Queue) Start(lifespan time.Duration, maxJobs int) bool {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return false
	}
	q.running = true
	q.startTime = time.Now()
	q.lifespan = lifespan
	q.mu.Unlock()

	q.loopWG.Add(1)
	go q.runLoop(maxJobs)
	return true
}

func (q *Queue) runLoop(maxJobs int) {
	defer q.loopWG.Done()

	jobsProcessed := 0
	var finalRemaining time.Duration

	for {
		remaining := q.lifespanRemaining()
		finalRemaining = remaining
		if !q.IsRunning() {
			break
		}

		limit := Unbounded
		if maxJobs >= 0 {
			limit = maxJobs - jobsProcessed
			if limit < 0 {
				limit = 0
			}
		}

		batch, err := q.GetConcurrentJobs(limit, remaining)
		if err != nil {
			logger.ErrorF("queue: claim failed, stopping loop: %v", err)
			break
		}
		if len(batch) == 0 {
			break
		}

		batchErrs := errutils.NewMultiErr(nil)
		var wg sync.WaitGroup
		for _, job := range batch {
			job := job
			wg.Add(1)
			go func() {
				defer wg.Done()
				batchErrs.Add(q.ProcessJob(job))
			}()
		}
		wg.Wait()
		if batchErrs.HasErrors() {
			logger.ErrorF("queue: %d job(s) in this batch hit store errors: %v", len(batchErrs.GetAll()), batchErrs)
		}

		jobsProcessed += len(batch)
		if maxJobs >= 0 && jobsProcessed >= maxJobs {
			break
		}
	}

	q.mu.Lock()
	q.running = false
	if q.lifespan > 0 && finalRemaining < lifespanBuffer {
		q.startTime = time.Time{}
		q.lifespan = 0
	}
	q.mu.Unlock()
}

// lifespanRemaining computes the time left in the active lifespan. It
// returns 0 when no lifespan is in effect, and maps an exactly-expired
// computation to -1 so callers can distinguish "lifespan mode, time up"
// from "no lifespan mode".
func (q *Queue) lifespanRemaining() time.Duration {
	q.mu.Lock()
	lifespan := q.lifespan
	startTime := q.startTime
	q.mu.Unlock()

	if lifespan <= 0 {
		return 0
	}
	remaining := lifespan - time.Since(startTime)
	if remaining <= 0 {
		return -1
	}
	return remaining
}

// Stop marks the processing loop inactive and clears lifespan bookkeeping.
// It is advisory: it prevents the next claim, but any handlers already in
// flight from the current batch run to completion. Deferred retries
// scheduled by a job's retryDelay are unaffected and will restart
// processing when they fire.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.running = false
	q.startTime = time.Time{}
	q.lifespan = 0
	q.mu.Unlock()
}

// FlushQueue deletes every job row matching name, or every row if name is
// nil. If name is non-nil and no row matches, no delete is issued.
func (q *Queue) FlushQueue(name *string) error {
	return q.adapter.WriteTx(context.Background(), func(tx Tx) error {
		pred := Predicate{}
		if name != nil {
			pred.Name = name
			matches, err := tx.Query(pred, nil, -1)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				return nil
			}
		}
		return tx.DeleteWhere(pred)
	})
}

// FlushJob deletes the job row with the given id, if present. Deleting a
// missing id is not an error.
func (q *Queue) FlushJob(id string) error {
	return q.adapter.WriteTx(context.Background(), func(tx Tx) error {
		return tx.Delete(&Job{ID: id})
	})
}

// Close stops the processing loop and closes the underlying adapter.
func (q *Queue) Close() error {
	q.Stop()
	return q.adapter.Close()
}

// AsComponent wraps the Queue as a lifecycle.Component identified by id, so
// several Queues can be supervised together through a
// lifecycle.ComponentManager. Starting the component runs the queue with no
// lifespan bound and no cap on jobs processed (equivalent to
// Start(0, Unbounded)); stopping it closes the queue, including its
// adapter.
func (q *Queue) AsComponent(id string) lifecycle.Component {
	return &lifecycle.SimpleComponent{
		CompId: id,
		StartFunc: func() error {
			if !q.Start(0, Unbounded) {
				return ErrQueueRunning
			}
			return nil
		},
		StopFunc: func() error {
			if !q.IsRunning() {
				return ErrQueueNotRunning
			}
			return q.Close()
		},
	}
}
