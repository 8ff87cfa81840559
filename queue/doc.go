// Package queue implements a durable, priority-ordered, at-least-once job
// queue that runs embedded inside a single process.
//
// A Queue stores jobs through a pluggable Adapter (an in-memory adapter and
// a file-backed adapter are provided), dispatches due jobs to handlers
// registered on a WorkerRegistry, and retries failed jobs with a
// caller-supplied delay up to a caller-supplied attempt limit.
//
// The scheduling loop is cooperative and single-threaded: on every tick it
// selects the batch of eligible jobs (highest priority first, oldest first
// within a priority), claims them transactionally so a second tick, or
// another Queue in the same process sharing the same adapter, can't
// double-claim them (the adapters lock in-process only), and joins
// on the whole batch before selecting again.
package queue
