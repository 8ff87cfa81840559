package queue

import (
	"context"
	"time"
)

// SortField names a Job field usable as a sort key in a Query.
type SortField int

const (
	// SortPriority sorts by Job.Priority.
	SortPriority SortField = iota
	// SortCreated sorts by Job.Created.
	SortCreated
)

// SortKey is one level of a multi-key sort passed to Tx.Query.
type SortKey struct {
	Field SortField
	Desc  bool
}

// Predicate describes an AND of constraints over Job fields. A nil pointer
// field means "no constraint on this field".
type Predicate struct {
	// Active, if non-nil, requires Job.Active == *Active.
	Active *bool
	// Failed, if non-nil, requires (Job.Failed != nil) == *Failed.
	Failed *bool
	// NextValidTimeAtOrBefore, if non-nil, requires
	// Job.NextValidTime <= *NextValidTimeAtOrBefore.
	NextValidTimeAtOrBefore *time.Time
	// Name, if non-nil, requires Job.Name == *Name.
	Name *string
	// TimeoutGreaterThan, if non-nil, requires Job.Timeout > *TimeoutGreaterThan.
	TimeoutGreaterThan *int
	// TimeoutLessThan, if non-nil, requires Job.Timeout < *TimeoutLessThan.
	TimeoutLessThan *int
}

// match reports whether job satisfies every constraint set on p.
func (p Predicate) match(j *Job) bool {
	if p.Active != nil && j.Active != *p.Active {
		return false
	}
	if p.Failed != nil && (j.Failed != nil) != *p.Failed {
		return false
	}
	if p.NextValidTimeAtOrBefore != nil && j.NextValidTime.After(*p.NextValidTimeAtOrBefore) {
		return false
	}
	if p.Name != nil && j.Name != *p.Name {
		return false
	}
	if p.TimeoutGreaterThan != nil && j.Timeout <= *p.TimeoutGreaterThan {
		return false
	}
	if p.TimeoutLessThan != nil && j.Timeout >= *p.TimeoutLessThan {
		return false
	}
	return true
}

// Tx is a single atomic transaction over the job store. All mutations
// performed through a Tx become visible together when the enclosing
// Adapter.WriteTx call returns nil, and are discarded if it returns an
// error. Query must reflect the pending writes already made within the
// same Tx.
type Tx interface {
	// Query returns jobs matching pred, ordered by sort (applied in
	// order, first key primary), limited to limit rows if limit >= 0.
	Query(pred Predicate, sort []SortKey, limit int) ([]*Job, error)
	// Insert adds a new job row. Insert fails if job.ID already exists.
	Insert(job *Job) error
	// Update overwrites the row with the same ID as job. Update fails if
	// no row with that ID exists.
	Update(job *Job) error
	// Delete removes the row with the same ID as job. A missing row is
	// not an error.
	Delete(job *Job) error
	// DeleteWhere removes every row matching pred. If no row matches,
	// no write is performed.
	DeleteWhere(pred Predicate) error
}

// Adapter abstracts the transactional store a Queue persists jobs to.
// MemoryAdapter and FileAdapter are the two implementations provided by
// this package; callers may supply their own.
type Adapter interface {
	// WriteTx runs fn inside a single atomic transaction. If fn returns
	// an error, every mutation made through tx is discarded.
	WriteTx(ctx context.Context, fn func(tx Tx) error) error
	// Close releases any resources held by the adapter.
	Close() error
}
