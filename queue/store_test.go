package queue

import (
	"testing"
	"time"

	"github.com/taskqueue-go/jobqueue/testing/assert"
)

func newTestJob(id, name string, priority int, created time.Time) *Job {
	return &Job{
		ID:            id,
		Name:          name,
		Priority:      priority,
		Active:        false,
		Created:       created,
		NextValidTime: created,
	}
}

func TestJobStoreQuerySortsByPriorityThenCreated(t *testing.T) {
	s := newJobStore()
	base := time.Now()

	assert.NoError(t, s.Insert(newTestJob("1", "a", 0, base)))
	assert.NoError(t, s.Insert(newTestJob("2", "b", 3, base.Add(time.Millisecond))))
	assert.NoError(t, s.Insert(newTestJob("3", "b", 5, base.Add(2*time.Millisecond))))
	assert.NoError(t, s.Insert(newTestJob("4", "b", 3, base.Add(3*time.Millisecond))))

	sortKeys := []SortKey{{Field: SortPriority, Desc: true}, {Field: SortCreated, Desc: false}}
	results, err := s.Query(Predicate{}, sortKeys, -1)
	assert.NoError(t, err)

	ids := make([]string, len(results))
	for i, j := range results {
		ids[i] = j.ID
	}
	assert.Equal(t, []string{"3", "2", "4", "1"}, ids)
}

func TestJobStoreInsertRejectsDuplicateID(t *testing.T) {
	s := newJobStore()
	base := time.Now()
	assert.NoError(t, s.Insert(newTestJob("1", "a", 0, base)))
	err := s.Insert(newTestJob("1", "a", 0, base))
	assert.Error(t, err)
}

func TestJobStoreUpdateRequiresExistingRow(t *testing.T) {
	s := newJobStore()
	err := s.Update(newTestJob("missing", "a", 0, time.Now()))
	assert.Error(t, err)
}

func TestJobStoreDeleteWhere(t *testing.T) {
	s := newJobStore()
	base := time.Now()
	assert.NoError(t, s.Insert(newTestJob("1", "a", 0, base)))
	assert.NoError(t, s.Insert(newTestJob("2", "b", 0, base)))

	name := "a"
	assert.NoError(t, s.DeleteWhere(Predicate{Name: &name}))

	remaining, err := s.Query(Predicate{}, nil, -1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(remaining))
	assert.Equal(t, "2", remaining[0].ID)
}

func TestPredicateMatchFailedConstraint(t *testing.T) {
	notFailed := false
	p := Predicate{Failed: &notFailed}

	j := newTestJob("1", "a", 0, time.Now())
	assert.True(t, p.match(j))

	now := time.Now()
	j.Failed = &now
	assert.False(t, p.match(j))
}
