package queue

import (
	"sort"

	"github.com/taskqueue-go/jobqueue/collections"
)

// jobStore implements Tx over an in-memory collections.ArrayList of jobs.
// MemoryAdapter keeps its committed jobStore in memory and runs each
// WriteTx against a clone of it, committing the clone on success.
// FileAdapter builds a fresh jobStore from the decoded file state at the
// start of every WriteTx and, on success, re-encodes it back to disk --
// giving both adapters the same query/claim logic without duplicating it
// per backend.
type jobStore struct {
	list *collections.ArrayList[*Job]
}

func newJobStore() *jobStore {
	return &jobStore{list: collections.NewArrayList[*Job]()}
}

func (s *jobStore) all() []*Job {
	out := make([]*Job, 0, s.list.Size())
	it := s.list.Iterator()
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}

// clone returns a deep copy of s, used to stage a transaction's writes
// separately from committed state so they can be discarded on error.
func (s *jobStore) clone() *jobStore {
	cp := newJobStore()
	it := s.list.Iterator()
	for it.HasNext() {
		j := *it.Next()
		cp.list.Add(&j)
	}
	return cp
}

func (s *jobStore) indexOf(id string) int {
	it := s.list.Iterator()
	for i := 0; it.HasNext(); i++ {
		if it.Next().ID == id {
			return i
		}
	}
	return -1
}

func (s *jobStore) Query(pred Predicate, sortKeys []SortKey, limit int) ([]*Job, error) {
	matches := make([]*Job, 0)
	for _, j := range s.all() {
		if pred.match(j) {
			matches = append(matches, j)
		}
	}

	sort.SliceStable(matches, func(i, k int) bool {
		for _, key := range sortKeys {
			a, b := matches[i], matches[k]
			switch key.Field {
			case SortPriority:
				if a.Priority != b.Priority {
					if key.Desc {
						return a.Priority > b.Priority
					}
					return a.Priority < b.Priority
				}
			case SortCreated:
				if !a.Created.Equal(b.Created) {
					if key.Desc {
						return a.Created.After(b.Created)
					}
					return a.Created.Before(b.Created)
				}
			}
		}
		return false
	})

	if limit >= 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *jobStore) Insert(job *Job) error {
	if s.indexOf(job.ID) >= 0 {
		return ErrInvalidArgument
	}
	cp := *job
	return s.list.Add(&cp)
}

func (s *jobStore) Update(job *Job) error {
	idx := s.indexOf(job.ID)
	if idx < 0 {
		return ErrJobNotFound
	}
	cp := *job
	if _, err := s.list.RemoveAt(idx); err != nil {
		return err
	}
	return s.list.AddAt(idx, &cp)
}

func (s *jobStore) Delete(job *Job) error {
	idx := s.indexOf(job.ID)
	if idx < 0 {
		return nil
	}
	_, err := s.list.RemoveAt(idx)
	return err
}

func (s *jobStore) DeleteWhere(pred Predicate) error {
	remaining := collections.NewArrayList[*Job]()
	for _, j := range s.all() {
		if !pred.match(j) {
			if err := remaining.Add(j); err != nil {
				return err
			}
		}
	}
	s.list = remaining
	return nil
}
