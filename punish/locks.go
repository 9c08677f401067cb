package punish

import "sync"

// subjectLocks serializes lifecycle operations per subject. The record and
// summary writes for one subject are separate document updates with no
// cross-document transaction, so the whole read-validate-write sequence runs
// under the subject's lock. Operations on different subjects proceed in
// parallel.
type subjectLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newSubjectLocks() *subjectLocks {
	return &subjectLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *subjectLocks) lock(subjectID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[subjectID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[subjectID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
