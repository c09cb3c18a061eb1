package application

import (
	"sync"

	"github.com/google/uuid"
)

// carLocks serializes the conflict-check-then-write sequence per car
// identity. Two concurrent Create/Modify calls for the same car take the same
// mutex, so at most one of them can observe "no conflict" and commit; the
// database exclusion constraint remains the durable backstop for writers
// outside this process.
type carLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newCarLocks() *carLocks {
	return &carLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for the given car, creating it on first use, and
// returns the unlock function.
func (c *carLocks) Lock(carID uuid.UUID) func() {
	c.mu.Lock()
	l, ok := c.locks[carID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[carID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
