// Package mempool holds transactions that have been accepted but not yet
// mined into a block, and signals the miner once enough have
// accumulated to fill a block.
package mempool

import (
	"sync"

	"github.com/noobcash/noobcash-go/internal/ledger"
)

// Mempool is an ordered queue of pending transactions guarded by its own
// mutex, plus a condition variable the miner blocks on until the queue
// reaches capacity.
type Mempool struct {
	mu         sync.Mutex
	ready      *sync.Cond
	capacity   int
	pending    []ledger.Transaction
}

// New returns an empty mempool that signals readiness once it holds at
// least capacity transactions.
func New(capacity int) *Mempool {
	m := &Mempool{capacity: capacity}
	m.ready = sync.NewCond(&m.mu)
	return m
}

// Add appends t to the pending queue and wakes any miner blocked in
// Wait if capacity has now been reached.
func (m *Mempool) Add(t ledger.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = append(m.pending, t)
	if len(m.pending) >= m.capacity {
		m.ready.Broadcast()
	}
}

// Wait blocks until the pending queue holds at least capacity
// transactions, then returns them without removing them from the queue.
// Callers drain the queue explicitly via Clear once the block built
// from this snapshot has been mined and accepted.
func (m *Mempool) Wait() []ledger.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.pending) < m.capacity {
		m.ready.Wait()
	}
	return append([]ledger.Transaction(nil), m.pending...)
}

// Len reports how many transactions are currently pending.
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Snapshot returns a copy of the pending queue as it stands right now,
// regardless of capacity. Used to answer "view pending transactions"
// style queries.
func (m *Mempool) Snapshot() []ledger.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ledger.Transaction(nil), m.pending...)
}

// Clear empties the pending queue. Called once a mined block carrying
// the queue's current contents has been accepted onto the chain.
func (m *Mempool) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
}
