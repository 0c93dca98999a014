package shared

import "sync"

// FIFOMutex is a mutual-exclusion primitive that grants the lock to waiters
// in arrival order, unlike [sync.Mutex] which makes no ordering promise.
//
// Used to serialize access to a single shared resource, e.g. the playlist
// source a mirror run scrapes from.
type FIFOMutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// Lock blocks the caller until exclusive access is granted in FIFO order.
func (m *FIFOMutex) Lock() {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return
	}

	wait := make(chan struct{})
	m.waiters = append(m.waiters, wait)
	m.mu.Unlock()

	<-wait
}

// Unlock hands the lock to the next waiter, or marks the resource free when
// nobody is waiting.
func (m *FIFOMutex) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.waiters) > 0 {
		next := m.waiters[0]
		m.waiters = m.waiters[1:]
		close(next)
		return
	}

	m.locked = false
}
