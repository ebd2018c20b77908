package service

import "sync"

// conversationLocks serializes turns per conversation. Webhook deliveries for
// the same customer can arrive concurrently (retries, rapid sends); turns for
// one conversation must run read-modify-write in sequence while different
// conversations proceed in parallel.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[string]*lockEntry)}
}

// Lock acquires the lock for a key, creating it on first use. The returned
// function releases the lock and drops the entry once nobody holds it.
func (c *conversationLocks) Lock(key string) func() {
	c.mu.Lock()
	entry, ok := c.locks[key]
	if !ok {
		entry = &lockEntry{}
		c.locks[key] = entry
	}
	entry.refs++
	c.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		c.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}
