package orchestrator

import "sync"

// buildOutput is what a completed build contributes to the cache: the
// archive it produced and the tests it ran.
type buildOutput struct {
	archivePath string
	tests       []TestResult
}

// cacheEntry tracks one content hash. The first goroutine to claim it runs
// the build; everyone else waits on done and reuses the outcome.
type cacheEntry struct {
	done   chan struct{}
	output *buildOutput
	err    error
}

type buildCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func newBuildCache() *buildCache {
	return &buildCache{entries: map[string]*cacheEntry{}}
}

// acquire returns the entry for hash and whether the caller is its leader.
// The leader must call complete exactly once.
func (c *buildCache) acquire(hash string) (*cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[hash]; ok {
		return entry, false
	}
	entry := &cacheEntry{done: make(chan struct{})}
	c.entries[hash] = entry
	return entry, true
}

// complete publishes the leader's outcome and releases the waiters.
func (e *cacheEntry) complete(output *buildOutput, err error) {
	e.output = output
	e.err = err
	close(e.done)
}
