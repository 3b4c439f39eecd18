package usecases

import "sync"

// Counters is the process-wide statistics state. All mutation goes
// through these methods behind a single mutex rather than ambient
// globals, so status reads are always consistent.
type Counters struct {
	mu             sync.Mutex
	totalQueries   int64
	exportsCreated int64
	documentsAdded int64
}

// NewCounters creates zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

// IncQueries records one processed query.
func (c *Counters) IncQueries() {
	c.mu.Lock()
	c.totalQueries++
	c.mu.Unlock()
}

// IncExports records one created export.
func (c *Counters) IncExports() {
	c.mu.Lock()
	c.exportsCreated++
	c.mu.Unlock()
}

// IncDocuments records n ingested documents.
func (c *Counters) IncDocuments(n int) {
	c.mu.Lock()
	c.documentsAdded += int64(n)
	c.mu.Unlock()
}

// Snapshot returns a consistent view of all counters.
func (c *Counters) Snapshot() (totalQueries, exportsCreated, documentsAdded int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalQueries, c.exportsCreated, c.documentsAdded
}
