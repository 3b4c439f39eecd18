package usecases

import (
	"sync"
	"testing"
)

func TestCounters_Snapshot(t *testing.T) {
	c := NewCounters()

	c.IncQueries()
	c.IncQueries()
	c.IncExports()
	c.IncDocuments(3)

	queries, exports, documents := c.Snapshot()
	if queries != 2 || exports != 1 || documents != 3 {
		t.Errorf("unexpected snapshot: %d %d %d", queries, exports, documents)
	}
}

func TestCounters_ConcurrentIncrements(t *testing.T) {
	c := NewCounters()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncQueries()
			c.IncExports()
			c.IncDocuments(1)
		}()
	}
	wg.Wait()

	queries, exports, documents := c.Snapshot()
	if queries != 100 || exports != 100 || documents != 100 {
		t.Errorf("lost updates: %d %d %d", queries, exports, documents)
	}
}
