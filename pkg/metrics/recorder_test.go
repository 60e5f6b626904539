package metrics

import (
	"sync"
	"testing"
)

func TestRecorder_Aggregates(t *testing.T) {
	rec := NewRecorder(nil)

	rec.Count("dyndb.page.fetched", 1, nil)
	rec.Count("dyndb.page.fetched", 1, nil)
	rec.Count("dyndb.fetch.retries", 3, nil)
	rec.Count("unrelated.counter", 10, nil)
	rec.Histogram("dyndb.consumed_capacity", 2.5, nil)
	rec.Histogram("unrelated.latency", 99, nil)

	stats := rec.Snapshot()
	if stats.Pages != 2 {
		t.Errorf("Pages = %d, esperado 2", stats.Pages)
	}
	if stats.Retries != 3 {
		t.Errorf("Retries = %d, esperado 3", stats.Retries)
	}
	if stats.CapacityUnits != 2.5 {
		t.Errorf("CapacityUnits = %v, esperado 2.5", stats.CapacityUnits)
	}
}

func TestRecorder_ConcurrentUse(t *testing.T) {
	rec := NewRecorder(Noop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rec.Count("dyndb.page.fetched", 1, nil)
			}
		}()
	}
	wg.Wait()

	if got := rec.Snapshot().Pages; got != 800 {
		t.Errorf("Pages = %d, esperado 800", got)
	}
}
