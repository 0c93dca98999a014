package shared

import (
	"sync"
	"testing"
	"time"
)

func TestFIFOMutex(t *testing.T) {
	t.Run("LockUnlock", func(t *testing.T) {
		var m FIFOMutex
		m.Lock()
		m.Unlock()
		m.Lock()
		m.Unlock()
	})

	t.Run("MutualExclusion", func(t *testing.T) {
		var m FIFOMutex
		counter := 0
		var wg sync.WaitGroup

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Lock()
				counter++
				m.Unlock()
			}()
		}

		wg.Wait()
		if counter != 20 {
			t.Errorf("expected 20 increments, got %d", counter)
		}
	})

	t.Run("FIFOOrder", func(t *testing.T) {
		var m FIFOMutex
		m.Lock()

		var order []int
		var orderMu sync.Mutex
		var wg sync.WaitGroup
		ready := make(chan struct{})

		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				<-ready
				// stagger arrival so the queue order is deterministic
				time.Sleep(time.Duration(n*20) * time.Millisecond)
				m.Lock()
				orderMu.Lock()
				order = append(order, n)
				orderMu.Unlock()
				m.Unlock()
			}(i)
		}

		close(ready)
		time.Sleep(200 * time.Millisecond)
		m.Unlock()
		wg.Wait()

		for i, n := range order {
			if n != i {
				t.Fatalf("expected FIFO order, got %v", order)
			}
		}
	})
}
