package orderedqueue

import (
	"sync"
	"testing"
)

func TestQueueYieldsAscendingOrder(t *testing.T) {
	order := []int{3, 1, 0, 2, 4}
	// Every push completes before the first Next, so the capacity must hold
	// all of them.
	q := New(len(order))
	var wg sync.WaitGroup

	for _, idx := range order {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := q.Push(i, i*10); err != nil {
				t.Errorf("Push(%d): %v", i, err)
			}
		}(idx)
	}
	wg.Wait()
	q.CloseProducers()

	for want := 0; want <= 4; want++ {
		v, ok := q.Next()
		if !ok {
			t.Fatalf("Next() ran out early before index %d", want)
		}
		if v.(int) != want*10 {
			t.Fatalf("Next() = %v, want %d", v, want*10)
		}
	}
	if _, ok := q.Next(); ok {
		t.Fatalf("expected Next() to report ok=false after drain")
	}
}

func TestQueueBlocksPastCapacityUntilDrained(t *testing.T) {
	q := New(2)
	done := make(chan struct{})

	// Fill past capacity with out-of-order indices; none equal q.next (0),
	// so the third push must block until the consumer drains index 0.
	go func() {
		_ = q.Push(1, 1)
		_ = q.Push(2, 2)
		_ = q.Push(3, 3) // blocks: pending already has 2 items (capacity 2) and index != next
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("Push(3, ...) should have blocked while queue is full")
	default:
	}

	_ = q.Push(0, 0)
	for want := 0; want <= 1; want++ {
		v, ok := q.Next()
		if !ok || v.(int) != want {
			t.Fatalf("Next() = %v, %v, want %d, true", v, ok, want)
		}
	}

	<-done // draining below capacity should have unblocked the pending push(3)
}

func TestQueueSendDisconnected(t *testing.T) {
	q := New(4)
	q.CloseConsumer()
	if err := q.Push(0, "x"); err != ErrSendDisconnected {
		t.Fatalf("Push after CloseConsumer = %v, want ErrSendDisconnected", err)
	}
}
