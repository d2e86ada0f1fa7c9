package workerpool

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFifoQueueWrapAndGrow(t *testing.T) {
	q := newFifoQueue[int](4)

	// move head off zero so growth has to unroll a wrapped ring
	for i := range 3 {
		q.Push(i)
	}
	for i := range 2 {
		if v, ok := q.Pop(); !ok || v != i {
			t.Fatalf("Pop = %d,%v; want %d,true", v, ok, i)
		}
	}
	for i := 3; i < 20; i++ {
		q.Push(i)
	}

	if q.Len() != 18 {
		t.Fatalf("Len = %d; want 18", q.Len())
	}
	for want := 2; want < 20; want++ {
		v, ok := q.Pop()
		if !ok || v != want {
			t.Fatalf("Pop = %d,%v; want %d,true", v, ok, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue returned ok")
	}
}

func TestChannelOrderAndExactlyOnce(t *testing.T) {
	const (
		items     = 1000
		receivers = 4
	)
	c := newChannel[int](1, receivers, 0)

	var (
		mu   sync.Mutex
		seen = make(map[int]int, items)
		wg   sync.WaitGroup
	)
	wg.Add(receivers)
	for range receivers {
		go func() {
			defer wg.Done()
			last := -1
			for {
				v, ok := c.recv()
				if !ok {
					return
				}
				// each receiver observes a strictly increasing subsequence
				if v <= last {
					t.Errorf("out of order: %d after %d", v, last)
				}
				last = v
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	for i := range items {
		if err := c.send(i, sendBlock); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := c.seal(); err != nil {
		t.Fatalf("seal: %v", err)
	}
	wg.Wait()

	for i := range items {
		if seen[i] != 1 {
			t.Fatalf("item %d received %d times; want 1", i, seen[i])
		}
	}
}

func TestChannelSealDeliversFinalItems(t *testing.T) {
	c := newChannel[int](1, 1, 2)

	if err := c.send(1, sendTry); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := c.send(2, sendTry); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := c.send(3, sendTry); !errors.Is(err, errChannelFull) {
		t.Fatalf("send on full = %v; want errChannelFull", err)
	}

	// seal ignores the bound
	if err := c.seal(3, 4); err != nil {
		t.Fatalf("seal: %v", err)
	}
	if err := c.send(5, sendForce); !errors.Is(err, errChannelClosed) {
		t.Fatalf("send after seal = %v; want errChannelClosed", err)
	}

	for want := 1; want <= 4; want++ {
		if v, ok := c.recv(); !ok || v != want {
			t.Fatalf("recv = %d,%v; want %d,true", v, ok, want)
		}
	}
	if _, ok := c.recv(); ok {
		t.Fatal("recv on sealed, drained channel returned ok")
	}
}

func TestChannelSendFailsWithoutReceivers(t *testing.T) {
	c := newChannel[int](1, 2, 0)
	c.releaseReceiver()
	c.releaseReceiver()

	if err := c.send(1, sendBlock); !errors.Is(err, errChannelClosed) {
		t.Fatalf("send = %v; want errChannelClosed", err)
	}
	if err := c.seal(1); !errors.Is(err, errChannelClosed) {
		t.Fatalf("seal = %v; want errChannelClosed", err)
	}
}

func TestChannelRecvUnblocksWhenSendersLeave(t *testing.T) {
	c := newChannel[int](2, 1, 0)

	got := make(chan bool, 1)
	go func() {
		_, ok := c.recv()
		got <- ok
	}()

	c.releaseSender()
	select {
	case <-got:
		t.Fatal("recv returned while a sender was still alive")
	case <-time.After(20 * time.Millisecond):
	}

	c.releaseSender()
	select {
	case ok := <-got:
		if ok {
			t.Fatal("recv returned ok on a closed, empty channel")
		}
	case <-time.After(time.Second):
		t.Fatal("recv did not unblock after the last sender left")
	}
}

func TestChannelBlockedSendWakesOnClose(t *testing.T) {
	c := newChannel[int](1, 1, 1)
	if err := c.send(1, sendBlock); err != nil {
		t.Fatalf("send: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- c.send(2, sendBlock) }()

	time.Sleep(10 * time.Millisecond)
	c.releaseReceiver()

	select {
	case err := <-errc:
		if !errors.Is(err, errChannelClosed) {
			t.Fatalf("blocked send = %v; want errChannelClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked send did not wake up")
	}
}

func TestChannelTryRecv(t *testing.T) {
	c := newChannel[string](1, 1, 0)
	if _, ok := c.tryRecv(); ok {
		t.Fatal("tryRecv on empty channel returned ok")
	}
	_ = c.send("a", sendBlock)
	if v, ok := c.tryRecv(); !ok || v != "a" {
		t.Fatalf("tryRecv = %q,%v; want a,true", v, ok)
	}
	if c.len() != 0 {
		t.Fatalf("len = %d; want 0", c.len())
	}
}
