package workerpool_test

import (
	"runtime"
	"testing"
	"time"

	wp "github.com/azargarov/connpool"
)

func newTestPool[R any](t *testing.T, workers int) *wp.Pool[R, *wp.NoopMetrics] {
	t.Helper()

	p, err := wp.New[R](workers)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return p
}

func newTestPoolFromOptions[R any](t *testing.T, opts wp.Options) *wp.Pool[R, *wp.AtomicMetrics] {
	t.Helper()

	p, err := wp.NewPool[R](&wp.AtomicMetrics{}, opts)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return p
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}

// takeN drains n results, failing the test if any TakeResult errors.
func takeN[R any, M wp.MetricsPolicy](t *testing.T, p *wp.Pool[R, M], n int) []wp.Result[R] {
	t.Helper()

	out := make([]wp.Result[R], 0, n)
	for range n {
		r, err := p.TakeResult()
		if err != nil {
			t.Fatalf("take result %d: %v", len(out), err)
		}
		out = append(out, r)
	}
	return out
}
