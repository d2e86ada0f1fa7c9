package workerpool_test

import (
	"runtime"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	wp "github.com/azargarov/connpool"
)

func BenchmarkSubmitExecute(b *testing.B) {
	for _, workers := range []int{1, 4, min(runtime.GOMAXPROCS(0), wp.MaxWorkers)} {
		b.Run("workers="+strconv.Itoa(workers), func(b *testing.B) {
			p, err := wp.NewPool[struct{}](&wp.NoopMetrics{}, wp.Options{Workers: workers})
			if err != nil {
				b.Fatalf("new pool: %v", err)
			}
			defer p.Stop()

			var done atomic.Int64
			job := wp.JobFunc[struct{}](func() (struct{}, error) {
				done.Add(1)
				return struct{}{}, nil
			})

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := p.Submit(job); err != nil {
					b.Fatalf("submit: %v", err)
				}
			}

			deadline := time.Now().Add(10 * time.Second)
			for done.Load() < int64(b.N) {
				if time.Now().After(deadline) {
					b.Fatal("jobs did not finish")
				}
				runtime.Gosched()
			}
		})
	}
}

func BenchmarkResultRoundTrip(b *testing.B) {
	p, err := wp.New[int](4)
	if err != nil {
		b.Fatalf("new pool: %v", err)
	}
	defer p.Stop()

	job := wp.JobFunc[int](func() (int, error) { return 1, nil })

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = p.Submit(job)
		if _, err := p.TakeResult(); err != nil {
			b.Fatalf("take: %v", err)
		}
	}
}
