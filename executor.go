package workerpool

import (
	"fmt"
	"runtime/debug"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
)

// worker takes messages off the shared dispatch channel until it gets a
// terminate message or the channel is sealed and drained.
//
// A job calling runtime.Goexit unwinds the worker goroutine past every
// recover. The deferred check below then reports ErrJobAborted for that
// job and starts a replacement before this goroutine gives up its slots.
func (p *Pool[R, M]) worker(id int) {
	exited := false
	defer func() {
		if !exited {
			p.replaceAborted(id)
		}
		if p.results != nil {
			p.results.releaseSender()
		}
		p.dispatch.releaseReceiver()
		p.wg.Done()
	}()

	if p.pin {
		if err := pinWorker(id); err != nil {
			p.reportInternalError(fmt.Errorf("workerpool: pin worker %d: %w", id, err))
		}
	}

	for {
		msg, ok := p.dispatch.recv()
		if !ok || msg.terminate {
			exited = true
			return
		}
		p.metrics.BatchDecQueued(1)

		res := p.runJob(msg.job)
		if p.results != nil {
			// the pool never releases its receiving end, so this cannot fail
			_ = p.results.send(res, sendForce)
		}
	}
}

// replaceAborted runs on the goroutine of a worker whose job called
// runtime.Goexit. It pushes the aborted job's result and spawns a new
// worker with the same id.
func (p *Pool[R, M]) replaceAborted(id int) {
	lg.FromContext(p.ctx).Warn("job aborted, replacing worker", lg.Int("worker", id))

	p.dispatch.retainReceiver()
	if p.results != nil {
		_ = p.results.send(Result[R]{Err: ErrJobAborted}, sendForce)
		p.results.retainSender()
	}
	p.wg.Add(1)
	go p.worker(id)
}

// runJob executes one job behind a recover boundary. A panic becomes a
// Result carrying a *PanicError; it never leaves the worker.
func (p *Pool[R, M]) runJob(job Job[R]) (res Result[R]) {
	p.activeWorkers.Add(1)
	start := time.Now()
	returned := false

	defer func() {
		if r := recover(); r != nil {
			res = Result[R]{Err: &PanicError{Value: r, Stack: debug.Stack()}}
			lg.FromContext(p.ctx).Error("job panicked", lg.Any("panic", r))
		} else if !returned {
			res = Result[R]{Err: ErrJobAborted}
		}
		p.activeWorkers.Add(-1)
		p.metrics.ObserveDuration(time.Since(start))
		p.metrics.IncExecuted()
		if res.Err != nil {
			p.metrics.IncFailed()
			p.reportJobError(res.Err)
		}
	}()

	v, err := job.Execute()
	returned = true
	return Result[R]{Value: v, Err: err}
}
