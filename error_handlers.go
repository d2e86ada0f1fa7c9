package workerpool

import (
	lg "github.com/Andrej220/go-utils/zlog"
)

// reportInternalError reports an internal pool error.
//
// Internal errors are non-job-related failures such as a worker that
// could not be pinned or a terminate message that could not be sent.
// The error is always logged; the handler is optional.
func (p *Pool[R, M]) reportInternalError(e error) {
	lg.FromContext(p.ctx).Error("pool internal error", lg.Any("error", e))
	p.callHook("OnInternalError", p.onInternalError, e)
}

// reportJobError reports an error returned by a job or
// produced by panic recovery.
//
// Job errors do not stop pool execution.
func (p *Pool[R, M]) reportJobError(err error) {
	p.callHook("OnJobError", p.onJobError, err)
}

// callHook runs a user handler. A panicking handler is logged and
// otherwise ignored, so it cannot take a worker down.
func (p *Pool[R, M]) callHook(name string, hook func(error), err error) {
	if hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			lg.FromContext(p.ctx).Error("error handler panicked",
				lg.String("handler", name),
				lg.Any("panic", r),
			)
		}
	}()
	hook(err)
}
