// Package workerpool runs one-shot jobs on a fixed set of worker
// goroutines and shuts them down gracefully.
//
// Architecture overview
//
// The pool is composed of three small pieces:
//
//  1. Dispatch channel
//     A FIFO shared by every worker behind a single lock. Each queued
//     message is removed by exactly one worker, in submission order.
//     A message is either a job or a terminate request.
//
//  2. Workers
//     Each worker loops: take a message, run the job inside a recover
//     boundary, optionally push the result, repeat. A terminate message
//     (or a sealed and drained channel) ends the loop.
//
//  3. Result channel (optional)
//     Every executed job pushes one Result, in completion order. The
//     pool owner drains it with TryTakeResult or TakeResult.
//
// Job lifecycle
//
// A Job owns its resources. Submit moves it into the pool; one worker
// calls Execute exactly once. A job that panics produces a Result whose
// Err is a *PanicError; the worker survives and keeps serving.
// A job that calls runtime.Goexit produces ErrJobAborted and its worker
// is replaced.
//
// Backpressure
//
// By default the dispatch channel is unbounded and Submit returns as
// soon as the job is queued. Options.QueueCapacity bounds it; the
// overload policy then either blocks the submitter or rejects the job
// with ErrQueueFull.
//
// Shutdown
//
// Shutdown queues one terminate message per worker behind the pending
// jobs and seals the channel in the same step, so no later Submit can
// slip in and no worker can be left waiting. It then waits for every
// worker. Jobs are never interrupted: a job that hangs keeps Shutdown
// waiting until its context deadline, if any.
//
// Error handling
//
// The pool distinguishes between two classes of errors:
//
//   - Job errors: returned by Execute or produced by panic recovery
//   - Internal errors: failures of the pool itself
//
// Both are reported via user-provided handlers and never stop a worker.
//
// CPU pinning
//
// On Linux, workers may optionally be pinned to specific CPUs.
// When enabled, workers are locked to OS threads and restricted
// to run on a single CPU core.
package workerpool
