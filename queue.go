package workerpool

import (
	"errors"
	"sync"
)

var (
	errChannelClosed = errors.New("channel: closed")
	errChannelFull   = errors.New("channel: full")
)

// sendMode selects how send behaves when a bounded channel is full.
type sendMode int

const (
	// sendBlock waits until a consumer frees a slot.
	sendBlock sendMode = iota

	// sendTry fails with errChannelFull instead of waiting.
	sendTry

	// sendForce ignores the capacity bound.
	sendForce
)

// message is what travels on the dispatch channel: either a job to run
// or a request for the receiving worker to exit.
type message[R any] struct {
	job       Job[R]
	terminate bool
}

func newJobMsg[R any](job Job[R]) message[R] { return message[R]{job: job} }

func terminateMsg[R any]() message[R] { return message[R]{terminate: true} }

// channel is a FIFO transport shared by a fixed set of senders and
// receivers.
//
// All receivers share one consuming end guarded by mu, so each item is
// removed by exactly one receiver and removal order equals send order.
// mu is held for a single enqueue or dequeue only.
//
// The channel tracks how many senders and receivers are still alive:
//   - send fails once every receiver has left or the send side is sealed
//   - recv reports closed once every sender has left and the buffer is empty
//
// capacity == 0 means unbounded.
type channel[T any] struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	notFull  sync.Cond

	items    *fifoQueue[T]
	capacity int

	senders   int
	receivers int
}

func newChannel[T any](senders, receivers, capacity int) *channel[T] {
	if capacity < 0 {
		capacity = 0
	}
	c := &channel[T]{
		items:     newFifoQueue[T](capacity),
		capacity:  capacity,
		senders:   senders,
		receivers: receivers,
	}
	c.notEmpty.L = &c.mu
	c.notFull.L = &c.mu
	return c
}

// closedLocked reports whether a send can no longer be delivered.
func (c *channel[T]) closedLocked() bool {
	return c.senders <= 0 || c.receivers <= 0
}

// send appends v to the tail of the channel.
func (c *channel[T]) send(v T, mode sendMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closedLocked() {
		return errChannelClosed
	}
	if mode != sendForce && c.capacity > 0 {
		for c.items.Len() >= c.capacity {
			if mode == sendTry {
				return errChannelFull
			}
			c.notFull.Wait()
			if c.closedLocked() {
				return errChannelClosed
			}
		}
	}
	c.items.Push(v)
	c.notEmpty.Signal()
	return nil
}

// seal appends final past any capacity bound and closes the send side in
// one step, so no later send can land behind the final items.
func (c *channel[T]) seal(final ...T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.closedLocked() {
		err = errChannelClosed
	} else {
		for _, v := range final {
			c.items.Push(v)
		}
	}
	c.senders = 0
	c.notEmpty.Broadcast()
	c.notFull.Broadcast()
	return err
}

// recv removes the head item, blocking while the channel is empty and
// at least one sender is alive. ok is false once the channel is closed
// and drained.
func (c *channel[T]) recv() (v T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.items.Len() == 0 {
		if c.senders <= 0 {
			return v, false
		}
		c.notEmpty.Wait()
	}
	v, _ = c.items.Pop()
	c.notFull.Signal()
	return v, true
}

// tryRecv is the non-blocking form of recv.
func (c *channel[T]) tryRecv() (v T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok = c.items.Pop()
	if ok {
		c.notFull.Signal()
	}
	return v, ok
}

// retainSender records one more live sender. It must be called while
// the caller still holds a sender slot of its own.
func (c *channel[T]) retainSender() {
	c.mu.Lock()
	c.senders++
	c.mu.Unlock()
}

// retainReceiver records one more live receiver. It must be called
// while the caller still holds a receiver slot of its own.
func (c *channel[T]) retainReceiver() {
	c.mu.Lock()
	c.receivers++
	c.mu.Unlock()
}

// releaseSender records that one sender is gone for good.
func (c *channel[T]) releaseSender() {
	c.mu.Lock()
	c.senders--
	if c.senders <= 0 {
		c.notEmpty.Broadcast()
		c.notFull.Broadcast()
	}
	c.mu.Unlock()
}

// releaseReceiver records that one receiver is gone for good.
func (c *channel[T]) releaseReceiver() {
	c.mu.Lock()
	c.receivers--
	if c.receivers <= 0 {
		c.notFull.Broadcast()
	}
	c.mu.Unlock()
}

// len returns the number of buffered items.
func (c *channel[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}
