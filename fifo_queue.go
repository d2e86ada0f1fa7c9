// fifo_queue.go
package workerpool

const (
	initialFifoCapacity = 64
)

// fifoQueue is a growable first-in–first-out circular buffer.
//
// It backs every channel in the pool. Items leave strictly in the order
// they were pushed. No priorities, no aging, no reordering.
//
// fifoQueue is not safe for concurrent use; the owning channel
// serializes access with its own mutex.
type fifoQueue[T any] struct {
	buf        []T // circular buffer
	head, tail int // read/write indices
	size       int // number of items currently buffered
}

// newFifoQueue creates a FIFO queue with room for capHint items before
// the first growth.
func newFifoQueue[T any](capHint int) *fifoQueue[T] {
	if capHint <= 0 {
		capHint = initialFifoCapacity
	}
	return &fifoQueue[T]{
		buf: make([]T, capHint),
	}
}

// Len returns the number of items currently waiting in the queue.
func (q *fifoQueue[T]) Len() int { return q.size }

// Push inserts an item at the tail. The buffer doubles when full,
// so Push never drops.
func (q *fifoQueue[T]) Push(v T) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[q.tail] = v
	q.tail++
	if q.tail == len(q.buf) {
		q.tail = 0
	}
	q.size++
}

// Pop removes and returns the oldest item.
//
// If the queue is empty, returns the zero value and false.
func (q *fifoQueue[T]) Pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero // drop the reference so the GC can reclaim it
	q.head++
	if q.head == len(q.buf) {
		q.head = 0
	}
	q.size--
	return v, true
}

// grow doubles the buffer and unrolls the ring so head lands at zero.
func (q *fifoQueue[T]) grow() {
	nb := make([]T, len(q.buf)*2)
	n := copy(nb, q.buf[q.head:])
	copy(nb[n:], q.buf[:q.head])
	q.buf = nb
	q.head = 0
	q.tail = q.size
}
