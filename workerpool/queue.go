// queue.go
//
// Growable array-backed job queue shared between one producer (the
// dispatcher, between rounds) and many consumers (the workers, during a
// round).  The tail cursor is plain — only the dispatcher moves it, and
// only while the workers are parked — while the head cursor is claimed by
// fetch-and-add so workers never contend on anything but a single atomic.
// A fetch that lands past the tail mutates nothing and is the round's
// empty signal; the wasted increment is bounded by one per worker.

package workerpool

import (
	"sync/atomic"

	"github.com/tesseract241/simpleAtomicWorkerPool/waitflag"
)

// Queue is a fixed-round job queue of J records.  Records are stored by
// value and relocated by bulk copy on growth, so J must not contain
// address-dependent state; jobs owning such state should hold an index or
// pointer into caller-owned storage instead.
//
// A Queue and its flags live for the pool's whole lifetime.  Append and
// Reset belong to the dispatcher; Fetch belongs to the workers; the
// barrier in pool.go keeps the two sides apart.
type Queue[J any] struct {
	buf   []J // job storage; capacity doubles on overflow, never shrinks
	write int // tail: jobs appended this round, dispatcher-only

	//lint:ignore U1000 padding keeps the contended head cursor off the
	// dispatcher-owned fields' cache line
	_    [64]byte
	read atomic.Int64 // head: next index to claim, fetch-and-add by workers
	_    [56]byte

	// Barrier state.  parked counts workers that drained the queue this
	// round; departed counts workers that observed the round close.  Both
	// reach workers exactly once per round and are reset post-barrier.
	parked   atomic.Uint32
	departed atomic.Uint32
	workers  uint32 // set once by Spawn, before the first round

	// Wake/sleep flags, all on one monitor: start releases a round (and,
	// together with stop, the final wake), done wakes the dispatcher.
	signals *waitflag.Group
	start   *waitflag.Flag
	stop    *waitflag.Flag
	done    *waitflag.Flag
}

// New allocates a queue with room for size jobs before the first growth.
// Panics when size is not positive.
func New[J any](size int) *Queue[J] {
	if size <= 0 {
		panic("workerpool: queue size must be > 0")
	}
	g := waitflag.NewGroup()
	return &Queue[J]{
		buf:     make([]J, size),
		signals: g,
		start:   g.Flag(),
		stop:    g.Flag(),
		done:    g.Flag(),
	}
}

// Append stores job at the tail and returns the address of its slot.
// Dispatcher-only, never during an in-flight round.  The returned pointer
// stays valid until the next growth event, so callers appending more jobs
// must not hold on to it.
func (q *Queue[J]) Append(job J) *J {
	if q.write == len(q.buf) {
		grown := make([]J, 2*len(q.buf))
		copy(grown, q.buf)
		q.buf = grown
	}
	q.buf[q.write] = job
	h := &q.buf[q.write]
	q.write++
	return h
}

// Fetch claims the next unclaimed slot and returns its address, or nil
// once the round's jobs are exhausted.  Safe to call from any number of
// workers concurrently; each index is handed out exactly once.  The tail
// is frozen for the duration of a round, so the plain read of q.write is
// ordered by the round-start wake that published it.
func (q *Queue[J]) Fetch() *J {
	i := q.read.Add(1) - 1
	if i >= int64(q.write) {
		return nil
	}
	return &q.buf[i]
}

// Reset rewinds both cursors and the barrier counters for the next round.
// Dispatcher-only, and only once no worker can still reach into the
// completed round — Dispatch guarantees that before calling it.  Storage
// is not cleared; the next round's appends overwrite in place.
func (q *Queue[J]) Reset() {
	q.write = 0
	q.read.Store(0)
	q.parked.Store(0)
	q.departed.Store(0)
}

// Len reports the number of jobs appended in the current round.
func (q *Queue[J]) Len() int {
	return q.write
}

// Cap reports the current slot capacity.
func (q *Queue[J]) Cap() int {
	return len(q.buf)
}
