// pool.go
//
// Pool lifecycle: spawn N pinned worker threads on a queue, run synchronous
// rounds against them, tear them down.  The dispatcher's view of a round is
// a single blocking call: Dispatch raises roundStart, waits for every worker
// to drain and park, lowers roundStart, waits for every worker to leave the
// round, and hands back a reset queue.  Callers serialize Append/Dispatch/
// Shutdown themselves; none of the three tolerates running concurrently
// with another.

package workerpool

import (
	"runtime"
)

// Threads is the join handle for a spawned worker set.
type Threads struct {
	exited []chan struct{}
}

// Count reports how many worker threads were actually spawned.
func (t *Threads) Count() int {
	return len(t.exited)
}

// Spawn launches count worker threads bound to q and fn and returns their
// join handle.  count is first capped at the machine's available
// parallelism, then coerced up to 1, so any input yields a usable pool.
// Workers are pinned to cores 0..count-1 where the platform allows it.
// Must complete before the first Append of the first round.
func Spawn[J any](q *Queue[J], fn WorkerFunc[J], count int) *Threads {
	if hw := runtime.NumCPU(); count > hw {
		count = hw
	}
	if count < 1 {
		count = 1
	}

	q.start.Set(0)
	q.workers = uint32(count)

	t := &Threads{exited: make([]chan struct{}, count)}
	for i := range t.exited {
		t.exited[i] = make(chan struct{})
		runWorker(q, fn, i, t.exited[i])
	}
	return t
}

// Dispatch runs one round over the jobs already appended to q and blocks
// until every one of them has been executed and every worker is idle
// again.  On return the queue is empty, reset, and ready for the next
// round's appends.  Zero appended jobs is a valid, fast round.
//
// Dispatcher thread only.  No timeout: a worker function that never
// returns wedges the round, by contract.
func Dispatch[J any](q *Queue[J]) {
	// Release the workers.
	q.start.Set(1)

	// Wait for all of them to drain and park.  The roundDone flag is the
	// wake carrier; the count is the release condition, so duplicate and
	// early wakes are harmless.
	q.signals.Await(func() bool {
		return q.parked.Load() == q.workers
	})

	// Close the round and wait for every worker to acknowledge before
	// touching the cursors.  A worker still inside its hold may not read
	// the queue, but waiting for departure is what lets the next round's
	// start flag rise without racing a straggler's view of this one.
	q.start.Set(0)
	q.signals.Await(func() bool {
		return q.departed.Load() == q.workers
	})

	q.done.Set(0)
	q.Reset()
}

// Shutdown terminates the pool: raises the shutdown flag, wakes all
// workers off roundStart, and joins each thread in turn.  The wake is
// re-issued between joins to cover a worker that checks the flag later
// than its siblings.  Not safe
// concurrently with Dispatch; call it at most once.  After it returns the
// queue may be destroyed.
func Shutdown[J any](q *Queue[J], t *Threads) {
	q.stop.Set(1)
	q.start.Set(1)
	for _, exited := range t.exited {
		<-exited
		q.start.Set(1)
	}
	t.exited = nil
}
