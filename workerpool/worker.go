// worker.go
//
// Body of one worker thread.  Each worker is a dedicated OS thread pinned
// (best effort) to its own core, cycling through three states:
//
//	WAITING_ROUND  sleep until roundStart is raised
//	DRAINING       fetch-and-execute until the queue runs dry
//	TERMINATED     shutdown observed on wake; thread returns
//
// After draining, a worker parks (counting itself done and waking the
// dispatcher) and then holds until the dispatcher lowers roundStart.  That
// hold is the second half of the barrier: it is what stops a descheduled
// worker from carrying last round's state into the next one.

package workerpool

import (
	"runtime"
)

// WorkerFunc is the user-supplied per-job function.  It receives each
// claimed job by pointer, exactly once per job per round, on an
// unspecified worker thread.  The loop neither times it out nor recovers
// its panics.
type WorkerFunc[J any] func(*J)

// runWorker starts one worker thread bound to q and fn.  exited is closed
// when the thread leaves its loop, making it joinable via the channel.
func runWorker[J any](q *Queue[J], fn WorkerFunc[J], core int, exited chan<- struct{}) {
	go func() {
		runtime.LockOSThread()
		setAffinity(core)
		defer func() {
			runtime.UnlockOSThread()
			close(exited)
		}()

		for {
			// WAITING_ROUND: released by Dispatch or Shutdown raising
			// the start flag.
			q.start.Sleep(0)
			if q.stop.Load() != 0 {
				return
			}

			// DRAINING: race the other workers for the remaining slots.
			for {
				job := q.Fetch()
				if job == nil {
					break
				}
				fn(job)
			}

			// Every worker that sees the queue empty wakes the
			// dispatcher; extra wakes are absorbed by its counted wait.
			q.parked.Add(1)
			q.done.Set(1)

			// Hold until the dispatcher closes the round (or shutdown
			// arrives mid-hold).  The compound predicate runs under the
			// flags' shared monitor, so neither store can be missed.
			q.signals.Await(func() bool {
				return q.start.Load() == 0 || q.stop.Load() != 0
			})
			q.departed.Add(1)
			q.done.Set(1)
		}
	}()
}
