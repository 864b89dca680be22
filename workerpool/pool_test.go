// pool_test.go
//
// Barrier protocol and lifecycle coverage.  Blocking calls are guarded by
// timeout channels so a protocol bug shows up as a test failure instead of
// a wedged run.

package workerpool

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

const guard = 10 * time.Second

// withTimeout fails the test if fn does not return within the guard window.
func withTimeout(t *testing.T, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(guard):
		t.Fatalf("%s did not return", what)
	}
}

// countJob is the common test payload: an index into a hit-count table.
type countJob struct {
	id int
}

// TestDispatchExecutesEachJobOnce runs one round of N jobs over several
// workers and checks the exactly-once property.
func TestDispatchExecutesEachJobOnce(t *testing.T) {
	const jobs = 500
	hits := make([]atomic.Uint32, jobs)

	q := New[countJob](64)
	threads := Spawn(q, func(j *countJob) { hits[j.id].Add(1) }, 4)

	for i := 0; i < jobs; i++ {
		q.Append(countJob{id: i})
	}
	withTimeout(t, "Dispatch", func() { Dispatch(q) })

	for i := range hits {
		if n := hits[i].Load(); n != 1 {
			t.Fatalf("job %d executed %d times", i, n)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("queue length %d after dispatch, want 0", q.Len())
	}

	Shutdown(q, threads)
}

// TestDispatchReturnsAfterAllWorkDone gives every job a deliberate stall
// and verifies no execution is still pending when Dispatch returns, i.e.
// the barrier releases on completed work, not on claimed work.
func TestDispatchReturnsAfterAllWorkDone(t *testing.T) {
	const jobs = 16
	var completed atomic.Int32

	q := New[countJob](jobs)
	threads := Spawn(q, func(j *countJob) {
		time.Sleep(5 * time.Millisecond)
		completed.Add(1)
	}, 4)

	for i := 0; i < jobs; i++ {
		q.Append(countJob{id: i})
	}
	withTimeout(t, "Dispatch", func() { Dispatch(q) })

	if n := completed.Load(); n != jobs {
		t.Fatalf("Dispatch returned with %d/%d jobs complete", n, jobs)
	}

	Shutdown(q, threads)
}

// TestRepeatedRoundsIndependent runs [a b c] then [d e] and checks neither
// round leaks into the other.
func TestRepeatedRoundsIndependent(t *testing.T) {
	hits := make([]atomic.Uint32, 5)

	q := New[countJob](2)
	threads := Spawn(q, func(j *countJob) { hits[j.id].Add(1) }, 2)

	for i := 0; i < 3; i++ { // round 1: jobs 0,1,2
		q.Append(countJob{id: i})
	}
	withTimeout(t, "Dispatch round 1", func() { Dispatch(q) })
	for i := 0; i < 3; i++ {
		if hits[i].Load() != 1 {
			t.Fatalf("round 1 job %d executed %d times", i, hits[i].Load())
		}
	}
	for i := 3; i < 5; i++ {
		if hits[i].Load() != 0 {
			t.Fatalf("round 2 job %d ran early", i)
		}
	}

	for i := 3; i < 5; i++ { // round 2: jobs 3,4
		q.Append(countJob{id: i})
	}
	withTimeout(t, "Dispatch round 2", func() { Dispatch(q) })
	for i := 0; i < 3; i++ {
		if hits[i].Load() != 1 {
			t.Fatalf("round 1 job %d re-executed in round 2", i)
		}
	}
	for i := 3; i < 5; i++ {
		if hits[i].Load() != 1 {
			t.Fatalf("round 2 job %d executed %d times", i, hits[i].Load())
		}
	}

	Shutdown(q, threads)
}

// TestEmptyRoundIsIdempotent dispatches with zero appended jobs, which
// must return promptly and leave the queue ready for a real round.
func TestEmptyRoundIsIdempotent(t *testing.T) {
	var hits atomic.Uint32

	q := New[countJob](4)
	threads := Spawn(q, func(*countJob) { hits.Add(1) }, 3)

	withTimeout(t, "empty Dispatch", func() { Dispatch(q) })
	withTimeout(t, "second empty Dispatch", func() { Dispatch(q) })
	if hits.Load() != 0 {
		t.Fatalf("%d jobs executed in empty rounds", hits.Load())
	}
	if q.Len() != 0 || q.Cap() != 4 {
		t.Fatalf("empty round disturbed the queue: len %d cap %d", q.Len(), q.Cap())
	}

	// The pool must still run a real round afterwards.
	q.Append(countJob{id: 0})
	withTimeout(t, "Dispatch after empty rounds", func() { Dispatch(q) })
	if hits.Load() != 1 {
		t.Fatalf("job after empty rounds executed %d times", hits.Load())
	}

	Shutdown(q, threads)
}

// TestManyRoundsStress reuses one pool across many back-to-back rounds,
// which is where a missed wakeup or a stale cursor would surface.
func TestManyRoundsStress(t *testing.T) {
	const rounds = 200
	const jobs = 32
	var total atomic.Int64

	q := New[countJob](jobs)
	threads := Spawn(q, func(*countJob) { total.Add(1) }, runtime.NumCPU())

	for r := 0; r < rounds; r++ {
		for i := 0; i < jobs; i++ {
			q.Append(countJob{id: i})
		}
		withTimeout(t, "Dispatch", func() { Dispatch(q) })
		if got := total.Load(); got != int64((r+1)*jobs) {
			t.Fatalf("round %d: %d total executions, want %d", r, got, (r+1)*jobs)
		}
	}

	Shutdown(q, threads)
}

// TestGrowthDuringAppendScenario combines growth with dispatch: capacity
// 2, three jobs, two workers — one growth to capacity 4 and all three
// jobs executed exactly once between the two workers.
func TestGrowthDuringAppendScenario(t *testing.T) {
	hits := make([]atomic.Uint32, 3)

	q := New[countJob](2)
	threads := Spawn(q, func(j *countJob) { hits[j.id].Add(1) }, 2)

	for i := 0; i < 3; i++ {
		q.Append(countJob{id: i})
	}
	if q.Cap() != 4 {
		t.Fatalf("capacity %d after growth, want 4", q.Cap())
	}
	withTimeout(t, "Dispatch", func() { Dispatch(q) })

	for i := range hits {
		if hits[i].Load() != 1 {
			t.Fatalf("job %d executed %d times", i, hits[i].Load())
		}
	}

	Shutdown(q, threads)
}

// TestShutdownIdle tears down a pool that never ran a round and checks
// every worker thread terminates.
func TestShutdownIdle(t *testing.T) {
	q := New[countJob](4)
	threads := Spawn(q, func(*countJob) {}, 4)

	exited := make([]<-chan struct{}, len(threads.exited))
	for i, ch := range threads.exited {
		exited[i] = ch
	}

	withTimeout(t, "Shutdown", func() { Shutdown(q, threads) })
	for i, ch := range exited {
		select {
		case <-ch:
		default:
			t.Fatalf("worker %d still running after Shutdown", i)
		}
	}
}

// TestShutdownAfterRounds tears down a pool that has done real work.
func TestShutdownAfterRounds(t *testing.T) {
	var total atomic.Int64

	q := New[countJob](8)
	threads := Spawn(q, func(*countJob) { total.Add(1) }, 2)

	for r := 0; r < 3; r++ {
		for i := 0; i < 8; i++ {
			q.Append(countJob{id: i})
		}
		withTimeout(t, "Dispatch", func() { Dispatch(q) })
	}
	withTimeout(t, "Shutdown", func() { Shutdown(q, threads) })

	if total.Load() != 24 {
		t.Fatalf("%d executions before shutdown, want 24", total.Load())
	}
}

// TestSpawnCoercesThreadCount checks the clamp: non-positive requests get
// one worker, oversized requests get at most the machine's parallelism.
func TestSpawnCoercesThreadCount(t *testing.T) {
	for _, req := range []int{0, -3} {
		q := New[countJob](2)
		threads := Spawn(q, func(*countJob) {}, req)
		if threads.Count() != 1 {
			t.Fatalf("Spawn(%d) produced %d workers, want 1", req, threads.Count())
		}
		withTimeout(t, "Shutdown", func() { Shutdown(q, threads) })
	}

	q := New[countJob](2)
	threads := Spawn(q, func(*countJob) {}, runtime.NumCPU()*8)
	if threads.Count() > runtime.NumCPU() {
		t.Fatalf("Spawn exceeded available parallelism: %d > %d",
			threads.Count(), runtime.NumCPU())
	}
	withTimeout(t, "Shutdown", func() { Shutdown(q, threads) })
}

// TestSingleWorkerPool drives the degenerate W=1 configuration, where the
// sole worker must both drain the round and trip the barrier.
func TestSingleWorkerPool(t *testing.T) {
	hits := make([]atomic.Uint32, 10)

	q := New[countJob](4)
	threads := Spawn(q, func(j *countJob) { hits[j.id].Add(1) }, 1)

	for i := 0; i < 10; i++ {
		q.Append(countJob{id: i})
	}
	withTimeout(t, "Dispatch", func() { Dispatch(q) })

	for i := range hits {
		if hits[i].Load() != 1 {
			t.Fatalf("job %d executed %d times", i, hits[i].Load())
		}
	}

	Shutdown(q, threads)
}
