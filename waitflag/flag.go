// flag.go
//
// Wake/sleep signaling over unsigned 32-bit flags.  A Flag is the
// futex-shaped primitive the pool's barrier is built from: workers sleep
// on a flag value, the dispatcher wakes all of them by storing a new one.
// Several flags share a single monitor (Group) so that a waiter whose
// release condition spans two flags — "round closed OR shutdown" — can
// check it atomically with parking.  One broadcast per mutation is cheap
// here because every wait sits on a cold path between rounds.

package waitflag

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// spinBudget bounds the pre-park polling loop.  Round turnaround is
// usually fast enough that a short spin dodges the condvar entirely.
const spinBudget = 128

// Group is the shared monitor behind a set of flags.  All waiters park on
// one condition variable; any flag mutation broadcasts.  Waiter predicates
// run under the lock, so a store can never slip between a predicate check
// and the park.
type Group struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// NewGroup returns an empty monitor ready to hand out flags.
func NewGroup() *Group {
	g := &Group{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Flag is an unsigned flag bound to a Group.  The zero value is unusable;
// obtain flags from Group.Flag.
type Flag struct {
	g   *Group
	val atomic.Uint32
}

// Flag mints a new flag, initially zero, sharing g's monitor.
func (g *Group) Flag() *Flag {
	return &Flag{g: g}
}

// Load returns the current value without taking the monitor lock.
func (f *Flag) Load() uint32 {
	return f.val.Load()
}

// Set stores v and wakes every thread currently sleeping on the monitor.
// Idempotent when nobody is waiting.
func (f *Flag) Set(v uint32) {
	f.g.mu.Lock()
	f.val.Store(v)
	f.g.cond.Broadcast()
	f.g.mu.Unlock()
}

// Sleep blocks the caller while the flag's value equals cmp.  A flag
// observed as already different returns immediately, which is what makes
// a wake issued before the sleeper arrives impossible to lose.  Spurious
// condvar wakeups are absorbed internally; callers never see them.
func (f *Flag) Sleep(cmp uint32) {
	for i := 0; i < spinBudget; i++ {
		if f.val.Load() != cmp {
			return
		}
		runtime.Gosched()
	}
	f.g.mu.Lock()
	for f.val.Load() == cmp {
		f.g.cond.Wait()
	}
	f.g.mu.Unlock()
}

// Await blocks until pred reports true.  pred is evaluated under the
// monitor lock and must therefore be cheap and side-effect free; it is
// re-checked after every broadcast on the group.
func (g *Group) Await(pred func() bool) {
	for i := 0; i < spinBudget; i++ {
		if pred() {
			return
		}
		runtime.Gosched()
	}
	g.mu.Lock()
	for !pred() {
		g.cond.Wait()
	}
	g.mu.Unlock()
}
