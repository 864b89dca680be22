//go:build !linux

// setaffinity_stub.go
//
// Portable fallback: platforms without sched_setaffinity get unpinned
// workers, which only costs locality, never correctness.

package workerpool

// setAffinity is a no-op on non-Linux targets.
func setAffinity(cpu int) {}
