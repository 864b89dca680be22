//go:build linux

// setaffinity_linux.go
//
// Linux binding for sched_setaffinity(2) pinning the calling OS thread to
// one logical CPU.  Errors are deliberately swallowed: under cgroup or
// container restrictions the call may fail with EPERM/EINVAL, and the
// fallback is simply no pin.  CPUs beyond the first 64 are left to the
// scheduler for the same reason.

package workerpool

import (
	"syscall"
	"unsafe"
)

// setAffinity pins the current thread to cpu (0-based).  Out-of-range
// indices are ignored.  Callers must hold runtime.LockOSThread.
func setAffinity(cpu int) {
	if cpu < 0 || cpu >= 64 {
		return
	}
	mask := [1]uintptr{1 << uint(cpu)}
	_, _, _ = syscall.RawSyscall(
		syscall.SYS_SCHED_SETAFFINITY,
		0, // pid 0 → current thread
		uintptr(unsafe.Sizeof(mask[0])),
		uintptr(unsafe.Pointer(&mask)),
	)
}
