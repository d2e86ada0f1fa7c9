//go:build linux

package workerpool

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to a single CPU.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}

// pinWorker locks the calling goroutine to its OS thread and pins that
// thread to CPU id modulo the number of CPUs. The thread stays locked
// until the worker exits.
func pinWorker(id int) error {
	runtime.LockOSThread()
	return PinToCPU(id % runtime.NumCPU())
}
