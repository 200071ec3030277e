package pipeline

import "sync/atomic"

// RunLock is a non-blocking lock that keeps a Pipeline to one run at a
// time.
type RunLock struct {
	state atomic.Int32 // 0 = idle, 1 = running
}

// TryAcquire takes the lock if it is free and reports whether it did
func (l *RunLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock.
// Must only be called by the goroutine that acquired it.
func (l *RunLock) Release() {
	l.state.Store(0)
}
