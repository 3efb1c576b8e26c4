package engine

import "sync/atomic"

// StopFlag is a cooperative cancellation flag shared by a coordinator and
// its search tasks. The zero value is ready to use; a nil *StopFlag never
// reports stopped.
type StopFlag struct {
	stopped atomic.Bool
}

// Stop raises the flag.
func (f *StopFlag) Stop() {
	if f != nil {
		f.stopped.Store(true)
	}
}

// Stopped reports whether the flag is raised.
func (f *StopFlag) Stopped() bool {
	return f != nil && f.stopped.Load()
}

// Reset lowers the flag so the owner can run again.
func (f *StopFlag) Reset() {
	if f != nil {
		f.stopped.Store(false)
	}
}
