// Package worker implements a reusable scoped-background-execution
// abstraction: Start spawns one goroutine running a loop, Stop sets a
// shared flag, optionally unblocks the worker's input, and joins. Engine,
// Notifier, and TradingTool are all built on this.
package worker

import "sync/atomic"

// State models the worker lifecycle: Idle, then Running once started, then
// Stopping while a Stop call is unwinding it, then Joined once its
// goroutine has exited.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Joined
)

// Worker runs a caller-supplied loop on its own goroutine until told to
// stop. The loop function is handed a Stopped closure so it can check the
// cooperative flag between iterations without reaching into Worker's
// internals.
type Worker struct {
	state atomic.Int32
	done  chan struct{}
	loop  func(stopped func() bool)
}

// New returns a Worker that will run loop once Start is called. loop should
// run until stopped() returns true (or its own input signals exit, e.g. an
// mpmc.Queue.Pop returning ok=false).
func New(loop func(stopped func() bool)) *Worker {
	w := &Worker{loop: loop}
	w.state.Store(int32(Idle))
	return w
}

// Start transitions Idle→Running and spawns the worker goroutine. Calling
// Start more than once is a programmer error and is ignored after the
// first call.
func (w *Worker) Start() {
	if !w.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return
	}
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		w.loop(w.Stopped)
	}()
}

// Stopped reports whether Stop has been called. Passed into loop so it can
// exit its for-loop cooperatively.
func (w *Worker) Stopped() bool {
	return State(w.state.Load()) >= Stopping
}

// Stop transitions Running→Stopping, invokes unblock (if non-nil) to kick
// the worker out of whatever it is blocked on (for example, stopping the
// MPMC it is popping from), and joins the goroutine. Stop is idempotent:
// calling it again after Joined is a no-op.
func (w *Worker) Stop(unblock func()) {
	if !w.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		// Never started: there is nothing to join. If another Stop already
		// moved the worker past Running, fall through and wait on the same
		// done channel, so this call also returns only after the goroutine
		// has exited.
		if State(w.state.Load()) == Idle {
			return
		}
	}
	if unblock != nil {
		unblock()
	}
	if w.done != nil {
		<-w.done
	}
	w.state.Store(int32(Joined))
}

// State reports the current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}
