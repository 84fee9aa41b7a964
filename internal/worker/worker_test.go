package worker

import (
	"testing"
	"time"
)

func TestLifecycleStates(t *testing.T) {
	started := make(chan struct{})
	w := New(func(stopped func() bool) {
		close(started)
		for !stopped() {
			time.Sleep(time.Millisecond)
		}
	})

	if w.State() != Idle {
		t.Fatalf("State() = %v, want Idle", w.State())
	}

	w.Start()
	<-started
	if w.State() != Running {
		t.Fatalf("State() = %v, want Running", w.State())
	}

	w.Stop(nil)
	if w.State() != Joined {
		t.Fatalf("State() = %v, want Joined", w.State())
	}
}

func TestStopUnblocksViaCallback(t *testing.T) {
	unblocked := make(chan struct{})
	w := New(func(stopped func() bool) {
		<-unblocked
	})
	w.Start()
	w.Stop(func() { close(unblocked) })

	if w.State() != Joined {
		t.Fatalf("State() = %v, want Joined", w.State())
	}
}

func TestStopWithoutStartIsNoOp(t *testing.T) {
	w := New(func(stopped func() bool) {})
	w.Stop(nil)
	if w.State() != Idle {
		t.Fatalf("State() = %v, want Idle", w.State())
	}
}
