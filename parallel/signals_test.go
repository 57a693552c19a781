package parallel

import "context"
import "testing"
import "time"

func waitAsync(s *Signals) <-chan bool {
	ch := make(chan bool, 1)
	go func() {
		ch <- s.WaitWhilePaused(context.Background())
	}()
	return ch
}

// resume wakes a paused waiter
func TestPauseResume(t *testing.T) {
	s := NewSignals()
	if !s.RequestPause() {
		t.Fatal("first pause should set the flag")
	}
	if s.RequestPause() {
		t.Error("second pause should be a no-op")
	}
	ch := waitAsync(s)
	select {
	case <-ch:
		t.Fatal("waiter returned while paused")
	case <-time.After(50 * time.Millisecond):
	}
	if !s.ClearPause() {
		t.Fatal("clear should report a cleared pause")
	}
	select {
	case ok := <-ch:
		if !ok {
			t.Error("resume should return true")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by resume")
	}
	if s.ClearPause() {
		t.Error("second clear should be a no-op")
	}
}

// stop wakes a paused waiter
func TestStopWakesPaused(t *testing.T) {
	var s Signals
	s.RequestPause()
	ch := waitAsync(&s)
	if !s.RequestStop() {
		t.Fatal("first stop should set the flag")
	}
	if s.RequestStop() {
		t.Error("second stop should be a no-op")
	}
	select {
	case ok := <-ch:
		if ok {
			t.Error("stop should return false")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by stop")
	}
	if !s.StopRequested() || !s.PauseRequested() {
		t.Error("flags lost")
	}
	s.Clear()
	if s.StopRequested() || s.PauseRequested() {
		t.Error("clear left flags set")
	}
}

func TestWaitNotPaused(t *testing.T) {
	s := NewSignals()
	if !s.WaitWhilePaused(context.Background()) {
		t.Error("unpaused wait should return true immediately")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.RequestPause()
	cancel()
	if s.WaitWhilePaused(ctx) {
		t.Error("cancelled context should return false")
	}
}
