package parallel

import "context"
import "sync"

import "go.uber.org/atomic"

// Signals are the cooperative stop and pause requests shared between control
// goroutines and one worker goroutine. The zero value is ready to use.
//
// Stop is monotonic: once requested it stays set until Clear. Pause can be
// toggled freely. Every change wakes a worker blocked in WaitWhilePaused.
type Signals struct {
	stop  atomic.Bool
	pause atomic.Bool

	mut  sync.Mutex
	wake chan struct{}
}

// NewSignals returns cleared signals.
func NewSignals() *Signals {
	return &Signals{wake: make(chan struct{})}
}

func (s *Signals) changed() <-chan struct{} {
	s.mut.Lock()
	defer s.mut.Unlock()
	if s.wake == nil {
		s.wake = make(chan struct{})
	}
	return s.wake
}

func (s *Signals) notify() {
	s.mut.Lock()
	if s.wake != nil {
		close(s.wake)
	}
	s.wake = make(chan struct{})
	s.mut.Unlock()
}

// StopRequested reports whether stop was requested.
func (s *Signals) StopRequested() bool {
	return s.stop.Load()
}

// PauseRequested reports whether pause was requested.
func (s *Signals) PauseRequested() bool {
	return s.pause.Load()
}

// RequestStop sets the stop flag. It reports whether the flag was newly set.
func (s *Signals) RequestStop() bool {
	if s.stop.Swap(true) {
		return false
	}
	s.notify()
	return true
}

// RequestPause sets the pause flag. It reports whether the flag was newly set.
func (s *Signals) RequestPause() bool {
	if !s.pause.CompareAndSwap(false, true) {
		return false
	}
	s.notify()
	return true
}

// ClearPause clears the pause flag. It reports whether a pause was cleared.
func (s *Signals) ClearPause() bool {
	if !s.pause.CompareAndSwap(true, false) {
		return false
	}
	s.notify()
	return true
}

// Clear resets both flags. Only the worker calls it, after its loop exited.
func (s *Signals) Clear() {
	s.stop.Store(false)
	s.pause.Store(false)
	s.notify()
}

// WaitWhilePaused blocks while pause is requested. It returns true when the
// pause was cleared, false when stop was requested or ctx is done.
func (s *Signals) WaitWhilePaused(ctx context.Context) bool {
	for {
		ch := s.changed()
		if s.stop.Load() {
			return false
		}
		if !s.pause.Load() {
			return true
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return false
		}
	}
}
