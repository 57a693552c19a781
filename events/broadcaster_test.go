package events

import "encoding/json"
import "sync"
import "testing"

import "github.com/neurlang/deepview/grid"
import "github.com/neurlang/deepview/weights"

func TestPublishOrder(t *testing.T) {
	b := NewBroadcaster()
	s1 := b.Subscribe(10)
	s2 := b.Subscribe(10)
	for i := 0; i < 5; i++ {
		if n := b.Publish(BatchProgress(i)); n != 2 {
			t.Fatalf("delivered to %d subscribers", n)
		}
	}
	for _, s := range []*Subscription{s1, s2} {
		for i := 0; i < 5; i++ {
			e := <-s.C
			if e.Kind != KindBatch || e.Batch != i {
				t.Errorf("out of order event %+v at %d", e, i)
			}
		}
	}
}

// a full subscriber loses events instead of blocking the publisher
func TestDropWhenFull(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe(1)
	if b.Publish(StatusMessage("a")) != 1 {
		t.Fatal("first event should be delivered")
	}
	if b.Publish(StatusMessage("b")) != 0 {
		t.Fatal("second event should be dropped")
	}
	if e := <-s.C; e.Message != "a" {
		t.Errorf("got %q", e.Message)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe(1)
	b.Unsubscribe(s)
	b.Unsubscribe(s)
	if _, ok := <-s.C; ok {
		t.Error("channel should be closed")
	}
	if b.Publish(StatusMessage("lost")) != 0 || b.Len() != 0 {
		t.Error("unsubscribed channel still registered")
	}
	b.Close()
	late := b.Subscribe(1)
	if _, ok := <-late.C; ok {
		t.Error("subscription after close should be closed")
	}
}

func TestConcurrentSubscribe(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Unsubscribe(b.Subscribe(4))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Publish(BatchProgress(j))
			}
		}()
	}
	wg.Wait()
	if b.Len() != 0 {
		t.Errorf("leaked %d subscriptions", b.Len())
	}
}

func TestMarshal(t *testing.T) {
	var v = make(grid.Grid, grid.Cells)
	v[0] = 1
	data, err := json.Marshal(WeightsUpdate(3, weights.Snapshot{{{1}}}, grid.Hierarchy{{v}}))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"type", "epoch", "weights", "initial_grids", "layer_grids"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing %s in %s", key, data)
		}
	}
	data, _ = json.Marshal(BatchProgress(0))
	if string(data) != `{"batch":0,"type":"batch"}` {
		t.Errorf("unexpected batch encoding %s", data)
	}
	data, _ = json.Marshal(EpochSummary(2, 0.123456789))
	if string(data) != `{"avg_error":0.1235,"epoch":2,"type":"epoch"}` {
		t.Errorf("unexpected epoch encoding %s", data)
	}
}
