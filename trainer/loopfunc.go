package trainer

import "context"
import "math/rand"

import "github.com/gofiber/fiber/v2/log"
import "github.com/pkg/errors"

import "github.com/neurlang/deepview/datasets"
import "github.com/neurlang/deepview/events"
import "github.com/neurlang/deepview/grid"

// Reason tells why a session ended.
type Reason int

const (
	Stopped Reason = iota
	Completed
	Failed
)

func (r Reason) String() string {
	switch r {
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of a finished session.
type Outcome struct {
	Session string
	Reason  Reason

	// Epochs is the number of completed epochs.
	Epochs int

	// Err is a RuntimeFault when Reason is Failed.
	Err error
}

type worker struct {
	c          *Controller
	session    *session
	model      Model
	dataset    datasets.Dataset
	events     Publisher
	rng        *rand.Rand
	checkpoint string
}

func (w *worker) publish(e events.Event) {
	w.events.Publish(e)
}

// publishWeights projects the model parameters, stores them as the last
// snapshot and emits them.
func (w *worker) publishWeights(epoch int) error {
	snap := w.model.Parameters()
	h, err := grid.Project(snap)
	if err != nil {
		return fault(err, "projecting weights")
	}
	w.c.snapshot.Store(&published{weights: snap, grids: h})
	w.publish(events.WeightsUpdate(epoch, snap, h))
	return nil
}

// suspend blocks while pause is requested. It returns false if stop was
// requested meanwhile.
func (w *worker) suspend(enter, exit string) bool {
	w.publish(events.StatusMessage(enter))
	w.c.transition(Running, Paused)
	log.Debugw("training paused", "session", w.session.id)
	if !w.session.signals.WaitWhilePaused(context.Background()) {
		return false
	}
	w.c.transition(Paused, Running)
	w.publish(events.StatusMessage(exit))
	log.Debugw("training resumed", "session", w.session.id)
	return true
}

func (w *worker) run() (reason Reason, err error) {
	defer func() {
		if r := recover(); r != nil {
			reason, err = Failed, fault(errors.Errorf("panic: %v", r), "worker")
		}
	}()
	var signals = w.session.signals
	var epochs = w.session.cfg.Epochs

	if err := w.publishWeights(0); err != nil {
		return Failed, err
	}
	for !signals.StopRequested() {
		var epoch = int(w.session.epoch.Load())
		var total float64
		var batches int
		var it = w.dataset.Epoch(w.rng)
		for {
			b, ok, err := it.Next()
			if err != nil {
				return Failed, fault(err, "reading batch")
			}
			if !ok || signals.StopRequested() {
				break
			}
			if signals.PauseRequested() && !w.suspend("Training is paused...", "Training resumed.") {
				break
			}
			loss, err := w.model.TrainStep(b)
			if err != nil {
				return Failed, fault(err, "training step")
			}
			total += loss
			w.publish(events.BatchProgress(batches))
			batches++
		}
		if signals.StopRequested() {
			break
		}

		var avg float64
		if batches > 0 {
			avg = total / float64(batches)
		}
		w.publish(events.EpochSummary(epoch, avg))
		log.Infow("epoch finished", "session", w.session.id, "epoch", epoch, "batches", batches, "avg_error", avg)

		if err := w.publishWeights(epoch); err != nil {
			return Failed, err
		}
		if err := Checkpoint(w.model, w.checkpoint); err != nil {
			log.Warnw("checkpoint failed", "session", w.session.id, "error", err)
		}

		w.session.epoch.Inc()
		if epochs > 0 && epoch+1 >= epochs {
			return Completed, nil
		}
		if signals.PauseRequested() {
			w.suspend("Waiting for resume at epoch end...", "Training resumed after pause.")
		}
	}
	return Stopped, nil
}
