// Package events implements the training progress events and their fan-out
// to subscribers.
package events

import "encoding/json"
import "math"

import "github.com/neurlang/deepview/grid"
import "github.com/neurlang/deepview/weights"

// Kind tags the variant of an Event.
type Kind string

const (
	KindBatch   Kind = "batch"
	KindEpoch   Kind = "epoch"
	KindWeights Kind = "weights"
	KindStatus  Kind = "status"
	KindError   Kind = "error"
)

// Event is one progress notification. Which fields are meaningful depends on Kind.
type Event struct {
	Kind    Kind
	Batch   int
	Epoch   int
	AvgLoss float64
	Weights weights.Snapshot
	Grids   grid.Hierarchy
	Message string
}

// BatchProgress reports that batch n of the current epoch was trained.
func BatchProgress(n int) Event {
	return Event{Kind: KindBatch, Batch: n}
}

// EpochSummary reports the average loss of a finished epoch.
func EpochSummary(epoch int, avg float64) Event {
	return Event{Kind: KindEpoch, Epoch: epoch, AvgLoss: avg}
}

// WeightsUpdate carries a snapshot and its grid projection.
func WeightsUpdate(epoch int, w weights.Snapshot, g grid.Hierarchy) Event {
	return Event{Kind: KindWeights, Epoch: epoch, Weights: w, Grids: g}
}

// StatusMessage is a human readable status line.
func StatusMessage(text string) Event {
	return Event{Kind: KindStatus, Message: text}
}

// ErrorEvent reports a failure of the training session.
func ErrorEvent(message string) Event {
	return Event{Kind: KindError, Message: message}
}

// MarshalJSON encodes the event as the flat training_update object the
// frontend listens for, tagged with its kind.
func (e Event) MarshalJSON() ([]byte, error) {
	var m = map[string]interface{}{"type": e.Kind}
	switch e.Kind {
	case KindBatch:
		m["batch"] = e.Batch
	case KindEpoch:
		m["epoch"] = e.Epoch
		m["avg_error"] = math.Round(e.AvgLoss*1e4) / 1e4
	case KindWeights:
		m["epoch"] = e.Epoch
		m["weights"] = e.Weights
		m["initial_grids"] = e.Grids.Initial()
		m["layer_grids"] = e.Grids
	default:
		m["message"] = e.Message
	}
	return json.Marshal(m)
}
