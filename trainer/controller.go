package trainer

import "context"
import "math/rand"
import "sync"
import "time"

import "github.com/gofiber/fiber/v2/log"
import "github.com/google/uuid"
import "github.com/pkg/errors"
import "go.uber.org/atomic"

import "github.com/neurlang/deepview/datasets"
import "github.com/neurlang/deepview/events"
import "github.com/neurlang/deepview/grid"
import "github.com/neurlang/deepview/parallel"
import "github.com/neurlang/deepview/weights"

// Options configure a Controller.
type Options struct {
	Dataset datasets.Dataset
	Factory ModelFactory

	// Events receives the session events. Nil discards them. Publish must
	// not block nor call back into the Controller.
	Events Publisher

	// Seed drives the per epoch shuffling. Zero uses the clock.
	Seed int64

	// Checkpoint, when set, is rewritten with the model weights after every
	// epoch. With Resume a new session starts from it.
	Checkpoint string
	Resume     bool
}

// Status describes the current, or else the last, session.
type Status struct {
	Session string `json:"session,omitempty"`
	State   State  `json:"state"`
	Epoch   int    `json:"epoch"`
	Layers  []int  `json:"layers,omitempty"`
	Epochs  int    `json:"epochs,omitempty"`
}

type published struct {
	weights weights.Snapshot
	grids   grid.Hierarchy
}

type session struct {
	id      uuid.UUID
	cfg     Config
	signals *parallel.Signals
	epoch   atomic.Int64
	done    chan struct{}
	outcome Outcome
}

type discard struct{}

func (discard) Publish(events.Event) int { return 0 }

// Controller owns the single training session slot. All its methods are safe
// for concurrent use and never block on the worker, except Wait and Close.
type Controller struct {
	opts Options

	mut     sync.Mutex
	state   State
	current *session
	last    *session

	snapshot atomic.Pointer[published]
}

// NewController creates an idle controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Dataset == nil {
		return nil, errors.New("dataset is mandatory")
	}
	if opts.Factory == nil {
		return nil, errors.New("model factory is mandatory")
	}
	if opts.Events == nil {
		opts.Events = discard{}
	}
	return &Controller{opts: opts}, nil
}

func (c *Controller) transition(from, to State) bool {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.state != from {
		return false
	}
	c.state = to
	return true
}

// Start reserves the session slot, builds a model for cfg and trains it on a
// new worker goroutine. It returns the session id without waiting for any epoch.
func (c *Controller) Start(cfg Config) (string, error) {
	c.mut.Lock()
	if c.state != Idle {
		c.mut.Unlock()
		return "", ErrAlreadyRunning
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		c.mut.Unlock()
		return "", err
	}
	var s = &session{
		id:      uuid.New(),
		cfg:     cfg,
		signals: parallel.NewSignals(),
		done:    make(chan struct{}),
	}
	c.snapshot.Store(nil)
	c.state = Running
	c.current = s
	c.mut.Unlock()

	model, err := c.build(cfg)
	if err != nil {
		c.mut.Lock()
		c.state = Idle
		c.current = nil
		c.mut.Unlock()
		close(s.done)
		return "", err
	}

	var seed = c.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	go c.supervise(&worker{
		c:          c,
		session:    s,
		model:      model,
		dataset:    c.opts.Dataset,
		events:     c.opts.Events,
		rng:        rand.New(rand.NewSource(seed)),
		checkpoint: c.opts.Checkpoint,
	})
	log.Infow("training started", "session", s.id, "layers", cfg.Layers, "epochs", cfg.Epochs)
	return s.id.String(), nil
}

// build creates the model and restores the checkpoint. Callers must not hold c.mut.
func (c *Controller) build(cfg Config) (Model, error) {
	model, err := c.opts.Factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "building model")
	}
	if ok, err := Resume(model, c.opts.Resume, c.opts.Checkpoint); err != nil {
		log.Warnw("starting from fresh weights", "error", err)
	} else if ok {
		log.Infow("resumed from checkpoint", "file", c.opts.Checkpoint)
	}
	return model, nil
}

func (c *Controller) supervise(w *worker) {
	var s = w.session
	reason, err := w.run()
	w.model = nil

	c.mut.Lock()
	if err != nil {
		c.state = Errored
		log.Errorw("training failed", "session", s.id, "error", err)
		w.publish(events.ErrorEvent("Error: " + err.Error()))
	}
	w.publish(events.StatusMessage("Training stopped."))
	s.signals.Clear()
	s.outcome = Outcome{Session: s.id.String(), Reason: reason, Epochs: int(s.epoch.Load()), Err: err}
	c.state = Idle
	c.current = nil
	c.last = s
	c.mut.Unlock()

	close(s.done)
	log.Infow("training ended", "session", s.id, "reason", reason, "epochs", s.outcome.Epochs)
}

// Stop asks the worker to exit at its next checkpoint.
func (c *Controller) Stop() {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.current == nil {
		return
	}
	c.current.signals.RequestStop()
	if c.state == Running || c.state == Paused {
		c.state = Stopping
	}
}

// Pause asks the worker to suspend at its next checkpoint.
func (c *Controller) Pause() {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.current == nil || (c.state != Running && c.state != Paused) {
		return
	}
	c.current.signals.RequestPause()
	c.opts.Events.Publish(events.StatusMessage("Waiting for epoch to finish..."))
}

// Resume clears a pending or active pause.
func (c *Controller) Resume() {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.current == nil || !c.current.signals.ClearPause() {
		return
	}
	c.opts.Events.Publish(events.StatusMessage("Training resumed."))
}

// Weights returns a copy of the last snapshot, empty if none was taken yet.
func (c *Controller) Weights() weights.Snapshot {
	if p := c.snapshot.Load(); p != nil {
		return p.weights.Clone()
	}
	return weights.Snapshot{}
}

// Grids returns the projection of the last snapshot. It must not be modified.
func (c *Controller) Grids() grid.Hierarchy {
	if p := c.snapshot.Load(); p != nil {
		return p.grids
	}
	return nil
}

// State returns the lifecycle state of the slot.
func (c *Controller) State() State {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.state
}

// Session returns the status of the current session, or of the last one when idle.
func (c *Controller) Session() Status {
	c.mut.Lock()
	defer c.mut.Unlock()
	var st = Status{State: c.state}
	var s = c.current
	if s == nil {
		s = c.last
	}
	if s != nil {
		st.Session = s.id.String()
		st.Epoch = int(s.epoch.Load())
		st.Layers = append([]int(nil), s.cfg.Layers...)
		st.Epochs = s.cfg.Epochs
	}
	return st
}

// LastOutcome returns the outcome of the most recently finished session.
func (c *Controller) LastOutcome() (Outcome, bool) {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.last == nil {
		return Outcome{}, false
	}
	return c.last.outcome, true
}

// Wait blocks until the current session, if any, has ended.
func (c *Controller) Wait(ctx context.Context) error {
	c.mut.Lock()
	var s = c.current
	c.mut.Unlock()
	if s == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the current session and waits for its worker.
func (c *Controller) Close(ctx context.Context) error {
	c.Stop()
	return c.Wait(ctx)
}
