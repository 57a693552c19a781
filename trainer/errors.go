package trainer

import "github.com/pkg/errors"

// ErrAlreadyRunning is returned by Start while a session occupies the slot.
var ErrAlreadyRunning = errors.New("training is already running")

// ErrInvalidConfig is returned by Start for a malformed Config.
var ErrInvalidConfig = errors.New("invalid training configuration")

// ErrRuntimeFault matches every RuntimeFault.
var ErrRuntimeFault = errors.New("runtime fault")

// RuntimeFault is a failure inside the worker: a model or dataset error,
// a failed projection, or a recovered panic.
type RuntimeFault struct {
	Op  string
	Err error
}

func (f *RuntimeFault) Error() string {
	return f.Op + ": " + f.Err.Error()
}

// Unwrap returns the underlying error.
func (f *RuntimeFault) Unwrap() error {
	return f.Err
}

// Is makes errors.Is(f, ErrRuntimeFault) true.
func (f *RuntimeFault) Is(target error) bool {
	return target == ErrRuntimeFault
}

func fault(err error, op string) error {
	return &RuntimeFault{Op: op, Err: err}
}
