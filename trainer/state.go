package trainer

import "strings"

import "github.com/pkg/errors"

// State is the lifecycle state of the session slot.
type State int32

const (
	Idle State = iota
	Running
	Paused
	Stopping
	Errored
)

var stateNames = [...]string{"idle", "running", "paused", "stopping", "errored"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Active reports whether a worker owns the slot in this state.
func (s State) Active() bool {
	return s != Idle
}

// MarshalText encodes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if strings.EqualFold(name, string(text)) {
			*s = State(i)
			return nil
		}
	}
	return errors.Errorf("unknown state %q", text)
}
