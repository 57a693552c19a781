package trainer

import "os"

import "github.com/pkg/errors"

// Resume loads the checkpoint into the model if resume is set, the model is
// Persistent and the checkpoint file exists.
func Resume(m Model, resume bool, checkpoint string) (bool, error) {
	p, ok := m.(Persistent)
	if !resume || checkpoint == "" || !ok {
		return false, nil
	}
	if _, err := os.Stat(checkpoint); os.IsNotExist(err) {
		return false, nil
	}
	if err := p.ReadCompressedWeightsFromFile(checkpoint); err != nil {
		return false, errors.Wrapf(err, "resuming from '%s'", checkpoint)
	}
	return true, nil
}

// Checkpoint writes the model weights to the checkpoint file through a
// temporary file, so a crash never leaves a truncated checkpoint.
func Checkpoint(m Model, checkpoint string) error {
	p, ok := m.(Persistent)
	if checkpoint == "" || !ok {
		return nil
	}
	tmp := checkpoint + ".tmp"
	if err := p.WriteCompressedWeightsToFile(tmp); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "writing checkpoint '%s'", tmp)
	}
	return errors.Wrap(os.Rename(tmp, checkpoint), "replacing checkpoint")
}
