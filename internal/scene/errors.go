package scene

import (
	"errors"
	"fmt"
)

var (
	ErrIndex       = errors.New("scene: layer index out of range")
	ErrUnknownName = errors.New("scene: no layer or effect with that name")
	ErrDuplicate   = errors.New("scene: name already in use")
	ErrLayerPanic  = errors.New("scene: layer panicked while drawing")
	ErrEmptyCanvas = errors.New("scene: canvas size must be positive")
)

// LayerError isolates a failure to a single layer of a single frame.
type LayerError struct {
	Frame int
	Name  string
	Err   error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("scene: frame %d: %s: %v", e.Frame, e.Name, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }
