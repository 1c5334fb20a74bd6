package session

import (
	"errors"
	"fmt"
)

// ErrIO is matched by every *IOError.
var ErrIO = errors.New("file operation failed")

// IOError wraps a failed export, save or load. The session state is left
// as it was before the call.
type IOError struct {
	Op   string // "export", "save" or "load"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
