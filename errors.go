package gocoro

import (
	"errors"
	"fmt"
)

// ErrGoexit is the PanicError value when an entry function called
// runtime.Goexit.
var ErrGoexit = errors.New("runtime.Goexit called in coroutine")

// A PanicError is raised by the Switch that was resumed by a coroutine whose
// entry function panicked.
type PanicError struct {
	Coroutine int
	Value     any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("gocoro: coroutine %d panicked: %v", e.Coroutine, e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
