package remote

import (
	"errors"
	"fmt"
)

// PersistenceError reports a failed or rejected remote persistence call.
// The mutation queue treats any PersistenceError as "roll back and notify".
type PersistenceError struct {
	Op     string // operation that failed, e.g. "UpdateTaskList"
	Status int    // HTTP status, 0 when the call never completed
	Err    error  // underlying transport or decode error
}

func (e *PersistenceError) Error() string {
	switch {
	case e.Status >= 500:
		return fmt.Sprintf("%s: remote service 5xx: %d", e.Op, e.Status)
	case e.Status >= 400:
		return fmt.Sprintf("%s: remote service error: %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: remote call failed", e.Op)
	}
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err wraps a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
