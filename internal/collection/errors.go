package collection

import "errors"

// Structural errors. Both are rejected synchronously, before any state change.
var (
	ErrDuplicateID     = errors.New("duplicate id")
	ErrIndexOutOfRange = errors.New("index out of range")
)
