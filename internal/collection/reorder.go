package collection

import "fmt"

// Reorder returns a new sequence with the element at from moved to to.
// The move is stable: every other element keeps its relative order, as if the
// element were removed and reinserted at the target position. from == to
// returns a copy identical to the input. Indices outside [0, len) are
// rejected with ErrIndexOutOfRange; the engine never clamps or wraps.
func Reorder[T any](seq []T, from, to int) ([]T, error) {
	n := len(seq)
	if from < 0 || from >= n {
		return nil, fmt.Errorf("%w: from=%d, length=%d", ErrIndexOutOfRange, from, n)
	}
	if to < 0 || to >= n {
		return nil, fmt.Errorf("%w: to=%d, length=%d", ErrIndexOutOfRange, to, n)
	}

	out := make([]T, 0, n)
	out = append(out, seq...)
	if from == to {
		return out, nil
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)

	out = append(out, moved) // grow by one
	copy(out[to+1:], out[to:])
	out[to] = moved

	return out, nil
}
