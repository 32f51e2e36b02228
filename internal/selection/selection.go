// Package selection converts between a task's optional list reference and the
// textual "selected value" used at input boundaries, where the empty string
// denotes "uncategorized". It is a pure format converter: existence checks
// against the loaded lists belong to the mutation queue.
package selection

// ToSelection renders an optional list reference as a selection value.
func ToSelection(listID *string) string {
	if listID == nil {
		return ""
	}
	return *listID
}

// FromSelection parses a selection value back into an optional list
// reference. The empty string maps to nil.
func FromSelection(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}
