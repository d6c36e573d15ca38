package domain

import "fmt"

// ValidationError reports malformed evaluator input. It is returned before any
// rule runs and is distinct from a driver simply being out of hours.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvariantError reports a duty-status history that cannot be replayed safely
// (unordered, overlapping or non-contiguous entries).
type InvariantError struct {
	Index  int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("duty history invariant broken at entry %d: %s", e.Index, e.Reason)
}
