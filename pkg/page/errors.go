// ABOUTME: Sentinel errors for the page package
// ABOUTME: Invariant violations and capacity overruns are treated as internal bugs

package page

import "errors"

var (
	// ErrInvariantViolation indicates a strategy precondition failed,
	// e.g. a single-fragment assumption was violated or an empty
	// fragment list was supplied where at least one was required.
	ErrInvariantViolation = errors.New("page: invariant violation")

	// ErrCapacityExceeded indicates an attempt to insert beyond the
	// page's configured capacity (NDP_NODE_COUNT).
	ErrCapacityExceeded = errors.New("page: capacity exceeded")
)
