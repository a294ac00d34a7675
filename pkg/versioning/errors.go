// ABOUTME: Sentinel errors for the versioning package

package versioning

import (
	"errors"

	"github.com/bark/sirix/pkg/page"
)

// ErrInvariantViolation is re-exported from pkg/page: a strategy
// precondition on fragment count was violated.
var ErrInvariantViolation = page.ErrInvariantViolation

// ErrEmptyFetchPlan indicates FetchPlan was asked to restore zero revisions.
var ErrEmptyFetchPlan = errors.New("versioning: revsToRestore must be >= 1")
