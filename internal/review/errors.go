package review

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when a review is requested over an empty or
// fully filtered file set
var ErrNoFiles = errors.New("no reviewable files")

// ProviderCallError reports a failed model call during a review pass.
// It is fatal for the whole review; no partial report is produced.
type ProviderCallError struct {
	Pass int
	Err  error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("review pass %d failed: %v", e.Pass, e.Err)
}

func (e *ProviderCallError) Unwrap() error { return e.Err }

// ConsolidationError reports a failed or unusable consolidation call.
// It is always recovered internally by the fallback consolidator and
// never surfaced to the caller.
type ConsolidationError struct {
	Reason string
	Err    error
}

func (e *ConsolidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("consolidation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("consolidation failed: %s", e.Reason)
}

func (e *ConsolidationError) Unwrap() error { return e.Err }
