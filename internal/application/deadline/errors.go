package deadline

import "errors"

var (
	// ErrSweepInProgress is returned when a sweep is requested while another
	// sweep of the same tracker is still running
	ErrSweepInProgress = errors.New("deadline sweep already in progress")
	// ErrSweepPanicked wraps a recovered panic from inside a sweep
	ErrSweepPanicked = errors.New("deadline sweep panicked")
)
