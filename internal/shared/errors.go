package shared

import "errors"

// Failure taxonomy for the election core. Every operation that fails wraps
// exactly one of these sentinels with a human-actionable reason, so callers
// can branch on errors.Is while still logging the full message.
var (
	// ErrAuthorization indicates the caller lacks the required role or
	// relationship for the operation.
	ErrAuthorization = errors.New("not authorized")
	// ErrPhase indicates the operation is invalid for the election's
	// current status.
	ErrPhase = errors.New("invalid phase")
	// ErrTiming indicates a deadline has passed or a window is not open yet.
	ErrTiming = errors.New("timing constraint violated")
	// ErrValidation indicates missing, duplicate, or unknown input.
	ErrValidation = errors.New("validation failed")
	// ErrCapacity indicates a batch size limit was exceeded.
	ErrCapacity = errors.New("capacity exceeded")
)
