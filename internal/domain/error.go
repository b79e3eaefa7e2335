package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Membership lifecycle errors
	ErrInvalidTransition = errors.New("status transition not permitted")
	ErrMissingReason     = errors.New("transition requires a reason")
	ErrInvalidState      = errors.New("operation not permitted in current status")

	// Freeze scheduling errors
	ErrInvalidWindow       = errors.New("freeze window end must be after start")
	ErrOverlappingFreeze   = errors.New("freeze window overlaps an existing freeze")
	ErrFreezeQuotaExceeded = errors.New("plan freeze quota exceeded")

	// Check-in session errors
	ErrAlreadyCheckedIn = errors.New("membership already has an open check-in")
	ErrNotCheckedIn     = errors.New("check-in is not open")
	ErrAccessDenied     = errors.New("membership is not eligible for facility access")

	// Infrastructure errors
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrLockNotAcquired    = errors.New("could not acquire membership lock")
)
