package service

import "fmt"

// Business-rule rejection codes surfaced to callers.
const (
	CodeBorrowLimitReached         = "BorrowLimitReached"
	CodeDuplicateLoan              = "DuplicateLoan"
	CodeRenewalLimitReached        = "RenewalLimitReached"
	CodeCannotRenewOverdue         = "CannotRenewOverdue"
	CodeAlreadyReturned            = "AlreadyReturned"
	CodeAlreadyReserved            = "AlreadyReserved"
	CodeAlreadyBorrowed            = "AlreadyBorrowed"
	CodeBookCurrentlyAvailable     = "BookCurrentlyAvailable"
	CodeCannotCancelCompleted      = "CannotCancelCompleted"
	CodeReservationNotPending      = "ReservationNotPending"
	CodeReservationNotReady        = "ReservationNotReady"
	CodeReservationResolved        = "ReservationResolved"
	CodeFineNotPending             = "FineNotPending"
	CodeInsufficientRemovableStock = "InsufficientRemovableStock"

	CodeNoCopyAvailable = "NoCopyAvailable"
	CodeNoAvailableCopy = "NoAvailableCopy"
)

// ValidationError: malformed input, rejected before any mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError: a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// PolicyError: a business rule rejected the action. Limit carries the
// numeric bound behind the rejection, when one applies, so callers can
// render actionable guidance.
type PolicyError struct {
	Code  string
	Msg   string
	Limit int
}

func (e *PolicyError) Error() string { return e.Msg }

// UnavailableError: no resource to serve the action right now; the caller
// may retry later or fall back to reserving.
type UnavailableError struct {
	Code string
	Msg  string
}

func (e *UnavailableError) Error() string { return e.Msg }
