package domain

import "errors"

var (
	// ErrNotFound is returned when the referenced wallet, campaign, bid, hold,
	// order or dispute does not exist in the caller's scope. Keeping the
	// sentinel in domain lets every adapter map it consistently.
	ErrNotFound = errors.New("resource not found")
	// ErrInsufficientFunds means a lock or withdrawal exceeded the spendable
	// balance (balance minus hold_balance). Never retried.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidState means the entity is not in the state the operation
	// requires (releasing a non-locked hold, accepting a non-pending bid).
	// A retry of a financial operation must land here, never re-pay.
	ErrInvalidState = errors.New("invalid state")
	// ErrRevisionLimitReached is a business-rule rejection; the campaign has
	// no revision requests left.
	ErrRevisionLimitReached = errors.New("revision limit reached")
	// ErrBudgetExceeded means the bid amount is larger than the campaign's
	// remaining budget.
	ErrBudgetExceeded = errors.New("bid exceeds remaining budget")
	// ErrUnauthorized means the acting user is not a party to the entity;
	// role enforcement proper lives in the calling layer.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)
