package domain

import "errors"

var (
	// ErrInvalidAmount rejects non-positive escrow amounts.
	ErrInvalidAmount = errors.New("invalid_amount")
	// ErrInvalidCurrency rejects empty/garbage currency codes.
	ErrInvalidCurrency = errors.New("invalid_currency")
	// ErrInvalidRefundReason rejects empty refund reasons.
	ErrInvalidRefundReason = errors.New("invalid_refund_reason")
	// ErrInvalidPaymentReference rejects funding calls without a payment
	// method or transaction reference.
	ErrInvalidPaymentReference = errors.New("invalid_payment_reference")
	// ErrInvalidID rejects unparseable escrow identifiers.
	ErrInvalidID = errors.New("invalid_id")
	// ErrNotFound means the escrow account does not exist.
	ErrNotFound = errors.New("escrow_not_found")
	// ErrInvalidStateTransition means the precondition state did not hold,
	// including the case where a concurrent caller won the race.
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	// ErrOrderAlreadyEscrowed enforces the 1:1 order relationship.
	ErrOrderAlreadyEscrowed = errors.New("order_already_escrowed")
	// ErrDependencyUnavailable surfaces an unreachable ledger store. Never
	// swallowed; the caller decides whether to retry.
	ErrDependencyUnavailable = errors.New("dependency_unavailable")
)
