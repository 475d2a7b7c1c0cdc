package domain

import (
	"fmt"
	"time"
)

type TransactionType string

const (
	TransactionTypeDeposit       TransactionType = "deposit"
	TransactionTypeWithdrawal    TransactionType = "withdrawal"
	TransactionTypeEscrowLock    TransactionType = "escrow_lock"
	TransactionTypeEscrowRelease TransactionType = "escrow_release"
	TransactionTypeEscrowRefund  TransactionType = "escrow_refund"
	TransactionTypePlatformFee   TransactionType = "platform_fee"
	TransactionTypeTransfer      TransactionType = "transfer"
)

// ParseTransactionType is the single decode point for persisted type codes.
// Codes are lowercase snake_case; anything else is a data error, not a
// value to be case-normalized inline.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeEscrowLock,
		TransactionTypeEscrowRelease, TransactionTypeEscrowRefund,
		TransactionTypePlatformFee, TransactionTypeTransfer:
		return TransactionType(s), nil
	}
	return "", fmt.Errorf("%w: transaction type %q", ErrInvalidInput, s)
}

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(s) {
	case TransactionStatusPending, TransactionStatusProcessing, TransactionStatusCompleted,
		TransactionStatusFailed, TransactionStatusCancelled:
		return TransactionStatus(s), nil
	}
	return "", fmt.Errorf("%w: transaction status %q", ErrInvalidInput, s)
}

// LedgerTransaction is the immutable record of one money movement. Once
// status reaches completed the row is never edited again; corrections are
// new transactions.
type LedgerTransaction struct {
	TransactionID string
	FromWalletID  string // empty for external deposits
	ToWalletID    string // empty for withdrawals and fee retention
	Amount        int64
	Fee           int64
	NetAmount     int64 // amount - fee
	Type          TransactionType
	Status        TransactionStatus
	PaymentMethod string
	ExternalRef   string // payment-gateway reference
	Description   string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// Complete transitions a pending or processing transaction to completed.
func (t *LedgerTransaction) Complete(at time.Time) error {
	if t.Status != TransactionStatusPending && t.Status != TransactionStatusProcessing {
		return fmt.Errorf("%w: transaction %s is %s", ErrInvalidState, t.TransactionID, t.Status)
	}
	t.Status = TransactionStatusCompleted
	done := at
	t.CompletedAt = &done
	return nil
}

// Cancel voids a transaction that never completed.
func (t *LedgerTransaction) Cancel() error {
	if t.Status != TransactionStatusPending && t.Status != TransactionStatusProcessing {
		return fmt.Errorf("%w: transaction %s is %s", ErrInvalidState, t.TransactionID, t.Status)
	}
	t.Status = TransactionStatusCancelled
	return nil
}

// PlatformFee computes the platform cut for a released amount. Integer
// truncation toward zero is the committed contract: the engine never
// over-collects by a rounding artifact, the payee keeps the fraction.
func PlatformFee(amount int64, feePercent int) int64 {
	if amount <= 0 || feePercent <= 0 {
		return 0
	}
	return amount * int64(feePercent) / 100
}

// SplitDisputed divides a disputed hold between refund and release per the
// admin's refund percentage. refund = floor(amount * pct / 100), release is
// the exact remainder, so the two always reconcile to the original amount.
func SplitDisputed(amount int64, refundPercent int) (refund, release int64) {
	refund = amount * int64(refundPercent) / 100
	return refund, amount - refund
}
