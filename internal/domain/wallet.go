package domain

import (
	"fmt"
	"time"
)

// Wallet is the per-user money account. All amounts are integer minor
// currency units (cents); hold_balance is the slice of balance currently
// locked in escrow or a pending withdrawal. Only ledger operations mutate a
// wallet, and always under a row lock.
type Wallet struct {
	WalletID    string
	UserID      string
	Balance     int64
	HoldBalance int64
	TotalEarned int64
	TotalSpent  int64
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available is the only amount the owner may spend or withdraw.
func (w Wallet) Available() int64 {
	return w.Balance - w.HoldBalance
}

// HoldFunds moves amount from spendable headroom into the held portion.
// Balance itself is untouched; the money has not left the wallet yet.
func (w *Wallet) HoldFunds(amount int64, at time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: hold amount must be positive", ErrInvalidInput)
	}
	if w.Available() < amount {
		return fmt.Errorf("%w: need %d, available %d", ErrInsufficientFunds, amount, w.Available())
	}
	w.HoldBalance += amount
	w.UpdatedAt = at
	return nil
}

// ReleaseHeld finalizes an outbound held amount: the funds leave both the
// hold and the balance, and count toward lifetime spending.
func (w *Wallet) ReleaseHeld(amount int64, at time.Time) error {
	if amount <= 0 || amount > w.HoldBalance || amount > w.Balance {
		return fmt.Errorf("%w: cannot release %d of held %d", ErrInvalidState, amount, w.HoldBalance)
	}
	w.HoldBalance -= amount
	w.Balance -= amount
	w.TotalSpent += amount
	w.UpdatedAt = at
	return nil
}

// RefundHeld returns a held amount to spendable headroom. Balance is
// untouched: the lock never removed the money from balance, only from the
// spendable slice.
func (w *Wallet) RefundHeld(amount int64, at time.Time) error {
	if amount <= 0 || amount > w.HoldBalance {
		return fmt.Errorf("%w: cannot refund %d of held %d", ErrInvalidState, amount, w.HoldBalance)
	}
	w.HoldBalance -= amount
	w.UpdatedAt = at
	return nil
}

// CreditEarnings adds released escrow or commission proceeds.
func (w *Wallet) CreditEarnings(amount int64, at time.Time) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative credit", ErrInvalidInput)
	}
	w.Balance += amount
	w.TotalEarned += amount
	w.UpdatedAt = at
	return nil
}

// CreditDeposit adds externally verified funds without counting them as
// earnings.
func (w *Wallet) CreditDeposit(amount int64, at time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit must be positive", ErrInvalidInput)
	}
	w.Balance += amount
	w.UpdatedAt = at
	return nil
}

// DebitWithdrawal finalizes an approved withdrawal that was previously held.
func (w *Wallet) DebitWithdrawal(amount int64, at time.Time) error {
	if amount <= 0 || amount > w.HoldBalance || amount > w.Balance {
		return fmt.Errorf("%w: cannot withdraw %d of held %d", ErrInvalidState, amount, w.HoldBalance)
	}
	w.HoldBalance -= amount
	w.Balance -= amount
	w.UpdatedAt = at
	return nil
}

// CheckInvariants validates 0 <= hold_balance <= balance. The store calls it
// before persisting any mutated wallet row.
func (w Wallet) CheckInvariants() error {
	if w.HoldBalance < 0 || w.Balance < 0 || w.HoldBalance > w.Balance {
		return fmt.Errorf("%w: wallet %s balance=%d hold=%d", ErrInvalidState, w.WalletID, w.Balance, w.HoldBalance)
	}
	return nil
}
