package domain

import (
	"fmt"
	"time"
)

type EscrowStatus string

const (
	EscrowStatusLocked   EscrowStatus = "locked"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusRefunded EscrowStatus = "refunded"
	EscrowStatusDisputed EscrowStatus = "disputed"
)

func ParseEscrowStatus(s string) (EscrowStatus, error) {
	switch EscrowStatus(s) {
	case EscrowStatusLocked, EscrowStatusReleased, EscrowStatusRefunded, EscrowStatusDisputed:
		return EscrowStatus(s), nil
	}
	return "", fmt.Errorf("%w: escrow status %q", ErrInvalidInput, s)
}

// EscrowHold is one locked amount tied to exactly one originating ledger
// transaction. It transitions locked -> {released | refunded | disputed} and
// disputed -> {released | refunded}, never reopening after close. Exactly one
// release transaction once closed.
type EscrowHold struct {
	EscrowID      string
	TransactionID string
	CampaignID    string // backfilled after the campaign row exists
	PayerUserID   string
	Amount        int64
	Status        EscrowStatus
	LockedAt      time.Time
	AutoReleaseAt time.Time
	ReleasedAt    *time.Time
	ReleaseTxID   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Closed reports whether the hold has reached a terminal status.
func (h EscrowHold) Closed() bool {
	return h.Status == EscrowStatusReleased || h.Status == EscrowStatusRefunded
}

// IsPastAutoRelease is the policy predicate consulted by the external
// sweeper. The state machine never invokes release on its own clock.
func (h EscrowHold) IsPastAutoRelease(now time.Time) bool {
	return h.Status == EscrowStatusLocked && !h.AutoReleaseAt.IsZero() && now.After(h.AutoReleaseAt)
}

// MarkReleased closes the hold in favor of the payee.
func (h *EscrowHold) MarkReleased(releaseTxID string, at time.Time) error {
	return h.close(EscrowStatusReleased, releaseTxID, at)
}

// MarkRefunded closes the hold in favor of the payer.
func (h *EscrowHold) MarkRefunded(releaseTxID string, at time.Time) error {
	return h.close(EscrowStatusRefunded, releaseTxID, at)
}

func (h *EscrowHold) close(to EscrowStatus, releaseTxID string, at time.Time) error {
	if h.Status != EscrowStatusLocked && h.Status != EscrowStatusDisputed {
		return fmt.Errorf("%w: hold %s is %s", ErrInvalidState, h.EscrowID, h.Status)
	}
	if releaseTxID == "" {
		return fmt.Errorf("%w: closing hold requires a release transaction", ErrInvalidInput)
	}
	h.Status = to
	h.ReleaseTxID = releaseTxID
	done := at
	h.ReleasedAt = &done
	h.UpdatedAt = at
	return nil
}

// MarkDisputed freezes the hold until an admin resolves the dispute.
func (h *EscrowHold) MarkDisputed(at time.Time) error {
	if h.Status != EscrowStatusLocked {
		return fmt.Errorf("%w: hold %s is %s", ErrInvalidState, h.EscrowID, h.Status)
	}
	h.Status = EscrowStatusDisputed
	h.UpdatedAt = at
	return nil
}

// Unfreeze reverts a disputed hold back to locked when the dispute is closed
// without resolution.
func (h *EscrowHold) Unfreeze(at time.Time) error {
	if h.Status != EscrowStatusDisputed {
		return fmt.Errorf("%w: hold %s is %s", ErrInvalidState, h.EscrowID, h.Status)
	}
	h.Status = EscrowStatusLocked
	h.UpdatedAt = at
	return nil
}
