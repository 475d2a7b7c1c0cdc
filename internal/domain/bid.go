package domain

import (
	"fmt"
	"time"
)

type BidStatus string

const (
	BidStatusPending   BidStatus = "pending"
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusWithdrawn BidStatus = "withdrawn"
)

func ParseBidStatus(s string) (BidStatus, error) {
	switch BidStatus(s) {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected, BidStatusWithdrawn:
		return BidStatus(s), nil
	}
	return "", fmt.Errorf("%w: bid status %q", ErrInvalidInput, s)
}

// Bid is an influencer's proposal on an open campaign. At most one bid per
// campaign is ever accepted; accepting one rejects the rest in the same
// transaction.
type Bid struct {
	BidID        string
	CampaignID   string
	InfluencerID string
	PackageID    string
	Amount       int64
	Currency     string
	Proposal     string
	Platform     string
	ContentType  string
	TimelineDays int
	Status       BidStatus
	EscrowID     string // set when accepted
	AcceptedAt   *time.Time
	RejectedAt   *time.Time
	WithdrawnAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewBid(id, campaignID, influencerID, packageID string, amount int64, proposal string, timelineDays int, now time.Time) (Bid, error) {
	if amount <= 0 {
		return Bid{}, fmt.Errorf("%w: bid amount must be positive", ErrInvalidInput)
	}
	return Bid{
		BidID:        id,
		CampaignID:   campaignID,
		InfluencerID: influencerID,
		PackageID:    packageID,
		Amount:       amount,
		Proposal:     proposal,
		TimelineDays: timelineDays,
		Status:       BidStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Accept binds the bid to its escrow hold.
func (b *Bid) Accept(escrowID string, at time.Time) error {
	if b.Status != BidStatusPending {
		return fmt.Errorf("%w: bid %s is %s", ErrInvalidState, b.BidID, b.Status)
	}
	b.Status = BidStatusAccepted
	b.EscrowID = escrowID
	accepted := at
	b.AcceptedAt = &accepted
	b.UpdatedAt = at
	return nil
}

func (b *Bid) Reject(at time.Time) error {
	if b.Status != BidStatusPending {
		return fmt.Errorf("%w: bid %s is %s", ErrInvalidState, b.BidID, b.Status)
	}
	b.Status = BidStatusRejected
	rejected := at
	b.RejectedAt = &rejected
	b.UpdatedAt = at
	return nil
}

func (b *Bid) Withdraw(at time.Time) error {
	if b.Status != BidStatusPending {
		return fmt.Errorf("%w: bid %s is %s", ErrInvalidState, b.BidID, b.Status)
	}
	b.Status = BidStatusWithdrawn
	withdrawn := at
	b.WithdrawnAt = &withdrawn
	b.UpdatedAt = at
	return nil
}
