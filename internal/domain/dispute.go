package domain

import (
	"fmt"
	"time"
)

type DisputeStatus string

const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusUnderReview DisputeStatus = "under_review"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusClosed      DisputeStatus = "closed"
)

func ParseDisputeStatus(s string) (DisputeStatus, error) {
	switch DisputeStatus(s) {
	case DisputeStatusOpen, DisputeStatusUnderReview, DisputeStatusResolved, DisputeStatusClosed:
		return DisputeStatus(s), nil
	}
	return "", fmt.Errorf("%w: dispute status %q", ErrInvalidInput, s)
}

// Dispute is raised by either party against a campaign. Resolution splits
// the frozen hold by refund percentage; closing without resolution reverts
// the campaign and hold to their pre-dispute states.
type Dispute struct {
	DisputeID         string
	CampaignID        string
	RaisedByUserID    string
	Reason            string
	EvidenceURLs      []string
	Status            DisputeStatus
	Resolution        string
	ResolvedInFavorOf string
	ResolvedByUserID  string
	RefundPercent     int
	ResolvedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewDispute(id, campaignID, raisedByUserID, reason string, evidence []string, now time.Time) (Dispute, error) {
	if reason == "" {
		return Dispute{}, fmt.Errorf("%w: dispute requires a reason", ErrInvalidInput)
	}
	return Dispute{
		DisputeID:      id,
		CampaignID:     campaignID,
		RaisedByUserID: raisedByUserID,
		Reason:         reason,
		EvidenceURLs:   evidence,
		Status:         DisputeStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Settled reports whether the dispute has already been decided.
func (d Dispute) Settled() bool {
	return d.Status == DisputeStatusResolved || d.Status == DisputeStatusClosed
}

// StartReview moves an open dispute under admin review.
func (d *Dispute) StartReview(at time.Time) error {
	if d.Status != DisputeStatusOpen {
		return fmt.Errorf("%w: dispute %s is %s", ErrInvalidState, d.DisputeID, d.Status)
	}
	d.Status = DisputeStatusUnderReview
	d.UpdatedAt = at
	return nil
}

// Resolve records the admin decision. The percentage is validated here; the
// ledger split itself happens in the same transaction at the service layer.
func (d *Dispute) Resolve(resolution, inFavorOfUserID, adminUserID string, refundPercent int, at time.Time) error {
	if d.Settled() {
		return fmt.Errorf("%w: dispute %s is %s", ErrInvalidState, d.DisputeID, d.Status)
	}
	if refundPercent < 0 || refundPercent > 100 {
		return fmt.Errorf("%w: refund percentage %d", ErrInvalidInput, refundPercent)
	}
	d.Status = DisputeStatusResolved
	d.Resolution = resolution
	d.ResolvedInFavorOf = inFavorOfUserID
	d.ResolvedByUserID = adminUserID
	d.RefundPercent = refundPercent
	resolved := at
	d.ResolvedAt = &resolved
	d.UpdatedAt = at
	return nil
}

// Close ends an invalid or withdrawn dispute with no financial movement.
func (d *Dispute) Close(reason, adminUserID string, at time.Time) error {
	if d.Settled() {
		return fmt.Errorf("%w: dispute %s is %s", ErrInvalidState, d.DisputeID, d.Status)
	}
	d.Status = DisputeStatusClosed
	d.Resolution = "closed: " + reason
	d.ResolvedByUserID = adminUserID
	resolved := at
	d.ResolvedAt = &resolved
	d.UpdatedAt = at
	return nil
}
