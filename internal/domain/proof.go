package domain

import (
	"fmt"
	"time"
)

type ProofStatus string

const (
	ProofStatusPending           ProofStatus = "pending"
	ProofStatusApproved          ProofStatus = "approved"
	ProofStatusRejected          ProofStatus = "rejected"
	ProofStatusRevisionRequested ProofStatus = "revision_requested"
)

func ParseProofStatus(s string) (ProofStatus, error) {
	switch ProofStatus(s) {
	case ProofStatusPending, ProofStatusApproved, ProofStatusRejected, ProofStatusRevisionRequested:
		return ProofStatus(s), nil
	}
	return "", fmt.Errorf("%w: proof status %q", ErrInvalidInput, s)
}

// ProofOfWork is the evidence submission for bid-based campaigns. Brand
// approval of a proof is the gate that releases the bid's escrow.
type ProofOfWork struct {
	ProofID      string
	BidID        string
	CampaignID   string
	InfluencerID string
	Title        string
	Description  string
	ContentLinks []string
	Screenshots  []string
	ViewsCount   int64
	LikesCount   int64
	Comments     int64
	Shares       int64
	Status       ProofStatus
	BrandNotes   string
	Rejection    string
	SubmittedAt  time.Time
	ReviewedAt   *time.Time
	ApprovedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewProofOfWork(id, bidID, campaignID, influencerID, title, description string, links []string, now time.Time) (ProofOfWork, error) {
	if title == "" || len(links) == 0 {
		return ProofOfWork{}, fmt.Errorf("%w: proof requires a title and at least one content link", ErrInvalidInput)
	}
	return ProofOfWork{
		ProofID:      id,
		BidID:        bidID,
		CampaignID:   campaignID,
		InfluencerID: influencerID,
		Title:        title,
		Description:  description,
		ContentLinks: links,
		Status:       ProofStatusPending,
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (p *ProofOfWork) Approve(notes string, at time.Time) error {
	if p.Status != ProofStatusPending {
		return fmt.Errorf("%w: proof %s is %s", ErrInvalidState, p.ProofID, p.Status)
	}
	p.Status = ProofStatusApproved
	p.BrandNotes = notes
	reviewed := at
	p.ReviewedAt = &reviewed
	p.ApprovedAt = &reviewed
	p.UpdatedAt = at
	return nil
}

func (p *ProofOfWork) Reject(reason string, at time.Time) error {
	if p.Status != ProofStatusPending {
		return fmt.Errorf("%w: proof %s is %s", ErrInvalidState, p.ProofID, p.Status)
	}
	p.Status = ProofStatusRejected
	p.Rejection = reason
	reviewed := at
	p.ReviewedAt = &reviewed
	p.UpdatedAt = at
	return nil
}

func (p *ProofOfWork) RequestRevision(notes string, at time.Time) error {
	if p.Status != ProofStatusPending {
		return fmt.Errorf("%w: proof %s is %s", ErrInvalidState, p.ProofID, p.Status)
	}
	p.Status = ProofStatusRevisionRequested
	p.BrandNotes = notes
	reviewed := at
	p.ReviewedAt = &reviewed
	p.UpdatedAt = at
	return nil
}
