package domain

import (
	"fmt"
	"time"
)

// CampaignMode discriminates the two creation paths instead of null-checking
// influencer/package ids throughout the state machine. A direct campaign is
// born assigned with its escrow locked; an open campaign collects bids and
// becomes assigned when one is accepted.
type CampaignMode string

const (
	CampaignModeDirect CampaignMode = "direct"
	CampaignModeOpen   CampaignMode = "open"
)

func ParseCampaignMode(s string) (CampaignMode, error) {
	switch CampaignMode(s) {
	case CampaignModeDirect, CampaignModeOpen:
		return CampaignMode(s), nil
	}
	return "", fmt.Errorf("%w: campaign mode %q", ErrInvalidInput, s)
}

type CampaignStatus string

const (
	// Open-mode pre-states, orthogonal to the assigned lifecycle.
	CampaignStatusOpen   CampaignStatus = "open"
	CampaignStatusClosed CampaignStatus = "closed"

	CampaignStatusPending           CampaignStatus = "pending"
	CampaignStatusAccepted          CampaignStatus = "accepted"
	CampaignStatusInProgress        CampaignStatus = "in_progress"
	CampaignStatusDraftSubmitted    CampaignStatus = "draft_submitted"
	CampaignStatusRevisionRequested CampaignStatus = "revision_requested"
	CampaignStatusDraftApproved     CampaignStatus = "draft_approved"
	CampaignStatusPublished         CampaignStatus = "published"
	CampaignStatusPendingReview     CampaignStatus = "pending_review"
	CampaignStatusCompleted         CampaignStatus = "completed"
	CampaignStatusDisputed          CampaignStatus = "disputed"
	CampaignStatusCancelled         CampaignStatus = "cancelled"
)

func ParseCampaignStatus(s string) (CampaignStatus, error) {
	switch CampaignStatus(s) {
	case CampaignStatusOpen, CampaignStatusClosed, CampaignStatusPending,
		CampaignStatusAccepted, CampaignStatusInProgress, CampaignStatusDraftSubmitted,
		CampaignStatusRevisionRequested, CampaignStatusDraftApproved,
		CampaignStatusPublished, CampaignStatusPendingReview, CampaignStatusCompleted,
		CampaignStatusDisputed, CampaignStatusCancelled:
		return CampaignStatus(s), nil
	}
	return "", fmt.Errorf("%w: campaign status %q", ErrInvalidInput, s)
}

// Campaign is the engagement between a brand and an influencer.
type Campaign struct {
	CampaignID   string
	Mode         CampaignMode
	BrandUserID  string
	InfluencerID string // assigned at creation (direct) or bid acceptance (open)
	PackageID    string
	EscrowID     string
	Title        string
	Description  string

	// Open-mode budget tracking.
	Budget      int64
	BudgetSpent int64

	Status           CampaignStatus
	Deadline         *time.Time
	StartedAt        *time.Time
	DraftSubmittedAt *time.Time
	PublishedAt      *time.Time
	CompletedAt      *time.Time

	RevisionsUsed    int
	RevisionsAllowed int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDirectCampaign builds a package-purchase campaign. The escrow id is
// backfilled by the store inside the same transaction once the hold exists.
func NewDirectCampaign(id, brandUserID, influencerID, packageID string, revisionsAllowed int, deadline time.Time, now time.Time) Campaign {
	return Campaign{
		CampaignID:       id,
		Mode:             CampaignModeDirect,
		BrandUserID:      brandUserID,
		InfluencerID:     influencerID,
		PackageID:        packageID,
		Status:           CampaignStatusPending,
		Deadline:         &deadline,
		RevisionsAllowed: revisionsAllowed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// NewOpenCampaign builds a budget-and-brief campaign that influencers bid on.
func NewOpenCampaign(id, brandUserID, title, description string, budget int64, now time.Time) Campaign {
	return Campaign{
		CampaignID:  id,
		Mode:        CampaignModeOpen,
		BrandUserID: brandUserID,
		Title:       title,
		Description: description,
		Budget:      budget,
		Status:      CampaignStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Assigned reports whether an influencer is attached yet.
func (c Campaign) Assigned() bool {
	return c.InfluencerID != ""
}

// Terminal reports whether the campaign lifecycle is finished.
func (c Campaign) Terminal() bool {
	return c.Status == CampaignStatusCompleted || c.Status == CampaignStatusCancelled
}

// RemainingBudget is the uncommitted slice of an open campaign's budget.
func (c Campaign) RemainingBudget() int64 {
	return c.Budget - c.BudgetSpent
}

// AssignBid converts an open campaign into an assigned one. Budget is
// committed here; the caller locks escrow in the same transaction.
func (c *Campaign) AssignBid(bid Bid, at time.Time) error {
	if c.Mode != CampaignModeOpen {
		return fmt.Errorf("%w: campaign %s is not open-mode", ErrInvalidState, c.CampaignID)
	}
	if c.Status != CampaignStatusOpen {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	if bid.Amount > c.RemainingBudget() {
		return fmt.Errorf("%w: bid %d, remaining %d", ErrBudgetExceeded, bid.Amount, c.RemainingBudget())
	}
	c.InfluencerID = bid.InfluencerID
	c.PackageID = bid.PackageID
	c.BudgetSpent += bid.Amount
	c.Status = CampaignStatusAccepted
	c.UpdatedAt = at
	return nil
}

// Close stops an open campaign from accepting further bids.
func (c *Campaign) Close(at time.Time) error {
	if c.Mode != CampaignModeOpen || c.Status != CampaignStatusOpen {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusClosed
	c.UpdatedAt = at
	return nil
}

// Accept is the influencer taking on a direct campaign.
func (c *Campaign) Accept(at time.Time) error {
	if c.Status != CampaignStatusPending {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusAccepted
	started := at
	c.StartedAt = &started
	c.UpdatedAt = at
	return nil
}

// Reject cancels a pending direct campaign; the caller refunds the hold.
func (c *Campaign) Reject(at time.Time) error {
	if c.Status != CampaignStatusPending {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusCancelled
	done := at
	c.CompletedAt = &done
	c.UpdatedAt = at
	return nil
}

// SubmitDraft moves the campaign into review.
func (c *Campaign) SubmitDraft(at time.Time) error {
	switch c.Status {
	case CampaignStatusAccepted, CampaignStatusInProgress, CampaignStatusRevisionRequested:
	default:
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusDraftSubmitted
	submitted := at
	c.DraftSubmittedAt = &submitted
	c.UpdatedAt = at
	return nil
}

// RequestRevision consumes one revision. Counting is per-campaign, not
// per-deliverable; exhausting revisions blocks only this transition, never a
// resubmission.
func (c *Campaign) RequestRevision(at time.Time) error {
	if c.Status != CampaignStatusDraftSubmitted {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	if c.RevisionsUsed >= c.RevisionsAllowed {
		return fmt.Errorf("%w: %d of %d used", ErrRevisionLimitReached, c.RevisionsUsed, c.RevisionsAllowed)
	}
	c.RevisionsUsed++
	c.Status = CampaignStatusRevisionRequested
	c.UpdatedAt = at
	return nil
}

// ApproveDraft is the brand signing off the submitted draft.
func (c *Campaign) ApproveDraft(at time.Time) error {
	if c.Status != CampaignStatusDraftSubmitted {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusDraftApproved
	c.UpdatedAt = at
	return nil
}

// MarkPublished records that approved content went live.
func (c *Campaign) MarkPublished(at time.Time) error {
	if c.Status != CampaignStatusDraftApproved {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusPublished
	published := at
	c.PublishedAt = &published
	c.UpdatedAt = at
	return nil
}

// Complete finishes the campaign; the caller releases escrow in the same
// transaction. Brand-initiated only, there is no self-completion on publish.
func (c *Campaign) Complete(at time.Time) error {
	if c.Status != CampaignStatusPublished && c.Status != CampaignStatusPendingReview {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusCompleted
	done := at
	c.CompletedAt = &done
	c.UpdatedAt = at
	return nil
}

// CompleteViaProof finishes an open-mode campaign when its proof of work is
// approved. Open campaigns skip the draft/publish funnel, so any assigned
// non-terminal state may complete here.
func (c *Campaign) CompleteViaProof(at time.Time) error {
	if c.Mode != CampaignModeOpen {
		return fmt.Errorf("%w: campaign %s is not open-mode", ErrInvalidState, c.CampaignID)
	}
	if !c.Assigned() || c.Terminal() || c.Status == CampaignStatusDisputed {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusCompleted
	done := at
	c.CompletedAt = &done
	c.UpdatedAt = at
	return nil
}

// MarkDisputed freezes the lifecycle from any non-terminal state.
func (c *Campaign) MarkDisputed(at time.Time) error {
	if c.Terminal() || c.Status == CampaignStatusDisputed {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	c.Status = CampaignStatusDisputed
	c.UpdatedAt = at
	return nil
}

// SettleDispute applies the admin resolution outcome: a full refund cancels
// the campaign, any non-zero release completes it.
func (c *Campaign) SettleDispute(refundPercent int, at time.Time) error {
	if c.Status != CampaignStatusDisputed {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	if refundPercent == 100 {
		c.Status = CampaignStatusCancelled
	} else {
		c.Status = CampaignStatusCompleted
	}
	done := at
	c.CompletedAt = &done
	c.UpdatedAt = at
	return nil
}

// RevertFromDispute restores the pre-dispute status when a dispute is closed
// without resolution: published if it had been published, else in_progress if
// work had started, else pending.
func (c *Campaign) RevertFromDispute(at time.Time) error {
	if c.Status != CampaignStatusDisputed {
		return fmt.Errorf("%w: campaign %s is %s", ErrInvalidState, c.CampaignID, c.Status)
	}
	switch {
	case c.PublishedAt != nil:
		c.Status = CampaignStatusPublished
	case c.StartedAt != nil:
		c.Status = CampaignStatusInProgress
	default:
		c.Status = CampaignStatusPending
	}
	c.UpdatedAt = at
	return nil
}
