package domain

import (
	"fmt"
	"time"
)

type DeliverableStatus string

const (
	DeliverableStatusPending   DeliverableStatus = "pending"
	DeliverableStatusDraft     DeliverableStatus = "draft"
	DeliverableStatusSubmitted DeliverableStatus = "submitted"
	DeliverableStatusApproved  DeliverableStatus = "approved"
	DeliverableStatusRejected  DeliverableStatus = "rejected"
	DeliverableStatusPublished DeliverableStatus = "published"
	DeliverableStatusVerified  DeliverableStatus = "verified"
)

func ParseDeliverableStatus(s string) (DeliverableStatus, error) {
	switch DeliverableStatus(s) {
	case DeliverableStatusPending, DeliverableStatusDraft, DeliverableStatusSubmitted,
		DeliverableStatusApproved, DeliverableStatusRejected,
		DeliverableStatusPublished, DeliverableStatusVerified:
		return DeliverableStatus(s), nil
	}
	return "", fmt.Errorf("%w: deliverable status %q", ErrInvalidInput, s)
}

// Deliverable is one piece of content submitted against a campaign.
type Deliverable struct {
	DeliverableID string
	CampaignID    string
	ContentType   string
	Platform      string
	DraftText     string
	DraftMediaURL string
	PublishedURL  string
	Status        DeliverableStatus
	SubmittedAt   *time.Time
	ApprovedAt    *time.Time
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewDeliverable(id, campaignID, contentType, platform, draftText, mediaURL string, now time.Time) Deliverable {
	submitted := now
	return Deliverable{
		DeliverableID: id,
		CampaignID:    campaignID,
		ContentType:   contentType,
		Platform:      platform,
		DraftText:     draftText,
		DraftMediaURL: mediaURL,
		Status:        DeliverableStatusSubmitted,
		SubmittedAt:   &submitted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (d *Deliverable) Approve(at time.Time) error {
	if d.Status != DeliverableStatusSubmitted {
		return fmt.Errorf("%w: deliverable %s is %s", ErrInvalidState, d.DeliverableID, d.Status)
	}
	d.Status = DeliverableStatusApproved
	approved := at
	d.ApprovedAt = &approved
	d.UpdatedAt = at
	return nil
}

func (d *Deliverable) Publish(url string, at time.Time) error {
	if d.Status != DeliverableStatusApproved {
		return fmt.Errorf("%w: deliverable %s is %s", ErrInvalidState, d.DeliverableID, d.Status)
	}
	d.Status = DeliverableStatusPublished
	d.PublishedURL = url
	published := at
	d.PublishedAt = &published
	d.UpdatedAt = at
	return nil
}
