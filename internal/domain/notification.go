package domain

import "time"

const (
	NotificationCampaignRequest   = "campaign_request"
	NotificationCampaignAccepted  = "campaign_accepted"
	NotificationCampaignRejected  = "campaign_rejected"
	NotificationCampaignCompleted = "campaign_completed"
	NotificationDraftSubmitted    = "draft_submitted"
	NotificationRevisionRequested = "revision_requested"
	NotificationDraftApproved     = "draft_approved"
	NotificationContentPublished  = "content_published"
	NotificationEscrowLocked      = "escrow_locked"
	NotificationPaymentReceived   = "payment_received"
	NotificationEscrowRefunded    = "escrow_refunded"
	NotificationBidReceived       = "bid_received"
	NotificationBidAccepted       = "bid_accepted"
	NotificationBidRejected       = "bid_rejected"
	NotificationProofSubmitted    = "proof_submitted"
	NotificationProofReviewed     = "proof_reviewed"
	NotificationDisputeRaised     = "dispute_raised"
	NotificationDisputeResolved   = "dispute_resolved"
	NotificationWithdrawalUpdate  = "withdrawal_update"
	NotificationCommissionPaid    = "commission_paid"
)

// Notification is the outbound message handed to the sink on every state
// transition. Delivery mechanics are not this engine's concern; a sink
// failure must never roll back the financial transition it describes.
type Notification struct {
	NotificationID string
	UserID         string
	Type           string
	Title          string
	Message        string
	Data           map[string]any
	CreatedAt      time.Time
}
