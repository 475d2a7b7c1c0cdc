package postgres

import (
	"time"
)

type walletModel struct {
	WalletID    string    `gorm:"column:wallet_id;type:uuid;primaryKey"`
	UserID      string    `gorm:"column:user_id;type:uuid;uniqueIndex"`
	Balance     int64     `gorm:"column:balance"`
	HoldBalance int64     `gorm:"column:hold_balance"`
	TotalEarned int64     `gorm:"column:total_earned"`
	TotalSpent  int64     `gorm:"column:total_spent"`
	Currency    string    `gorm:"column:currency"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (walletModel) TableName() string { return "wallets" }

type ledgerTransactionModel struct {
	TransactionID string     `gorm:"column:transaction_id;type:uuid;primaryKey"`
	FromWalletID  *string    `gorm:"column:from_wallet_id;type:uuid"`
	ToWalletID    *string    `gorm:"column:to_wallet_id;type:uuid"`
	Amount        int64      `gorm:"column:amount"`
	Fee           int64      `gorm:"column:fee"`
	NetAmount     int64      `gorm:"column:net_amount"`
	Type          string     `gorm:"column:type"`
	Status        string     `gorm:"column:status"`
	PaymentMethod string     `gorm:"column:payment_method"`
	ExternalRef   string     `gorm:"column:external_reference"`
	Description   string     `gorm:"column:description"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
}

func (ledgerTransactionModel) TableName() string { return "ledger_transactions" }

type escrowHoldModel struct {
	EscrowID      string     `gorm:"column:escrow_id;type:uuid;primaryKey"`
	TransactionID string     `gorm:"column:transaction_id;type:uuid"`
	CampaignID    *string    `gorm:"column:campaign_id;type:uuid"`
	PayerUserID   string     `gorm:"column:payer_user_id;type:uuid"`
	Amount        int64      `gorm:"column:amount"`
	Status        string     `gorm:"column:status"`
	LockedAt      time.Time  `gorm:"column:locked_at"`
	AutoReleaseAt time.Time  `gorm:"column:auto_release_at"`
	ReleasedAt    *time.Time `gorm:"column:released_at"`
	ReleaseTxID   *string    `gorm:"column:release_transaction_id;type:uuid"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (escrowHoldModel) TableName() string { return "escrow_holds" }

type campaignModel struct {
	CampaignID       string     `gorm:"column:campaign_id;type:uuid;primaryKey"`
	Mode             string     `gorm:"column:mode"`
	BrandUserID      string     `gorm:"column:brand_user_id;type:uuid"`
	InfluencerID     *string    `gorm:"column:influencer_id;type:uuid"`
	PackageID        *string    `gorm:"column:package_id;type:uuid"`
	EscrowID         *string    `gorm:"column:escrow_id;type:uuid"`
	Title            string     `gorm:"column:title"`
	Description      string     `gorm:"column:description"`
	Budget           int64      `gorm:"column:budget"`
	BudgetSpent      int64      `gorm:"column:budget_spent"`
	Status           string     `gorm:"column:status"`
	Deadline         *time.Time `gorm:"column:deadline"`
	StartedAt        *time.Time `gorm:"column:started_at"`
	DraftSubmittedAt *time.Time `gorm:"column:draft_submitted_at"`
	PublishedAt      *time.Time `gorm:"column:published_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at"`
	RevisionsUsed    int        `gorm:"column:revisions_used"`
	RevisionsAllowed int        `gorm:"column:revisions_allowed"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (campaignModel) TableName() string { return "campaigns" }

type bidModel struct {
	BidID        string     `gorm:"column:bid_id;type:uuid;primaryKey"`
	CampaignID   string     `gorm:"column:campaign_id;type:uuid;index"`
	InfluencerID string     `gorm:"column:influencer_id;type:uuid"`
	PackageID    *string    `gorm:"column:package_id;type:uuid"`
	Amount       int64      `gorm:"column:amount"`
	Currency     string     `gorm:"column:currency"`
	Proposal     string     `gorm:"column:proposal"`
	Platform     string     `gorm:"column:platform"`
	ContentType  string     `gorm:"column:content_type"`
	TimelineDays int        `gorm:"column:timeline_days"`
	Status       string     `gorm:"column:status"`
	EscrowID     *string    `gorm:"column:escrow_id;type:uuid"`
	AcceptedAt   *time.Time `gorm:"column:accepted_at"`
	RejectedAt   *time.Time `gorm:"column:rejected_at"`
	WithdrawnAt  *time.Time `gorm:"column:withdrawn_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (bidModel) TableName() string { return "bids" }

type deliverableModel struct {
	DeliverableID string     `gorm:"column:deliverable_id;type:uuid;primaryKey"`
	CampaignID    string     `gorm:"column:campaign_id;type:uuid;index"`
	ContentType   string     `gorm:"column:content_type"`
	Platform      string     `gorm:"column:platform"`
	DraftText     string     `gorm:"column:draft_text"`
	DraftMediaURL string     `gorm:"column:draft_media_url"`
	PublishedURL  string     `gorm:"column:published_url"`
	Status        string     `gorm:"column:status"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at"`
	ApprovedAt    *time.Time `gorm:"column:approved_at"`
	PublishedAt   *time.Time `gorm:"column:published_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (deliverableModel) TableName() string { return "deliverables" }

type proofOfWorkModel struct {
	ProofID      string     `gorm:"column:proof_id;type:uuid;primaryKey"`
	BidID        string     `gorm:"column:bid_id;type:uuid;index"`
	CampaignID   string     `gorm:"column:campaign_id;type:uuid"`
	InfluencerID string     `gorm:"column:influencer_id;type:uuid"`
	Title        string     `gorm:"column:title"`
	Description  string     `gorm:"column:description"`
	ContentLinks string     `gorm:"column:content_links;type:jsonb"`
	Screenshots  string     `gorm:"column:screenshots;type:jsonb"`
	ViewsCount   int64      `gorm:"column:views_count"`
	LikesCount   int64      `gorm:"column:likes_count"`
	Comments     int64      `gorm:"column:comments_count"`
	Shares       int64      `gorm:"column:shares_count"`
	Status       string     `gorm:"column:status"`
	BrandNotes   string     `gorm:"column:brand_notes"`
	Rejection    string     `gorm:"column:rejection_reason"`
	SubmittedAt  time.Time  `gorm:"column:submitted_at"`
	ReviewedAt   *time.Time `gorm:"column:reviewed_at"`
	ApprovedAt   *time.Time `gorm:"column:approved_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (proofOfWorkModel) TableName() string { return "proofs_of_work" }

type disputeModel struct {
	DisputeID         string     `gorm:"column:dispute_id;type:uuid;primaryKey"`
	CampaignID        string     `gorm:"column:campaign_id;type:uuid;index"`
	RaisedByUserID    string     `gorm:"column:raised_by_user_id;type:uuid"`
	Reason            string     `gorm:"column:reason"`
	EvidenceURLs      string     `gorm:"column:evidence_urls;type:jsonb"`
	Status            string     `gorm:"column:status"`
	Resolution        string     `gorm:"column:resolution"`
	ResolvedInFavorOf *string    `gorm:"column:resolved_in_favor_of;type:uuid"`
	ResolvedByUserID  *string    `gorm:"column:resolved_by_user_id;type:uuid"`
	RefundPercent     int        `gorm:"column:refund_percentage"`
	ResolvedAt        *time.Time `gorm:"column:resolved_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (disputeModel) TableName() string { return "disputes" }

type influencerProfileModel struct {
	InfluencerID       string    `gorm:"column:influencer_id;type:uuid;primaryKey"`
	UserID             string    `gorm:"column:user_id;type:uuid;uniqueIndex"`
	DisplayName        string    `gorm:"column:display_name"`
	CompletedCampaigns int       `gorm:"column:completed_campaigns"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (influencerProfileModel) TableName() string { return "influencer_profiles" }

type packageModel struct {
	PackageID         string    `gorm:"column:package_id;type:uuid;primaryKey"`
	InfluencerID      string    `gorm:"column:influencer_id;type:uuid;index"`
	Name              string    `gorm:"column:name"`
	PriceCents        int64     `gorm:"column:price_cents"`
	TimelineDays      int       `gorm:"column:timeline_days"`
	RevisionsIncluded int       `gorm:"column:revisions_included"`
	Active            bool      `gorm:"column:active"`
	TimesPurchased    int       `gorm:"column:times_purchased"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (packageModel) TableName() string { return "packages" }

type productModel struct {
	ProductID          string    `gorm:"column:product_id;type:uuid;primaryKey"`
	BrandUserID        string    `gorm:"column:brand_user_id;type:uuid"`
	Name               string    `gorm:"column:name"`
	PriceCents         int64     `gorm:"column:price_cents"`
	IsDigital          bool      `gorm:"column:is_digital"`
	Active             bool      `gorm:"column:active"`
	CommissionType     string    `gorm:"column:commission_type"`
	CommissionRateBps  int       `gorm:"column:commission_rate_bps"`
	FixedCommission    int64     `gorm:"column:fixed_commission"`
	PlatformFeeType    string    `gorm:"column:platform_fee_type"`
	PlatformFeeRateBps int       `gorm:"column:platform_fee_rate_bps"`
	FixedPlatformFee   int64     `gorm:"column:fixed_platform_fee"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (productModel) TableName() string { return "products" }

type orderModel struct {
	OrderID      string     `gorm:"column:order_id;type:uuid;primaryKey"`
	OrderNumber  string     `gorm:"column:order_number;uniqueIndex"`
	ProductID    string     `gorm:"column:product_id;type:uuid"`
	BrandUserID  string     `gorm:"column:brand_user_id;type:uuid"`
	InfluencerID *string    `gorm:"column:influencer_id;type:uuid"`
	BuyerName    string     `gorm:"column:buyer_name"`
	BuyerContact string     `gorm:"column:buyer_contact"`
	Quantity     int        `gorm:"column:quantity"`
	TotalCents   int64      `gorm:"column:total_cents"`
	Status       string     `gorm:"column:status"`
	FulfilledAt  *time.Time `gorm:"column:fulfilled_at"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type affiliateCommissionModel struct {
	CommissionID    string     `gorm:"column:commission_id;type:uuid;primaryKey"`
	OrderID         string     `gorm:"column:order_id;type:uuid;uniqueIndex"`
	InfluencerID    string     `gorm:"column:influencer_id;type:uuid"`
	ProductID       string     `gorm:"column:product_id;type:uuid"`
	GrossCommission int64      `gorm:"column:gross_commission"`
	PlatformFee     int64      `gorm:"column:platform_fee"`
	NetCommission   int64      `gorm:"column:net_commission"`
	Status          string     `gorm:"column:status"`
	LedgerTxID      *string    `gorm:"column:ledger_transaction_id;type:uuid"`
	PaidAt          *time.Time `gorm:"column:paid_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (affiliateCommissionModel) TableName() string { return "affiliate_commissions" }

type notificationModel struct {
	NotificationID string    `gorm:"column:notification_id;type:uuid;primaryKey"`
	UserID         string    `gorm:"column:user_id;type:uuid;index"`
	Type           string    `gorm:"column:type"`
	Title          string    `gorm:"column:title"`
	Message        string    `gorm:"column:message"`
	Data           string    `gorm:"column:data;type:jsonb"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (notificationModel) TableName() string { return "notifications" }
