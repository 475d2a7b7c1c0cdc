package domain

import "time"

// InfluencerProfile carries only what settlement needs: the owning user (to
// find the payout wallet) and the completed-campaign counter incremented on
// release.
type InfluencerProfile struct {
	InfluencerID       string
	UserID             string
	DisplayName        string
	CompletedCampaigns int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Package is an influencer's published offering for direct purchase.
type Package struct {
	PackageID         string
	InfluencerID      string
	Name              string
	PriceCents        int64
	TimelineDays      int
	RevisionsIncluded int
	Active            bool
	TimesPurchased    int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
