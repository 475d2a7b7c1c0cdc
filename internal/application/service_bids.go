package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/observability"
	"github.com/dexterhq/settlement/internal/ports"
)

type CreateOpenCampaignRequest struct {
	BrandUserID string
	Title       string
	Description string
	Budget      int64
}

// CreateOpenCampaign posts a budget-and-brief campaign for bidding. No money
// moves until a bid is accepted.
func (s *Service) CreateOpenCampaign(ctx context.Context, req CreateOpenCampaignRequest) (domain.Campaign, error) {
	if req.BrandUserID == "" || req.Title == "" {
		return domain.Campaign{}, fmt.Errorf("%w: open campaign requires a brand and a title", domain.ErrInvalidInput)
	}
	if req.Budget <= 0 {
		return domain.Campaign{}, fmt.Errorf("%w: budget must be positive", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	campaign := domain.NewOpenCampaign(uuid.NewString(), req.BrandUserID, req.Title, req.Description, req.Budget, now)
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		return tx.CreateCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("create_open_campaign", outcomeLabel(err)).Inc()
		return domain.Campaign{}, err
	}
	observability.OperationsTotal.WithLabelValues("create_open_campaign", "ok").Inc()
	return campaign, nil
}

type PlaceBidRequest struct {
	CampaignID   string
	InfluencerID string
	PackageID    string
	Amount       int64
	Proposal     string
	TimelineDays int
}

// PlaceBid records an influencer's proposal on an open campaign. The budget
// is only advisory at this point; it is enforced at acceptance.
func (s *Service) PlaceBid(ctx context.Context, req PlaceBidRequest) (domain.Bid, error) {
	now := s.nowFn()
	var bid domain.Bid
	var brandUserID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(req.CampaignID)
		if err != nil {
			return err
		}
		if campaign.Mode != domain.CampaignModeOpen || campaign.Status != domain.CampaignStatusOpen {
			return fmt.Errorf("%w: campaign %s is not accepting bids", domain.ErrInvalidState, req.CampaignID)
		}
		bid, err = domain.NewBid(uuid.NewString(), req.CampaignID, req.InfluencerID, req.PackageID, req.Amount, req.Proposal, req.TimelineDays, now)
		if err != nil {
			return err
		}
		bid.Currency = s.cfg.Currency
		brandUserID = campaign.BrandUserID
		return tx.CreateBid(bid)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("place_bid", outcomeLabel(err)).Inc()
		return domain.Bid{}, err
	}
	observability.OperationsTotal.WithLabelValues("place_bid", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		brandUserID, domain.NotificationBidReceived,
		"New bid received",
		"An influencer bid on your campaign.",
		map[string]any{"campaign_id": req.CampaignID, "bid_id": bid.BidID, "amount": req.Amount},
	)})
	return bid, nil
}

// AcceptBid locks escrow for the bid amount and assigns the campaign, then
// rejects every other pending bid in the same transaction. A failed lock
// rolls the cascade back with everything else.
func (s *Service) AcceptBid(ctx context.Context, campaignID, bidID, actorUserID string) (domain.EscrowHold, error) {
	now := s.nowFn()
	var (
		hold         domain.EscrowHold
		acceptedBid  domain.Bid
		rejectedBids []domain.Bid
	)
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(campaignID)
		if err != nil {
			return err
		}
		if campaign.BrandUserID != actorUserID {
			return fmt.Errorf("%w: campaign %s does not belong to user %s", domain.ErrUnauthorized, campaignID, actorUserID)
		}
		bid, err := tx.BidForUpdate(bidID)
		if err != nil {
			return err
		}
		if bid.CampaignID != campaignID {
			return fmt.Errorf("%w: bid %s does not belong to campaign %s", domain.ErrNotFound, bidID, campaignID)
		}
		if bid.Status != domain.BidStatusPending {
			return fmt.Errorf("%w: bid %s is %s", domain.ErrInvalidState, bidID, bid.Status)
		}
		if err := campaign.AssignBid(bid, now); err != nil {
			return err
		}

		autoRelease := addDays(now, bid.TimelineDays+s.cfg.AutoReleaseDays)
		hold, err = s.lockEscrow(tx, campaign.BrandUserID, campaignID, bid.Amount, autoRelease,
			"escrow lock for accepted bid "+bidID, now)
		if err != nil {
			return err
		}
		campaign.EscrowID = hold.EscrowID

		if err := bid.Accept(hold.EscrowID, now); err != nil {
			return err
		}
		if err := tx.SaveBid(bid); err != nil {
			return err
		}

		pending, err := tx.PendingBids(campaignID)
		if err != nil {
			return err
		}
		for _, other := range pending {
			if other.BidID == bidID {
				continue
			}
			if err := other.Reject(now); err != nil {
				return err
			}
			if err := tx.SaveBid(other); err != nil {
				return err
			}
			rejectedBids = append(rejectedBids, other)
		}
		acceptedBid = bid
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("accept_bid", outcomeLabel(err)).Inc()
		return domain.EscrowHold{}, err
	}
	observability.OperationsTotal.WithLabelValues("accept_bid", "ok").Inc()
	notifications := []domain.Notification{notification(
		acceptedBid.InfluencerID, domain.NotificationBidAccepted,
		"Bid accepted",
		"Your bid was accepted. Funds are locked in escrow.",
		map[string]any{"campaign_id": campaignID, "bid_id": bidID, "amount": acceptedBid.Amount},
	)}
	for _, rejected := range rejectedBids {
		notifications = append(notifications, notification(
			rejected.InfluencerID, domain.NotificationBidRejected,
			"Bid not selected",
			"The brand chose another bid for this campaign.",
			map[string]any{"campaign_id": campaignID, "bid_id": rejected.BidID},
		))
	}
	s.dispatch(ctx, notifications)
	return hold, nil
}

// RejectBid declines a single pending bid without touching the campaign.
func (s *Service) RejectBid(ctx context.Context, campaignID, bidID, actorUserID string) error {
	now := s.nowFn()
	var influencerID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(campaignID)
		if err != nil {
			return err
		}
		if campaign.BrandUserID != actorUserID {
			return fmt.Errorf("%w: campaign %s does not belong to user %s", domain.ErrUnauthorized, campaignID, actorUserID)
		}
		bid, err := tx.BidForUpdate(bidID)
		if err != nil {
			return err
		}
		if bid.CampaignID != campaignID {
			return fmt.Errorf("%w: bid %s does not belong to campaign %s", domain.ErrNotFound, bidID, campaignID)
		}
		if err := bid.Reject(now); err != nil {
			return err
		}
		influencerID = bid.InfluencerID
		return tx.SaveBid(bid)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("reject_bid", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("reject_bid", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		influencerID, domain.NotificationBidRejected,
		"Bid rejected",
		"The brand declined your bid.",
		map[string]any{"campaign_id": campaignID, "bid_id": bidID},
	)})
	return nil
}

// WithdrawBid lets an influencer pull a still-pending bid.
func (s *Service) WithdrawBid(ctx context.Context, bidID, actorInfluencerID string) error {
	now := s.nowFn()
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		bid, err := tx.BidForUpdate(bidID)
		if err != nil {
			return err
		}
		if bid.InfluencerID != actorInfluencerID {
			return fmt.Errorf("%w: bid %s does not belong to influencer %s", domain.ErrUnauthorized, bidID, actorInfluencerID)
		}
		if err := bid.Withdraw(now); err != nil {
			return err
		}
		return tx.SaveBid(bid)
	})
	observability.OperationsTotal.WithLabelValues("withdraw_bid", outcomeLabel(err)).Inc()
	return err
}

// CloseCampaign stops an open campaign from accepting further bids and
// rejects whatever is still pending.
func (s *Service) CloseCampaign(ctx context.Context, campaignID, actorUserID string) error {
	now := s.nowFn()
	var rejectedBids []domain.Bid
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(campaignID)
		if err != nil {
			return err
		}
		if campaign.BrandUserID != actorUserID {
			return fmt.Errorf("%w: campaign %s does not belong to user %s", domain.ErrUnauthorized, campaignID, actorUserID)
		}
		if err := campaign.Close(now); err != nil {
			return err
		}
		pending, err := tx.PendingBids(campaignID)
		if err != nil {
			return err
		}
		for _, bid := range pending {
			if err := bid.Reject(now); err != nil {
				return err
			}
			if err := tx.SaveBid(bid); err != nil {
				return err
			}
			rejectedBids = append(rejectedBids, bid)
		}
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("close_campaign", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("close_campaign", "ok").Inc()
	notifications := make([]domain.Notification, 0, len(rejectedBids))
	for _, bid := range rejectedBids {
		notifications = append(notifications, notification(
			bid.InfluencerID, domain.NotificationBidRejected,
			"Campaign closed",
			"The campaign closed before your bid was selected.",
			map[string]any{"campaign_id": campaignID, "bid_id": bid.BidID},
		))
	}
	s.dispatch(ctx, notifications)
	return nil
}
