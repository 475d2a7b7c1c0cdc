package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/observability"
	"github.com/dexterhq/settlement/internal/ports"
)

type RaiseDisputeRequest struct {
	CampaignID     string
	RaisedByUserID string
	Reason         string
	EvidenceURLs   []string
}

// RaiseDispute freezes the campaign and its hold until an admin resolves
// it. Either party may raise; the caller's role check happened upstream,
// here only membership in the campaign is verified.
func (s *Service) RaiseDispute(ctx context.Context, req RaiseDisputeRequest) (domain.Dispute, error) {
	now := s.nowFn()
	var dispute domain.Dispute
	var counterpartyID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(req.CampaignID)
		if err != nil {
			return err
		}
		influencer, err := tx.InfluencerForUpdate(campaign.InfluencerID)
		if err != nil {
			return err
		}
		if req.RaisedByUserID != campaign.BrandUserID && req.RaisedByUserID != influencer.UserID {
			return fmt.Errorf("%w: user %s is not a party to campaign %s", domain.ErrUnauthorized, req.RaisedByUserID, req.CampaignID)
		}
		if err := campaign.MarkDisputed(now); err != nil {
			return err
		}
		hold, err := tx.HoldForUpdate(campaign.EscrowID)
		if err != nil {
			return err
		}
		if err := hold.MarkDisputed(now); err != nil {
			return err
		}
		if err := tx.SaveHold(hold); err != nil {
			return err
		}
		dispute, err = domain.NewDispute(uuid.NewString(), req.CampaignID, req.RaisedByUserID, req.Reason, req.EvidenceURLs, now)
		if err != nil {
			return err
		}
		if err := tx.CreateDispute(dispute); err != nil {
			return err
		}
		if req.RaisedByUserID == campaign.BrandUserID {
			counterpartyID = influencer.UserID
		} else {
			counterpartyID = campaign.BrandUserID
		}
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("raise_dispute", outcomeLabel(err)).Inc()
		return domain.Dispute{}, err
	}
	observability.OperationsTotal.WithLabelValues("raise_dispute", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		counterpartyID, domain.NotificationDisputeRaised,
		"Dispute raised",
		"A dispute was raised against your campaign. Funds are frozen pending review.",
		map[string]any{"dispute_id": dispute.DisputeID, "campaign_id": req.CampaignID},
	)})
	return dispute, nil
}

// StartDisputeReview moves an open dispute under admin review.
func (s *Service) StartDisputeReview(ctx context.Context, disputeID string) error {
	now := s.nowFn()
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		dispute, err := tx.DisputeForUpdate(disputeID)
		if err != nil {
			return err
		}
		if err := dispute.StartReview(now); err != nil {
			return err
		}
		return tx.SaveDispute(dispute)
	})
	observability.OperationsTotal.WithLabelValues("start_dispute_review", outcomeLabel(err)).Inc()
	return err
}

type ResolveDisputeRequest struct {
	DisputeID         string
	AdminUserID       string
	ResolvedInFavorOf string
	RefundPercent     int
	Resolution        string
}

// ResolveDispute splits the frozen hold by the admin's refund percentage.
// The refund slice returns to the brand's spendable headroom; the release
// slice pays the influencer net of the platform fee. Both movements and the
// campaign outcome commit together. A full refund cancels the campaign; any
// non-zero release completes it.
func (s *Service) ResolveDispute(ctx context.Context, req ResolveDisputeRequest) error {
	now := s.nowFn()
	var (
		brandUserID string
		payeeUserID string
		campaignID  string
		refundAmt   int64
		releaseAmt  int64
	)
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		dispute, err := tx.DisputeForUpdate(req.DisputeID)
		if err != nil {
			return err
		}
		if dispute.Settled() {
			return fmt.Errorf("%w: dispute %s is %s", domain.ErrInvalidState, req.DisputeID, dispute.Status)
		}
		campaign, err := tx.CampaignForUpdate(dispute.CampaignID)
		if err != nil {
			return err
		}
		influencer, err := tx.InfluencerForUpdate(campaign.InfluencerID)
		if err != nil {
			return err
		}
		if req.ResolvedInFavorOf != campaign.BrandUserID && req.ResolvedInFavorOf != influencer.UserID {
			return fmt.Errorf("%w: user %s is not a party to campaign %s", domain.ErrInvalidInput, req.ResolvedInFavorOf, dispute.CampaignID)
		}
		if err := dispute.Resolve(req.Resolution, req.ResolvedInFavorOf, req.AdminUserID, req.RefundPercent, now); err != nil {
			return err
		}

		hold, err := tx.HoldForUpdate(campaign.EscrowID)
		if err != nil {
			return err
		}
		if hold.Status != domain.EscrowStatusDisputed && hold.Status != domain.EscrowStatusLocked {
			return fmt.Errorf("%w: hold %s is %s", domain.ErrInvalidState, hold.EscrowID, hold.Status)
		}
		refundAmt, releaseAmt = domain.SplitDisputed(hold.Amount, req.RefundPercent)

		payer, err := tx.WalletForUpdate(hold.PayerUserID)
		if err != nil {
			return err
		}
		var closingTxID string
		if refundAmt > 0 {
			if err := payer.RefundHeld(refundAmt, now); err != nil {
				return err
			}
			completed := now
			refundTx := domain.LedgerTransaction{
				TransactionID: uuid.NewString(),
				ToWalletID:    payer.WalletID,
				Amount:        refundAmt,
				NetAmount:     refundAmt,
				Type:          domain.TransactionTypeEscrowRefund,
				Status:        domain.TransactionStatusCompleted,
				Description:   "dispute refund for campaign " + dispute.CampaignID,
				CreatedAt:     now,
				CompletedAt:   &completed,
			}
			if err := tx.CreateTransaction(refundTx); err != nil {
				return err
			}
			closingTxID = refundTx.TransactionID
			observability.EscrowCentsMoved.WithLabelValues("refunded").Add(float64(refundAmt))
		}
		if releaseAmt > 0 {
			if err := payer.ReleaseHeld(releaseAmt, now); err != nil {
				return err
			}
			fee := domain.PlatformFee(releaseAmt, s.cfg.PlatformFeePercent)
			net := releaseAmt - fee
			payee, err := s.walletForUpdateOrCreate(tx, influencer.UserID, now)
			if err != nil {
				return err
			}
			if err := payee.CreditEarnings(net, now); err != nil {
				return err
			}
			if err := tx.SaveWallet(payee); err != nil {
				return err
			}
			completed := now
			releaseTx := domain.LedgerTransaction{
				TransactionID: uuid.NewString(),
				FromWalletID:  payer.WalletID,
				ToWalletID:    payee.WalletID,
				Amount:        releaseAmt,
				Fee:           fee,
				NetAmount:     net,
				Type:          domain.TransactionTypeEscrowRelease,
				Status:        domain.TransactionStatusCompleted,
				Description:   "dispute release for campaign " + dispute.CampaignID,
				CreatedAt:     now,
				CompletedAt:   &completed,
			}
			if err := tx.CreateTransaction(releaseTx); err != nil {
				return err
			}
			closingTxID = releaseTx.TransactionID
			observability.EscrowCentsMoved.WithLabelValues("released").Add(float64(releaseAmt))
		}
		if err := payer.CheckInvariants(); err != nil {
			return err
		}
		if err := tx.SaveWallet(payer); err != nil {
			return err
		}

		// The hold closes as released when any amount reached the payee,
		// refunded only on a full refund.
		if releaseAmt > 0 {
			if err := hold.MarkReleased(closingTxID, now); err != nil {
				return err
			}
		} else {
			if err := hold.MarkRefunded(closingTxID, now); err != nil {
				return err
			}
		}
		if err := tx.SaveHold(hold); err != nil {
			return err
		}

		if err := campaign.SettleDispute(req.RefundPercent, now); err != nil {
			return err
		}
		if err := tx.SaveCampaign(campaign); err != nil {
			return err
		}
		if err := tx.SaveDispute(dispute); err != nil {
			return err
		}
		brandUserID = campaign.BrandUserID
		payeeUserID = influencer.UserID
		campaignID = dispute.CampaignID
		return nil
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("resolve_dispute", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("resolve_dispute", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{
		notification(brandUserID, domain.NotificationDisputeResolved,
			"Dispute resolved",
			fmt.Sprintf("The dispute was resolved with a %d%% refund.", req.RefundPercent),
			map[string]any{"dispute_id": req.DisputeID, "campaign_id": campaignID, "refund_amount": refundAmt}),
		notification(payeeUserID, domain.NotificationDisputeResolved,
			"Dispute resolved",
			fmt.Sprintf("The dispute was resolved; %d%% of the hold was released to you before fees.", 100-req.RefundPercent),
			map[string]any{"dispute_id": req.DisputeID, "campaign_id": campaignID, "release_amount": releaseAmt}),
	})
	return nil
}

// CloseDispute ends an invalid or withdrawn dispute with no money movement,
// reverting the campaign and hold to their pre-dispute states.
func (s *Service) CloseDispute(ctx context.Context, disputeID, adminUserID, reason string) error {
	now := s.nowFn()
	var parties []string
	var campaignID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		dispute, err := tx.DisputeForUpdate(disputeID)
		if err != nil {
			return err
		}
		if err := dispute.Close(reason, adminUserID, now); err != nil {
			return err
		}
		campaign, err := tx.CampaignForUpdate(dispute.CampaignID)
		if err != nil {
			return err
		}
		if err := campaign.RevertFromDispute(now); err != nil {
			return err
		}
		hold, err := tx.HoldForUpdate(campaign.EscrowID)
		if err != nil {
			return err
		}
		if err := hold.Unfreeze(now); err != nil {
			return err
		}
		if err := tx.SaveHold(hold); err != nil {
			return err
		}
		if err := tx.SaveCampaign(campaign); err != nil {
			return err
		}
		if err := tx.SaveDispute(dispute); err != nil {
			return err
		}
		influencer, err := tx.InfluencerForUpdate(campaign.InfluencerID)
		if err != nil {
			return err
		}
		parties = []string{campaign.BrandUserID, influencer.UserID}
		campaignID = dispute.CampaignID
		return nil
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("close_dispute", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("close_dispute", "ok").Inc()
	notifications := make([]domain.Notification, 0, len(parties))
	for _, userID := range parties {
		notifications = append(notifications, notification(
			userID, domain.NotificationDisputeResolved,
			"Dispute closed",
			"The dispute was closed without resolution: "+reason,
			map[string]any{"dispute_id": disputeID, "campaign_id": campaignID},
		))
	}
	s.dispatch(ctx, notifications)
	return nil
}
