package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/observability"
	"github.com/dexterhq/settlement/internal/ports"
)

type PurchasePackageRequest struct {
	BrandUserID string
	PackageID   string
}

type PurchasePackageResponse struct {
	Campaign domain.Campaign
	Hold     domain.EscrowHold
}

// PurchasePackage creates a direct campaign with its escrow locked at
// creation. The hold is created first carrying the campaign id, then the
// campaign row referencing the hold, so neither side ever persists without
// the other.
func (s *Service) PurchasePackage(ctx context.Context, req PurchasePackageRequest) (PurchasePackageResponse, error) {
	if req.BrandUserID == "" || req.PackageID == "" {
		return PurchasePackageResponse{}, fmt.Errorf("%w: purchase requires a brand and a package", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	var resp PurchasePackageResponse
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		pkg, err := tx.PackageForUpdate(req.PackageID)
		if err != nil {
			return err
		}
		if !pkg.Active {
			return fmt.Errorf("%w: package %s is not active", domain.ErrInvalidState, pkg.PackageID)
		}
		influencer, err := tx.InfluencerForUpdate(pkg.InfluencerID)
		if err != nil {
			return err
		}
		if influencer.UserID == req.BrandUserID {
			return fmt.Errorf("%w: cannot purchase your own package", domain.ErrInvalidInput)
		}

		revisions := pkg.RevisionsIncluded
		if revisions <= 0 {
			revisions = s.cfg.DefaultRevisionsAllowed
		}
		campaignID := uuid.NewString()
		deadline := addDays(now, pkg.TimelineDays)
		autoRelease := addDays(now, pkg.TimelineDays+s.cfg.AutoReleaseDays)

		hold, err := s.lockEscrow(tx, req.BrandUserID, campaignID, pkg.PriceCents, autoRelease,
			"escrow lock for package "+pkg.PackageID, now)
		if err != nil {
			return err
		}

		campaign := domain.NewDirectCampaign(campaignID, req.BrandUserID, pkg.InfluencerID, pkg.PackageID, revisions, deadline, now)
		campaign.EscrowID = hold.EscrowID
		if err := tx.CreateCampaign(campaign); err != nil {
			return err
		}

		pkg.TimesPurchased++
		pkg.UpdatedAt = now
		if err := tx.SavePackage(pkg); err != nil {
			return err
		}
		resp = PurchasePackageResponse{Campaign: campaign, Hold: hold}
		return nil
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("purchase_package", outcomeLabel(err)).Inc()
		return PurchasePackageResponse{}, err
	}
	observability.OperationsTotal.WithLabelValues("purchase_package", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{
		notification(resp.Campaign.InfluencerID, domain.NotificationCampaignRequest,
			"New campaign request",
			"A brand purchased your package.",
			map[string]any{"campaign_id": resp.Campaign.CampaignID, "amount": resp.Hold.Amount}),
		notification(req.BrandUserID, domain.NotificationEscrowLocked,
			"Funds locked in escrow",
			"Your payment is held until the campaign completes.",
			map[string]any{"campaign_id": resp.Campaign.CampaignID, "escrow_id": resp.Hold.EscrowID, "amount": resp.Hold.Amount}),
	})
	return resp, nil
}

// AcceptCampaign is the influencer agreeing to a pending direct campaign.
// Escrow was already locked at purchase; only the timestamp moves.
func (s *Service) AcceptCampaign(ctx context.Context, campaignID, actorInfluencerID string) error {
	now := s.nowFn()
	var brandUserID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(campaignID)
		if err != nil {
			return err
		}
		if campaign.InfluencerID != actorInfluencerID {
			return fmt.Errorf("%w: campaign %s is not assigned to influencer %s", domain.ErrUnauthorized, campaignID, actorInfluencerID)
		}
		if err := campaign.Accept(now); err != nil {
			return err
		}
		brandUserID = campaign.BrandUserID
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("accept_campaign", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("accept_campaign", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		brandUserID, domain.NotificationCampaignAccepted,
		"Campaign accepted",
		"The influencer accepted your campaign.",
		map[string]any{"campaign_id": campaignID},
	)})
	return nil
}

// RejectCampaign cancels a pending direct campaign and refunds the hold in
// the same transaction.
func (s *Service) RejectCampaign(ctx context.Context, campaignID, actorInfluencerID, reason string) error {
	now := s.nowFn()
	var brandUserID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(campaignID)
		if err != nil {
			return err
		}
		if campaign.InfluencerID != actorInfluencerID {
			return fmt.Errorf("%w: campaign %s is not assigned to influencer %s", domain.ErrUnauthorized, campaignID, actorInfluencerID)
		}
		if err := campaign.Reject(now); err != nil {
			return err
		}
		if campaign.EscrowID != "" {
			hold, err := tx.HoldForUpdate(campaign.EscrowID)
			if err != nil {
				return err
			}
			if err := s.refundEscrow(tx, &hold, "refund for rejected campaign "+campaignID, now); err != nil {
				return err
			}
		}
		brandUserID = campaign.BrandUserID
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("reject_campaign", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("reject_campaign", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		brandUserID, domain.NotificationCampaignRejected,
		"Campaign declined",
		"The influencer declined your campaign. Your funds were returned: "+reason,
		map[string]any{"campaign_id": campaignID},
	)})
	return nil
}

type SubmitDraftRequest struct {
	CampaignID        string
	ActorInfluencerID string
	ContentType       string
	Platform          string
	DraftText         string
	DraftMediaURL     string
}

// SubmitDraft moves the campaign into review and records the deliverable.
func (s *Service) SubmitDraft(ctx context.Context, req SubmitDraftRequest) (domain.Deliverable, error) {
	now := s.nowFn()
	var deliverable domain.Deliverable
	var brandUserID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(req.CampaignID)
		if err != nil {
			return err
		}
		if campaign.InfluencerID != req.ActorInfluencerID {
			return fmt.Errorf("%w: campaign %s is not assigned to influencer %s", domain.ErrUnauthorized, req.CampaignID, req.ActorInfluencerID)
		}
		if err := campaign.SubmitDraft(now); err != nil {
			return err
		}
		deliverable = domain.NewDeliverable(uuid.NewString(), req.CampaignID, req.ContentType, req.Platform, req.DraftText, req.DraftMediaURL, now)
		if err := tx.CreateDeliverable(deliverable); err != nil {
			return err
		}
		brandUserID = campaign.BrandUserID
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("submit_draft", outcomeLabel(err)).Inc()
		return domain.Deliverable{}, err
	}
	observability.OperationsTotal.WithLabelValues("submit_draft", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		brandUserID, domain.NotificationDraftSubmitted,
		"Draft submitted",
		"A draft is waiting for your review.",
		map[string]any{"campaign_id": req.CampaignID, "deliverable_id": deliverable.DeliverableID},
	)})
	return deliverable, nil
}

// RequestRevision consumes one of the campaign's revision slots.
func (s *Service) RequestRevision(ctx context.Context, campaignID, actorUserID, notes string) error {
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
		if err := campaign.RequestRevision(now); err != nil {
			return err
		}
		influencerID = campaign.InfluencerID
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("request_revision", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("request_revision", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		influencerID, domain.NotificationRevisionRequested,
		"Revision requested",
		"The brand requested changes: "+notes,
		map[string]any{"campaign_id": campaignID},
	)})
	return nil
}

// ApproveDraft is the brand signing off the submitted draft. Submitted
// deliverables are approved alongside the campaign transition.
func (s *Service) ApproveDraft(ctx context.Context, campaignID, actorUserID string) error {
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
		if err := campaign.ApproveDraft(now); err != nil {
			return err
		}
		deliverables, err := tx.DeliverablesByCampaign(campaignID)
		if err != nil {
			return err
		}
		for _, d := range deliverables {
			if d.Status != domain.DeliverableStatusSubmitted {
				continue
			}
			if err := d.Approve(now); err != nil {
				return err
			}
			if err := tx.SaveDeliverable(d); err != nil {
				return err
			}
		}
		influencerID = campaign.InfluencerID
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("approve_draft", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("approve_draft", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		influencerID, domain.NotificationDraftApproved,
		"Draft approved",
		"Your draft was approved. You can publish now.",
		map[string]any{"campaign_id": campaignID},
	)})
	return nil
}

type MarkPublishedRequest struct {
	CampaignID        string
	ActorInfluencerID string
	// PublishedURLs maps deliverable id to its live URL.
	PublishedURLs map[string]string
}

// MarkPublished records that approved content went live. Every approved
// deliverable flips to published with its URL.
func (s *Service) MarkPublished(ctx context.Context, req MarkPublishedRequest) error {
	now := s.nowFn()
	var brandUserID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(req.CampaignID)
		if err != nil {
			return err
		}
		if campaign.InfluencerID != req.ActorInfluencerID {
			return fmt.Errorf("%w: campaign %s is not assigned to influencer %s", domain.ErrUnauthorized, req.CampaignID, req.ActorInfluencerID)
		}
		if err := campaign.MarkPublished(now); err != nil {
			return err
		}
		deliverables, err := tx.DeliverablesByCampaign(req.CampaignID)
		if err != nil {
			return err
		}
		for _, d := range deliverables {
			if d.Status != domain.DeliverableStatusApproved {
				continue
			}
			if err := d.Publish(req.PublishedURLs[d.DeliverableID], now); err != nil {
				return err
			}
			if err := tx.SaveDeliverable(d); err != nil {
				return err
			}
		}
		brandUserID = campaign.BrandUserID
		return tx.SaveCampaign(campaign)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("mark_published", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("mark_published", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		brandUserID, domain.NotificationContentPublished,
		"Content published",
		"The campaign content is live. Review and complete to release payment.",
		map[string]any{"campaign_id": req.CampaignID},
	)})
	return nil
}

// CompleteCampaign is the brand-initiated release of escrow on a published
// campaign.
func (s *Service) CompleteCampaign(ctx context.Context, campaignID, actorUserID string) error {
	return s.completeCampaign(ctx, campaignID, actorUserID, false)
}

// completeCampaign finishes the campaign and releases the hold in the
// payee's favor in one transaction. bySystem marks the auto-release sweep
// path, which has no acting brand user to check ownership against.
func (s *Service) completeCampaign(ctx context.Context, campaignID, actorUserID string, bySystem bool) error {
	now := s.nowFn()
	var (
		brandUserID  string
		payeeUserID  string
		influencerID string
		netPaid      int64
	)
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		campaign, err := tx.CampaignForUpdate(campaignID)
		if err != nil {
			return err
		}
		if !bySystem && campaign.BrandUserID != actorUserID {
			return fmt.Errorf("%w: campaign %s does not belong to user %s", domain.ErrUnauthorized, campaignID, actorUserID)
		}
		if err := campaign.Complete(now); err != nil {
			return err
		}
		influencer, err := tx.InfluencerForUpdate(campaign.InfluencerID)
		if err != nil {
			return err
		}
		hold, err := tx.HoldForUpdate(campaign.EscrowID)
		if err != nil {
			return err
		}
		net, err := s.releaseEscrow(tx, &hold, influencer.UserID, "release for completed campaign "+campaignID, now)
		if err != nil {
			return err
		}
		influencer.CompletedCampaigns++
		influencer.UpdatedAt = now
		if err := tx.SaveInfluencer(influencer); err != nil {
			return err
		}
		if err := tx.SaveCampaign(campaign); err != nil {
			return err
		}
		brandUserID = campaign.BrandUserID
		payeeUserID = influencer.UserID
		influencerID = campaign.InfluencerID
		netPaid = net
		return nil
	})
	operation := "complete_campaign"
	if bySystem {
		operation = "auto_release"
	}
	if err != nil {
		observability.OperationsTotal.WithLabelValues(operation, outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues(operation, "ok").Inc()
	s.dispatch(ctx, []domain.Notification{
		notification(payeeUserID, domain.NotificationPaymentReceived,
			"Payment received",
			"Escrow was released to your wallet.",
			map[string]any{"campaign_id": campaignID, "influencer_id": influencerID, "net_amount": netPaid}),
		notification(brandUserID, domain.NotificationCampaignCompleted,
			"Campaign completed",
			"The campaign is complete and payment was released.",
			map[string]any{"campaign_id": campaignID}),
	})
	return nil
}
