package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/observability"
	"github.com/dexterhq/settlement/internal/ports"
)

type SubmitProofRequest struct {
	BidID             string
	ActorInfluencerID string
	Title             string
	Description       string
	ContentLinks      []string
	Screenshots       []string
}

// SubmitProof records the evidence for an accepted bid. One pending proof
// at a time: a rejected or revision-requested proof must be resubmitted as a
// new row.
func (s *Service) SubmitProof(ctx context.Context, req SubmitProofRequest) (domain.ProofOfWork, error) {
	now := s.nowFn()
	var proof domain.ProofOfWork
	var brandUserID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		bid, err := tx.BidForUpdate(req.BidID)
		if err != nil {
			return err
		}
		if bid.InfluencerID != req.ActorInfluencerID {
			return fmt.Errorf("%w: bid %s does not belong to influencer %s", domain.ErrUnauthorized, req.BidID, req.ActorInfluencerID)
		}
		if bid.Status != domain.BidStatusAccepted {
			return fmt.Errorf("%w: bid %s is %s", domain.ErrInvalidState, req.BidID, bid.Status)
		}
		approved, err := tx.ApprovedProofExists(req.BidID)
		if err != nil {
			return err
		}
		if approved {
			return fmt.Errorf("%w: bid %s already has an approved proof", domain.ErrInvalidState, req.BidID)
		}
		campaign, err := tx.CampaignForUpdate(bid.CampaignID)
		if err != nil {
			return err
		}
		proof, err = domain.NewProofOfWork(uuid.NewString(), req.BidID, bid.CampaignID, bid.InfluencerID,
			req.Title, req.Description, req.ContentLinks, now)
		if err != nil {
			return err
		}
		proof.Screenshots = req.Screenshots
		brandUserID = campaign.BrandUserID
		return tx.CreateProof(proof)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("submit_proof", outcomeLabel(err)).Inc()
		return domain.ProofOfWork{}, err
	}
	observability.OperationsTotal.WithLabelValues("submit_proof", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		brandUserID, domain.NotificationProofSubmitted,
		"Proof of work submitted",
		"The influencer submitted proof for your campaign.",
		map[string]any{"proof_id": proof.ProofID, "campaign_id": proof.CampaignID, "bid_id": req.BidID},
	)})
	return proof, nil
}

type ProofDecision string

const (
	ProofDecisionApprove         ProofDecision = "approve"
	ProofDecisionReject          ProofDecision = "reject"
	ProofDecisionRequestRevision ProofDecision = "request_revision"
)

type ReviewProofRequest struct {
	ProofID     string
	ActorUserID string
	Decision    ProofDecision
	Notes       string
}

// ReviewProof is the brand's gate on bid-based campaigns. Approval releases
// the bid's escrow and completes the campaign in the same transaction;
// rejection and revision requests only annotate the proof, leaving the hold
// locked for a resubmission.
func (s *Service) ReviewProof(ctx context.Context, req ReviewProofRequest) error {
	now := s.nowFn()
	var (
		proof       domain.ProofOfWork
		payeeUserID string
		netPaid     int64
	)
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		var err error
		proof, err = tx.ProofForUpdate(req.ProofID)
		if err != nil {
			return err
		}
		campaign, err := tx.CampaignForUpdate(proof.CampaignID)
		if err != nil {
			return err
		}
		if campaign.BrandUserID != req.ActorUserID {
			return fmt.Errorf("%w: campaign %s does not belong to user %s", domain.ErrUnauthorized, proof.CampaignID, req.ActorUserID)
		}
		switch req.Decision {
		case ProofDecisionReject:
			if err := proof.Reject(req.Notes, now); err != nil {
				return err
			}
			return tx.SaveProof(proof)
		case ProofDecisionRequestRevision:
			if err := proof.RequestRevision(req.Notes, now); err != nil {
				return err
			}
			return tx.SaveProof(proof)
		case ProofDecisionApprove:
		default:
			return fmt.Errorf("%w: proof decision %q", domain.ErrInvalidInput, req.Decision)
		}

		if err := proof.Approve(req.Notes, now); err != nil {
			return err
		}
		if err := campaign.CompleteViaProof(now); err != nil {
			return err
		}
		influencer, err := tx.InfluencerForUpdate(proof.InfluencerID)
		if err != nil {
			return err
		}
		hold, err := tx.HoldForUpdate(campaign.EscrowID)
		if err != nil {
			return err
		}
		net, err := s.releaseEscrow(tx, &hold, influencer.UserID, "release for approved proof "+req.ProofID, now)
		if err != nil {
			return err
		}
		influencer.CompletedCampaigns++
		influencer.UpdatedAt = now
		if err := tx.SaveInfluencer(influencer); err != nil {
			return err
		}
		if err := tx.SaveProof(proof); err != nil {
			return err
		}
		if err := tx.SaveCampaign(campaign); err != nil {
			return err
		}
		payeeUserID = influencer.UserID
		netPaid = net
		return nil
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("review_proof", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("review_proof", "ok").Inc()
	notifications := []domain.Notification{notification(
		proof.InfluencerID, domain.NotificationProofReviewed,
		"Proof reviewed",
		fmt.Sprintf("The brand decision on your proof: %s.", req.Decision),
		map[string]any{"proof_id": req.ProofID, "campaign_id": proof.CampaignID, "decision": string(req.Decision)},
	)}
	if req.Decision == ProofDecisionApprove {
		notifications = append(notifications, notification(
			payeeUserID, domain.NotificationPaymentReceived,
			"Payment received",
			"Escrow was released to your wallet.",
			map[string]any{"campaign_id": proof.CampaignID, "net_amount": netPaid},
		))
	}
	s.dispatch(ctx, notifications)
	return nil
}
