package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dexterhq/settlement/internal/application"
	"github.com/dexterhq/settlement/internal/domain"
)

func TestPurchasePackageLocksEscrow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 5000)

	if resp.Campaign.Status != domain.CampaignStatusPending || resp.Campaign.Mode != domain.CampaignModeDirect {
		t.Fatalf("campaign state: %+v", resp.Campaign)
	}
	if resp.Campaign.EscrowID != resp.Hold.EscrowID {
		t.Fatal("campaign not bound to its hold")
	}
	if resp.Hold.Amount != 5000 || resp.Hold.Status != domain.EscrowStatusLocked {
		t.Fatalf("hold state: %+v", resp.Hold)
	}

	brand := f.wallet(t, "brand-1")
	if brand.Balance != 10000 || brand.HoldBalance != 5000 || brand.Available() != 5000 {
		t.Fatalf("brand wallet after lock: balance=%d hold=%d", brand.Balance, brand.HoldBalance)
	}

	locks := f.store.transactionsOfType(domain.TransactionTypeEscrowLock)
	if len(locks) != 1 || locks[0].Amount != 5000 || locks[0].Status != domain.TransactionStatusCompleted {
		t.Fatalf("escrow lock transactions: %+v", locks)
	}
	if f.store.packages["pkg-1"].TimesPurchased != 1 {
		t.Fatal("package purchase counter not incremented")
	}

	if got := f.notifier.byType(domain.NotificationCampaignRequest); len(got) != 1 || got[0].UserID != "inf-1" {
		t.Fatalf("campaign request notifications: %+v", got)
	}
	if got := f.notifier.byType(domain.NotificationEscrowLocked); len(got) != 1 || got[0].UserID != "brand-1" {
		t.Fatalf("escrow locked notifications: %+v", got)
	}
}

func TestPurchaseInsufficientFundsRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("brand-1", 4999)
	f.seedInfluencer("inf-1", "inf-user-1")
	f.seedPackage("pkg-1", "inf-1", 5000)

	_, err := f.service.PurchasePackage(context.Background(), application.PurchasePackageRequest{
		BrandUserID: "brand-1",
		PackageID:   "pkg-1",
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}

	brand := f.wallet(t, "brand-1")
	if brand.Balance != 4999 || brand.HoldBalance != 0 {
		t.Fatalf("failed purchase moved money: %+v", brand)
	}
	if len(f.store.campaigns) != 0 || len(f.store.holds) != 0 || len(f.store.transactions) != 0 {
		t.Fatal("failed purchase left rows behind")
	}
	if f.store.packages["pkg-1"].TimesPurchased != 0 {
		t.Fatal("failed purchase incremented the package counter")
	}
}

func TestEscrowLockExactAvailable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)
	if resp.Hold.Amount != 5000 {
		t.Fatalf("hold amount = %d", resp.Hold.Amount)
	}
	if f.wallet(t, "brand-1").Available() != 0 {
		t.Fatal("expected zero headroom after exact lock")
	}

	// A second purchase against the same wallet has nothing left to lock.
	f.seedPackage("pkg-2", "inf-1", 1)
	_, err := f.service.PurchasePackage(context.Background(), application.PurchasePackageRequest{
		BrandUserID: "brand-1",
		PackageID:   "pkg-2",
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
}

func TestCompleteCampaignReleasesNetOfFee(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)
	f.publishDirect(t, resp.Campaign.CampaignID)

	if err := f.service.CompleteCampaign(context.Background(), resp.Campaign.CampaignID, "brand-1"); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	brand := f.wallet(t, "brand-1")
	if brand.Balance != 0 || brand.HoldBalance != 0 || brand.TotalSpent != 5000 {
		t.Fatalf("brand wallet after release: %+v", brand)
	}
	influencer := f.wallet(t, "inf-user-1")
	if influencer.Balance != 4500 || influencer.TotalEarned != 4500 {
		t.Fatalf("influencer wallet after release: %+v", influencer)
	}

	hold := f.hold(t, resp.Hold.EscrowID)
	if hold.Status != domain.EscrowStatusReleased || hold.ReleaseTxID == "" {
		t.Fatalf("hold after release: %+v", hold)
	}
	releases := f.store.transactionsOfType(domain.TransactionTypeEscrowRelease)
	if len(releases) != 1 || releases[0].Amount != 5000 || releases[0].Fee != 500 || releases[0].NetAmount != 4500 {
		t.Fatalf("release transaction: %+v", releases)
	}
	if releases[0].TransactionID != hold.ReleaseTxID {
		t.Fatal("hold not bound to its release transaction")
	}

	if f.campaign(t, resp.Campaign.CampaignID).Status != domain.CampaignStatusCompleted {
		t.Fatal("campaign not completed")
	}
	if f.store.influencers["inf-1"].CompletedCampaigns != 1 {
		t.Fatal("completed campaign counter not incremented")
	}
}

func TestCompleteCampaignIsNotRepeatable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)
	f.publishDirect(t, resp.Campaign.CampaignID)
	ctx := context.Background()

	if err := f.service.CompleteCampaign(ctx, resp.Campaign.CampaignID, "brand-1"); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	influencerBefore := f.wallet(t, "inf-user-1")

	err := f.service.CompleteCampaign(ctx, resp.Campaign.CampaignID, "brand-1")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second complete: got %v, want ErrInvalidState", err)
	}
	if got := f.wallet(t, "inf-user-1"); got.Balance != influencerBefore.Balance {
		t.Fatalf("second complete moved money: %d -> %d", influencerBefore.Balance, got.Balance)
	}
	if got := f.store.transactionsOfType(domain.TransactionTypeEscrowRelease); len(got) != 1 {
		t.Fatalf("release transactions = %d, want 1", len(got))
	}
}

func TestRejectCampaignRefundsHold(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)

	if err := f.service.RejectCampaign(context.Background(), resp.Campaign.CampaignID, "inf-1", "fully booked"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	brand := f.wallet(t, "brand-1")
	if brand.Balance != 5000 || brand.HoldBalance != 0 || brand.TotalSpent != 0 {
		t.Fatalf("brand wallet after refund: %+v", brand)
	}
	if f.hold(t, resp.Hold.EscrowID).Status != domain.EscrowStatusRefunded {
		t.Fatal("hold not refunded")
	}
	if f.campaign(t, resp.Campaign.CampaignID).Status != domain.CampaignStatusCancelled {
		t.Fatal("campaign not cancelled")
	}
	refunds := f.store.transactionsOfType(domain.TransactionTypeEscrowRefund)
	if len(refunds) != 1 || refunds[0].Amount != 5000 {
		t.Fatalf("refund transactions: %+v", refunds)
	}
}

func TestCampaignActionsCheckOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)
	ctx := context.Background()

	if err := f.service.AcceptCampaign(ctx, resp.Campaign.CampaignID, "someone-else"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("accept by stranger: got %v, want ErrUnauthorized", err)
	}
	f.publishDirect(t, resp.Campaign.CampaignID)
	if err := f.service.CompleteCampaign(ctx, resp.Campaign.CampaignID, "other-brand"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("complete by stranger: got %v, want ErrUnauthorized", err)
	}
}

func TestRevisionLimitEnforced(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)
	ctx := context.Background()
	campaignID := resp.Campaign.CampaignID

	if err := f.service.AcceptCampaign(ctx, campaignID, "inf-1"); err != nil {
		t.Fatal(err)
	}
	submit := func() error {
		_, err := f.service.SubmitDraft(ctx, application.SubmitDraftRequest{
			CampaignID:        campaignID,
			ActorInfluencerID: "inf-1",
			ContentType:       "reel",
			Platform:          "instagram",
		})
		return err
	}
	for i := 0; i < 2; i++ {
		if err := submit(); err != nil {
			t.Fatalf("submit %d: %v", i+1, err)
		}
		if err := f.service.RequestRevision(ctx, campaignID, "brand-1", "tighter intro"); err != nil {
			t.Fatalf("revision %d: %v", i+1, err)
		}
	}
	if err := submit(); err != nil {
		t.Fatalf("final submit: %v", err)
	}
	err := f.service.RequestRevision(ctx, campaignID, "brand-1", "one more pass")
	if !errors.Is(err, domain.ErrRevisionLimitReached) {
		t.Fatalf("third revision: got %v, want ErrRevisionLimitReached", err)
	}
	if err := f.service.ApproveDraft(ctx, campaignID, "brand-1"); err != nil {
		t.Fatalf("approval after exhausted revisions: %v", err)
	}
}

func TestAcceptBidCascade(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("brand-1", 20000)
	f.seedInfluencer("inf-1", "inf-user-1")
	f.seedInfluencer("inf-2", "inf-user-2")
	f.seedInfluencer("inf-3", "inf-user-3")
	ctx := context.Background()

	campaign, err := f.service.CreateOpenCampaign(ctx, application.CreateOpenCampaignRequest{
		BrandUserID: "brand-1",
		Title:       "Spring launch",
		Budget:      10000,
	})
	if err != nil {
		t.Fatal(err)
	}

	var bids []domain.Bid
	for i, amount := range []int64{6000, 8000, 9000} {
		bid, err := f.service.PlaceBid(ctx, application.PlaceBidRequest{
			CampaignID:   campaign.CampaignID,
			InfluencerID: []string{"inf-1", "inf-2", "inf-3"}[i],
			Amount:       amount,
			Proposal:     "three reels",
			TimelineDays: 5,
		})
		if err != nil {
			t.Fatalf("bid %d: %v", i, err)
		}
		bids = append(bids, bid)
	}

	hold, err := f.service.AcceptBid(ctx, campaign.CampaignID, bids[1].BidID, "brand-1")
	if err != nil {
		t.Fatalf("accept bid: %v", err)
	}
	if hold.Amount != 8000 {
		t.Fatalf("hold amount = %d, want 8000", hold.Amount)
	}

	accepted := f.store.bids[bids[1].BidID]
	if accepted.Status != domain.BidStatusAccepted || accepted.EscrowID != hold.EscrowID {
		t.Fatalf("accepted bid: %+v", accepted)
	}
	for _, id := range []string{bids[0].BidID, bids[2].BidID} {
		if got := f.store.bids[id].Status; got != domain.BidStatusRejected {
			t.Fatalf("bid %s status = %s, want rejected", id, got)
		}
	}

	c := f.campaign(t, campaign.CampaignID)
	if c.Status != domain.CampaignStatusAccepted || c.InfluencerID != "inf-2" || c.BudgetSpent != 8000 {
		t.Fatalf("campaign after acceptance: %+v", c)
	}
	if f.wallet(t, "brand-1").HoldBalance != 8000 {
		t.Fatal("escrow not locked for the accepted bid")
	}
	if got := f.notifier.byType(domain.NotificationBidRejected); len(got) != 2 {
		t.Fatalf("rejected notifications = %d, want 2", len(got))
	}

	// No further bids once the campaign is assigned.
	if _, err := f.service.PlaceBid(ctx, application.PlaceBidRequest{
		CampaignID:   campaign.CampaignID,
		InfluencerID: "inf-1",
		Amount:       1000,
	}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("bid on assigned campaign: got %v, want ErrInvalidState", err)
	}
}

func TestAcceptBidBudgetBoundary(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("brand-1", 50000)
	f.seedInfluencer("inf-1", "inf-user-1")
	ctx := context.Background()

	campaign, err := f.service.CreateOpenCampaign(ctx, application.CreateOpenCampaignRequest{
		BrandUserID: "brand-1",
		Title:       "Exact budget",
		Budget:      10000,
	})
	if err != nil {
		t.Fatal(err)
	}
	over, err := f.service.PlaceBid(ctx, application.PlaceBidRequest{
		CampaignID:   campaign.CampaignID,
		InfluencerID: "inf-1",
		Amount:       10001,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.service.AcceptBid(ctx, campaign.CampaignID, over.BidID, "brand-1"); !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("one cent over budget: got %v, want ErrBudgetExceeded", err)
	}
	if f.store.bids[over.BidID].Status != domain.BidStatusPending {
		t.Fatal("failed acceptance mutated the bid")
	}
	if w := f.wallet(t, "brand-1"); w.HoldBalance != 0 {
		t.Fatal("failed acceptance locked money")
	}
	if f.campaign(t, campaign.CampaignID).Status != domain.CampaignStatusOpen {
		t.Fatal("failed acceptance mutated the campaign")
	}

	exact, err := f.service.PlaceBid(ctx, application.PlaceBidRequest{
		CampaignID:   campaign.CampaignID,
		InfluencerID: "inf-1",
		Amount:       10000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.AcceptBid(ctx, campaign.CampaignID, exact.BidID, "brand-1"); err != nil {
		t.Fatalf("bid at exact budget rejected: %v", err)
	}
}

func TestProofApprovalReleasesEscrow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("brand-1", 10000)
	f.seedInfluencer("inf-1", "inf-user-1")
	ctx := context.Background()

	campaign, err := f.service.CreateOpenCampaign(ctx, application.CreateOpenCampaignRequest{
		BrandUserID: "brand-1",
		Title:       "Unboxing",
		Budget:      10000,
	})
	if err != nil {
		t.Fatal(err)
	}
	bid, err := f.service.PlaceBid(ctx, application.PlaceBidRequest{
		CampaignID:   campaign.CampaignID,
		InfluencerID: "inf-1",
		Amount:       10000,
		TimelineDays: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.AcceptBid(ctx, campaign.CampaignID, bid.BidID, "brand-1"); err != nil {
		t.Fatal(err)
	}

	proof, err := f.service.SubmitProof(ctx, application.SubmitProofRequest{
		BidID:             bid.BidID,
		ActorInfluencerID: "inf-1",
		Title:             "Unboxing reel",
		ContentLinks:      []string{"https://example.com/reel"},
	})
	if err != nil {
		t.Fatalf("submit proof: %v", err)
	}

	if err := f.service.ReviewProof(ctx, application.ReviewProofRequest{
		ProofID:     proof.ProofID,
		ActorUserID: "brand-1",
		Decision:    application.ProofDecisionApprove,
	}); err != nil {
		t.Fatalf("approve proof: %v", err)
	}

	if f.campaign(t, campaign.CampaignID).Status != domain.CampaignStatusCompleted {
		t.Fatal("campaign not completed by proof approval")
	}
	influencer := f.wallet(t, "inf-user-1")
	if influencer.Balance != 9000 {
		t.Fatalf("influencer balance = %d, want 9000 after 10%% fee", influencer.Balance)
	}
	if f.store.influencers["inf-1"].CompletedCampaigns != 1 {
		t.Fatal("completed counter not incremented")
	}

	// A second submission against the settled bid is refused.
	if _, err := f.service.SubmitProof(ctx, application.SubmitProofRequest{
		BidID:             bid.BidID,
		ActorInfluencerID: "inf-1",
		Title:             "Again",
		ContentLinks:      []string{"https://example.com/reel2"},
	}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("proof after approval: got %v, want ErrInvalidState", err)
	}
}

func TestProofRejectionKeepsEscrowLocked(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedWallet("brand-1", 10000)
	f.seedInfluencer("inf-1", "inf-user-1")
	ctx := context.Background()

	campaign, err := f.service.CreateOpenCampaign(ctx, application.CreateOpenCampaignRequest{
		BrandUserID: "brand-1",
		Title:       "Review video",
		Budget:      6000,
	})
	if err != nil {
		t.Fatal(err)
	}
	bid, err := f.service.PlaceBid(ctx, application.PlaceBidRequest{
		CampaignID:   campaign.CampaignID,
		InfluencerID: "inf-1",
		Amount:       6000,
	})
	if err != nil {
		t.Fatal(err)
	}
	hold, err := f.service.AcceptBid(ctx, campaign.CampaignID, bid.BidID, "brand-1")
	if err != nil {
		t.Fatal(err)
	}
	proof, err := f.service.SubmitProof(ctx, application.SubmitProofRequest{
		BidID:             bid.BidID,
		ActorInfluencerID: "inf-1",
		Title:             "First attempt",
		ContentLinks:      []string{"https://example.com/v1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.service.ReviewProof(ctx, application.ReviewProofRequest{
		ProofID:     proof.ProofID,
		ActorUserID: "brand-1",
		Decision:    application.ProofDecisionReject,
		Notes:       "wrong product shown",
	}); err != nil {
		t.Fatalf("reject proof: %v", err)
	}

	if f.hold(t, hold.EscrowID).Status != domain.EscrowStatusLocked {
		t.Fatal("rejection must leave the hold locked")
	}
	if f.store.proofs[proof.ProofID].Status != domain.ProofStatusRejected {
		t.Fatal("proof not rejected")
	}

	// Resubmission as a new proof is allowed, and its approval settles.
	second, err := f.service.SubmitProof(ctx, application.SubmitProofRequest{
		BidID:             bid.BidID,
		ActorInfluencerID: "inf-1",
		Title:             "Second attempt",
		ContentLinks:      []string{"https://example.com/v2"},
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if err := f.service.ReviewProof(ctx, application.ReviewProofRequest{
		ProofID:     second.ProofID,
		ActorUserID: "brand-1",
		Decision:    application.ProofDecisionApprove,
	}); err != nil {
		t.Fatalf("approve resubmission: %v", err)
	}
	if f.hold(t, hold.EscrowID).Status != domain.EscrowStatusReleased {
		t.Fatal("hold not released after approved resubmission")
	}
}

func TestDisputePartialRefundSplitsHold(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 10000, 0)
	f.publishDirect(t, resp.Campaign.CampaignID)
	ctx := context.Background()

	dispute, err := f.service.RaiseDispute(ctx, application.RaiseDisputeRequest{
		CampaignID:     resp.Campaign.CampaignID,
		RaisedByUserID: "brand-1",
		Reason:         "content does not match the brief",
		EvidenceURLs:   []string{"https://example.com/shot"},
	})
	if err != nil {
		t.Fatalf("raise dispute: %v", err)
	}
	if f.hold(t, resp.Hold.EscrowID).Status != domain.EscrowStatusDisputed {
		t.Fatal("hold not frozen")
	}
	if f.campaign(t, resp.Campaign.CampaignID).Status != domain.CampaignStatusDisputed {
		t.Fatal("campaign not frozen")
	}

	if err := f.service.ResolveDispute(ctx, application.ResolveDisputeRequest{
		DisputeID:         dispute.DisputeID,
		AdminUserID:       "admin-1",
		ResolvedInFavorOf: "inf-user-1",
		RefundPercent:     30,
		Resolution:        "partial delivery",
	}); err != nil {
		t.Fatalf("resolve dispute: %v", err)
	}

	// 30% of 10000 returns to the brand; 7000 releases, 10% fee on the
	// released slice only.
	brand := f.wallet(t, "brand-1")
	if brand.Balance != 3000 || brand.HoldBalance != 0 || brand.TotalSpent != 7000 {
		t.Fatalf("brand wallet after split: %+v", brand)
	}
	influencer := f.wallet(t, "inf-user-1")
	if influencer.Balance != 6300 || influencer.TotalEarned != 6300 {
		t.Fatalf("influencer wallet after split: %+v", influencer)
	}

	hold := f.hold(t, resp.Hold.EscrowID)
	if hold.Status != domain.EscrowStatusReleased {
		t.Fatalf("hold status = %s, want released on partial split", hold.Status)
	}
	if f.campaign(t, resp.Campaign.CampaignID).Status != domain.CampaignStatusCompleted {
		t.Fatal("campaign should complete on partial release")
	}
	d := f.store.disputes[dispute.DisputeID]
	if d.Status != domain.DisputeStatusResolved || d.RefundPercent != 30 {
		t.Fatalf("dispute after resolution: %+v", d)
	}

	if err := f.service.ResolveDispute(ctx, application.ResolveDisputeRequest{
		DisputeID:         dispute.DisputeID,
		AdminUserID:       "admin-1",
		ResolvedInFavorOf: "brand-1",
		RefundPercent:     100,
	}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second resolution: got %v, want ErrInvalidState", err)
	}
}

func TestDisputeFullRefundCancelsCampaign(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 10000, 0)
	f.publishDirect(t, resp.Campaign.CampaignID)
	ctx := context.Background()

	dispute, err := f.service.RaiseDispute(ctx, application.RaiseDisputeRequest{
		CampaignID:     resp.Campaign.CampaignID,
		RaisedByUserID: "brand-1",
		Reason:         "nothing was delivered",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.service.ResolveDispute(ctx, application.ResolveDisputeRequest{
		DisputeID:         dispute.DisputeID,
		AdminUserID:       "admin-1",
		ResolvedInFavorOf: "brand-1",
		RefundPercent:     100,
		Resolution:        "full refund",
	}); err != nil {
		t.Fatal(err)
	}

	brand := f.wallet(t, "brand-1")
	if brand.Balance != 10000 || brand.HoldBalance != 0 || brand.TotalSpent != 0 {
		t.Fatalf("brand wallet after full refund: %+v", brand)
	}
	if _, err := f.store.Wallet(ctx, "inf-user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("full refund should not provision a payee wallet")
	}
	if f.hold(t, resp.Hold.EscrowID).Status != domain.EscrowStatusRefunded {
		t.Fatal("hold not refunded")
	}
	if f.campaign(t, resp.Campaign.CampaignID).Status != domain.CampaignStatusCancelled {
		t.Fatal("campaign should cancel on full refund")
	}
}

func TestCloseDisputeRestoresPreDisputeState(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)
	f.publishDirect(t, resp.Campaign.CampaignID)
	ctx := context.Background()

	dispute, err := f.service.RaiseDispute(ctx, application.RaiseDisputeRequest{
		CampaignID:     resp.Campaign.CampaignID,
		RaisedByUserID: "inf-user-1",
		Reason:         "brand is unresponsive",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.service.CloseDispute(ctx, dispute.DisputeID, "admin-1", "withdrawn by filer"); err != nil {
		t.Fatalf("close dispute: %v", err)
	}

	if f.campaign(t, resp.Campaign.CampaignID).Status != domain.CampaignStatusPublished {
		t.Fatal("campaign not restored to published")
	}
	if f.hold(t, resp.Hold.EscrowID).Status != domain.EscrowStatusLocked {
		t.Fatal("hold not restored to locked")
	}
	if err := f.service.CompleteCampaign(ctx, resp.Campaign.CampaignID, "brand-1"); err != nil {
		t.Fatalf("complete after closed dispute: %v", err)
	}
}

func TestDisputeRequiresCampaignParty(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)

	_, err := f.service.RaiseDispute(context.Background(), application.RaiseDisputeRequest{
		CampaignID:     resp.Campaign.CampaignID,
		RaisedByUserID: "random-user",
		Reason:         "drive-by complaint",
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestWithdrawalApproval(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	if _, err := f.service.Deposit(ctx, application.DepositRequest{
		UserID:        "inf-user-1",
		Amount:        20000,
		PaymentMethod: "mpesa",
		ExternalRef:   "MPESA-123",
	}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	withdrawal, err := f.service.RequestWithdrawal(ctx, application.WithdrawalRequest{
		UserID:        "inf-user-1",
		Amount:        15000,
		PaymentMethod: "mpesa",
		Destination:   "+254700000000",
	})
	if err != nil {
		t.Fatalf("request withdrawal: %v", err)
	}
	w := f.wallet(t, "inf-user-1")
	if w.Balance != 20000 || w.HoldBalance != 15000 {
		t.Fatalf("wallet after request: %+v", w)
	}

	if err := f.service.ApproveWithdrawal(ctx, withdrawal.TransactionID, "PAYOUT-9"); err != nil {
		t.Fatalf("approve withdrawal: %v", err)
	}
	w = f.wallet(t, "inf-user-1")
	if w.Balance != 5000 || w.HoldBalance != 0 {
		t.Fatalf("wallet after approval: %+v", w)
	}
	final := f.store.transactions[withdrawal.TransactionID]
	if final.Status != domain.TransactionStatusCompleted || final.ExternalRef != "PAYOUT-9" {
		t.Fatalf("withdrawal transaction: %+v", final)
	}
}

func TestWithdrawalRejectionRestoresHeadroom(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	if _, err := f.service.Deposit(ctx, application.DepositRequest{UserID: "u-1", Amount: 20000}); err != nil {
		t.Fatal(err)
	}
	withdrawal, err := f.service.RequestWithdrawal(ctx, application.WithdrawalRequest{
		UserID: "u-1",
		Amount: 20000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.service.RejectWithdrawal(ctx, withdrawal.TransactionID, "account mismatch"); err != nil {
		t.Fatalf("reject withdrawal: %v", err)
	}
	w := f.wallet(t, "u-1")
	if w.Balance != 20000 || w.HoldBalance != 0 {
		t.Fatalf("wallet after rejection: %+v", w)
	}
	if f.store.transactions[withdrawal.TransactionID].Status != domain.TransactionStatusCancelled {
		t.Fatal("withdrawal not cancelled")
	}
}

func TestWithdrawalBelowMinimum(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	if _, err := f.service.Deposit(ctx, application.DepositRequest{UserID: "u-1", Amount: 20000}); err != nil {
		t.Fatal(err)
	}
	_, err := f.service.RequestWithdrawal(ctx, application.WithdrawalRequest{UserID: "u-1", Amount: 9999})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestDigitalOrderPaysCommissionImmediately(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedInfluencer("inf-1", "inf-user-1")
	f.seedProduct(domain.Product{
		ProductID:          "prod-1",
		BrandUserID:        "brand-1",
		Name:               "Preset pack",
		PriceCents:         1000,
		IsDigital:          true,
		Active:             true,
		CommissionType:     domain.CommissionTypePercentage,
		CommissionRateBps:  1500,
		PlatformFeeType:    domain.CommissionTypePercentage,
		PlatformFeeRateBps: 1000,
	})

	resp, err := f.service.PlaceOrder(context.Background(), application.PlaceOrderRequest{
		ProductID:    "prod-1",
		InfluencerID: "inf-1",
		BuyerName:    "Amina",
		BuyerContact: "amina@example.com",
		Quantity:     1,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if resp.Order.Status != domain.OrderStatusFulfilled || resp.Order.TotalCents != 1000 {
		t.Fatalf("digital order: %+v", resp.Order)
	}
	if resp.Commission == nil {
		t.Fatal("expected a commission for the attributed order")
	}
	if resp.Commission.GrossCommission != 150 || resp.Commission.PlatformFee != 15 || resp.Commission.NetCommission != 135 {
		t.Fatalf("commission breakdown: %+v", resp.Commission)
	}

	stored := f.store.commissions[resp.Commission.CommissionID]
	if stored.Status != domain.CommissionStatusPaid || stored.LedgerTxID == "" {
		t.Fatalf("stored commission: %+v", stored)
	}
	w := f.wallet(t, "inf-user-1")
	if w.Balance != 135 || w.TotalEarned != 135 {
		t.Fatalf("influencer wallet after payout: %+v", w)
	}
	transfers := f.store.transactionsOfType(domain.TransactionTypeTransfer)
	if len(transfers) != 1 || transfers[0].NetAmount != 135 || transfers[0].Fee != 15 {
		t.Fatalf("payout transactions: %+v", transfers)
	}
}

func TestPhysicalOrderPaysOnFulfillment(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedInfluencer("inf-1", "inf-user-1")
	f.seedProduct(domain.Product{
		ProductID:          "prod-1",
		BrandUserID:        "brand-1",
		Name:               "Tote bag",
		PriceCents:         2500,
		Active:             true,
		CommissionType:     domain.CommissionTypePercentage,
		CommissionRateBps:  2000,
		PlatformFeeType:    domain.CommissionTypePercentage,
		PlatformFeeRateBps: 1000,
	})
	ctx := context.Background()

	resp, err := f.service.PlaceOrder(ctx, application.PlaceOrderRequest{
		ProductID:    "prod-1",
		InfluencerID: "inf-1",
		Quantity:     2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Order.Status != domain.OrderStatusPending || resp.Order.TotalCents != 5000 {
		t.Fatalf("physical order: %+v", resp.Order)
	}
	if f.store.commissions[resp.Commission.CommissionID].Status != domain.CommissionStatusPending {
		t.Fatal("commission should stay pending before fulfillment")
	}

	if err := f.service.UpdateOrderStatus(ctx, resp.Order.OrderID, "brand-1", domain.OrderStatusContacted); err != nil {
		t.Fatalf("contact: %v", err)
	}
	if err := f.service.UpdateOrderStatus(ctx, resp.Order.OrderID, "brand-1", domain.OrderStatusFulfilled); err != nil {
		t.Fatalf("fulfill: %v", err)
	}

	// 20% of 5000 = 1000 gross, 10% fee = 100, net 900.
	w := f.wallet(t, "inf-user-1")
	if w.Balance != 900 {
		t.Fatalf("influencer balance = %d, want 900", w.Balance)
	}

	err = f.service.UpdateOrderStatus(ctx, resp.Order.OrderID, "brand-1", domain.OrderStatusFulfilled)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second fulfillment: got %v, want ErrInvalidState", err)
	}
	if got := f.wallet(t, "inf-user-1").Balance; got != 900 {
		t.Fatalf("second fulfillment moved money: %d", got)
	}
}

func TestCancelledOrderVoidsCommission(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedInfluencer("inf-1", "inf-user-1")
	f.seedProduct(domain.Product{
		ProductID:        "prod-1",
		BrandUserID:      "brand-1",
		PriceCents:       2500,
		Active:           true,
		CommissionType:   domain.CommissionTypeFixed,
		FixedCommission:  300,
		PlatformFeeType:  domain.CommissionTypeFixed,
		FixedPlatformFee: 30,
	})
	ctx := context.Background()

	resp, err := f.service.PlaceOrder(ctx, application.PlaceOrderRequest{
		ProductID:    "prod-1",
		InfluencerID: "inf-1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.service.UpdateOrderStatus(ctx, resp.Order.OrderID, "brand-1", domain.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if f.store.commissions[resp.Commission.CommissionID].Status != domain.CommissionStatusCancelled {
		t.Fatal("commission not voided")
	}
	if _, err := f.store.Wallet(ctx, "inf-user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("cancellation must not move money")
	}
}

func TestOrganicOrderHasNoCommission(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedProduct(domain.Product{
		ProductID:          "prod-1",
		BrandUserID:        "brand-1",
		PriceCents:         1000,
		IsDigital:          true,
		Active:             true,
		CommissionType:     domain.CommissionTypePercentage,
		CommissionRateBps:  1500,
		PlatformFeeType:    domain.CommissionTypePercentage,
		PlatformFeeRateBps: 1000,
	})

	resp, err := f.service.PlaceOrder(context.Background(), application.PlaceOrderRequest{ProductID: "prod-1"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Commission != nil {
		t.Fatal("organic order must not generate a commission")
	}
	if resp.Order.Status != domain.OrderStatusFulfilled {
		t.Fatal("digital order should still auto-fulfill")
	}
	if len(f.store.commissions) != 0 || len(f.store.transactions) != 0 {
		t.Fatal("organic order left money rows behind")
	}
}

func TestSweepAutoReleases(t *testing.T) {
	t.Parallel()

	f := newFixture()
	resp := f.purchaseDirect(t, 5000, 0)
	f.publishDirect(t, resp.Campaign.CampaignID)

	// A second purchase the influencer never engaged with; past its
	// deadline it still cannot complete, so the sweep leaves it alone.
	f.seedWallet("brand-2", 3000)
	f.seedPackage("pkg-stale", "inf-1", 3000)
	stale, err := f.service.PurchasePackage(context.Background(), application.PurchasePackageRequest{
		BrandUserID: "brand-2",
		PackageID:   "pkg-stale",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Timeline 7 days plus the 14-day auto-release window.
	f.advanceDays(22)

	released, err := f.service.SweepAutoReleases(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if released != 1 {
		t.Fatalf("released = %d, want 1", released)
	}
	if f.campaign(t, resp.Campaign.CampaignID).Status != domain.CampaignStatusCompleted {
		t.Fatal("published campaign not auto-completed")
	}
	if got := f.wallet(t, "inf-user-1").Balance; got != 4500 {
		t.Fatalf("influencer balance = %d, want 4500", got)
	}
	if f.campaign(t, stale.Campaign.CampaignID).Status != domain.CampaignStatusPending {
		t.Fatal("unengaged campaign must stay pending")
	}
	if f.hold(t, stale.Hold.EscrowID).Status != domain.EscrowStatusLocked {
		t.Fatal("unengaged hold must stay locked")
	}

	// Second sweep finds nothing new.
	released, err = f.service.SweepAutoReleases(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if released != 0 {
		t.Fatalf("second sweep released %d", released)
	}
}

func TestNotifierFailureDoesNotFailSettlement(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.notifier.fails = true

	resp := f.purchaseDirect(t, 5000, 0)
	if resp.Hold.Status != domain.EscrowStatusLocked {
		t.Fatalf("hold state: %+v", resp.Hold)
	}
	if f.wallet(t, "brand-1").HoldBalance != 5000 {
		t.Fatal("settlement should commit even when the sink is down")
	}
}

func TestWalletHistoryOrderAndLimit(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	var walletID string
	for i := 0; i < 3; i++ {
		dep, err := f.service.Deposit(ctx, application.DepositRequest{
			UserID: "u-1",
			Amount: int64(1000 * (i + 1)),
		})
		if err != nil {
			t.Fatal(err)
		}
		walletID = dep.ToWalletID
	}

	history, err := f.service.WalletHistory(ctx, walletID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Amount != 3000 || history[1].Amount != 2000 {
		t.Fatalf("history not newest-first: %+v", history)
	}
}
