package postgres

import (
	"encoding/json"

	"github.com/dexterhq/settlement/internal/domain"
)

// Enum columns decode through the domain Parse functions, the single place
// legacy casing or unknown codes can surface as errors instead of leaking
// into state-machine comparisons.

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

func encodeData(data map[string]any) string {
	if len(data) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func toWalletModel(w domain.Wallet) walletModel {
	return walletModel{
		WalletID:    w.WalletID,
		UserID:      w.UserID,
		Balance:     w.Balance,
		HoldBalance: w.HoldBalance,
		TotalEarned: w.TotalEarned,
		TotalSpent:  w.TotalSpent,
		Currency:    w.Currency,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func toDomainWallet(row walletModel) domain.Wallet {
	return domain.Wallet{
		WalletID:    row.WalletID,
		UserID:      row.UserID,
		Balance:     row.Balance,
		HoldBalance: row.HoldBalance,
		TotalEarned: row.TotalEarned,
		TotalSpent:  row.TotalSpent,
		Currency:    row.Currency,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toTransactionModel(t domain.LedgerTransaction) ledgerTransactionModel {
	return ledgerTransactionModel{
		TransactionID: t.TransactionID,
		FromWalletID:  strPtr(t.FromWalletID),
		ToWalletID:    strPtr(t.ToWalletID),
		Amount:        t.Amount,
		Fee:           t.Fee,
		NetAmount:     t.NetAmount,
		Type:          string(t.Type),
		Status:        string(t.Status),
		PaymentMethod: t.PaymentMethod,
		ExternalRef:   t.ExternalRef,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

func toDomainTransaction(row ledgerTransactionModel) (domain.LedgerTransaction, error) {
	txType, err := domain.ParseTransactionType(row.Type)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	status, err := domain.ParseTransactionStatus(row.Status)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	return domain.LedgerTransaction{
		TransactionID: row.TransactionID,
		FromWalletID:  deref(row.FromWalletID),
		ToWalletID:    deref(row.ToWalletID),
		Amount:        row.Amount,
		Fee:           row.Fee,
		NetAmount:     row.NetAmount,
		Type:          txType,
		Status:        status,
		PaymentMethod: row.PaymentMethod,
		ExternalRef:   row.ExternalRef,
		Description:   row.Description,
		CreatedAt:     row.CreatedAt,
		CompletedAt:   row.CompletedAt,
	}, nil
}

func toHoldModel(h domain.EscrowHold) escrowHoldModel {
	return escrowHoldModel{
		EscrowID:      h.EscrowID,
		TransactionID: h.TransactionID,
		CampaignID:    strPtr(h.CampaignID),
		PayerUserID:   h.PayerUserID,
		Amount:        h.Amount,
		Status:        string(h.Status),
		LockedAt:      h.LockedAt,
		AutoReleaseAt: h.AutoReleaseAt,
		ReleasedAt:    h.ReleasedAt,
		ReleaseTxID:   strPtr(h.ReleaseTxID),
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

func toDomainHold(row escrowHoldModel) (domain.EscrowHold, error) {
	status, err := domain.ParseEscrowStatus(row.Status)
	if err != nil {
		return domain.EscrowHold{}, err
	}
	return domain.EscrowHold{
		EscrowID:      row.EscrowID,
		TransactionID: row.TransactionID,
		CampaignID:    deref(row.CampaignID),
		PayerUserID:   row.PayerUserID,
		Amount:        row.Amount,
		Status:        status,
		LockedAt:      row.LockedAt,
		AutoReleaseAt: row.AutoReleaseAt,
		ReleasedAt:    row.ReleasedAt,
		ReleaseTxID:   deref(row.ReleaseTxID),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func toCampaignModel(c domain.Campaign) campaignModel {
	return campaignModel{
		CampaignID:       c.CampaignID,
		Mode:             string(c.Mode),
		BrandUserID:      c.BrandUserID,
		InfluencerID:     strPtr(c.InfluencerID),
		PackageID:        strPtr(c.PackageID),
		EscrowID:         strPtr(c.EscrowID),
		Title:            c.Title,
		Description:      c.Description,
		Budget:           c.Budget,
		BudgetSpent:      c.BudgetSpent,
		Status:           string(c.Status),
		Deadline:         c.Deadline,
		StartedAt:        c.StartedAt,
		DraftSubmittedAt: c.DraftSubmittedAt,
		PublishedAt:      c.PublishedAt,
		CompletedAt:      c.CompletedAt,
		RevisionsUsed:    c.RevisionsUsed,
		RevisionsAllowed: c.RevisionsAllowed,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func toDomainCampaign(row campaignModel) (domain.Campaign, error) {
	mode, err := domain.ParseCampaignMode(row.Mode)
	if err != nil {
		return domain.Campaign{}, err
	}
	status, err := domain.ParseCampaignStatus(row.Status)
	if err != nil {
		return domain.Campaign{}, err
	}
	return domain.Campaign{
		CampaignID:       row.CampaignID,
		Mode:             mode,
		BrandUserID:      row.BrandUserID,
		InfluencerID:     deref(row.InfluencerID),
		PackageID:        deref(row.PackageID),
		EscrowID:         deref(row.EscrowID),
		Title:            row.Title,
		Description:      row.Description,
		Budget:           row.Budget,
		BudgetSpent:      row.BudgetSpent,
		Status:           status,
		Deadline:         row.Deadline,
		StartedAt:        row.StartedAt,
		DraftSubmittedAt: row.DraftSubmittedAt,
		PublishedAt:      row.PublishedAt,
		CompletedAt:      row.CompletedAt,
		RevisionsUsed:    row.RevisionsUsed,
		RevisionsAllowed: row.RevisionsAllowed,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

func toBidModel(b domain.Bid) bidModel {
	return bidModel{
		BidID:        b.BidID,
		CampaignID:   b.CampaignID,
		InfluencerID: b.InfluencerID,
		PackageID:    strPtr(b.PackageID),
		Amount:       b.Amount,
		Currency:     b.Currency,
		Proposal:     b.Proposal,
		Platform:     b.Platform,
		ContentType:  b.ContentType,
		TimelineDays: b.TimelineDays,
		Status:       string(b.Status),
		EscrowID:     strPtr(b.EscrowID),
		AcceptedAt:   b.AcceptedAt,
		RejectedAt:   b.RejectedAt,
		WithdrawnAt:  b.WithdrawnAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toDomainBid(row bidModel) (domain.Bid, error) {
	status, err := domain.ParseBidStatus(row.Status)
	if err != nil {
		return domain.Bid{}, err
	}
	return domain.Bid{
		BidID:        row.BidID,
		CampaignID:   row.CampaignID,
		InfluencerID: row.InfluencerID,
		PackageID:    deref(row.PackageID),
		Amount:       row.Amount,
		Currency:     row.Currency,
		Proposal:     row.Proposal,
		Platform:     row.Platform,
		ContentType:  row.ContentType,
		TimelineDays: row.TimelineDays,
		Status:       status,
		EscrowID:     deref(row.EscrowID),
		AcceptedAt:   row.AcceptedAt,
		RejectedAt:   row.RejectedAt,
		WithdrawnAt:  row.WithdrawnAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func toDeliverableModel(d domain.Deliverable) deliverableModel {
	return deliverableModel{
		DeliverableID: d.DeliverableID,
		CampaignID:    d.CampaignID,
		ContentType:   d.ContentType,
		Platform:      d.Platform,
		DraftText:     d.DraftText,
		DraftMediaURL: d.DraftMediaURL,
		PublishedURL:  d.PublishedURL,
		Status:        string(d.Status),
		SubmittedAt:   d.SubmittedAt,
		ApprovedAt:    d.ApprovedAt,
		PublishedAt:   d.PublishedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDomainDeliverable(row deliverableModel) (domain.Deliverable, error) {
	status, err := domain.ParseDeliverableStatus(row.Status)
	if err != nil {
		return domain.Deliverable{}, err
	}
	return domain.Deliverable{
		DeliverableID: row.DeliverableID,
		CampaignID:    row.CampaignID,
		ContentType:   row.ContentType,
		Platform:      row.Platform,
		DraftText:     row.DraftText,
		DraftMediaURL: row.DraftMediaURL,
		PublishedURL:  row.PublishedURL,
		Status:        status,
		SubmittedAt:   row.SubmittedAt,
		ApprovedAt:    row.ApprovedAt,
		PublishedAt:   row.PublishedAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func toProofModel(p domain.ProofOfWork) proofOfWorkModel {
	return proofOfWorkModel{
		ProofID:      p.ProofID,
		BidID:        p.BidID,
		CampaignID:   p.CampaignID,
		InfluencerID: p.InfluencerID,
		Title:        p.Title,
		Description:  p.Description,
		ContentLinks: encodeList(p.ContentLinks),
		Screenshots:  encodeList(p.Screenshots),
		ViewsCount:   p.ViewsCount,
		LikesCount:   p.LikesCount,
		Comments:     p.Comments,
		Shares:       p.Shares,
		Status:       string(p.Status),
		BrandNotes:   p.BrandNotes,
		Rejection:    p.Rejection,
		SubmittedAt:  p.SubmittedAt,
		ReviewedAt:   p.ReviewedAt,
		ApprovedAt:   p.ApprovedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toDomainProof(row proofOfWorkModel) (domain.ProofOfWork, error) {
	status, err := domain.ParseProofStatus(row.Status)
	if err != nil {
		return domain.ProofOfWork{}, err
	}
	return domain.ProofOfWork{
		ProofID:      row.ProofID,
		BidID:        row.BidID,
		CampaignID:   row.CampaignID,
		InfluencerID: row.InfluencerID,
		Title:        row.Title,
		Description:  row.Description,
		ContentLinks: decodeList(row.ContentLinks),
		Screenshots:  decodeList(row.Screenshots),
		ViewsCount:   row.ViewsCount,
		LikesCount:   row.LikesCount,
		Comments:     row.Comments,
		Shares:       row.Shares,
		Status:       status,
		BrandNotes:   row.BrandNotes,
		Rejection:    row.Rejection,
		SubmittedAt:  row.SubmittedAt,
		ReviewedAt:   row.ReviewedAt,
		ApprovedAt:   row.ApprovedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func toDisputeModel(d domain.Dispute) disputeModel {
	return disputeModel{
		DisputeID:         d.DisputeID,
		CampaignID:        d.CampaignID,
		RaisedByUserID:    d.RaisedByUserID,
		Reason:            d.Reason,
		EvidenceURLs:      encodeList(d.EvidenceURLs),
		Status:            string(d.Status),
		Resolution:        d.Resolution,
		ResolvedInFavorOf: strPtr(d.ResolvedInFavorOf),
		ResolvedByUserID:  strPtr(d.ResolvedByUserID),
		RefundPercent:     d.RefundPercent,
		ResolvedAt:        d.ResolvedAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func toDomainDispute(row disputeModel) (domain.Dispute, error) {
	status, err := domain.ParseDisputeStatus(row.Status)
	if err != nil {
		return domain.Dispute{}, err
	}
	return domain.Dispute{
		DisputeID:         row.DisputeID,
		CampaignID:        row.CampaignID,
		RaisedByUserID:    row.RaisedByUserID,
		Reason:            row.Reason,
		EvidenceURLs:      decodeList(row.EvidenceURLs),
		Status:            status,
		Resolution:        row.Resolution,
		ResolvedInFavorOf: deref(row.ResolvedInFavorOf),
		ResolvedByUserID:  deref(row.ResolvedByUserID),
		RefundPercent:     row.RefundPercent,
		ResolvedAt:        row.ResolvedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

func toInfluencerModel(p domain.InfluencerProfile) influencerProfileModel {
	return influencerProfileModel{
		InfluencerID:       p.InfluencerID,
		UserID:             p.UserID,
		DisplayName:        p.DisplayName,
		CompletedCampaigns: p.CompletedCampaigns,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toDomainInfluencer(row influencerProfileModel) domain.InfluencerProfile {
	return domain.InfluencerProfile{
		InfluencerID:       row.InfluencerID,
		UserID:             row.UserID,
		DisplayName:        row.DisplayName,
		CompletedCampaigns: row.CompletedCampaigns,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func toPackageModel(p domain.Package) packageModel {
	return packageModel{
		PackageID:         p.PackageID,
		InfluencerID:      p.InfluencerID,
		Name:              p.Name,
		PriceCents:        p.PriceCents,
		TimelineDays:      p.TimelineDays,
		RevisionsIncluded: p.RevisionsIncluded,
		Active:            p.Active,
		TimesPurchased:    p.TimesPurchased,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toDomainPackage(row packageModel) domain.Package {
	return domain.Package{
		PackageID:         row.PackageID,
		InfluencerID:      row.InfluencerID,
		Name:              row.Name,
		PriceCents:        row.PriceCents,
		TimelineDays:      row.TimelineDays,
		RevisionsIncluded: row.RevisionsIncluded,
		Active:            row.Active,
		TimesPurchased:    row.TimesPurchased,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func toDomainProduct(row productModel) (domain.Product, error) {
	commissionType, err := domain.ParseCommissionType(row.CommissionType)
	if err != nil {
		return domain.Product{}, err
	}
	feeType, err := domain.ParseCommissionType(row.PlatformFeeType)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ProductID:          row.ProductID,
		BrandUserID:        row.BrandUserID,
		Name:               row.Name,
		PriceCents:         row.PriceCents,
		IsDigital:          row.IsDigital,
		Active:             row.Active,
		CommissionType:     commissionType,
		CommissionRateBps:  row.CommissionRateBps,
		FixedCommission:    row.FixedCommission,
		PlatformFeeType:    feeType,
		PlatformFeeRateBps: row.PlatformFeeRateBps,
		FixedPlatformFee:   row.FixedPlatformFee,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

func toOrderModel(o domain.Order) orderModel {
	return orderModel{
		OrderID:      o.OrderID,
		OrderNumber:  o.OrderNumber,
		ProductID:    o.ProductID,
		BrandUserID:  o.BrandUserID,
		InfluencerID: strPtr(o.InfluencerID),
		BuyerName:    o.BuyerName,
		BuyerContact: o.BuyerContact,
		Quantity:     o.Quantity,
		TotalCents:   o.TotalCents,
		Status:       string(o.Status),
		FulfilledAt:  o.FulfilledAt,
		CancelledAt:  o.CancelledAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func toDomainOrder(row orderModel) (domain.Order, error) {
	status, err := domain.ParseOrderStatus(row.Status)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		OrderID:      row.OrderID,
		OrderNumber:  row.OrderNumber,
		ProductID:    row.ProductID,
		BrandUserID:  row.BrandUserID,
		InfluencerID: deref(row.InfluencerID),
		BuyerName:    row.BuyerName,
		BuyerContact: row.BuyerContact,
		Quantity:     row.Quantity,
		TotalCents:   row.TotalCents,
		Status:       status,
		FulfilledAt:  row.FulfilledAt,
		CancelledAt:  row.CancelledAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func toCommissionModel(c domain.AffiliateCommission) affiliateCommissionModel {
	return affiliateCommissionModel{
		CommissionID:    c.CommissionID,
		OrderID:         c.OrderID,
		InfluencerID:    c.InfluencerID,
		ProductID:       c.ProductID,
		GrossCommission: c.GrossCommission,
		PlatformFee:     c.PlatformFee,
		NetCommission:   c.NetCommission,
		Status:          string(c.Status),
		LedgerTxID:      strPtr(c.LedgerTxID),
		PaidAt:          c.PaidAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toDomainCommission(row affiliateCommissionModel) (domain.AffiliateCommission, error) {
	status, err := domain.ParseCommissionStatus(row.Status)
	if err != nil {
		return domain.AffiliateCommission{}, err
	}
	return domain.AffiliateCommission{
		CommissionID:    row.CommissionID,
		OrderID:         row.OrderID,
		InfluencerID:    row.InfluencerID,
		ProductID:       row.ProductID,
		GrossCommission: row.GrossCommission,
		PlatformFee:     row.PlatformFee,
		NetCommission:   row.NetCommission,
		Status:          status,
		LedgerTxID:      deref(row.LedgerTxID),
		PaidAt:          row.PaidAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}
