package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/ports"
)

// NewStore wires the unit-of-work boundary over a GORM handle.
func NewStore(db *gorm.DB) ports.SettlementStore {
	return &settlementStore{db: db}
}

type settlementStore struct {
	db *gorm.DB
}

func (s *settlementStore) InTx(ctx context.Context, fn func(tx ports.SettlementTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&settlementTx{tx: tx})
	})
}

// settlementTx serves row operations inside one database transaction. The
// ForUpdate accessors take SELECT ... FOR UPDATE so concurrent settlements
// touching the same wallet, campaign, bid or hold serialize on the row.
type settlementTx struct {
	tx *gorm.DB
}

func (t *settlementTx) forUpdate() *gorm.DB {
	return t.tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return err
}

func (t *settlementTx) WalletForUpdate(userID string) (domain.Wallet, error) {
	var row walletModel
	if err := t.forUpdate().Where("user_id = ?", userID).Take(&row).Error; err != nil {
		return domain.Wallet{}, notFound(err, "wallet for user", userID)
	}
	return toDomainWallet(row), nil
}

func (t *settlementTx) WalletByIDForUpdate(walletID string) (domain.Wallet, error) {
	var row walletModel
	if err := t.forUpdate().Where("wallet_id = ?", walletID).Take(&row).Error; err != nil {
		return domain.Wallet{}, notFound(err, "wallet", walletID)
	}
	return toDomainWallet(row), nil
}

func (t *settlementTx) CreateWallet(w domain.Wallet) error {
	row := toWalletModel(w)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) SaveWallet(w domain.Wallet) error {
	row := toWalletModel(w)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) CreateTransaction(tr domain.LedgerTransaction) error {
	row := toTransactionModel(tr)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) TransactionForUpdate(txnID string) (domain.LedgerTransaction, error) {
	var row ledgerTransactionModel
	if err := t.forUpdate().Where("transaction_id = ?", txnID).Take(&row).Error; err != nil {
		return domain.LedgerTransaction{}, notFound(err, "transaction", txnID)
	}
	return toDomainTransaction(row)
}

func (t *settlementTx) SaveTransaction(tr domain.LedgerTransaction) error {
	row := toTransactionModel(tr)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) CreateHold(h domain.EscrowHold) error {
	row := toHoldModel(h)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) HoldForUpdate(escrowID string) (domain.EscrowHold, error) {
	var row escrowHoldModel
	if err := t.forUpdate().Where("escrow_id = ?", escrowID).Take(&row).Error; err != nil {
		return domain.EscrowHold{}, notFound(err, "escrow hold", escrowID)
	}
	return toDomainHold(row)
}

func (t *settlementTx) SaveHold(h domain.EscrowHold) error {
	row := toHoldModel(h)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) CreateCampaign(c domain.Campaign) error {
	row := toCampaignModel(c)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) CampaignForUpdate(campaignID string) (domain.Campaign, error) {
	var row campaignModel
	if err := t.forUpdate().Where("campaign_id = ?", campaignID).Take(&row).Error; err != nil {
		return domain.Campaign{}, notFound(err, "campaign", campaignID)
	}
	return toDomainCampaign(row)
}

func (t *settlementTx) SaveCampaign(c domain.Campaign) error {
	row := toCampaignModel(c)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) CreateBid(b domain.Bid) error {
	row := toBidModel(b)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) BidForUpdate(bidID string) (domain.Bid, error) {
	var row bidModel
	if err := t.forUpdate().Where("bid_id = ?", bidID).Take(&row).Error; err != nil {
		return domain.Bid{}, notFound(err, "bid", bidID)
	}
	return toDomainBid(row)
}

func (t *settlementTx) SaveBid(b domain.Bid) error {
	row := toBidModel(b)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) PendingBids(campaignID string) ([]domain.Bid, error) {
	var rows []bidModel
	err := t.forUpdate().
		Where("campaign_id = ? AND status = ?", campaignID, string(domain.BidStatusPending)).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	bids := make([]domain.Bid, 0, len(rows))
	for _, row := range rows {
		bid, err := toDomainBid(row)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, nil
}

func (t *settlementTx) CreateDeliverable(d domain.Deliverable) error {
	row := toDeliverableModel(d)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) DeliverablesByCampaign(campaignID string) ([]domain.Deliverable, error) {
	var rows []deliverableModel
	err := t.forUpdate().
		Where("campaign_id = ?", campaignID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	deliverables := make([]domain.Deliverable, 0, len(rows))
	for _, row := range rows {
		d, err := toDomainDeliverable(row)
		if err != nil {
			return nil, err
		}
		deliverables = append(deliverables, d)
	}
	return deliverables, nil
}

func (t *settlementTx) SaveDeliverable(d domain.Deliverable) error {
	row := toDeliverableModel(d)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) CreateProof(p domain.ProofOfWork) error {
	row := toProofModel(p)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) ProofForUpdate(proofID string) (domain.ProofOfWork, error) {
	var row proofOfWorkModel
	if err := t.forUpdate().Where("proof_id = ?", proofID).Take(&row).Error; err != nil {
		return domain.ProofOfWork{}, notFound(err, "proof", proofID)
	}
	return toDomainProof(row)
}

func (t *settlementTx) ApprovedProofExists(bidID string) (bool, error) {
	var count int64
	err := t.tx.Model(&proofOfWorkModel{}).
		Where("bid_id = ? AND status = ?", bidID, string(domain.ProofStatusApproved)).
		Count(&count).Error
	return count > 0, err
}

func (t *settlementTx) SaveProof(p domain.ProofOfWork) error {
	row := toProofModel(p)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) CreateDispute(d domain.Dispute) error {
	row := toDisputeModel(d)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) DisputeForUpdate(disputeID string) (domain.Dispute, error) {
	var row disputeModel
	if err := t.forUpdate().Where("dispute_id = ?", disputeID).Take(&row).Error; err != nil {
		return domain.Dispute{}, notFound(err, "dispute", disputeID)
	}
	return toDomainDispute(row)
}

func (t *settlementTx) SaveDispute(d domain.Dispute) error {
	row := toDisputeModel(d)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) PackageForUpdate(packageID string) (domain.Package, error) {
	var row packageModel
	if err := t.forUpdate().Where("package_id = ?", packageID).Take(&row).Error; err != nil {
		return domain.Package{}, notFound(err, "package", packageID)
	}
	return toDomainPackage(row), nil
}

func (t *settlementTx) SavePackage(p domain.Package) error {
	row := toPackageModel(p)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) InfluencerForUpdate(influencerID string) (domain.InfluencerProfile, error) {
	var row influencerProfileModel
	if err := t.forUpdate().Where("influencer_id = ?", influencerID).Take(&row).Error; err != nil {
		return domain.InfluencerProfile{}, notFound(err, "influencer", influencerID)
	}
	return toDomainInfluencer(row), nil
}

func (t *settlementTx) SaveInfluencer(p domain.InfluencerProfile) error {
	row := toInfluencerModel(p)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) Product(productID string) (domain.Product, error) {
	var row productModel
	if err := t.tx.Where("product_id = ?", productID).Take(&row).Error; err != nil {
		return domain.Product{}, notFound(err, "product", productID)
	}
	return toDomainProduct(row)
}

func (t *settlementTx) CreateOrder(o domain.Order) error {
	row := toOrderModel(o)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) OrderForUpdate(orderID string) (domain.Order, error) {
	var row orderModel
	if err := t.forUpdate().Where("order_id = ?", orderID).Take(&row).Error; err != nil {
		return domain.Order{}, notFound(err, "order", orderID)
	}
	return toDomainOrder(row)
}

func (t *settlementTx) SaveOrder(o domain.Order) error {
	row := toOrderModel(o)
	return t.tx.Save(&row).Error
}

func (t *settlementTx) CreateCommission(c domain.AffiliateCommission) error {
	row := toCommissionModel(c)
	return t.tx.Create(&row).Error
}

func (t *settlementTx) CommissionByOrderForUpdate(orderID string) (domain.AffiliateCommission, error) {
	var row affiliateCommissionModel
	if err := t.forUpdate().Where("order_id = ?", orderID).Take(&row).Error; err != nil {
		return domain.AffiliateCommission{}, notFound(err, "commission for order", orderID)
	}
	return toDomainCommission(row)
}

func (t *settlementTx) SaveCommission(c domain.AffiliateCommission) error {
	row := toCommissionModel(c)
	return t.tx.Save(&row).Error
}
