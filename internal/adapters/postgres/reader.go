package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/ports"
)

// NewReader serves the lock-free reads used outside settlement transactions.
func NewReader(db *gorm.DB) ports.SettlementReader {
	return &settlementReader{db: db}
}

type settlementReader struct {
	db *gorm.DB
}

func (r *settlementReader) Wallet(ctx context.Context, userID string) (domain.Wallet, error) {
	var row walletModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error; err != nil {
		return domain.Wallet{}, notFound(err, "wallet for user", userID)
	}
	return toDomainWallet(row), nil
}

func (r *settlementReader) Campaign(ctx context.Context, campaignID string) (domain.Campaign, error) {
	var row campaignModel
	if err := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID).Take(&row).Error; err != nil {
		return domain.Campaign{}, notFound(err, "campaign", campaignID)
	}
	return toDomainCampaign(row)
}

func (r *settlementReader) Hold(ctx context.Context, escrowID string) (domain.EscrowHold, error) {
	var row escrowHoldModel
	if err := r.db.WithContext(ctx).Where("escrow_id = ?", escrowID).Take(&row).Error; err != nil {
		return domain.EscrowHold{}, notFound(err, "escrow hold", escrowID)
	}
	return toDomainHold(row)
}

func (r *settlementReader) Bid(ctx context.Context, bidID string) (domain.Bid, error) {
	var row bidModel
	if err := r.db.WithContext(ctx).Where("bid_id = ?", bidID).Take(&row).Error; err != nil {
		return domain.Bid{}, notFound(err, "bid", bidID)
	}
	return toDomainBid(row)
}

func (r *settlementReader) Dispute(ctx context.Context, disputeID string) (domain.Dispute, error) {
	var row disputeModel
	if err := r.db.WithContext(ctx).Where("dispute_id = ?", disputeID).Take(&row).Error; err != nil {
		return domain.Dispute{}, notFound(err, "dispute", disputeID)
	}
	return toDomainDispute(row)
}

func (r *settlementReader) Order(ctx context.Context, orderID string) (domain.Order, error) {
	var row orderModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Take(&row).Error; err != nil {
		return domain.Order{}, notFound(err, "order", orderID)
	}
	return toDomainOrder(row)
}

func (r *settlementReader) Transactions(ctx context.Context, walletID string, limit int) ([]domain.LedgerTransaction, error) {
	var rows []ledgerTransactionModel
	err := r.db.WithContext(ctx).
		Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	transactions := make([]domain.LedgerTransaction, 0, len(rows))
	for _, row := range rows {
		tr, err := toDomainTransaction(row)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tr)
	}
	return transactions, nil
}

func (r *settlementReader) HoldsPastAutoRelease(ctx context.Context, now time.Time, limit int) ([]domain.EscrowHold, error) {
	var rows []escrowHoldModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND auto_release_at < ?", string(domain.EscrowStatusLocked), now).
		Order("auto_release_at").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	holds := make([]domain.EscrowHold, 0, len(rows))
	for _, row := range rows {
		hold, err := toDomainHold(row)
		if err != nil {
			return nil, err
		}
		holds = append(holds, hold)
	}
	return holds, nil
}
