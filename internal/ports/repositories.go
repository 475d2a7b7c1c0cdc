package ports

import (
	"context"
	"time"

	"github.com/dexterhq/settlement/internal/domain"
)

// SettlementStore is the unit-of-work boundary. Every settlement operation
// runs inside exactly one InTx call: the callback either fully applies or the
// whole transaction rolls back, so a wallet can never be debited without its
// hold existing, or vice versa.
type SettlementStore interface {
	InTx(ctx context.Context, fn func(tx SettlementTx) error) error
}

// SettlementTx exposes the row operations available inside one transaction.
// The ForUpdate accessors take a row-level exclusive lock (SELECT ... FOR
// UPDATE); wallets, campaigns, bids and holds are always read through them
// before mutation so concurrent settlements on the same rows serialize.
type SettlementTx interface {
	WalletForUpdate(userID string) (domain.Wallet, error)
	WalletByIDForUpdate(walletID string) (domain.Wallet, error)
	CreateWallet(w domain.Wallet) error
	SaveWallet(w domain.Wallet) error

	CreateTransaction(t domain.LedgerTransaction) error
	TransactionForUpdate(txnID string) (domain.LedgerTransaction, error)
	SaveTransaction(t domain.LedgerTransaction) error

	CreateHold(h domain.EscrowHold) error
	HoldForUpdate(escrowID string) (domain.EscrowHold, error)
	SaveHold(h domain.EscrowHold) error

	CreateCampaign(c domain.Campaign) error
	CampaignForUpdate(campaignID string) (domain.Campaign, error)
	SaveCampaign(c domain.Campaign) error

	CreateBid(b domain.Bid) error
	BidForUpdate(bidID string) (domain.Bid, error)
	SaveBid(b domain.Bid) error
	// PendingBids returns the campaign's still-pending bids, locked, so the
	// acceptance cascade rejects them atomically with the escrow lock.
	PendingBids(campaignID string) ([]domain.Bid, error)

	CreateDeliverable(d domain.Deliverable) error
	DeliverablesByCampaign(campaignID string) ([]domain.Deliverable, error)
	SaveDeliverable(d domain.Deliverable) error

	CreateProof(p domain.ProofOfWork) error
	ProofForUpdate(proofID string) (domain.ProofOfWork, error)
	ApprovedProofExists(bidID string) (bool, error)
	SaveProof(p domain.ProofOfWork) error

	CreateDispute(d domain.Dispute) error
	DisputeForUpdate(disputeID string) (domain.Dispute, error)
	SaveDispute(d domain.Dispute) error

	PackageForUpdate(packageID string) (domain.Package, error)
	SavePackage(p domain.Package) error
	InfluencerForUpdate(influencerID string) (domain.InfluencerProfile, error)
	SaveInfluencer(p domain.InfluencerProfile) error

	Product(productID string) (domain.Product, error)
	CreateOrder(o domain.Order) error
	OrderForUpdate(orderID string) (domain.Order, error)
	SaveOrder(o domain.Order) error
	CreateCommission(c domain.AffiliateCommission) error
	CommissionByOrderForUpdate(orderID string) (domain.AffiliateCommission, error)
	SaveCommission(c domain.AffiliateCommission) error
}

// SettlementReader serves the lock-free reads used outside settlement
// transactions.
type SettlementReader interface {
	Wallet(ctx context.Context, userID string) (domain.Wallet, error)
	Campaign(ctx context.Context, campaignID string) (domain.Campaign, error)
	Hold(ctx context.Context, escrowID string) (domain.EscrowHold, error)
	Bid(ctx context.Context, bidID string) (domain.Bid, error)
	Dispute(ctx context.Context, disputeID string) (domain.Dispute, error)
	Order(ctx context.Context, orderID string) (domain.Order, error)
	Transactions(ctx context.Context, walletID string, limit int) ([]domain.LedgerTransaction, error)
	// HoldsPastAutoRelease lists locked holds whose auto_release_at deadline
	// has passed; the sweeper worker is the only caller.
	HoldsPastAutoRelease(ctx context.Context, now time.Time, limit int) ([]domain.EscrowHold, error)
}
