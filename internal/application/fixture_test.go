package application_test

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dexterhq/settlement/internal/application"
	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/ports"
)

type fixture struct {
	service  *application.Service
	store    *memStore
	notifier *fakeNotifier
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		store:    newMemStore(),
		notifier: &fakeNotifier{},
		now:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.service = application.NewService(application.Dependencies{
		Config: application.Config{
			PlatformFeePercent:      10,
			AutoReleaseDays:         14,
			MinWithdrawalCents:      10000,
			DefaultRevisionsAllowed: 2,
			Currency:                "KES",
			SweepBatchSize:          100,
		},
		Store:    f.store,
		Reader:   f.store,
		Notifier: f.notifier,
		NowFn:    func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) advanceDays(days int) { f.now = f.now.AddDate(0, 0, days) }

func (f *fixture) seedWallet(userID string, balance int64) domain.Wallet {
	w := domain.Wallet{
		WalletID:  "wallet-" + userID,
		UserID:    userID,
		Balance:   balance,
		Currency:  "KES",
		CreatedAt: f.now,
		UpdatedAt: f.now,
	}
	f.store.wallets[w.WalletID] = w
	return w
}

func (f *fixture) seedInfluencer(influencerID, userID string) {
	f.store.influencers[influencerID] = domain.InfluencerProfile{
		InfluencerID: influencerID,
		UserID:       userID,
		DisplayName:  influencerID,
		CreatedAt:    f.now,
		UpdatedAt:    f.now,
	}
}

func (f *fixture) seedPackage(packageID, influencerID string, price int64) {
	f.store.packages[packageID] = domain.Package{
		PackageID:         packageID,
		InfluencerID:      influencerID,
		Name:              "Reel + story",
		PriceCents:        price,
		TimelineDays:      7,
		RevisionsIncluded: 2,
		Active:            true,
		CreatedAt:         f.now,
		UpdatedAt:         f.now,
	}
}

func (f *fixture) seedProduct(p domain.Product) {
	p.CreatedAt = f.now
	p.UpdatedAt = f.now
	f.store.products[p.ProductID] = p
}

func (f *fixture) wallet(t *testing.T, userID string) domain.Wallet {
	t.Helper()
	w, err := f.store.Wallet(context.Background(), userID)
	if err != nil {
		t.Fatalf("wallet for %s: %v", userID, err)
	}
	return w
}

func (f *fixture) campaign(t *testing.T, campaignID string) domain.Campaign {
	t.Helper()
	c, err := f.store.Campaign(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("campaign %s: %v", campaignID, err)
	}
	return c
}

func (f *fixture) hold(t *testing.T, escrowID string) domain.EscrowHold {
	t.Helper()
	h, err := f.store.Hold(context.Background(), escrowID)
	if err != nil {
		t.Fatalf("hold %s: %v", escrowID, err)
	}
	return h
}

// purchaseDirect seeds a brand wallet, influencer and package, then runs the
// purchase. The brand wallet starts with exactly the package price unless
// extra headroom is requested.
func (f *fixture) purchaseDirect(t *testing.T, price, extra int64) application.PurchasePackageResponse {
	t.Helper()
	f.seedWallet("brand-1", price+extra)
	f.seedInfluencer("inf-1", "inf-user-1")
	f.seedPackage("pkg-1", "inf-1", price)
	resp, err := f.service.PurchasePackage(context.Background(), application.PurchasePackageRequest{
		BrandUserID: "brand-1",
		PackageID:   "pkg-1",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	return resp
}

// publishDirect walks a freshly purchased campaign through accept, draft,
// approval and publish.
func (f *fixture) publishDirect(t *testing.T, campaignID string) {
	t.Helper()
	ctx := context.Background()
	if err := f.service.AcceptCampaign(ctx, campaignID, "inf-1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := f.service.SubmitDraft(ctx, application.SubmitDraftRequest{
		CampaignID:        campaignID,
		ActorInfluencerID: "inf-1",
		ContentType:       "reel",
		Platform:          "instagram",
		DraftText:         "first cut",
	}); err != nil {
		t.Fatalf("submit draft failed: %v", err)
	}
	if err := f.service.ApproveDraft(ctx, campaignID, "brand-1"); err != nil {
		t.Fatalf("approve draft failed: %v", err)
	}
	if err := f.service.MarkPublished(ctx, application.MarkPublishedRequest{
		CampaignID:        campaignID,
		ActorInfluencerID: "inf-1",
	}); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []domain.Notification
	fails bool
}

func (f *fakeNotifier) Notify(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails {
		return fmt.Errorf("sink unavailable")
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) byType(notificationType string) []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.sent {
		if n.Type == notificationType {
			out = append(out, n)
		}
	}
	return out
}

// memStore backs the service with maps and implements the transactional
// contract by snapshotting before the callback and restoring on error, so
// rollback semantics match the real store.
type memStore struct {
	mu sync.Mutex

	wallets      map[string]domain.Wallet
	transactions map[string]domain.LedgerTransaction
	holds        map[string]domain.EscrowHold
	campaigns    map[string]domain.Campaign
	bids         map[string]domain.Bid
	deliverables map[string]domain.Deliverable
	proofs       map[string]domain.ProofOfWork
	disputes     map[string]domain.Dispute
	packages     map[string]domain.Package
	influencers  map[string]domain.InfluencerProfile
	products     map[string]domain.Product
	orders       map[string]domain.Order
	commissions  map[string]domain.AffiliateCommission

	txOrder          []string
	holdOrder        []string
	bidOrder         []string
	deliverableOrder []string
}

func newMemStore() *memStore {
	return &memStore{
		wallets:      map[string]domain.Wallet{},
		transactions: map[string]domain.LedgerTransaction{},
		holds:        map[string]domain.EscrowHold{},
		campaigns:    map[string]domain.Campaign{},
		bids:         map[string]domain.Bid{},
		deliverables: map[string]domain.Deliverable{},
		proofs:       map[string]domain.ProofOfWork{},
		disputes:     map[string]domain.Dispute{},
		packages:     map[string]domain.Package{},
		influencers:  map[string]domain.InfluencerProfile{},
		products:     map[string]domain.Product{},
		orders:       map[string]domain.Order{},
		commissions:  map[string]domain.AffiliateCommission{},
	}
}

type memSnapshot struct {
	wallets      map[string]domain.Wallet
	transactions map[string]domain.LedgerTransaction
	holds        map[string]domain.EscrowHold
	campaigns    map[string]domain.Campaign
	bids         map[string]domain.Bid
	deliverables map[string]domain.Deliverable
	proofs       map[string]domain.ProofOfWork
	disputes     map[string]domain.Dispute
	packages     map[string]domain.Package
	influencers  map[string]domain.InfluencerProfile
	products     map[string]domain.Product
	orders       map[string]domain.Order
	commissions  map[string]domain.AffiliateCommission

	txOrder          []string
	holdOrder        []string
	bidOrder         []string
	deliverableOrder []string
}

func (m *memStore) snapshot() memSnapshot {
	return memSnapshot{
		wallets:      maps.Clone(m.wallets),
		transactions: maps.Clone(m.transactions),
		holds:        maps.Clone(m.holds),
		campaigns:    maps.Clone(m.campaigns),
		bids:         maps.Clone(m.bids),
		deliverables: maps.Clone(m.deliverables),
		proofs:       maps.Clone(m.proofs),
		disputes:     maps.Clone(m.disputes),
		packages:     maps.Clone(m.packages),
		influencers:  maps.Clone(m.influencers),
		products:     maps.Clone(m.products),
		orders:       maps.Clone(m.orders),
		commissions:  maps.Clone(m.commissions),

		txOrder:          slices.Clone(m.txOrder),
		holdOrder:        slices.Clone(m.holdOrder),
		bidOrder:         slices.Clone(m.bidOrder),
		deliverableOrder: slices.Clone(m.deliverableOrder),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.wallets = s.wallets
	m.transactions = s.transactions
	m.holds = s.holds
	m.campaigns = s.campaigns
	m.bids = s.bids
	m.deliverables = s.deliverables
	m.proofs = s.proofs
	m.disputes = s.disputes
	m.packages = s.packages
	m.influencers = s.influencers
	m.products = s.products
	m.orders = s.orders
	m.commissions = s.commissions

	m.txOrder = s.txOrder
	m.holdOrder = s.holdOrder
	m.bidOrder = s.bidOrder
	m.deliverableOrder = s.deliverableOrder
}

func (m *memStore) InTx(_ context.Context, fn func(tx ports.SettlementTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func notFoundErr(kind, id string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
}

func (m *memStore) WalletForUpdate(userID string) (domain.Wallet, error) {
	for _, w := range m.wallets {
		if w.UserID == userID {
			return w, nil
		}
	}
	return domain.Wallet{}, notFoundErr("wallet for user", userID)
}

func (m *memStore) WalletByIDForUpdate(walletID string) (domain.Wallet, error) {
	w, ok := m.wallets[walletID]
	if !ok {
		return domain.Wallet{}, notFoundErr("wallet", walletID)
	}
	return w, nil
}

func (m *memStore) CreateWallet(w domain.Wallet) error {
	m.wallets[w.WalletID] = w
	return nil
}

func (m *memStore) SaveWallet(w domain.Wallet) error {
	m.wallets[w.WalletID] = w
	return nil
}

func (m *memStore) CreateTransaction(t domain.LedgerTransaction) error {
	m.transactions[t.TransactionID] = t
	m.txOrder = append(m.txOrder, t.TransactionID)
	return nil
}

func (m *memStore) TransactionForUpdate(txnID string) (domain.LedgerTransaction, error) {
	t, ok := m.transactions[txnID]
	if !ok {
		return domain.LedgerTransaction{}, notFoundErr("transaction", txnID)
	}
	return t, nil
}

func (m *memStore) SaveTransaction(t domain.LedgerTransaction) error {
	m.transactions[t.TransactionID] = t
	return nil
}

func (m *memStore) CreateHold(h domain.EscrowHold) error {
	m.holds[h.EscrowID] = h
	m.holdOrder = append(m.holdOrder, h.EscrowID)
	return nil
}

func (m *memStore) HoldForUpdate(escrowID string) (domain.EscrowHold, error) {
	h, ok := m.holds[escrowID]
	if !ok {
		return domain.EscrowHold{}, notFoundErr("hold", escrowID)
	}
	return h, nil
}

func (m *memStore) SaveHold(h domain.EscrowHold) error {
	m.holds[h.EscrowID] = h
	return nil
}

func (m *memStore) CreateCampaign(c domain.Campaign) error {
	m.campaigns[c.CampaignID] = c
	return nil
}

func (m *memStore) CampaignForUpdate(campaignID string) (domain.Campaign, error) {
	c, ok := m.campaigns[campaignID]
	if !ok {
		return domain.Campaign{}, notFoundErr("campaign", campaignID)
	}
	return c, nil
}

func (m *memStore) SaveCampaign(c domain.Campaign) error {
	m.campaigns[c.CampaignID] = c
	return nil
}

func (m *memStore) CreateBid(b domain.Bid) error {
	m.bids[b.BidID] = b
	m.bidOrder = append(m.bidOrder, b.BidID)
	return nil
}

func (m *memStore) BidForUpdate(bidID string) (domain.Bid, error) {
	b, ok := m.bids[bidID]
	if !ok {
		return domain.Bid{}, notFoundErr("bid", bidID)
	}
	return b, nil
}

func (m *memStore) SaveBid(b domain.Bid) error {
	m.bids[b.BidID] = b
	return nil
}

func (m *memStore) PendingBids(campaignID string) ([]domain.Bid, error) {
	var out []domain.Bid
	for _, id := range m.bidOrder {
		b := m.bids[id]
		if b.CampaignID == campaignID && b.Status == domain.BidStatusPending {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) CreateDeliverable(d domain.Deliverable) error {
	m.deliverables[d.DeliverableID] = d
	m.deliverableOrder = append(m.deliverableOrder, d.DeliverableID)
	return nil
}

func (m *memStore) DeliverablesByCampaign(campaignID string) ([]domain.Deliverable, error) {
	var out []domain.Deliverable
	for _, id := range m.deliverableOrder {
		d := m.deliverables[id]
		if d.CampaignID == campaignID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) SaveDeliverable(d domain.Deliverable) error {
	m.deliverables[d.DeliverableID] = d
	return nil
}

func (m *memStore) CreateProof(p domain.ProofOfWork) error {
	m.proofs[p.ProofID] = p
	return nil
}

func (m *memStore) ProofForUpdate(proofID string) (domain.ProofOfWork, error) {
	p, ok := m.proofs[proofID]
	if !ok {
		return domain.ProofOfWork{}, notFoundErr("proof", proofID)
	}
	return p, nil
}

func (m *memStore) ApprovedProofExists(bidID string) (bool, error) {
	for _, p := range m.proofs {
		if p.BidID == bidID && p.Status == domain.ProofStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SaveProof(p domain.ProofOfWork) error {
	m.proofs[p.ProofID] = p
	return nil
}

func (m *memStore) CreateDispute(d domain.Dispute) error {
	m.disputes[d.DisputeID] = d
	return nil
}

func (m *memStore) DisputeForUpdate(disputeID string) (domain.Dispute, error) {
	d, ok := m.disputes[disputeID]
	if !ok {
		return domain.Dispute{}, notFoundErr("dispute", disputeID)
	}
	return d, nil
}

func (m *memStore) SaveDispute(d domain.Dispute) error {
	m.disputes[d.DisputeID] = d
	return nil
}

func (m *memStore) PackageForUpdate(packageID string) (domain.Package, error) {
	p, ok := m.packages[packageID]
	if !ok {
		return domain.Package{}, notFoundErr("package", packageID)
	}
	return p, nil
}

func (m *memStore) SavePackage(p domain.Package) error {
	m.packages[p.PackageID] = p
	return nil
}

func (m *memStore) InfluencerForUpdate(influencerID string) (domain.InfluencerProfile, error) {
	p, ok := m.influencers[influencerID]
	if !ok {
		return domain.InfluencerProfile{}, notFoundErr("influencer", influencerID)
	}
	return p, nil
}

func (m *memStore) SaveInfluencer(p domain.InfluencerProfile) error {
	m.influencers[p.InfluencerID] = p
	return nil
}

func (m *memStore) Product(productID string) (domain.Product, error) {
	p, ok := m.products[productID]
	if !ok {
		return domain.Product{}, notFoundErr("product", productID)
	}
	return p, nil
}

func (m *memStore) CreateOrder(o domain.Order) error {
	m.orders[o.OrderID] = o
	return nil
}

func (m *memStore) OrderForUpdate(orderID string) (domain.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, notFoundErr("order", orderID)
	}
	return o, nil
}

func (m *memStore) SaveOrder(o domain.Order) error {
	m.orders[o.OrderID] = o
	return nil
}

func (m *memStore) CreateCommission(c domain.AffiliateCommission) error {
	m.commissions[c.CommissionID] = c
	return nil
}

func (m *memStore) CommissionByOrderForUpdate(orderID string) (domain.AffiliateCommission, error) {
	for _, c := range m.commissions {
		if c.OrderID == orderID {
			return c, nil
		}
	}
	return domain.AffiliateCommission{}, notFoundErr("commission for order", orderID)
}

func (m *memStore) SaveCommission(c domain.AffiliateCommission) error {
	m.commissions[c.CommissionID] = c
	return nil
}

func (m *memStore) Wallet(_ context.Context, userID string) (domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.WalletForUpdate(userID)
}

func (m *memStore) Campaign(_ context.Context, campaignID string) (domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CampaignForUpdate(campaignID)
}

func (m *memStore) Hold(_ context.Context, escrowID string) (domain.EscrowHold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.HoldForUpdate(escrowID)
}

func (m *memStore) Bid(_ context.Context, bidID string) (domain.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.BidForUpdate(bidID)
}

func (m *memStore) Dispute(_ context.Context, disputeID string) (domain.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.DisputeForUpdate(disputeID)
}

func (m *memStore) Order(_ context.Context, orderID string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.OrderForUpdate(orderID)
}

func (m *memStore) Transactions(_ context.Context, walletID string, limit int) ([]domain.LedgerTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerTransaction
	for i := len(m.txOrder) - 1; i >= 0 && len(out) < limit; i-- {
		t := m.transactions[m.txOrder[i]]
		if t.FromWalletID == walletID || t.ToWalletID == walletID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) HoldsPastAutoRelease(_ context.Context, now time.Time, limit int) ([]domain.EscrowHold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EscrowHold
	for _, id := range m.holdOrder {
		if len(out) >= limit {
			break
		}
		h := m.holds[id]
		if h.IsPastAutoRelease(now) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStore) transactionsOfType(tt domain.TransactionType) []domain.LedgerTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerTransaction
	for _, id := range m.txOrder {
		if t := m.transactions[id]; t.Type == tt {
			out = append(out, t)
		}
	}
	return out
}
