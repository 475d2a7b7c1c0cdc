package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/observability"
	"github.com/dexterhq/settlement/internal/ports"
)

// lockEscrow debits the payer's spendable headroom into a new hold. The
// escrow_lock transaction, the wallet mutation and the hold row are created
// together; if any step fails the enclosing transaction rolls all of it back.
func (s *Service) lockEscrow(tx ports.SettlementTx, payerUserID, campaignID string, amount int64, autoReleaseAt time.Time, description string, now time.Time) (domain.EscrowHold, error) {
	wallet, err := tx.WalletForUpdate(payerUserID)
	if err != nil {
		return domain.EscrowHold{}, err
	}
	if err := wallet.HoldFunds(amount, now); err != nil {
		return domain.EscrowHold{}, err
	}
	if err := wallet.CheckInvariants(); err != nil {
		return domain.EscrowHold{}, err
	}
	if err := tx.SaveWallet(wallet); err != nil {
		return domain.EscrowHold{}, err
	}

	completed := now
	lockTx := domain.LedgerTransaction{
		TransactionID: uuid.NewString(),
		FromWalletID:  wallet.WalletID,
		Amount:        amount,
		NetAmount:     amount,
		Type:          domain.TransactionTypeEscrowLock,
		Status:        domain.TransactionStatusCompleted,
		Description:   description,
		CreatedAt:     now,
		CompletedAt:   &completed,
	}
	if err := tx.CreateTransaction(lockTx); err != nil {
		return domain.EscrowHold{}, err
	}

	hold := domain.EscrowHold{
		EscrowID:      uuid.NewString(),
		TransactionID: lockTx.TransactionID,
		CampaignID:    campaignID,
		PayerUserID:   payerUserID,
		Amount:        amount,
		Status:        domain.EscrowStatusLocked,
		LockedAt:      now,
		AutoReleaseAt: autoReleaseAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.CreateHold(hold); err != nil {
		return domain.EscrowHold{}, err
	}
	observability.EscrowCentsMoved.WithLabelValues("locked").Add(float64(amount))
	return hold, nil
}

// releaseEscrow closes a hold in the payee's favor: the full held amount
// leaves the payer's wallet, the payee is credited net of the platform fee.
// Fee truncation rounds down, a committed contract, so the payee keeps the
// fractional cent and lock amount always equals net plus fee exactly.
func (s *Service) releaseEscrow(tx ports.SettlementTx, hold *domain.EscrowHold, payeeUserID, description string, now time.Time) (net int64, err error) {
	if hold.Status != domain.EscrowStatusLocked && hold.Status != domain.EscrowStatusDisputed {
		return 0, fmt.Errorf("%w: hold %s is %s", domain.ErrInvalidState, hold.EscrowID, hold.Status)
	}
	payer, err := tx.WalletForUpdate(hold.PayerUserID)
	if err != nil {
		return 0, err
	}
	if err := payer.ReleaseHeld(hold.Amount, now); err != nil {
		return 0, err
	}
	if err := payer.CheckInvariants(); err != nil {
		return 0, err
	}
	if err := tx.SaveWallet(payer); err != nil {
		return 0, err
	}

	fee := domain.PlatformFee(hold.Amount, s.cfg.PlatformFeePercent)
	net = hold.Amount - fee

	payee, err := s.walletForUpdateOrCreate(tx, payeeUserID, now)
	if err != nil {
		return 0, err
	}
	if err := payee.CreditEarnings(net, now); err != nil {
		return 0, err
	}
	if err := tx.SaveWallet(payee); err != nil {
		return 0, err
	}

	completed := now
	releaseTx := domain.LedgerTransaction{
		TransactionID: uuid.NewString(),
		FromWalletID:  payer.WalletID,
		ToWalletID:    payee.WalletID,
		Amount:        hold.Amount,
		Fee:           fee,
		NetAmount:     net,
		Type:          domain.TransactionTypeEscrowRelease,
		Status:        domain.TransactionStatusCompleted,
		Description:   description,
		CreatedAt:     now,
		CompletedAt:   &completed,
	}
	if err := tx.CreateTransaction(releaseTx); err != nil {
		return 0, err
	}
	if err := hold.MarkReleased(releaseTx.TransactionID, now); err != nil {
		return 0, err
	}
	if err := tx.SaveHold(*hold); err != nil {
		return 0, err
	}
	observability.EscrowCentsMoved.WithLabelValues("released").Add(float64(hold.Amount))
	return net, nil
}

// refundEscrow closes a hold in the payer's favor. Only hold_balance moves:
// the lock never removed the money from balance, so nothing is credited
// back.
func (s *Service) refundEscrow(tx ports.SettlementTx, hold *domain.EscrowHold, description string, now time.Time) error {
	if hold.Status != domain.EscrowStatusLocked && hold.Status != domain.EscrowStatusDisputed {
		return fmt.Errorf("%w: hold %s is %s", domain.ErrInvalidState, hold.EscrowID, hold.Status)
	}
	payer, err := tx.WalletForUpdate(hold.PayerUserID)
	if err != nil {
		return err
	}
	if err := payer.RefundHeld(hold.Amount, now); err != nil {
		return err
	}
	if err := payer.CheckInvariants(); err != nil {
		return err
	}
	if err := tx.SaveWallet(payer); err != nil {
		return err
	}

	completed := now
	refundTx := domain.LedgerTransaction{
		TransactionID: uuid.NewString(),
		ToWalletID:    payer.WalletID,
		Amount:        hold.Amount,
		NetAmount:     hold.Amount,
		Type:          domain.TransactionTypeEscrowRefund,
		Status:        domain.TransactionStatusCompleted,
		Description:   description,
		CreatedAt:     now,
		CompletedAt:   &completed,
	}
	if err := tx.CreateTransaction(refundTx); err != nil {
		return err
	}
	if err := hold.MarkRefunded(refundTx.TransactionID, now); err != nil {
		return err
	}
	if err := tx.SaveHold(*hold); err != nil {
		return err
	}
	observability.EscrowCentsMoved.WithLabelValues("refunded").Add(float64(hold.Amount))
	return nil
}

// walletForUpdateOrCreate provisions a payee wallet lazily; influencers who
// have never deposited still need somewhere to receive a release.
func (s *Service) walletForUpdateOrCreate(tx ports.SettlementTx, userID string, now time.Time) (domain.Wallet, error) {
	wallet, err := tx.WalletForUpdate(userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Wallet{}, err
	}
	wallet = domain.Wallet{
		WalletID:  uuid.NewString(),
		UserID:    userID,
		Currency:  s.cfg.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.CreateWallet(wallet); err != nil {
		return domain.Wallet{}, err
	}
	return wallet, nil
}

// IsPastAutoRelease exposes the auto-release predicate to external
// schedulers. The engine never acts on the deadline by itself.
func (s *Service) IsPastAutoRelease(ctx context.Context, escrowID string) (bool, error) {
	hold, err := s.reader.Hold(ctx, escrowID)
	if err != nil {
		return false, err
	}
	return hold.IsPastAutoRelease(s.nowFn()), nil
}

// SweepAutoReleases completes campaigns whose published work the brand left
// unreviewed past the hold deadline. It is the cron-equivalent caller at the
// auto-release seam; campaigns not yet published, and disputed holds, are
// left alone for a human.
func (s *Service) SweepAutoReleases(ctx context.Context) (released int, err error) {
	now := s.nowFn()
	holds, err := s.reader.HoldsPastAutoRelease(ctx, now, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}
	for _, hold := range holds {
		if hold.CampaignID == "" {
			continue
		}
		if err := s.completeCampaign(ctx, hold.CampaignID, "", true); err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				continue
			}
			slog.Default().ErrorContext(ctx, "auto-release sweep failed",
				"module", "settlement",
				"layer", "application",
				"operation", "sweep_auto_releases",
				"outcome", "error",
				"escrow_id", hold.EscrowID,
				"campaign_id", hold.CampaignID,
				"error", err,
			)
			continue
		}
		released++
	}
	return released, nil
}
