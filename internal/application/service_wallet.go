package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/observability"
	"github.com/dexterhq/settlement/internal/ports"
)

type DepositRequest struct {
	UserID        string
	Amount        int64
	PaymentMethod string
	// ExternalRef is the payment-gateway reference proving the money arrived.
	// Gateway verification happens before this call, outside any wallet lock.
	ExternalRef string
}

// Deposit credits externally verified funds into a user wallet, creating
// the wallet on first contact.
func (s *Service) Deposit(ctx context.Context, req DepositRequest) (domain.LedgerTransaction, error) {
	if req.UserID == "" || req.Amount <= 0 {
		return domain.LedgerTransaction{}, fmt.Errorf("%w: deposit requires a user and a positive amount", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	var depositTx domain.LedgerTransaction
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		wallet, err := s.walletForUpdateOrCreate(tx, req.UserID, now)
		if err != nil {
			return err
		}
		if err := wallet.CreditDeposit(req.Amount, now); err != nil {
			return err
		}
		if err := wallet.CheckInvariants(); err != nil {
			return err
		}
		if err := tx.SaveWallet(wallet); err != nil {
			return err
		}
		completed := now
		depositTx = domain.LedgerTransaction{
			TransactionID: uuid.NewString(),
			ToWalletID:    wallet.WalletID,
			Amount:        req.Amount,
			NetAmount:     req.Amount,
			Type:          domain.TransactionTypeDeposit,
			Status:        domain.TransactionStatusCompleted,
			PaymentMethod: req.PaymentMethod,
			ExternalRef:   req.ExternalRef,
			Description:   "wallet deposit",
			CreatedAt:     now,
			CompletedAt:   &completed,
		}
		return tx.CreateTransaction(depositTx)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("deposit", outcomeLabel(err)).Inc()
		return domain.LedgerTransaction{}, err
	}
	observability.OperationsTotal.WithLabelValues("deposit", "ok").Inc()
	return depositTx, nil
}

type WithdrawalRequest struct {
	UserID        string
	Amount        int64
	PaymentMethod string
	Destination   string
}

// RequestWithdrawal holds the amount pending admin or gateway confirmation.
// The same hold mechanism as escrow is used on the wallet, but through a
// pending withdrawal transaction rather than an escrow hold row.
func (s *Service) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (domain.LedgerTransaction, error) {
	if req.UserID == "" {
		return domain.LedgerTransaction{}, fmt.Errorf("%w: withdrawal requires a user", domain.ErrInvalidInput)
	}
	if req.Amount < s.cfg.MinWithdrawalCents {
		return domain.LedgerTransaction{}, fmt.Errorf("%w: minimum withdrawal is %d", domain.ErrInvalidInput, s.cfg.MinWithdrawalCents)
	}
	now := s.nowFn()
	var withdrawalTx domain.LedgerTransaction
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		wallet, err := tx.WalletForUpdate(req.UserID)
		if err != nil {
			return err
		}
		if err := wallet.HoldFunds(req.Amount, now); err != nil {
			return err
		}
		if err := wallet.CheckInvariants(); err != nil {
			return err
		}
		if err := tx.SaveWallet(wallet); err != nil {
			return err
		}
		withdrawalTx = domain.LedgerTransaction{
			TransactionID: uuid.NewString(),
			FromWalletID:  wallet.WalletID,
			Amount:        req.Amount,
			NetAmount:     req.Amount,
			Type:          domain.TransactionTypeWithdrawal,
			Status:        domain.TransactionStatusPending,
			PaymentMethod: req.PaymentMethod,
			Description:   "withdrawal to " + req.Destination,
			CreatedAt:     now,
		}
		return tx.CreateTransaction(withdrawalTx)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("request_withdrawal", outcomeLabel(err)).Inc()
		return domain.LedgerTransaction{}, err
	}
	observability.OperationsTotal.WithLabelValues("request_withdrawal", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		req.UserID,
		domain.NotificationWithdrawalUpdate,
		"Withdrawal requested",
		"Your withdrawal request is pending review.",
		map[string]any{"transaction_id": withdrawalTx.TransactionID, "amount": req.Amount},
	)})
	return withdrawalTx, nil
}

// ApproveWithdrawal finalizes a pending withdrawal after the external payout
// succeeded: the held amount leaves the wallet for good.
func (s *Service) ApproveWithdrawal(ctx context.Context, transactionID, externalRef string) error {
	now := s.nowFn()
	var userID string
	var amount int64
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		withdrawalTx, err := tx.TransactionForUpdate(transactionID)
		if err != nil {
			return err
		}
		if withdrawalTx.Type != domain.TransactionTypeWithdrawal {
			return fmt.Errorf("%w: transaction %s is %s, not a withdrawal", domain.ErrInvalidState, transactionID, withdrawalTx.Type)
		}
		wallet, err := tx.WalletByIDForUpdate(withdrawalTx.FromWalletID)
		if err != nil {
			return err
		}
		if err := wallet.DebitWithdrawal(withdrawalTx.Amount, now); err != nil {
			return err
		}
		if err := wallet.CheckInvariants(); err != nil {
			return err
		}
		if err := tx.SaveWallet(wallet); err != nil {
			return err
		}
		if err := withdrawalTx.Complete(now); err != nil {
			return err
		}
		withdrawalTx.ExternalRef = externalRef
		if err := tx.SaveTransaction(withdrawalTx); err != nil {
			return err
		}
		userID = wallet.UserID
		amount = withdrawalTx.Amount
		return nil
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("approve_withdrawal", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("approve_withdrawal", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		userID,
		domain.NotificationWithdrawalUpdate,
		"Withdrawal completed",
		"Your withdrawal has been paid out.",
		map[string]any{"transaction_id": transactionID, "amount": amount},
	)})
	return nil
}

// RejectWithdrawal cancels a pending withdrawal and returns the held amount
// to spendable headroom.
func (s *Service) RejectWithdrawal(ctx context.Context, transactionID, reason string) error {
	now := s.nowFn()
	var userID string
	var amount int64
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		withdrawalTx, err := tx.TransactionForUpdate(transactionID)
		if err != nil {
			return err
		}
		if withdrawalTx.Type != domain.TransactionTypeWithdrawal {
			return fmt.Errorf("%w: transaction %s is %s, not a withdrawal", domain.ErrInvalidState, transactionID, withdrawalTx.Type)
		}
		wallet, err := tx.WalletByIDForUpdate(withdrawalTx.FromWalletID)
		if err != nil {
			return err
		}
		if err := wallet.RefundHeld(withdrawalTx.Amount, now); err != nil {
			return err
		}
		if err := wallet.CheckInvariants(); err != nil {
			return err
		}
		if err := tx.SaveWallet(wallet); err != nil {
			return err
		}
		if err := withdrawalTx.Cancel(); err != nil {
			return err
		}
		if err := tx.SaveTransaction(withdrawalTx); err != nil {
			return err
		}
		userID = wallet.UserID
		amount = withdrawalTx.Amount
		return nil
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("reject_withdrawal", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("reject_withdrawal", "ok").Inc()
	s.dispatch(ctx, []domain.Notification{notification(
		userID,
		domain.NotificationWithdrawalUpdate,
		"Withdrawal rejected",
		"Your withdrawal was rejected: "+reason,
		map[string]any{"transaction_id": transactionID, "amount": amount},
	)})
	return nil
}

// WalletBalance is the lock-free read used by balance displays.
func (s *Service) WalletBalance(ctx context.Context, userID string) (domain.Wallet, error) {
	return s.reader.Wallet(ctx, userID)
}

// WalletHistory lists recent ledger transactions for a wallet.
func (s *Service) WalletHistory(ctx context.Context, walletID string, limit int) ([]domain.LedgerTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.reader.Transactions(ctx, walletID, limit)
}
