package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dexterhq/settlement/internal/domain"
	"github.com/dexterhq/settlement/internal/observability"
	"github.com/dexterhq/settlement/internal/ports"
)

type PlaceOrderRequest struct {
	ProductID    string
	InfluencerID string // attribution, empty when organic
	BuyerName    string
	BuyerContact string
	Quantity     int
}

type PlaceOrderResponse struct {
	Order      domain.Order
	Commission *domain.AffiliateCommission
}

// PlaceOrder records an affiliate-commerce purchase and computes the
// commission split. Money for the product itself moves outside the platform;
// only the commission settles through wallets, and only on fulfillment.
// Digital products auto-fulfill here, so their commission pays out in the
// same transaction.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResponse, error) {
	if req.ProductID == "" {
		return PlaceOrderResponse{}, fmt.Errorf("%w: order requires a product", domain.ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	now := s.nowFn()
	var resp PlaceOrderResponse
	var paidUserID string
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		product, err := tx.Product(req.ProductID)
		if err != nil {
			return err
		}
		if !product.Active {
			return fmt.Errorf("%w: product %s is not active", domain.ErrInvalidState, product.ProductID)
		}
		total := product.PriceCents * int64(req.Quantity)
		order := domain.Order{
			OrderID:      uuid.NewString(),
			OrderNumber:  orderNumber(now),
			ProductID:    product.ProductID,
			BrandUserID:  product.BrandUserID,
			InfluencerID: req.InfluencerID,
			BuyerName:    req.BuyerName,
			BuyerContact: req.BuyerContact,
			Quantity:     req.Quantity,
			TotalCents:   total,
			Status:       domain.OrderStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreateOrder(order); err != nil {
			return err
		}

		if req.InfluencerID != "" {
			breakdown, err := domain.ComputeCommission(product, total)
			if err != nil {
				return err
			}
			commission := domain.AffiliateCommission{
				CommissionID:    uuid.NewString(),
				OrderID:         order.OrderID,
				InfluencerID:    req.InfluencerID,
				ProductID:       product.ProductID,
				GrossCommission: breakdown.GrossCommission,
				PlatformFee:     breakdown.PlatformFee,
				NetCommission:   breakdown.NetCommission,
				Status:          domain.CommissionStatusPending,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := tx.CreateCommission(commission); err != nil {
				return err
			}
			resp.Commission = &commission
		}

		if product.IsDigital {
			if err := order.MarkFulfilled(now); err != nil {
				return err
			}
			if err := tx.SaveOrder(order); err != nil {
				return err
			}
			if resp.Commission != nil {
				userID, err := s.payCommission(tx, resp.Commission, now)
				if err != nil {
					return err
				}
				paidUserID = userID
			}
		}
		resp.Order = order
		return nil
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("place_order", outcomeLabel(err)).Inc()
		return PlaceOrderResponse{}, err
	}
	observability.OperationsTotal.WithLabelValues("place_order", "ok").Inc()
	if paidUserID != "" && resp.Commission != nil {
		s.dispatch(ctx, []domain.Notification{notification(
			paidUserID, domain.NotificationCommissionPaid,
			"Commission paid",
			"Your affiliate commission was credited to your wallet.",
			map[string]any{"order_id": resp.Order.OrderID, "net_commission": resp.Commission.NetCommission},
		)})
	}
	return resp, nil
}

// UpdateOrderStatus applies a brand's order transition. The fulfilled
// transition is the only one that pays the commission, and it is
// edge-triggered: a second fulfilled call fails on the order state check, so
// a payout can never repeat.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, actorUserID string, to domain.OrderStatus) error {
	now := s.nowFn()
	var paidUserID string
	var netPaid int64
	err := s.store.InTx(ctx, func(tx ports.SettlementTx) error {
		order, err := tx.OrderForUpdate(orderID)
		if err != nil {
			return err
		}
		if order.BrandUserID != actorUserID {
			return fmt.Errorf("%w: order %s does not belong to user %s", domain.ErrUnauthorized, orderID, actorUserID)
		}
		switch to {
		case domain.OrderStatusContacted:
			if err := order.MarkContacted(now); err != nil {
				return err
			}
		case domain.OrderStatusFulfilled:
			if err := order.MarkFulfilled(now); err != nil {
				return err
			}
			if order.InfluencerID != "" {
				commission, err := tx.CommissionByOrderForUpdate(orderID)
				if err != nil {
					return err
				}
				userID, err := s.payCommission(tx, &commission, now)
				if err != nil {
					return err
				}
				paidUserID = userID
				netPaid = commission.NetCommission
			}
		case domain.OrderStatusCancelled:
			if err := order.MarkCancelled(now); err != nil {
				return err
			}
			if order.InfluencerID != "" {
				commission, err := tx.CommissionByOrderForUpdate(orderID)
				if err != nil {
					return err
				}
				// No money ever moved for a pending commission, so
				// cancellation is pure bookkeeping.
				if err := commission.MarkCancelled(now); err != nil {
					return err
				}
				if err := tx.SaveCommission(commission); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%w: order transition to %q", domain.ErrInvalidInput, to)
		}
		return tx.SaveOrder(order)
	})
	if err != nil {
		observability.OperationsTotal.WithLabelValues("update_order_status", outcomeLabel(err)).Inc()
		return err
	}
	observability.OperationsTotal.WithLabelValues("update_order_status", "ok").Inc()
	if paidUserID != "" {
		s.dispatch(ctx, []domain.Notification{notification(
			paidUserID, domain.NotificationCommissionPaid,
			"Commission paid",
			"Your affiliate commission was credited to your wallet.",
			map[string]any{"order_id": orderID, "net_commission": netPaid},
		)})
	}
	return nil
}

// payCommission credits the net commission straight into the influencer's
// wallet balance. No escrow step; the transfer transaction is the only
// ledger trace. Returns the credited user id for notification.
func (s *Service) payCommission(tx ports.SettlementTx, commission *domain.AffiliateCommission, now time.Time) (string, error) {
	influencer, err := tx.InfluencerForUpdate(commission.InfluencerID)
	if err != nil {
		return "", err
	}
	wallet, err := s.walletForUpdateOrCreate(tx, influencer.UserID, now)
	if err != nil {
		return "", err
	}
	if err := wallet.CreditEarnings(commission.NetCommission, now); err != nil {
		return "", err
	}
	if err := wallet.CheckInvariants(); err != nil {
		return "", err
	}
	if err := tx.SaveWallet(wallet); err != nil {
		return "", err
	}
	completed := now
	payoutTx := domain.LedgerTransaction{
		TransactionID: uuid.NewString(),
		ToWalletID:    wallet.WalletID,
		Amount:        commission.GrossCommission,
		Fee:           commission.PlatformFee,
		NetAmount:     commission.NetCommission,
		Type:          domain.TransactionTypeTransfer,
		Status:        domain.TransactionStatusCompleted,
		Description:   "affiliate commission for order " + commission.OrderID,
		CreatedAt:     now,
		CompletedAt:   &completed,
	}
	if err := tx.CreateTransaction(payoutTx); err != nil {
		return "", err
	}
	if err := commission.MarkPaid(payoutTx.TransactionID, now); err != nil {
		return "", err
	}
	if err := tx.SaveCommission(*commission); err != nil {
		return "", err
	}
	observability.CommissionCentsPaid.Add(float64(commission.NetCommission))
	return influencer.UserID, nil
}
