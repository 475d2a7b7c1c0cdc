package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusContacted OrderStatus = "contacted"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusContacted, OrderStatusFulfilled, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: order status %q", ErrInvalidInput, s)
}

type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

func ParseCommissionStatus(s string) (CommissionStatus, error) {
	switch CommissionStatus(s) {
	case CommissionStatusPending, CommissionStatusPaid, CommissionStatusCancelled:
		return CommissionStatus(s), nil
	}
	return "", fmt.Errorf("%w: commission status %q", ErrInvalidInput, s)
}

type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFixed      CommissionType = "fixed"
)

func ParseCommissionType(s string) (CommissionType, error) {
	switch CommissionType(s) {
	case CommissionTypePercentage, CommissionTypeFixed:
		return CommissionType(s), nil
	}
	return "", fmt.Errorf("%w: commission type %q", ErrInvalidInput, s)
}

// Product is an affiliate-commerce listing. Rates are basis points so no
// floating point ever touches funds.
type Product struct {
	ProductID          string
	BrandUserID        string
	Name               string
	PriceCents         int64
	IsDigital          bool
	Active             bool
	CommissionType     CommissionType
	CommissionRateBps  int   // percentage mode: bps of order total
	FixedCommission    int64 // fixed mode: cents per order
	PlatformFeeType    CommissionType
	PlatformFeeRateBps int   // percentage mode: bps of gross commission
	FixedPlatformFee   int64 // fixed mode: cents per order
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CommissionBreakdown is the computed (not yet moved) split for one order.
type CommissionBreakdown struct {
	GrossCommission int64
	PlatformFee     int64
	NetCommission   int64
	BrandReceives   int64
}

// ComputeCommission derives the commission split from the product settings.
// Both division steps truncate toward zero, consistently with escrow fees.
func ComputeCommission(p Product, orderTotal int64) (CommissionBreakdown, error) {
	if orderTotal <= 0 {
		return CommissionBreakdown{}, fmt.Errorf("%w: order total must be positive", ErrInvalidInput)
	}
	var gross int64
	switch p.CommissionType {
	case CommissionTypePercentage:
		gross = orderTotal * int64(p.CommissionRateBps) / 10000
	case CommissionTypeFixed:
		gross = p.FixedCommission
	default:
		return CommissionBreakdown{}, fmt.Errorf("%w: commission type %q", ErrInvalidInput, p.CommissionType)
	}
	if gross > orderTotal {
		gross = orderTotal
	}
	var fee int64
	switch p.PlatformFeeType {
	case CommissionTypePercentage:
		fee = gross * int64(p.PlatformFeeRateBps) / 10000
	case CommissionTypeFixed:
		fee = p.FixedPlatformFee
	default:
		return CommissionBreakdown{}, fmt.Errorf("%w: platform fee type %q", ErrInvalidInput, p.PlatformFeeType)
	}
	if fee > gross {
		fee = gross
	}
	return CommissionBreakdown{
		GrossCommission: gross,
		PlatformFee:     fee,
		NetCommission:   gross - fee,
		BrandReceives:   orderTotal - gross,
	}, nil
}

// Order records an affiliate-commerce purchase. The product payment itself
// moves outside the platform; only the commission settles through wallets.
type Order struct {
	OrderID      string
	OrderNumber  string
	ProductID    string
	BrandUserID  string
	InfluencerID string // attributed influencer, empty when organic
	BuyerName    string
	BuyerContact string
	Quantity     int
	TotalCents   int64
	Status       OrderStatus
	FulfilledAt  *time.Time
	CancelledAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MarkFulfilled is the one transition allowed to trigger a commission
// payout. It is edge-triggered: calling it on an already fulfilled order is
// an error, not a no-op, so a payout can never repeat.
func (o *Order) MarkFulfilled(at time.Time) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusContacted {
		return fmt.Errorf("%w: order %s is %s", ErrInvalidState, o.OrderID, o.Status)
	}
	o.Status = OrderStatusFulfilled
	done := at
	o.FulfilledAt = &done
	o.UpdatedAt = at
	return nil
}

func (o *Order) MarkContacted(at time.Time) error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: order %s is %s", ErrInvalidState, o.OrderID, o.Status)
	}
	o.Status = OrderStatusContacted
	o.UpdatedAt = at
	return nil
}

func (o *Order) MarkCancelled(at time.Time) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusContacted {
		return fmt.Errorf("%w: order %s is %s", ErrInvalidState, o.OrderID, o.Status)
	}
	o.Status = OrderStatusCancelled
	done := at
	o.CancelledAt = &done
	o.UpdatedAt = at
	return nil
}

// AffiliateCommission is computed at order placement and paid exactly once
// on order fulfillment, directly into the influencer wallet. No escrow.
type AffiliateCommission struct {
	CommissionID    string
	OrderID         string
	InfluencerID    string
	ProductID       string
	GrossCommission int64
	PlatformFee     int64
	NetCommission   int64
	Status          CommissionStatus
	LedgerTxID      string
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MarkPaid binds the commission to the ledger transaction that paid it.
func (ac *AffiliateCommission) MarkPaid(ledgerTxID string, at time.Time) error {
	if ac.Status != CommissionStatusPending {
		return fmt.Errorf("%w: commission %s is %s", ErrInvalidState, ac.CommissionID, ac.Status)
	}
	ac.Status = CommissionStatusPaid
	ac.LedgerTxID = ledgerTxID
	paid := at
	ac.PaidAt = &paid
	ac.UpdatedAt = at
	return nil
}

// MarkCancelled voids a commission whose order was cancelled before
// fulfillment. No money ever moved, so nothing reverses.
func (ac *AffiliateCommission) MarkCancelled(at time.Time) error {
	if ac.Status != CommissionStatusPending {
		return fmt.Errorf("%w: commission %s is %s", ErrInvalidState, ac.CommissionID, ac.Status)
	}
	ac.Status = CommissionStatusCancelled
	ac.UpdatedAt = at
	return nil
}
