package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPlatformFeeTruncatesTowardZero(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount  int64
		percent int
		want    int64
	}{
		{5000, 10, 500},
		{999, 10, 99},   // 99.9 truncates, payee keeps the fraction
		{101, 10, 10},   // 10.1
		{1, 10, 0},      // fee never exceeds what truncation yields
		{10000, 15, 1500},
		{0, 10, 0},
		{5000, 0, 0},
	}
	for _, tc := range cases {
		if got := PlatformFee(tc.amount, tc.percent); got != tc.want {
			t.Fatalf("PlatformFee(%d, %d) = %d, want %d", tc.amount, tc.percent, got, tc.want)
		}
	}
}

func TestSplitDisputedAlwaysReconciles(t *testing.T) {
	t.Parallel()

	amounts := []int64{1, 99, 100, 101, 9999, 10000, 1234567}
	for _, amount := range amounts {
		for pct := 0; pct <= 100; pct += 5 {
			refund, release := SplitDisputed(amount, pct)
			if refund+release != amount {
				t.Fatalf("split %d at %d%%: refund %d + release %d != %d", amount, pct, refund, release, amount)
			}
			if refund < 0 || release < 0 {
				t.Fatalf("split %d at %d%%: negative slice", amount, pct)
			}
		}
	}

	refund, release := SplitDisputed(10000, 30)
	if refund != 3000 || release != 7000 {
		t.Fatalf("split 10000 at 30%%: got %d/%d, want 3000/7000", refund, release)
	}
	refund, release = SplitDisputed(10000, 100)
	if refund != 10000 || release != 0 {
		t.Fatalf("split at 100%%: got %d/%d, want 10000/0", refund, release)
	}
}

func TestTransactionCompleteAndCancel(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	txn := LedgerTransaction{
		TransactionID: "t-1",
		Amount:        100,
		NetAmount:     100,
		Type:          TransactionTypeWithdrawal,
		Status:        TransactionStatusPending,
		CreatedAt:     now,
	}

	if err := txn.Complete(now); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if txn.Status != TransactionStatusCompleted || txn.CompletedAt == nil {
		t.Fatalf("completed transaction not marked: %+v", txn)
	}
	if err := txn.Complete(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double complete: got %v, want ErrInvalidState", err)
	}
	if err := txn.Cancel(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel after complete: got %v, want ErrInvalidState", err)
	}

	txn2 := LedgerTransaction{TransactionID: "t-2", Status: TransactionStatusProcessing}
	if err := txn2.Cancel(); err != nil {
		t.Fatalf("cancel of processing transaction failed: %v", err)
	}
	if txn2.Status != TransactionStatusCancelled {
		t.Fatalf("status = %s, want cancelled", txn2.Status)
	}
}

func TestParseTransactionType(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"deposit", "withdrawal", "escrow_lock", "escrow_release", "escrow_refund", "platform_fee", "transfer"} {
		if _, err := ParseTransactionType(code); err != nil {
			t.Fatalf("valid code %q rejected: %v", code, err)
		}
	}
	if _, err := ParseTransactionType("Deposit"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("case-normalized code should be rejected, got %v", err)
	}
	if _, err := ParseTransactionType("bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown code should be rejected, got %v", err)
	}
}
