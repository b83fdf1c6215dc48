package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestShares(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		n      int
		want   string
	}{
		{"even split", "100", 2, "50"},
		{"thirds round half-up", "100", 3, "33.33"},
		{"half cent rounds up", "10.01", 2, "5.01"},
		{"single participant", "42.42", 1, "42.42"},
		{"sub-cent amount", "0.01", 3, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Shares(dec(tc.amount), tc.n)
			if err != nil {
				t.Fatalf("Shares(%s, %d): %v", tc.amount, tc.n, err)
			}
			if !got.Equal(dec(tc.want)) {
				t.Errorf("Shares(%s, %d) = %s, want %s", tc.amount, tc.n, got, tc.want)
			}
		})
	}
}

func TestSharesDriftBounded(t *testing.T) {
	// 100 split three ways gives 33.33 each; the sum may miss the original
	// amount, but never by more than (n-1) cents.
	amount := dec("100")
	n := 3
	share, err := Shares(amount, n)
	if err != nil {
		t.Fatal(err)
	}
	if share.Sign() < 0 {
		t.Fatalf("negative share %s", share)
	}
	sum := share.Mul(decimal.NewFromInt(int64(n)))
	drift := sum.Sub(amount).Abs()
	limit := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(n - 1)))
	if drift.Cmp(limit) > 0 {
		t.Errorf("drift %s exceeds %s", drift, limit)
	}
}

func TestSharesErrors(t *testing.T) {
	if _, err := Shares(dec("10"), 0); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("n=0: got %v, want ErrNoParticipants", err)
	}
	if _, err := Shares(dec("0"), 2); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := Shares(dec("-5"), 2); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
}
