package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/smartsplit/expense-splitter/internal/ledger"
	"github.com/smartsplit/expense-splitter/internal/models"
)

func newLedgerFixture(memberIDs ...string) (*BalanceService, *fakeBalances) {
	users := newFakeUsers(memberIDs...)
	groups := newFakeGroups()
	groups.seed(models.Group{ID: "g1", Name: "trip", OwnerID: memberIDs[0], MemberIDs: memberIDs[1:]})
	balances := newFakeBalances()
	return NewBalanceService(balances, groups, users, nil, nil, nil), balances
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyDeltaAccumulates(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("10")); err != nil {
		t.Fatalf("first delta: %v", err)
	}
	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("20")); err != nil {
		t.Fatalf("second delta: %v", err)
	}

	e, ok := balances.entry("g1", "bob", "alice")
	if !ok {
		t.Fatal("expected bob->alice entry")
	}
	if !e.Amount.Equal(amt("30")) {
		t.Fatalf("amount = %s, want 30", e.Amount)
	}
}

func TestApplyDeltaKeepsOppositeEdges(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("20")); err != nil {
		t.Fatalf("bob->alice: %v", err)
	}
	if err := svc.ApplyDelta(ctx, "g1", "alice", "bob", amt("5")); err != nil {
		t.Fatalf("alice->bob: %v", err)
	}

	// No automatic netting; both directions stay until an optimize pass.
	if balances.count() != 2 {
		t.Fatalf("entries = %d, want 2", balances.count())
	}
}

func TestApplyDeltaValidation(t *testing.T) {
	svc, _ := newLedgerFixture("alice", "bob")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("0")); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("zero amount err = %v, want ErrInvalidAmount", err)
	}
	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("-3")); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("negative amount err = %v, want ErrInvalidAmount", err)
	}
	if err := svc.ApplyDelta(ctx, "nope", "bob", "alice", amt("5")); !errors.Is(err, ledger.ErrGroupNotFound) {
		t.Fatalf("unknown group err = %v, want ErrGroupNotFound", err)
	}
	if err := svc.ApplyDelta(ctx, "g1", "ghost", "alice", amt("5")); !errors.Is(err, ledger.ErrUserNotFound) {
		t.Fatalf("unknown debtor err = %v, want ErrUserNotFound", err)
	}
}

func TestSettlePartialAndExact(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("50")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pre, err := svc.Settle(ctx, "g1", "bob", "alice", amt("20"))
	if err != nil {
		t.Fatalf("partial settle: %v", err)
	}
	if !pre.Amount.Equal(amt("50")) {
		t.Fatalf("pre-image amount = %s, want 50", pre.Amount)
	}
	e, _ := balances.entry("g1", "bob", "alice")
	if !e.Amount.Equal(amt("30")) {
		t.Fatalf("after partial = %s, want 30", e.Amount)
	}

	// Paying down to zero removes the entry.
	if _, err := svc.Settle(ctx, "g1", "bob", "alice", amt("30")); err != nil {
		t.Fatalf("exact settle: %v", err)
	}
	if _, ok := balances.entry("g1", "bob", "alice"); ok {
		t.Fatal("entry should be gone after paying in full")
	}
}

func TestSettleRejectsBadPayments(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob")
	ctx := context.Background()

	if _, err := svc.Settle(ctx, "g1", "bob", "alice", amt("10")); !errors.Is(err, ledger.ErrNoOutstandingBalance) {
		t.Fatalf("missing edge err = %v, want ErrNoOutstandingBalance", err)
	}

	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("10")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Settle(ctx, "g1", "bob", "alice", amt("10.01")); !errors.Is(err, ledger.ErrAmountExceedsBalance) {
		t.Fatalf("overpay err = %v, want ErrAmountExceedsBalance", err)
	}
	// The rejected payment must not have touched the entry.
	e, _ := balances.entry("g1", "bob", "alice")
	if !e.Amount.Equal(amt("10")) {
		t.Fatalf("entry after rejected overpay = %s, want 10", e.Amount)
	}

	// The reverse direction has no entry of its own.
	if _, err := svc.Settle(ctx, "g1", "alice", "bob", amt("5")); !errors.Is(err, ledger.ErrNoOutstandingBalance) {
		t.Fatalf("reverse edge err = %v, want ErrNoOutstandingBalance", err)
	}
}

func TestCompensatingDeltaSpillsToReverseEdge(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("10")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Undoing more debt than the edge holds flips the remainder.
	err := svc.ApplyDeltas(ctx, "g1", []Delta{{
		DebtorID: "bob", CreditorID: "alice", Amount: amt("15"), Compensating: true,
	}})
	if err != nil {
		t.Fatalf("compensate: %v", err)
	}

	if _, ok := balances.entry("g1", "bob", "alice"); ok {
		t.Fatal("original edge should be gone")
	}
	rev, ok := balances.entry("g1", "alice", "bob")
	if !ok {
		t.Fatal("expected spill onto alice->bob")
	}
	if !rev.Amount.Equal(amt("5")) {
		t.Fatalf("spilled amount = %s, want 5", rev.Amount)
	}
}

func TestOptimizeDebtsCollapsesChain(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob", "carol")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "alice", "bob", amt("20")); err != nil {
		t.Fatalf("seed a->b: %v", err)
	}
	if err := svc.ApplyDelta(ctx, "g1", "bob", "carol", amt("20")); err != nil {
		t.Fatalf("seed b->c: %v", err)
	}

	txs, err := svc.OptimizeDebts(ctx, "g1")
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	if txs[0].FromUser != "alice" || txs[0].ToUser != "carol" || !txs[0].Amount.Equal(amt("20")) {
		t.Fatalf("unexpected transaction %+v", txs[0])
	}

	// The ledger was rewritten to match.
	if balances.count() != 1 {
		t.Fatalf("entries after rewrite = %d, want 1", balances.count())
	}
	e, ok := balances.entry("g1", "alice", "carol")
	if !ok || !e.Amount.Equal(amt("20")) {
		t.Fatalf("rewritten entry = %+v (found=%v)", e, ok)
	}
}

func TestOptimizeDebtsNetsOppositeEdges(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("30")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.ApplyDelta(ctx, "g1", "alice", "bob", amt("12")); err != nil {
		t.Fatalf("seed reverse: %v", err)
	}

	txs, err := svc.OptimizeDebts(ctx, "g1")
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	e, ok := balances.entry("g1", "bob", "alice")
	if !ok || !e.Amount.Equal(amt("18")) {
		t.Fatalf("netted entry = %+v (found=%v)", e, ok)
	}
	if _, ok := balances.entry("g1", "alice", "bob"); ok {
		t.Fatal("reverse edge should be gone after optimize")
	}
}

func TestOptimizeDebtsEmptyGroup(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob")

	txs, err := svc.OptimizeDebts(context.Background(), "g1")
	if err != nil {
		t.Fatalf("optimize empty: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("transactions = %d, want 0", len(txs))
	}
	if balances.count() != 0 {
		t.Fatalf("entries = %d, want 0", balances.count())
	}
}

func TestOptimizeDebtsIdempotent(t *testing.T) {
	svc, balances := newLedgerFixture("alice", "bob", "carol")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "alice", "bob", amt("20")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.ApplyDelta(ctx, "g1", "bob", "carol", amt("20")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first, err := svc.OptimizeDebts(ctx, "g1")
	if err != nil {
		t.Fatalf("first optimize: %v", err)
	}
	second, err := svc.OptimizeDebts(ctx, "g1")
	if err != nil {
		t.Fatalf("second optimize: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("second pass changed transaction count: %d vs %d", len(first), len(second))
	}
	if balances.count() != len(first) {
		t.Fatalf("entries = %d, want %d", balances.count(), len(first))
	}
}

func TestOptimizeDebtsRollsBackOnFailure(t *testing.T) {
	users := newFakeUsers("alice", "bob", "carol")
	groups := newFakeGroups()
	groups.seed(models.Group{ID: "g1", OwnerID: "alice", MemberIDs: []string{"bob", "carol"}})
	balances := newFakeBalances()
	svc := NewBalanceService(balances, groups, users, nil, nil, nil)
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "alice", "bob", amt("20")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.ApplyDelta(ctx, "g1", "bob", "carol", amt("20")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Fail the rewrite after the old graph was already deleted inside the tx.
	balances.failUpsertAfter = balances.upsertCalls + 1
	if _, err := svc.OptimizeDebts(ctx, "g1"); err == nil {
		t.Fatal("expected optimize to fail")
	}

	// The pre-optimization ledger must be intact.
	if balances.count() != 2 {
		t.Fatalf("entries after rollback = %d, want 2", balances.count())
	}
	if _, ok := balances.entry("g1", "alice", "bob"); !ok {
		t.Fatal("alice->bob entry lost in rollback")
	}
	if _, ok := balances.entry("g1", "bob", "carol"); !ok {
		t.Fatal("bob->carol entry lost in rollback")
	}
}

func TestListForGroupCachedSeesMutations(t *testing.T) {
	svc, _ := newLedgerFixture("alice", "bob")
	ctx := context.Background()

	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("10")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	first, err := svc.ListForGroupCached(ctx, "g1")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first read entries = %d, want 1", len(first))
	}

	// A mutation invalidates the cached summary.
	if err := svc.ApplyDelta(ctx, "g1", "bob", "alice", amt("5")); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	second, err := svc.ListForGroupCached(ctx, "g1")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(second) != 1 || !second[0].Amount.Equal(amt("15")) {
		t.Fatalf("cached read after mutation = %+v, want single entry of 15", second)
	}
}
