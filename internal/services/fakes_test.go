package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/smartsplit/expense-splitter/internal/ledger"
	"github.com/smartsplit/expense-splitter/internal/models"
	repo "github.com/smartsplit/expense-splitter/internal/repository"
)

// In-memory fakes for the repository interfaces. The balance fake keeps
// transaction semantics: WithTx works on a copy and only commits on success.

type fakeUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]models.User
}

func newFakeUsers(ids ...string) *fakeUsers {
	f := &fakeUsers{users: map[string]models.User{}}
	for _, id := range ids {
		f.users[id] = models.User{ID: id, Username: id, Email: id + "@example.com"}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, username, email, passwordHash string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return models.User{}, errors.New("email taken")
		}
	}
	f.seq++
	u := models.User{ID: fmt.Sprintf("user-%d", f.seq), Username: username, Email: email, PasswordHash: passwordHash}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, ledger.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ledger.ErrUserNotFound
}

func (f *fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

type fakeGroups struct {
	mu     sync.Mutex
	seq    int
	groups map[string]models.Group
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{groups: map[string]models.Group{}}
}

// seed inserts a group with a fixed id, bypassing Create.
func (f *fakeGroups) seed(g models.Group) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[g.ID] = g
}

func (f *fakeGroups) Create(_ context.Context, g models.Group) (models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	g.ID = fmt.Sprintf("group-%d", f.seq)
	f.groups[g.ID] = g
	return g, nil
}

func (f *fakeGroups) GetByID(_ context.Context, id string) (models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[id]
	if !ok {
		return models.Group{}, ledger.ErrGroupNotFound
	}
	return g, nil
}

func (f *fakeGroups) Update(_ context.Context, g models.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[g.ID]; !ok {
		return ledger.ErrGroupNotFound
	}
	f.groups[g.ID] = g
	return nil
}

func (f *fakeGroups) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Group
	for _, g := range f.groups {
		if g.IsMemberOrOwner(userID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroups) AddMember(_ context.Context, groupID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[groupID]
	if !ok {
		return ledger.ErrGroupNotFound
	}
	g.MemberIDs = append(g.MemberIDs, userID)
	f.groups[groupID] = g
	return nil
}

func (f *fakeGroups) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.groups[id]
	return ok, nil
}

type fakeExpenses struct {
	mu       sync.Mutex
	seq      int
	expenses map[string]models.Expense

	failUpdate bool
	failDelete bool
}

func newFakeExpenses() *fakeExpenses {
	return &fakeExpenses{expenses: map[string]models.Expense{}}
}

func (f *fakeExpenses) Create(_ context.Context, e models.Expense) (models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		f.seq++
		e.ID = fmt.Sprintf("expense-%d", f.seq)
	}
	f.expenses[e.ID] = e
	return e, nil
}

func (f *fakeExpenses) GetByID(_ context.Context, id string) (models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.expenses[id]
	if !ok {
		return models.Expense{}, ledger.ErrExpenseNotFound
	}
	return e, nil
}

func (f *fakeExpenses) Update(_ context.Context, e models.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errors.New("store unavailable")
	}
	if _, ok := f.expenses[e.ID]; !ok {
		return ledger.ErrExpenseNotFound
	}
	f.expenses[e.ID] = e
	return nil
}

func (f *fakeExpenses) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("store unavailable")
	}
	if _, ok := f.expenses[id]; !ok {
		return ledger.ErrExpenseNotFound
	}
	delete(f.expenses, id)
	return nil
}

func (f *fakeExpenses) ListByGroup(_ context.Context, groupID string, limit, offset int) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Expense
	for _, e := range f.expenses {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenses) ListByPayer(_ context.Context, payerID string, limit, offset int) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Expense
	for _, e := range f.expenses {
		if e.PayerID == payerID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSettlements struct {
	mu          sync.Mutex
	seq         int
	settlements map[string]models.Settlement

	failDelete bool
}

func newFakeSettlements() *fakeSettlements {
	return &fakeSettlements{settlements: map[string]models.Settlement{}}
}

func (f *fakeSettlements) Create(_ context.Context, s models.Settlement) (models.Settlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		f.seq++
		s.ID = fmt.Sprintf("settlement-%d", f.seq)
	}
	f.settlements[s.ID] = s
	return s, nil
}

func (f *fakeSettlements) GetByID(_ context.Context, id string) (models.Settlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settlements[id]
	if !ok {
		return models.Settlement{}, ledger.ErrSettlementNotFound
	}
	return s, nil
}

func (f *fakeSettlements) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("store unavailable")
	}
	if _, ok := f.settlements[id]; !ok {
		return ledger.ErrSettlementNotFound
	}
	delete(f.settlements, id)
	return nil
}

func (f *fakeSettlements) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Settlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Settlement
	for _, s := range f.settlements {
		if s.PayerID == userID || s.PayeeID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func balanceKey(groupID, debtorID, creditorID string) string {
	return groupID + "|" + debtorID + "|" + creditorID
}

// fakeBalances implements Balances with copy-on-write transactions: WithTx
// mutates a clone of the ledger and swaps it in only when fn succeeds, so a
// failing transaction leaves the ledger untouched.
type fakeBalances struct {
	mu      sync.Mutex
	entries map[string]models.BalanceEntry

	// failUpsertAfter, when > 0, makes the Nth Upsert inside a transaction
	// fail. Used to exercise rollback paths.
	failUpsertAfter int
	upsertCalls     int
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{entries: map[string]models.BalanceEntry{}}
}

func (f *fakeBalances) ListForGroup(_ context.Context, groupID string) ([]models.BalanceEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return listGroup(f.entries, groupID), nil
}

func (f *fakeBalances) ListForUser(_ context.Context, userID string, limit, offset int) ([]models.BalanceEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BalanceEntry
	for _, e := range f.entries {
		if e.DebtorID == userID || e.CreditorID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBalances) WithTx(_ context.Context, fn func(repo.BalanceTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	work := make(map[string]models.BalanceEntry, len(f.entries))
	for k, v := range f.entries {
		work[k] = v
	}
	if err := fn(&fakeBalanceTx{parent: f, entries: work}); err != nil {
		return err
	}
	f.entries = work
	return nil
}

// entry is a test helper to peek at one edge outside any transaction.
func (f *fakeBalances) entry(groupID, debtorID, creditorID string) (models.BalanceEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[balanceKey(groupID, debtorID, creditorID)]
	return e, ok
}

func (f *fakeBalances) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeBalanceTx struct {
	parent  *fakeBalances
	entries map[string]models.BalanceEntry
}

func (t *fakeBalanceTx) Get(_ context.Context, groupID, debtorID, creditorID string) (models.BalanceEntry, bool, error) {
	e, ok := t.entries[balanceKey(groupID, debtorID, creditorID)]
	return e, ok, nil
}

func (t *fakeBalanceTx) Upsert(_ context.Context, e models.BalanceEntry) error {
	t.parent.upsertCalls++
	if t.parent.failUpsertAfter > 0 && t.parent.upsertCalls >= t.parent.failUpsertAfter {
		return errors.New("store unavailable")
	}
	t.entries[balanceKey(e.GroupID, e.DebtorID, e.CreditorID)] = e
	return nil
}

func (t *fakeBalanceTx) Delete(_ context.Context, groupID, debtorID, creditorID string) error {
	delete(t.entries, balanceKey(groupID, debtorID, creditorID))
	return nil
}

func (t *fakeBalanceTx) ListForGroup(_ context.Context, groupID string) ([]models.BalanceEntry, error) {
	return listGroup(t.entries, groupID), nil
}

func (t *fakeBalanceTx) DeleteGroup(_ context.Context, groupID string) error {
	for k, e := range t.entries {
		if e.GroupID == groupID {
			delete(t.entries, k)
		}
	}
	return nil
}

func listGroup(entries map[string]models.BalanceEntry, groupID string) []models.BalanceEntry {
	var out []models.BalanceEntry
	for _, e := range entries {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out
}

type fakeAuditLogs struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (f *fakeAuditLogs) Create(_ context.Context, l models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}
