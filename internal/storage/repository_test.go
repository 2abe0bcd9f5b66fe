package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finbot/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finbot_test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestUserLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	u, err := q.CreateUser(ctx, "5511999990001", "Maria")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 || !u.Active {
		t.Errorf("unexpected created user: %+v", u)
	}

	got, err := q.GetUserByHandle(ctx, "5511999990001")
	if err != nil {
		t.Fatalf("GetUserByHandle: %v", err)
	}
	if got != u {
		t.Errorf("GetUserByHandle = %+v, want %+v", got, u)
	}

	if _, err := q.GetUserByHandle(ctx, "absent"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing handle error = %v, want ErrNotFound", err)
	}

	if err := q.DeactivateUser(ctx, u.ID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	got, err = q.GetUserByHandle(ctx, "5511999990001")
	if err != nil {
		t.Fatalf("GetUserByHandle after deactivate: %v", err)
	}
	if got.Active {
		t.Error("user still active after deactivation")
	}
}

func TestDefaultAccountInsertIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	u, err := q.CreateUser(ctx, "5511999990002", "João")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := q.InsertDefaultAccount(ctx, u.ID); err != nil {
			t.Fatalf("InsertDefaultAccount attempt %d: %v", i, err)
		}
	}

	accounts, err := q.ListAccountsByOwner(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListAccountsByOwner: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(accounts))
	}
	acc := accounts[0]
	if acc.Name != core.DefaultAccountName || acc.Type != core.DefaultAccountType || acc.Balance.Cents != 0 {
		t.Errorf("unexpected default account: %+v", acc)
	}
}

func TestAdjustAccountBalance(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	u, _ := q.CreateUser(ctx, "5511999990003", "Ana")
	if err := q.InsertDefaultAccount(ctx, u.ID); err != nil {
		t.Fatalf("InsertDefaultAccount: %v", err)
	}
	acc, err := q.GetDefaultAccount(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetDefaultAccount: %v", err)
	}

	balance, err := q.AdjustAccountBalance(ctx, acc.ID, 100000)
	if err != nil {
		t.Fatalf("AdjustAccountBalance: %v", err)
	}
	if balance != 100000 {
		t.Errorf("balance = %d, want 100000", balance)
	}

	balance, err = q.AdjustAccountBalance(ctx, acc.ID, -5000)
	if err != nil {
		t.Fatalf("AdjustAccountBalance: %v", err)
	}
	if balance != 95000 {
		t.Errorf("balance = %d, want 95000", balance)
	}

	if _, err := q.AdjustAccountBalance(ctx, 9999, 100); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing account error = %v, want ErrNotFound", err)
	}
}

func TestTransactionOwnershipAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	owner, _ := q.CreateUser(ctx, "5511999990004", "Pedro")
	other, _ := q.CreateUser(ctx, "5511999990005", "Clara")
	_ = q.InsertDefaultAccount(ctx, owner.ID)
	acc, _ := q.GetDefaultAccount(ctx, owner.ID)

	created, err := q.CreateTransaction(ctx, core.Transaction{
		OwnerID:     owner.ID,
		AccountID:   acc.ID,
		Amount:      core.Money{Cents: 5000},
		Type:        core.Expense,
		Description: "Almoço",
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("transaction id not populated")
	}

	if _, err := q.GetTransactionForOwner(ctx, created.ID, other.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign owner read error = %v, want ErrNotFound", err)
	}

	got, err := q.GetTransactionForOwner(ctx, created.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetTransactionForOwner: %v", err)
	}
	if got.Amount.Cents != 5000 || got.Type != core.Expense || got.CategoryID != 0 {
		t.Errorf("unexpected transaction: %+v", got)
	}

	if err := q.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := q.DeleteTransaction(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestListRecentTransactionsOrderAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	u, _ := q.CreateUser(ctx, "5511999990006", "Rita")
	_ = q.InsertDefaultAccount(ctx, u.ID)
	acc, _ := q.GetDefaultAccount(ctx, u.ID)

	// Same date for all rows so the id tie-break decides the order.
	date := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	for i := 0; i < 12; i++ {
		_, err := q.CreateTransaction(ctx, core.Transaction{
			OwnerID:     u.ID,
			AccountID:   acc.ID,
			Amount:      core.Money{Cents: int64(100 * (i + 1))},
			Type:        core.Expense,
			Description: "item",
			Date:        date,
		})
		if err != nil {
			t.Fatalf("CreateTransaction %d: %v", i, err)
		}
	}

	txs, err := q.ListRecentTransactions(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("ListRecentTransactions: %v", err)
	}
	if len(txs) != 10 {
		t.Fatalf("got %d transactions, want 10", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i-1].ID < txs[i].ID {
			t.Errorf("transactions out of order at %d: %d before %d", i, txs[i-1].ID, txs[i].ID)
		}
	}
	if txs[0].Amount.Cents != 1200 {
		t.Errorf("newest amount = %d, want 1200", txs[0].Amount.Cents)
	}
}

func TestListCategorizedAmountsSince(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	u, _ := q.CreateUser(ctx, "5511999990007", "Tiago")
	_ = q.InsertDefaultAccount(ctx, u.ID)
	acc, _ := q.GetDefaultAccount(ctx, u.ID)

	if err := q.InsertCategoryIfAbsent(ctx, "mercado", core.Expense, "💸"); err != nil {
		t.Fatalf("InsertCategoryIfAbsent: %v", err)
	}
	cat, err := q.GetCategory(ctx, "mercado", core.Expense)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	inMonth := []core.Transaction{
		{OwnerID: u.ID, AccountID: acc.ID, CategoryID: cat.ID, Amount: core.Money{Cents: 3000}, Type: core.Expense, Description: "compras", Date: now},
		{OwnerID: u.ID, AccountID: acc.ID, Amount: core.Money{Cents: 100000}, Type: core.Income, Description: "salário", Date: now},
	}
	for _, tr := range inMonth {
		if _, err := q.CreateTransaction(ctx, tr); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}
	// Outside the window, must not show up.
	_, err = q.CreateTransaction(ctx, core.Transaction{
		OwnerID: u.ID, AccountID: acc.ID, Amount: core.Money{Cents: 9999},
		Type: core.Expense, Description: "antigo", Date: monthStart.AddDate(0, -1, 0),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	rows, err := q.ListCategorizedAmountsSince(ctx, u.ID, monthStart)
	if err != nil {
		t.Fatalf("ListCategorizedAmountsSince: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Category != "mercado" || rows[0].Cents != 3000 || rows[0].Type != core.Expense {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Category != "" || rows[1].Cents != 100000 || rows[1].Type != core.Income {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	u, _ := q.CreateUser(ctx, "5511999990008", "Sofia")
	_ = q.InsertDefaultAccount(ctx, u.ID)
	acc, _ := q.GetDefaultAccount(ctx, u.ID)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(q *Queries) error {
		if _, err := q.AdjustAccountBalance(ctx, acc.ID, 100000); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}

	got, err := q.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Balance.Cents != 0 {
		t.Errorf("balance = %d after rollback, want 0", got.Balance.Cents)
	}
}

func TestGoalProgress(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	u, _ := q.CreateUser(ctx, "5511999990010", "Lia")
	g, err := q.CreateGoal(ctx, core.Goal{
		OwnerID:  u.ID,
		Name:     "Viagem",
		Target:   core.Money{Cents: 500000},
		Deadline: time.Now().AddDate(0, 6, 0),
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	if err := q.AddGoalProgress(ctx, g.ID, 120000); err != nil {
		t.Fatalf("AddGoalProgress: %v", err)
	}
	if err := q.AddGoalProgress(ctx, 9999, 100); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing goal error = %v, want ErrNotFound", err)
	}

	goals, err := q.ListGoalsByOwner(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListGoalsByOwner: %v", err)
	}
	if len(goals) != 1 || goals[0].Current.Cents != 120000 {
		t.Errorf("unexpected goals: %+v", goals)
	}
}

func TestDueBills(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := repo.Queries()

	u, _ := q.CreateUser(ctx, "5511999990009", "Bruno")
	now := time.Now()

	due, err := q.CreateBill(ctx, core.Bill{
		OwnerID: u.ID, Description: "Aluguel",
		Amount: core.Money{Cents: 120000}, DueDate: now.AddDate(0, 0, -1),
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	_, err = q.CreateBill(ctx, core.Bill{
		OwnerID: u.ID, Description: "Internet",
		Amount: core.Money{Cents: 9900}, DueDate: now.AddDate(0, 0, 10),
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}

	pending, err := q.ListDueUnremindedBills(ctx, now)
	if err != nil {
		t.Fatalf("ListDueUnremindedBills: %v", err)
	}
	if len(pending) != 1 || pending[0].Bill.ID != due.ID || pending[0].OwnerHandle != "5511999990009" {
		t.Fatalf("unexpected due bills: %+v", pending)
	}

	if err := q.MarkBillReminded(ctx, due.ID); err != nil {
		t.Fatalf("MarkBillReminded: %v", err)
	}
	pending, err = q.ListDueUnremindedBills(ctx, now)
	if err != nil {
		t.Fatalf("ListDueUnremindedBills: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d due bills after reminder, want 0", len(pending))
	}

	if err := q.MarkBillPaid(ctx, due.ID); err != nil {
		t.Fatalf("MarkBillPaid: %v", err)
	}
	bills, err := q.ListBillsByOwner(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListBillsByOwner: %v", err)
	}
	if len(bills) != 2 || !bills[0].Paid {
		t.Errorf("unexpected bills after payment: %+v", bills)
	}
}
