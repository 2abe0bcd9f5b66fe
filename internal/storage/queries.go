package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finbot/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so the same queries run
// standalone or inside a unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// --- users ---

func (q *Queries) CreateUser(ctx context.Context, handle, name string) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO users (handle, name) VALUES (?, ?)
		 RETURNING id, handle, name, active`,
		handle, name,
	).Scan(&u.ID, &u.Handle, &u.Name, &u.Active)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (q *Queries) GetUserByHandle(ctx context.Context, handle string) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, handle, name, active FROM users WHERE handle = ?`,
		handle,
	).Scan(&u.ID, &u.Handle, &u.Name, &u.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by handle: %w", err)
	}
	return u, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx,
		`SELECT id, handle, name, active FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Handle, &u.Name, &u.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// DeactivateUser soft-deletes a user; rows are never removed.
func (q *Queries) DeactivateUser(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE users SET active = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

// --- accounts ---

func (q *Queries) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO accounts (owner_id, name, type, balance_cents, description)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		a.OwnerID, a.Name, a.Type, a.Balance.Cents, a.Description,
	).Scan(&a.ID)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// InsertDefaultAccount inserts the implicit checking account if the user
// has none yet. The partial unique index absorbs concurrent attempts, so
// both racers converge on the same committed row.
func (q *Queries) InsertDefaultAccount(ctx context.Context, ownerID int64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO accounts (owner_id, name, type, balance_cents)
		 VALUES (?, ?, ?, 0)`,
		ownerID, core.DefaultAccountName, core.DefaultAccountType,
	)
	if err != nil {
		return fmt.Errorf("insert default account: %w", err)
	}
	return nil
}

func (q *Queries) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var a core.Account
	err := q.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, type, balance_cents, description
		 FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.Balance.Cents, &a.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (q *Queries) GetDefaultAccount(ctx context.Context, ownerID int64) (core.Account, error) {
	var a core.Account
	err := q.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, type, balance_cents, description
		 FROM accounts WHERE owner_id = ? AND type = ?`,
		ownerID, core.DefaultAccountType,
	).Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.Balance.Cents, &a.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get default account: %w", err)
	}
	return a, nil
}

func (q *Queries) ListAccountsByOwner(ctx context.Context, ownerID int64) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, owner_id, name, type, balance_cents, description
		 FROM accounts WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.Balance.Cents, &a.Description); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AdjustAccountBalance applies a signed delta and returns the post-update
// balance. Callers must run it inside InTx together with the transaction
// row change it mirrors.
func (q *Queries) AdjustAccountBalance(ctx context.Context, accountID, deltaCents int64) (int64, error) {
	var balance int64
	err := q.db.QueryRowContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ?
		 WHERE id = ? RETURNING balance_cents`,
		deltaCents, accountID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust account balance: %w", err)
	}
	return balance, nil
}

// --- categories ---

// InsertCategoryIfAbsent creates the (name, type) entry when it does not
// exist yet. The unique index turns a concurrent double-create into a
// no-op for the loser.
func (q *Queries) InsertCategoryIfAbsent(ctx context.Context, name string, typ core.TransactionType, icon string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO categories (name, type, icon) VALUES (?, ?, ?)`,
		name, string(typ), icon)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (q *Queries) GetCategory(ctx context.Context, name string, typ core.TransactionType) (core.Category, error) {
	var c core.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, type, icon FROM categories WHERE name = ? AND type = ?`,
		name, string(typ),
	).Scan(&c.ID, &c.Name, &c.Type, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, type, icon FROM categories WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.Type, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}

// --- transactions ---

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var categoryID any
	if t.CategoryID != 0 {
		categoryID = t.CategoryID
	}
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO transactions (owner_id, account_id, category_id, amount_cents, type, description, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		t.OwnerID, t.AccountID, categoryID, t.Amount.Cents, string(t.Type), t.Description, t.Date,
	).Scan(&t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (q *Queries) GetTransactionForOwner(ctx context.Context, id, ownerID int64) (core.Transaction, error) {
	var t core.Transaction
	var categoryID sql.NullInt64
	err := q.db.QueryRowContext(ctx,
		`SELECT id, owner_id, account_id, category_id, amount_cents, type, description, date
		 FROM transactions WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(&t.ID, &t.OwnerID, &t.AccountID, &categoryID, &t.Amount.Cents, &t.Type, &t.Description, &t.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t.CategoryID = categoryID.Int64
	return t, nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListRecentTransactions returns the newest transactions first; ties on
// date break by insertion order.
func (q *Queries) ListRecentTransactions(ctx context.Context, ownerID int64, limit int) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, owner_id, account_id, category_id, amount_cents, type, description, date
		 FROM transactions WHERE owner_id = ?
		 ORDER BY date DESC, id DESC LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var categoryID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.AccountID, &categoryID, &t.Amount.Cents, &t.Type, &t.Description, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.CategoryID = categoryID.Int64
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CategorizedAmount is one transaction's contribution to the monthly
// category summary.
type CategorizedAmount struct {
	Type     core.TransactionType
	Category string // empty when the transaction has no category
	Cents    int64
}

func (q *Queries) ListCategorizedAmountsSince(ctx context.Context, ownerID int64, since time.Time) ([]CategorizedAmount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT t.type, COALESCE(c.name, ''), t.amount_cents
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.owner_id = ? AND t.date >= ?
		 ORDER BY t.id`,
		ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("list categorized amounts: %w", err)
	}
	defer rows.Close()

	var amounts []CategorizedAmount
	for rows.Next() {
		var ca CategorizedAmount
		if err := rows.Scan(&ca.Type, &ca.Category, &ca.Cents); err != nil {
			return nil, fmt.Errorf("scan categorized amount: %w", err)
		}
		amounts = append(amounts, ca)
	}
	return amounts, rows.Err()
}

// --- bills ---

func (q *Queries) CreateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO bills (owner_id, description, amount_cents, due_date, paid, category)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		b.OwnerID, b.Description, b.Amount.Cents, b.DueDate, b.Paid, b.Category,
	).Scan(&b.ID)
	if err != nil {
		return core.Bill{}, fmt.Errorf("create bill: %w", err)
	}
	return b, nil
}

func (q *Queries) ListBillsByOwner(ctx context.Context, ownerID int64) ([]core.Bill, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, owner_id, description, amount_cents, due_date, paid, category
		 FROM bills WHERE owner_id = ? ORDER BY due_date`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		var b core.Bill
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Description, &b.Amount.Cents, &b.DueDate, &b.Paid, &b.Category); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// DueBill pairs a bill with the owner's handle so the worker can
// address the reminder.
type DueBill struct {
	Bill        core.Bill
	OwnerHandle string
}

// ListDueUnremindedBills returns unpaid bills due before the cutoff that
// have not been reminded yet.
func (q *Queries) ListDueUnremindedBills(ctx context.Context, before time.Time) ([]DueBill, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT b.id, b.owner_id, b.description, b.amount_cents, b.due_date, b.paid, b.category, u.handle
		 FROM bills b
		 JOIN users u ON u.id = b.owner_id
		 WHERE b.paid = 0 AND b.reminded = 0 AND b.due_date <= ? AND u.active = 1
		 ORDER BY b.due_date`,
		before)
	if err != nil {
		return nil, fmt.Errorf("list due bills: %w", err)
	}
	defer rows.Close()

	var due []DueBill
	for rows.Next() {
		var d DueBill
		if err := rows.Scan(&d.Bill.ID, &d.Bill.OwnerID, &d.Bill.Description, &d.Bill.Amount.Cents,
			&d.Bill.DueDate, &d.Bill.Paid, &d.Bill.Category, &d.OwnerHandle); err != nil {
			return nil, fmt.Errorf("scan due bill: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

func (q *Queries) MarkBillReminded(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE bills SET reminded = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark bill reminded: %w", err)
	}
	return nil
}

func (q *Queries) MarkBillPaid(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE bills SET paid = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark bill paid: %w", err)
	}
	return nil
}

// --- goals ---

func (q *Queries) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO goals (owner_id, name, target_cents, current_cents, deadline)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		g.OwnerID, g.Name, g.Target.Cents, g.Current.Cents, g.Deadline,
	).Scan(&g.ID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (q *Queries) ListGoalsByOwner(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, owner_id, name, target_cents, current_cents, deadline
		 FROM goals WHERE owner_id = ? ORDER BY deadline`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		var g core.Goal
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Target.Cents, &g.Current.Cents, &g.Deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (q *Queries) AddGoalProgress(ctx context.Context, id, cents int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE goals SET current_cents = current_cents + ? WHERE id = ?`, cents, id)
	if err != nil {
		return fmt.Errorf("add goal progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}
