package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	// DefaultAccountName is given to the account created implicitly on a
	// user's first transaction.
	DefaultAccountName = "Conta Principal"
	// DefaultAccountType tags the implicitly created account.
	DefaultAccountType = "checking"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	User struct {
		ID     int64
		Handle string // WhatsApp number, unique per user
		Name   string
		Active bool
	}

	Account struct {
		ID          int64
		OwnerID     int64
		Name        string
		Type        string
		Balance     Money
		Description string
	}

	// Category is a global dictionary entry shared across users,
	// keyed by (name, type).
	Category struct {
		ID   int64
		Name string
		Type TransactionType
		Icon string
	}

	// Transaction stores a positive magnitude; Type carries the sign.
	Transaction struct {
		ID          int64
		OwnerID     int64
		AccountID   int64
		CategoryID  int64 // 0 means no category
		Amount      Money
		Type        TransactionType
		Description string
		Date        time.Time
	}

	Bill struct {
		ID          int64
		OwnerID     int64
		Description string
		Amount      Money
		DueDate     time.Time
		Paid        bool
		Category    string
	}

	Goal struct {
		ID       int64
		OwnerID  int64
		Name     string
		Target   Money
		Current  Money
		Deadline time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingArguments = errors.New("missing arguments")
	ErrUnknownVerb      = errors.New("unknown verb")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Icon returns the default category icon for the type.
func (t TransactionType) Icon() string {
	if t == Income {
		return "💰"
	}
	return "💸"
}

// Delta is the signed effect of an amount of this type on an account
// balance: positive for income, negative for expense.
func (t TransactionType) Delta(m Money) int64 {
	if t == Expense {
		return -m.Cents
	}
	return m.Cents
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Handle) == "" {
		return errors.New("empty user handle")
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return errors.New("invalid transaction type")
	}
	if t.AccountID == 0 {
		return errors.New("transaction without account")
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Amount.Validate()
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Description)) == 0 {
		return errors.New("empty bill description")
	}
	if b.DueDate.IsZero() {
		return errors.New("bill without due date")
	}
	return b.Amount.Validate()
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return errors.New("empty goal name")
	}
	return g.Target.Validate()
}
