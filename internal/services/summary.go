package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finbot/internal/core"
	"finbot/internal/storage"
)

// statementLimit bounds how many transactions the statement view shows.
const statementLimit = 10

const noCategoryLabel = "Sem categoria"

// Summary aggregates transactions into rendered balance, statement and
// category-breakdown replies. Pure reads; totals stay in exact cents and
// rounding happens only at render time.
type Summary struct {
	repo *storage.SQLiteRepository
}

func NewSummary(repo *storage.SQLiteRepository) *Summary {
	return &Summary{repo: repo}
}

// BalanceView sums balances across all of the user's accounts.
func (s *Summary) BalanceView(ctx context.Context, user core.User) (string, error) {
	accounts, err := s.repo.Queries().ListAccountsByOwner(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "❌ Você ainda não tem nenhuma conta cadastrada.", nil
	}

	var b strings.Builder
	b.WriteString("💰 Saldo das Contas:\n\n")

	var total int64
	for _, acc := range accounts {
		total += acc.Balance.Cents
		icon := "🟢"
		if acc.Balance.Cents < 0 {
			icon = "🔴"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", icon, acc.Name, core.FormatReais(acc.Balance))
	}

	fmt.Fprintf(&b, "\n📊 Total: %s", core.FormatReais(core.Money{Cents: total}))
	return b.String(), nil
}

// StatementView lists the most recent transactions, newest first.
func (s *Summary) StatementView(ctx context.Context, user core.User) (string, error) {
	txs, err := s.repo.Queries().ListRecentTransactions(ctx, user.ID, statementLimit)
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return "❌ Não há transações registradas.", nil
	}

	var b strings.Builder
	b.WriteString("📊 Últimas Transações:\n\n")
	for _, t := range txs {
		fmt.Fprintf(&b, "%s %s: %s (%s)\n",
			t.Type.Icon(), t.Description, core.FormatReais(t.Amount),
			t.Date.Format("02/01/2006 15:04"))
	}
	return b.String(), nil
}

// categoryTotal accumulates one category's cents in first-seen order.
type categoryTotal struct {
	name  string
	cents int64
}

// CategorySummaryView breaks the current month down by category, with
// per-category share of the type total, overall balance and savings
// rate. Categories render in the order they first appear this month.
func (s *Summary) CategorySummaryView(ctx context.Context, user core.User, now time.Time) (string, error) {
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	rows, err := s.repo.Queries().ListCategorizedAmountsSince(ctx, user.ID, since)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "❌ Não há transações este mês.", nil
	}

	var (
		incomes, expenses         []*categoryTotal
		incomeIndex               = map[string]*categoryTotal{}
		expenseIndex              = map[string]*categoryTotal{}
		totalIncome, totalExpense int64
	)
	for _, r := range rows {
		name := r.Category
		if name == "" {
			name = noCategoryLabel
		}
		if r.Type == core.Income {
			totalIncome += r.Cents
			accumulate(&incomes, incomeIndex, name, r.Cents)
		} else {
			totalExpense += r.Cents
			accumulate(&expenses, expenseIndex, name, r.Cents)
		}
	}

	var b strings.Builder
	b.WriteString("📊 Resumo do Mês:\n\n")

	if len(incomes) > 0 {
		b.WriteString("💰 Receitas:\n")
		writeCategoryLines(&b, incomes, totalIncome)
		fmt.Fprintf(&b, "Total: %s\n\n", core.FormatReais(core.Money{Cents: totalIncome}))
	}
	if len(expenses) > 0 {
		b.WriteString("💸 Despesas:\n")
		writeCategoryLines(&b, expenses, totalExpense)
		fmt.Fprintf(&b, "Total: %s\n\n", core.FormatReais(core.Money{Cents: totalExpense}))
	}

	balance := totalIncome - totalExpense
	savings := 0.0
	if totalIncome > 0 {
		savings = float64(balance) / float64(totalIncome) * 100
	}
	fmt.Fprintf(&b, "💳 Saldo: %s\n", core.FormatReais(core.Money{Cents: balance}))
	fmt.Fprintf(&b, "💹 Economia: %s", core.FormatPercent(savings))

	return b.String(), nil
}

func accumulate(ordered *[]*categoryTotal, index map[string]*categoryTotal, name string, cents int64) {
	if ct, ok := index[name]; ok {
		ct.cents += cents
		return
	}
	ct := &categoryTotal{name: name, cents: cents}
	index[name] = ct
	*ordered = append(*ordered, ct)
}

func writeCategoryLines(b *strings.Builder, totals []*categoryTotal, typeTotal int64) {
	for _, ct := range totals {
		pct := 0.0
		if typeTotal > 0 {
			pct = float64(ct.cents) / float64(typeTotal) * 100
		}
		fmt.Fprintf(b, "%s: %s (%s)\n",
			ct.name, core.FormatReais(core.Money{Cents: ct.cents}), core.FormatPercent(pct))
	}
}
