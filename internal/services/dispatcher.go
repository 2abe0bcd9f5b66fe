package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finbot/internal/cache"
	"finbot/internal/command"
	"finbot/internal/core"
)

const helpText = `🤖 Comandos disponíveis:

💰 Finanças:
/saldo - Ver saldo atual
/extrato - Ver últimas transações
/categorias - Resumo por categoria

💸 Registros:
/despesa valor descrição #categoria
Exemplo: /despesa 50 Almoço #alimentação

/receita valor descrição #categoria
Exemplo: /receita 1000 Salário #salário

/apagar id - Remover transação

💡 A categoria é opcional`

const greetingText = "👋 Olá! Eu sou o FinBot!\n\nPara começar, envie:\n📝 /ajuda - Ver todos os comandos"

// Dispatcher routes parsed commands to the services and renders every
// reply the bot sends. All user-visible text lives here and in Summary.
type Dispatcher struct {
	users      *Users
	accounts   *Accounts
	categories *Categories
	ledger     *Ledger
	summary    *Summary
	replies    *cache.LRU[string]
}

func NewDispatcher(users *Users, accounts *Accounts, categories *Categories, ledger *Ledger, summary *Summary, replies *cache.LRU[string]) *Dispatcher {
	return &Dispatcher{
		users:      users,
		accounts:   accounts,
		categories: categories,
		ledger:     ledger,
		summary:    summary,
		replies:    replies,
	}
}

// HandleCommand processes one inbound message for the sender identified
// by handle and returns the reply text. User-level mistakes (bad
// amounts, unknown verbs, missing transactions) come back as replies
// with a nil error; only infrastructure failures return a non-nil error.
func (d *Dispatcher) HandleCommand(ctx context.Context, text, handle, name string) (string, error) {
	cmd, parseErr := command.Parse(text)
	if parseErr != nil {
		return d.parseErrorReply(ctx, cmd, parseErr), nil
	}

	switch cmd.Verb {
	case command.Greeting:
		return greetingText, nil
	case command.Help:
		return helpText, nil
	}

	user, err := d.users.GetOrCreate(ctx, handle, name)
	if err != nil {
		return "", fmt.Errorf("resolve user: %w", err)
	}

	switch cmd.Verb {
	case command.Balance:
		return d.cachedView(ctx, user, "saldo", d.summary.BalanceView)
	case command.Statement:
		return d.cachedView(ctx, user, "extrato", d.summary.StatementView)
	case command.CategorySummary:
		return d.cachedView(ctx, user, "categorias", func(ctx context.Context, u core.User) (string, error) {
			return d.summary.CategorySummaryView(ctx, u, time.Now())
		})
	case command.AddExpense, command.AddIncome:
		return d.record(ctx, user, cmd)
	case command.DeleteTransaction:
		return d.delete(ctx, user, cmd)
	}

	slog.WarnContext(ctx, "unhandled verb", slog.String("verb", cmd.Verb.String()))
	return unknownReply(), nil
}

func (d *Dispatcher) record(ctx context.Context, user core.User, cmd command.Command) (string, error) {
	account, err := d.accounts.Default(ctx, user)
	if err != nil {
		return "", fmt.Errorf("resolve account: %w", err)
	}

	typ := cmd.Verb.TransactionType()
	category, err := d.categories.ResolveOrCreate(ctx, cmd.Tag, typ)
	if err != nil {
		return "", fmt.Errorf("resolve category: %w", err)
	}

	_, balance, err := d.ledger.Record(ctx, user, account, category, cmd.Amount, cmd.Description, typ)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			slog.WarnContext(ctx, "account access denied",
				slog.Int64("user_id", user.ID), slog.Int64("account_id", account.ID))
			return "🚫 Você não tem acesso a essa conta.", nil
		}
		return "", err
	}
	d.invalidateViews(user)

	label := "Despesa"
	if typ == core.Income {
		label = "Receita"
	}
	categoryName := noCategoryLabel
	if category != nil {
		categoryName = category.Name
	}
	return fmt.Sprintf("%s %s registrada!\n\nValor: %s\nDescrição: %s\nCategoria: %s\n💳 Saldo atual: %s",
		typ.Icon(), label, core.FormatReais(cmd.Amount), cmd.Description, categoryName,
		core.FormatReais(balance)), nil
}

func (d *Dispatcher) delete(ctx context.Context, user core.User, cmd command.Command) (string, error) {
	balance, err := d.ledger.Delete(ctx, user, cmd.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "transaction not found",
				slog.Int64("user_id", user.ID), slog.Int64("transaction_id", cmd.ID))
			return "❌ Transação não encontrada.", nil
		}
		return "", err
	}
	d.invalidateViews(user)

	return fmt.Sprintf("🗑️ Transação removida!\n💳 Saldo atual: %s", core.FormatReais(balance)), nil
}

func (d *Dispatcher) cachedView(ctx context.Context, user core.User, view string, build func(context.Context, core.User) (string, error)) (string, error) {
	key := viewKey(user, view)
	if d.replies != nil {
		if reply, ok := d.replies.Get(key); ok {
			return reply, nil
		}
	}
	reply, err := build(ctx, user)
	if err != nil {
		return "", err
	}
	if d.replies != nil {
		d.replies.Set(key, reply)
	}
	return reply, nil
}

func (d *Dispatcher) invalidateViews(user core.User) {
	if d.replies == nil {
		return
	}
	for _, view := range []string{"saldo", "extrato", "categorias"} {
		d.replies.Delete(viewKey(user, view))
	}
}

func viewKey(user core.User, view string) string {
	return fmt.Sprintf("%d:%s", user.ID, view)
}

func (d *Dispatcher) parseErrorReply(ctx context.Context, cmd command.Command, err error) string {
	switch {
	case errors.Is(err, core.ErrMissingArguments):
		if cmd.Verb == command.DeleteTransaction {
			return "❌ Formato inválido. Use: /apagar id"
		}
		return fmt.Sprintf("❌ Formato inválido. Use: %s valor descrição #categoria", cmd.Verb)
	case errors.Is(err, core.ErrInvalidAmount):
		return "❌ Valor inválido. Use números (ex: 50.90)"
	default:
		slog.WarnContext(ctx, "unrecognized command", slog.String("verb", cmd.Verb.String()))
		return unknownReply()
	}
}

func unknownReply() string {
	return "❓ Comando não reconhecido. Digite /ajuda para ver os comandos disponíveis."
}
