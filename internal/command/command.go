// Package command turns raw chat messages into structured commands.
package command

import "finbot/internal/core"

// Verb identifies which operation a message requests. The set is closed:
// dispatch switches over it exhaustively, so adding a verb is a
// compile-time-checked change.
type Verb int

const (
	Unknown Verb = iota
	Greeting
	Help
	Balance
	Statement
	CategorySummary
	AddExpense
	AddIncome
	DeleteTransaction
)

var verbNames = map[Verb]string{
	Unknown:           "unknown",
	Greeting:          "greeting",
	Help:              "/ajuda",
	Balance:           "/saldo",
	Statement:         "/extrato",
	CategorySummary:   "/categorias",
	AddExpense:        "/despesa",
	AddIncome:         "/receita",
	DeleteTransaction: "/apagar",
}

func (v Verb) String() string {
	if s, ok := verbNames[v]; ok {
		return s
	}
	return "unknown"
}

// TransactionType returns the ledger type for transaction-creating verbs.
func (v Verb) TransactionType() core.TransactionType {
	if v == AddIncome {
		return core.Income
	}
	return core.Expense
}

// Command is the parsed form of one chat message.
type Command struct {
	Verb        Verb
	Amount      core.Money // AddExpense / AddIncome
	Description string     // trimmed, original case
	Tag         string     // category tag after '#', trimmed and lower-cased; empty when absent
	ID          int64      // DeleteTransaction target
}
