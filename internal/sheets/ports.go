package sheets

import "context"

// TransactionRow is one exported transaction, already rendered to the
// values the spreadsheet expects.
type TransactionRow struct {
	ID          int64
	Date        string
	Handle      string
	Type        string
	Description string
	Category    string
	Amount      float64
}

// TransactionAppender is the outbound port for spreadsheet export.
type TransactionAppender interface {
	Append(ctx context.Context, row TransactionRow) error
}
