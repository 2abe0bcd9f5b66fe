package command

import (
	"strconv"
	"strings"

	"finbot/internal/core"
)

// Parse tokenizes a raw chat line into a Command. It is a pure function
// of its input and never touches storage.
//
// The first whitespace-delimited token selects the verb
// (case-insensitive). Transaction verbs expect
// "verb amount description[#tag]": the amount accepts a comma decimal
// separator and must be positive, and the tag is everything after the
// first '#'. Greetings match the whole message. Anything unmatched
// parses as Unknown with core.ErrUnknownVerb.
//
// On core.ErrMissingArguments and core.ErrInvalidAmount the returned
// Command still carries the recognized verb so callers can render a
// corrective reply.
func Parse(text string) (Command, error) {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)

	switch lower {
	case "oi", "olá", "ola":
		return Command{Verb: Greeting}, nil
	}

	first := raw
	rest := ""
	if i := strings.IndexAny(raw, " \t"); i >= 0 {
		first = raw[:i]
		rest = strings.TrimSpace(raw[i+1:])
	}

	switch strings.ToLower(first) {
	case "/ajuda":
		return Command{Verb: Help}, nil
	case "/saldo":
		return Command{Verb: Balance}, nil
	case "/extrato":
		return Command{Verb: Statement}, nil
	case "/categorias", "/resumo":
		return Command{Verb: CategorySummary}, nil
	case "/despesa":
		return parseTransaction(AddExpense, rest)
	case "/receita":
		return parseTransaction(AddIncome, rest)
	case "/apagar":
		return parseDelete(rest)
	}
	return Command{Verb: Unknown}, core.ErrUnknownVerb
}

func parseTransaction(verb Verb, rest string) (Command, error) {
	cmd := Command{Verb: verb}

	amountTok, desc, found := strings.Cut(rest, " ")
	desc = strings.TrimSpace(desc)
	if amountTok == "" || !found || desc == "" {
		return cmd, core.ErrMissingArguments
	}

	cents, err := core.ParseDecimalToCents(amountTok)
	if err != nil {
		return cmd, core.ErrInvalidAmount
	}
	cmd.Amount = core.Money{Cents: cents}

	// Split at the first '#': before is the description, after is the tag.
	if before, after, ok := strings.Cut(desc, "#"); ok {
		cmd.Description = strings.TrimSpace(before)
		cmd.Tag = strings.ToLower(strings.TrimSpace(after))
	} else {
		cmd.Description = desc
	}
	return cmd, nil
}

func parseDelete(rest string) (Command, error) {
	cmd := Command{Verb: DeleteTransaction}
	tok := strings.TrimSpace(rest)
	if tok == "" {
		return cmd, core.ErrMissingArguments
	}
	id, err := strconv.ParseInt(tok, 10, 64)
	if err != nil || id <= 0 {
		return cmd, core.ErrMissingArguments
	}
	cmd.ID = id
	return cmd, nil
}
