package command

import (
	"errors"
	"testing"

	"finbot/internal/core"
)

func TestParseGreetings(t *testing.T) {
	for _, input := range []string{"oi", "Oi", "OLÁ", "ola", "  olá  "} {
		cmd, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", input, err)
		}
		if cmd.Verb != Greeting {
			t.Errorf("Parse(%q).Verb = %v, want Greeting", input, cmd.Verb)
		}
	}
}

func TestParseSimpleVerbs(t *testing.T) {
	tests := []struct {
		input string
		want  Verb
	}{
		{"/ajuda", Help},
		{"/AJUDA", Help},
		{"/saldo", Balance},
		{"/Saldo", Balance},
		{"/extrato", Statement},
		{"/categorias", CategorySummary},
		{"/resumo", CategorySummary},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if cmd.Verb != tt.want {
			t.Errorf("Parse(%q).Verb = %v, want %v", tt.input, cmd.Verb, tt.want)
		}
	}
}

func TestParseTransactions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		verb     Verb
		cents    int64
		desc     string
		tag      string
	}{
		{
			name:  "expense with tag",
			input: "/despesa 50 Almoço #alimentação",
			verb:  AddExpense, cents: 5000, desc: "Almoço", tag: "alimentação",
		},
		{
			name:  "income without tag",
			input: "/receita 1000 Salário",
			verb:  AddIncome, cents: 100000, desc: "Salário", tag: "",
		},
		{
			name:  "comma decimal",
			input: "/despesa 50,90 Mercado #mercado",
			verb:  AddExpense, cents: 5090, desc: "Mercado", tag: "mercado",
		},
		{
			name:  "tag case folded",
			input: "/receita 10 Bico #Freela",
			verb:  AddIncome, cents: 1000, desc: "Bico", tag: "freela",
		},
		{
			name:  "multi word description",
			input: "/despesa 30 Uber para aeroporto #transporte",
			verb:  AddExpense, cents: 3000, desc: "Uber para aeroporto", tag: "transporte",
		},
		{
			name:  "hash inside tag kept",
			input: "/despesa 10 Pizza #a#b",
			verb:  AddExpense, cents: 1000, desc: "Pizza", tag: "a#b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if cmd.Verb != tt.verb {
				t.Errorf("Verb = %v, want %v", cmd.Verb, tt.verb)
			}
			if cmd.Amount.Cents != tt.cents {
				t.Errorf("Amount = %d, want %d", cmd.Amount.Cents, tt.cents)
			}
			if cmd.Description != tt.desc {
				t.Errorf("Description = %q, want %q", cmd.Description, tt.desc)
			}
			if cmd.Tag != tt.tag {
				t.Errorf("Tag = %q, want %q", cmd.Tag, tt.tag)
			}
		})
	}
}

func TestParseIdempotent(t *testing.T) {
	input := "/despesa 50 Almoço #alimentação"
	first, err1 := Parse(input)
	second, err2 := Parse(input)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Errorf("Parse is not deterministic: %+v vs %+v", first, second)
	}
}

func TestParseTransactionErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		verb    Verb
		wantErr error
	}{
		{"missing everything", "/despesa", AddExpense, core.ErrMissingArguments},
		{"missing description", "/despesa 50", AddExpense, core.ErrMissingArguments},
		{"missing income args", "/receita", AddIncome, core.ErrMissingArguments},
		{"bad amount", "/despesa abc Almoço", AddExpense, core.ErrInvalidAmount},
		{"negative amount", "/despesa -5 Almoço", AddExpense, core.ErrInvalidAmount},
		{"zero amount", "/despesa 0 Almoço", AddExpense, core.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if cmd.Verb != tt.verb {
				t.Errorf("Verb = %v, want %v (verb must survive parse errors)", cmd.Verb, tt.verb)
			}
		})
	}
}

func TestParseDelete(t *testing.T) {
	cmd, err := Parse("/apagar 12")
	if err != nil {
		t.Fatalf("Parse(/apagar 12) error: %v", err)
	}
	if cmd.Verb != DeleteTransaction || cmd.ID != 12 {
		t.Errorf("got verb %v id %d, want DeleteTransaction 12", cmd.Verb, cmd.ID)
	}

	for _, input := range []string{"/apagar", "/apagar abc", "/apagar 0", "/apagar -3"} {
		cmd, err := Parse(input)
		if !errors.Is(err, core.ErrMissingArguments) {
			t.Errorf("Parse(%q) error = %v, want ErrMissingArguments", input, err)
		}
		if cmd.Verb != DeleteTransaction {
			t.Errorf("Parse(%q).Verb = %v, want DeleteTransaction", input, cmd.Verb)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	for _, input := range []string{"/foo", "bom dia", "saldo", "/saldoo"} {
		cmd, err := Parse(input)
		if !errors.Is(err, core.ErrUnknownVerb) {
			t.Errorf("Parse(%q) error = %v, want ErrUnknownVerb", input, err)
		}
		if cmd.Verb != Unknown {
			t.Errorf("Parse(%q).Verb = %v, want Unknown", input, cmd.Verb)
		}
	}
}
