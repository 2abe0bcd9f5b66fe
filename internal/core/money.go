// Package core holds the ledger's entities and money handling.
//
// Money is kept as integer cents everywhere; parsing and formatting are
// the only places where decimal strings appear.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. Only positive
// amounts are valid; anything else returns ErrInvalidAmount.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// FormatReais renders a cent amount the way replies show money,
// e.g. "R$ 950.00" and "R$ -50.00".
func FormatReais(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("R$ %s%d.%02d", sign, cents/100, cents%100)
}

// FormatPercent renders a percentage with one decimal place, e.g. "37.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
