package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a raw extracted amount: currency symbols, grouping
// commas, and surrounding noise are stripped before parsing. The sign is
// preserved; accounting-style parentheses count as negative. A non-numeric
// or zero result is rejected.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(raw)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") && len(cleaned) > 2 {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '₽', '¥', ',', ' ':
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.TrimPrefix(cleaned, "+")

	if cleaned == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsZero() {
		return decimal.Zero, false
	}
	if negative {
		amount = amount.Abs().Neg()
	}
	return amount, true
}

// dateLayouts are the explicit parser strategies, tried in order. Slash
// dates are handled separately because of month/day ambiguity.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
}

// ParseDate resolves a raw extracted date using an ordered list of
// strategies: ISO forms first, then slash-delimited with heuristic
// month/day disambiguation, then free-text month names. The boolean reports
// whether any strategy recognized the input; callers fall back to "today"
// and log the fallback when it is false.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if t, ok := parseSlashDate(s); ok {
		return t, true
	}

	return time.Time{}, false
}

// parseSlashDate handles MM/DD/YYYY vs DD/MM/YYYY: when the first component
// is not a plausible month the order is swapped.
func parseSlashDate(s string) (time.Time, bool) {
	sep := "/"
	if strings.Count(s, ".") == 2 {
		sep = "."
	} else if strings.Count(s, "/") != 2 {
		return time.Time{}, false
	}

	normalized := strings.ReplaceAll(s, sep, "/")
	if t, err := time.Parse("01/02/2006", normalized); err == nil {
		return t, true
	}
	// First component exceeded 12, so it must be the day.
	if t, err := time.Parse("02/01/2006", normalized); err == nil {
		return t, true
	}
	// Two-digit years.
	if t, err := time.Parse("01/02/06", normalized); err == nil {
		return t, true
	}
	if t, err := time.Parse("02/01/06", normalized); err == nil {
		return t, true
	}
	return time.Time{}, false
}
