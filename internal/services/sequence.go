package services

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxInvoiceSequence is the last number the three-digit suffix can hold.
const MaxInvoiceSequence = 999

// InvoiceNumberPrefix returns "INV-YYYYMM-".
func InvoiceNumberPrefix(m Month) string {
	return "INV-" + m.Compact() + "-"
}

// FormatInvoiceNumber renders "INV-YYYYMM-NNN".
func FormatInvoiceNumber(m Month, seq int) string {
	return fmt.Sprintf("%s%03d", InvoiceNumberPrefix(m), seq)
}

// InvoiceNumberRange returns the inclusive bounds of a month's number space.
// Zero padding keeps lexical and numeric order aligned inside the range.
func InvoiceNumberRange(m Month) (lo, hi string) {
	return FormatInvoiceNumber(m, 1), FormatInvoiceNumber(m, MaxInvoiceSequence)
}

// ParseInvoiceSequence extracts NNN from a number belonging to month m.
func ParseInvoiceSequence(m Month, number string) (int, bool) {
	suffix, ok := strings.CutPrefix(number, InvoiceNumberPrefix(m))
	if !ok || suffix == "" {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// NextInvoiceSequence returns max+1 over the parsable numbers, or 1 if none parse.
func NextInvoiceSequence(m Month, existing []string) (int, error) {
	highest := 0
	for _, number := range existing {
		if n, ok := ParseInvoiceSequence(m, number); ok && n > highest {
			highest = n
		}
	}
	next := highest + 1
	if next > MaxInvoiceSequence {
		return 0, ErrSequenceExhausted
	}
	return next, nil
}
